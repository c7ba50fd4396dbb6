package catalog

import "math"

// PricingModel selects the formula used to price an equipment type.
type PricingModel string

const (
	PerTon PricingModel = "per-ton"
	PerBTU PricingModel = "per-btu"
	PerCFM PricingModel = "per-cfm"
	PerHP  PricingModel = "per-hp"
	Fixed  PricingModel = "fixed"
)

// Valid reports whether m is one of the known pricing models.
func (m PricingModel) Valid() bool {
	switch m {
	case PerTon, PerBTU, PerCFM, PerHP, Fixed:
		return true
	}
	return false
}

// SizingUnit names the quantity a per-unit model is sized by ("tons", "btu", ...).
// Fixed and unknown models have no sizing unit.
func (m PricingModel) SizingUnit() string {
	switch m {
	case PerTon:
		return "tons"
	case PerBTU:
		return "btu"
	case PerCFM:
		return "cfm"
	case PerHP:
		return "hp"
	}
	return ""
}

// ControlKind is one of the auxiliary control component categories.
type ControlKind string

const (
	Starter ControlKind = "ST"
	Switch  ControlKind = "SW"
	Sensor  ControlKind = "SEN"
	Relay   ControlKind = "REL"
	Valve   ControlKind = "VA"
)

var controlKinds = []ControlKind{Starter, Switch, Sensor, Relay, Valve}

// ControlKinds returns every control kind in display order.
func ControlKinds() []ControlKind {
	out := make([]ControlKind, len(controlKinds))
	copy(out, controlKinds)
	return out
}

// Label returns the long display name for a control kind.
func (k ControlKind) Label() string {
	switch k {
	case Starter:
		return "Starters"
	case Switch:
		return "Switches"
	case Sensor:
		return "Sensors"
	case Relay:
		return "Relays"
	case Valve:
		return "Valves"
	}
	return string(k)
}

// Controls maps a control kind to a count. A missing key means "not set",
// which lets line items override only some kinds.
type Controls map[ControlKind]int

// Get returns the count for kind and whether it was set.
func (c Controls) Get(kind ControlKind) (int, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c[kind]
	return v, ok
}

// Total sums every kind.
func (c Controls) Total() int {
	total := 0
	for _, k := range controlKinds {
		total += c[k]
	}
	return total
}

// Clone returns an independent copy; nil stays nil.
func (c Controls) Clone() Controls {
	if c == nil {
		return nil
	}
	out := make(Controls, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Full returns a copy with every kind present, missing kinds as zero.
func (c Controls) Full() Controls {
	out := make(Controls, len(controlKinds))
	for _, k := range controlKinds {
		out[k] = c[k]
	}
	return out
}

// SpecRange bounds the sizing quantity of a per-unit equipment type.
// The bounds are advisory; the pricing engine does not enforce them.
type SpecRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the closed range.
func (r SpecRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Preset is a catalog-suggested sizing value with its list price.
type Preset struct {
	Size  float64 `json:"size" yaml:"size"`
	Price float64 `json:"price" yaml:"price"`
}

// Option is a named fixed-price variant of an equipment type.
type Option struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

// EquipmentType is a catalog entry describing how one equipment category is priced.
type EquipmentType struct {
	ID              string       `json:"id" yaml:"id"`
	Type            string       `json:"type" yaml:"type"`
	Name            string       `json:"name" yaml:"name"`
	PricingModel    PricingModel `json:"pricingModel" yaml:"pricing_model"`
	Range           *SpecRange   `json:"specRange,omitempty" yaml:"spec_range,omitempty"`
	UnitRate        float64      `json:"unitRate" yaml:"unit_rate"`
	DefaultControls Controls     `json:"defaultControls" yaml:"default_controls"`
	Presets         []Preset     `json:"presets,omitempty" yaml:"presets,omitempty"`
	Options         []Option     `json:"options,omitempty" yaml:"options,omitempty"`
}

// InRange reports whether size is acceptable for the type. Types without a
// range (fixed pricing) accept any size.
func (e EquipmentType) InRange(size float64) bool {
	if e.Range == nil {
		return true
	}
	if math.IsNaN(size) {
		return false
	}
	return e.Range.Contains(size)
}

func (e EquipmentType) clone() EquipmentType {
	out := e
	if e.Range != nil {
		r := *e.Range
		out.Range = &r
	}
	out.DefaultControls = e.DefaultControls.Full()
	if e.Presets != nil {
		out.Presets = append([]Preset(nil), e.Presets...)
	}
	if e.Options != nil {
		out.Options = append([]Option(nil), e.Options...)
	}
	return out
}
