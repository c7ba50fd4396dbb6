package catalog

import (
	"fmt"
	"math"
	"strings"
)

// Catalog is an immutable, ordered registry of equipment types keyed by type.
// Editing the catalog means building a new one and swapping it in.
type Catalog struct {
	defs  []EquipmentType
	index map[string]int
}

// New validates defs and builds a catalog preserving their order.
func New(defs []EquipmentType) (*Catalog, error) {
	c := &Catalog{
		defs:  make([]EquipmentType, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if err := Validate(def); err != nil {
			return nil, err
		}
		if _, exists := c.index[def.Type]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, def.Type)
		}
		c.index[def.Type] = len(c.defs)
		c.defs = append(c.defs, def.clone())
	}
	return c, nil
}

// MustNew is New for static definition sets; it panics on invalid input.
func MustNew(defs []EquipmentType) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks a single definition against the catalog invariants.
func Validate(def EquipmentType) error {
	if strings.TrimSpace(def.Type) == "" {
		return fmt.Errorf("%w: empty type", ErrInvalidDefinition)
	}
	if !def.PricingModel.Valid() {
		return fmt.Errorf("%w: %q has unknown pricing model %q", ErrInvalidDefinition, def.Type, def.PricingModel)
	}
	if def.UnitRate < 0 || math.IsNaN(def.UnitRate) || math.IsInf(def.UnitRate, 0) {
		return fmt.Errorf("%w: %q has invalid unit rate %v", ErrInvalidDefinition, def.Type, def.UnitRate)
	}
	if def.Range != nil && def.Range.Min > def.Range.Max {
		return fmt.Errorf("%w: %q range min %v exceeds max %v", ErrInvalidDefinition, def.Type, def.Range.Min, def.Range.Max)
	}
	for kind, count := range def.DefaultControls {
		if count < 0 {
			return fmt.Errorf("%w: %q has negative %s count", ErrInvalidDefinition, def.Type, kind)
		}
	}
	return nil
}

// Lookup returns the definition for typ. A nil catalog finds nothing.
func (c *Catalog) Lookup(typ string) (EquipmentType, bool) {
	if c == nil {
		return EquipmentType{}, false
	}
	i, ok := c.index[typ]
	if !ok {
		return EquipmentType{}, false
	}
	return c.defs[i], true
}

// Get is Lookup returning ErrTypeNotFound on a miss.
func (c *Catalog) Get(typ string) (EquipmentType, error) {
	def, ok := c.Lookup(typ)
	if !ok {
		return EquipmentType{}, fmt.Errorf("%w: %q", ErrTypeNotFound, typ)
	}
	return def, nil
}

// Definitions returns copies of all definitions in catalog order.
func (c *Catalog) Definitions() []EquipmentType {
	if c == nil {
		return nil
	}
	out := make([]EquipmentType, len(c.defs))
	for i, def := range c.defs {
		out[i] = def.clone()
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}
