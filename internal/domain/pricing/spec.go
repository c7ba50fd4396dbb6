package pricing

import "github.com/rpggio/hvacquote/internal/domain/catalog"

// Spec holds the sizing values of one line item. Each pricing model has its
// own variant carrying only the fields that model reads.
type Spec interface {
	Model() catalog.PricingModel
	isSpec()
}

// Tonnage sizes per-ton equipment.
type Tonnage struct {
	Tons        float64
	PricePerTon *float64
}

// BTU sizes per-btu equipment.
type BTU struct {
	BTU         float64
	PricePerBTU *float64
}

// Airflow sizes per-cfm equipment.
type Airflow struct {
	CFM         float64
	PricePerCFM *float64
}

// Horsepower sizes per-hp equipment.
type Horsepower struct {
	HP         float64
	PricePerHP *float64
}

// FixedPrice prices fixed equipment; a nil BasePrice uses the catalog price.
type FixedPrice struct {
	BasePrice *float64
}

func (Tonnage) Model() catalog.PricingModel    { return catalog.PerTon }
func (BTU) Model() catalog.PricingModel        { return catalog.PerBTU }
func (Airflow) Model() catalog.PricingModel    { return catalog.PerCFM }
func (Horsepower) Model() catalog.PricingModel { return catalog.PerHP }
func (FixedPrice) Model() catalog.PricingModel { return catalog.Fixed }

func (Tonnage) isSpec()    {}
func (BTU) isSpec()        {}
func (Airflow) isSpec()    {}
func (Horsepower) isSpec() {}
func (FixedPrice) isSpec() {}

// Size returns the sizing quantity of spec (tons, btu, cfm or hp). Fixed and
// nil specs have no size and report 0.
func Size(spec Spec) float64 {
	switch s := spec.(type) {
	case Tonnage:
		return finite(s.Tons)
	case BTU:
		return finite(s.BTU)
	case Airflow:
		return finite(s.CFM)
	case Horsepower:
		return finite(s.HP)
	}
	return 0
}

// Rate returns a pointer to v, for building specs with overridden rates.
func Rate(v float64) *float64 {
	return &v
}

// Values is the flat, loosely typed form of a Spec used on the wire and in
// persisted project records. Every field is optional.
type Values struct {
	Tons        *float64 `json:"tons,omitempty"`
	BTU         *float64 `json:"btu,omitempty"`
	CFM         *float64 `json:"cfm,omitempty"`
	HP          *float64 `json:"hp,omitempty"`
	BasePrice   *float64 `json:"basePrice,omitempty"`
	PricePerTon *float64 `json:"pricePerTon,omitempty"`
	PricePerBTU *float64 `json:"pricePerBtu,omitempty"`
	PricePerCFM *float64 `json:"pricePerCfm,omitempty"`
	PricePerHP  *float64 `json:"pricePerHp,omitempty"`
}

// SpecFor builds the variant for model from v. Values belonging to other
// models are ignored. Unknown models yield nil.
func (v Values) SpecFor(model catalog.PricingModel) Spec {
	switch model {
	case catalog.PerTon:
		return Tonnage{Tons: deref(v.Tons), PricePerTon: v.PricePerTon}
	case catalog.PerBTU:
		return BTU{BTU: deref(v.BTU), PricePerBTU: v.PricePerBTU}
	case catalog.PerCFM:
		return Airflow{CFM: deref(v.CFM), PricePerCFM: v.PricePerCFM}
	case catalog.PerHP:
		return Horsepower{HP: deref(v.HP), PricePerHP: v.PricePerHP}
	case catalog.Fixed:
		return FixedPrice{BasePrice: v.BasePrice}
	}
	return nil
}

// Spec infers the variant from whichever sizing value is present. It is used
// for records written before the pricing model was stored with the item.
func (v Values) Spec() Spec {
	switch {
	case v.Tons != nil || v.PricePerTon != nil:
		return v.SpecFor(catalog.PerTon)
	case v.BTU != nil || v.PricePerBTU != nil:
		return v.SpecFor(catalog.PerBTU)
	case v.CFM != nil || v.PricePerCFM != nil:
		return v.SpecFor(catalog.PerCFM)
	case v.HP != nil || v.PricePerHP != nil:
		return v.SpecFor(catalog.PerHP)
	case v.BasePrice != nil:
		return v.SpecFor(catalog.Fixed)
	}
	return nil
}

// ValuesOf flattens spec into its wire form.
func ValuesOf(spec Spec) Values {
	switch s := spec.(type) {
	case Tonnage:
		return Values{Tons: Rate(s.Tons), PricePerTon: s.PricePerTon}
	case BTU:
		return Values{BTU: Rate(s.BTU), PricePerBTU: s.PricePerBTU}
	case Airflow:
		return Values{CFM: Rate(s.CFM), PricePerCFM: s.PricePerCFM}
	case Horsepower:
		return Values{HP: Rate(s.HP), PricePerHP: s.PricePerHP}
	case FixedPrice:
		return Values{BasePrice: s.BasePrice}
	}
	return Values{}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
