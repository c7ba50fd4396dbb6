// Package pricing turns an equipment definition plus sizing values into a price.
//
// Every function here is pure. Lookup misses and unknown pricing models price
// at zero instead of failing, so a stale line item can never break a total.
package pricing

import (
	"math"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
)

// UnitPrice returns the price of a single unit of equipment sized by spec.
// A nil definition, an unknown model or a spec of the wrong variant for the
// definition's model all degrade to "no values supplied".
func UnitPrice(def *catalog.EquipmentType, spec Spec) float64 {
	if def == nil {
		return 0
	}
	switch def.PricingModel {
	case catalog.PerTon:
		s, _ := spec.(Tonnage)
		return finite(s.Tons) * rate(s.PricePerTon, def.UnitRate)
	case catalog.PerBTU:
		s, _ := spec.(BTU)
		return finite(s.BTU) * rate(s.PricePerBTU, def.UnitRate)
	case catalog.PerCFM:
		s, _ := spec.(Airflow)
		return finite(s.CFM) * rate(s.PricePerCFM, def.UnitRate)
	case catalog.PerHP:
		s, _ := spec.(Horsepower)
		return finite(s.HP) * rate(s.PricePerHP, def.UnitRate)
	case catalog.Fixed:
		s, _ := spec.(FixedPrice)
		return rate(s.BasePrice, def.UnitRate)
	}
	return 0
}

// ExtendedPrice is UnitPrice scaled by quantity. Quantities below one count
// as one.
func ExtendedPrice(def *catalog.EquipmentType, spec Spec, quantity int) float64 {
	return UnitPrice(def, spec) * float64(NormalizeQuantity(quantity))
}

// NormalizeQuantity returns quantity, or 1 when it is not positive.
func NormalizeQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}

// rate returns the override when one was supplied, else the catalog default.
func rate(override *float64, fallback float64) float64 {
	if override == nil || math.IsNaN(*override) || math.IsInf(*override, 0) {
		return fallback
	}
	return *override
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
