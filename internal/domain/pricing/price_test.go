package pricing_test

import (
	"math"
	"testing"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
	"github.com/stretchr/testify/require"
)

func def(model catalog.PricingModel, rate float64) *catalog.EquipmentType {
	return &catalog.EquipmentType{Type: "x", PricingModel: model, UnitRate: rate}
}

func TestExtendedPrice_EmptySpec(t *testing.T) {
	for _, model := range []catalog.PricingModel{catalog.PerTon, catalog.PerBTU, catalog.PerCFM, catalog.PerHP} {
		for _, q := range []int{1, 2, 7} {
			require.Zero(t, pricing.ExtendedPrice(def(model, 123), nil, q), "model %s", model)
			require.Zero(t, pricing.ExtendedPrice(def(model, 123), pricing.Values{}.SpecFor(model), q), "model %s", model)
		}
	}

	for _, q := range []int{1, 2, 7} {
		require.Equal(t, 1500.0*float64(q), pricing.ExtendedPrice(def(catalog.Fixed, 1500), nil, q))
	}
}

func TestExtendedPrice_ByModel(t *testing.T) {
	cases := []struct {
		name string
		def  *catalog.EquipmentType
		spec pricing.Spec
		want float64
	}{
		{"tons", def(catalog.PerTon, 2800), pricing.Tonnage{Tons: 5}, 14000},
		{"btu", def(catalog.PerBTU, 0.04), pricing.BTU{BTU: 100000}, 4000},
		{"cfm", def(catalog.PerCFM, 2), pricing.Airflow{CFM: 1200}, 2400},
		{"hp", def(catalog.PerHP, 1000), pricing.Horsepower{HP: 7.5}, 7500},
		{"fixed default", def(catalog.Fixed, 1500), pricing.FixedPrice{}, 1500},
		{"fixed override", def(catalog.Fixed, 1500), pricing.FixedPrice{BasePrice: pricing.Rate(900)}, 900},
		{"unknown model", def("per-gallon", 10), pricing.Tonnage{Tons: 5}, 0},
		{"nil definition", nil, pricing.Tonnage{Tons: 5}, 0},
		{"mismatched variant", def(catalog.PerTon, 2800), pricing.Horsepower{HP: 5}, 0},
		{"nan sizing", def(catalog.PerHP, 1000), pricing.Horsepower{HP: math.NaN()}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, pricing.ExtendedPrice(tc.def, tc.spec, 1), 1e-9)
		})
	}
}

func TestExtendedPrice_RateOverrideWins(t *testing.T) {
	d := def(catalog.PerTon, 100)
	price := pricing.ExtendedPrice(d, pricing.Tonnage{Tons: 2, PricePerTon: pricing.Rate(50)}, 1)
	require.Equal(t, 100.0, price)

	// A zero override is still an override.
	price = pricing.ExtendedPrice(d, pricing.Tonnage{Tons: 2, PricePerTon: pricing.Rate(0)}, 1)
	require.Zero(t, price)
}

func TestExtendedPrice_LinearInQuantity(t *testing.T) {
	specs := map[catalog.PricingModel]pricing.Spec{
		catalog.PerTon: pricing.Tonnage{Tons: 3.5},
		catalog.PerBTU: pricing.BTU{BTU: 250000},
		catalog.PerCFM: pricing.Airflow{CFM: 800, PricePerCFM: pricing.Rate(3)},
		catalog.PerHP:  pricing.Horsepower{HP: 2},
		catalog.Fixed:  pricing.FixedPrice{},
	}
	for model, spec := range specs {
		d := def(model, 42)
		for _, q := range []int{1, 3, 10} {
			require.InDelta(t, 2*pricing.ExtendedPrice(d, spec, q), pricing.ExtendedPrice(d, spec, 2*q), 1e-6, "model %s", model)
		}
	}
}

func TestExtendedPrice_NonPositiveQuantityCountsAsOne(t *testing.T) {
	d := def(catalog.Fixed, 500)
	require.Equal(t, 500.0, pricing.ExtendedPrice(d, nil, 0))
	require.Equal(t, 500.0, pricing.ExtendedPrice(d, nil, -4))
}

func TestExtendedPrice_ScenarioRooftopUnit(t *testing.T) {
	rtu, ok := catalog.Default().Lookup("rtu")
	require.True(t, ok)
	require.Equal(t, 28000.0, pricing.ExtendedPrice(&rtu, pricing.Tonnage{Tons: 5}, 2))
}
