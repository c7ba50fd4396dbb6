package pricing_test

import (
	"encoding/json"
	"testing"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	require.Equal(t, 12.5, pricing.ParseNumber(" 12.5 "))
	require.Zero(t, pricing.ParseNumber(""))
	require.Zero(t, pricing.ParseNumber("abc"))
	require.Zero(t, pricing.ParseNumber("NaN"))
	require.Zero(t, pricing.ParseNumber("Inf"))
	require.Equal(t, -3.0, pricing.ParseNumber("-3"))
}

func TestParseCount(t *testing.T) {
	require.Equal(t, 2, pricing.ParseCount("2.9"))
	require.Equal(t, 0, pricing.ParseCount("-1"))
	require.Equal(t, 0, pricing.ParseCount("two"))
}

func TestCoerce(t *testing.T) {
	require.Equal(t, 4.0, pricing.Coerce(4.0))
	require.Equal(t, 4.0, pricing.Coerce("4"))
	require.Equal(t, 4.0, pricing.Coerce(json.Number("4")))
	require.Zero(t, pricing.Coerce(true))
	require.Zero(t, pricing.Coerce(nil))
	require.Zero(t, pricing.Coerce([]any{1}))
}

func TestValuesFromMap(t *testing.T) {
	v := pricing.ValuesFromMap(map[string]any{
		"tons":        "5",
		"pricePerTon": 50.0,
		"hp":          nil,
		"color":       "blue",
	})
	require.NotNil(t, v.Tons)
	require.Equal(t, 5.0, *v.Tons)
	require.Equal(t, 50.0, *v.PricePerTon)
	require.Nil(t, v.HP)

	spec := v.SpecFor(catalog.PerTon)
	require.Equal(t, pricing.Tonnage{Tons: 5, PricePerTon: pricing.Rate(50)}, spec)

	// Non-numeric sizing reaches the engine as zero.
	v = pricing.ValuesFromMap(map[string]any{"hp": "lots"})
	require.Equal(t, pricing.Horsepower{HP: 0}, v.SpecFor(catalog.PerHP))
}

func TestValues_InferAndRoundTrip(t *testing.T) {
	specs := []pricing.Spec{
		pricing.Tonnage{Tons: 4, PricePerTon: pricing.Rate(10)},
		pricing.BTU{BTU: 200000},
		pricing.Airflow{CFM: 900},
		pricing.Horsepower{HP: 3},
		pricing.FixedPrice{BasePrice: pricing.Rate(700)},
	}
	for _, spec := range specs {
		data, err := json.Marshal(pricing.ValuesOf(spec))
		require.NoError(t, err)

		var decoded pricing.Values
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, spec, decoded.Spec())
		require.Equal(t, spec, decoded.SpecFor(spec.Model()))
	}

	require.Nil(t, pricing.Values{}.Spec())
	require.Nil(t, pricing.Values{}.SpecFor("per-gallon"))
}

func TestControlsFromMap(t *testing.T) {
	c := pricing.ControlsFromMap(map[string]any{"ST": "3", "SW": 1.0, "VA": -2.0, "XX": 4.0})
	require.Equal(t, catalog.Controls{catalog.Starter: 3, catalog.Switch: 1, catalog.Valve: 0}, c)

	_, set := c.Get(catalog.Sensor)
	require.False(t, set)

	require.Nil(t, pricing.ControlsFromMap(nil))
}

func TestSize(t *testing.T) {
	require.Equal(t, 5.0, pricing.Size(pricing.Tonnage{Tons: 5}))
	require.Equal(t, 2.0, pricing.Size(pricing.Horsepower{HP: 2}))
	require.Zero(t, pricing.Size(pricing.FixedPrice{}))
	require.Zero(t, pricing.Size(nil))
}
