package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
)

// ParseNumber converts user input to a number. Anything that is not a finite
// number becomes 0.
func ParseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

// ParseCount converts user input to a non-negative whole count, truncating
// fractions.
func ParseCount(s string) int {
	return countOf(ParseNumber(s))
}

// Coerce converts a decoded JSON value to a number: numbers pass through,
// numeric strings are parsed, everything else is 0.
func Coerce(v any) float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return ParseNumber(n.String())
	case string:
		return ParseNumber(n)
	}
	return 0
}

// CoerceCount is Coerce for control counts.
func CoerceCount(v any) int {
	return countOf(Coerce(v))
}

func countOf(v float64) int {
	if v <= 0 || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

var valueKeys = map[string]func(*Values, float64){
	"tons":        func(v *Values, f float64) { v.Tons = Rate(f) },
	"btu":         func(v *Values, f float64) { v.BTU = Rate(f) },
	"cfm":         func(v *Values, f float64) { v.CFM = Rate(f) },
	"hp":          func(v *Values, f float64) { v.HP = Rate(f) },
	"basePrice":   func(v *Values, f float64) { v.BasePrice = Rate(f) },
	"pricePerTon": func(v *Values, f float64) { v.PricePerTon = Rate(f) },
	"pricePerBtu": func(v *Values, f float64) { v.PricePerBTU = Rate(f) },
	"pricePerCfm": func(v *Values, f float64) { v.PricePerCFM = Rate(f) },
	"pricePerHp":  func(v *Values, f float64) { v.PricePerHP = Rate(f) },
}

// ValuesFromMap reads loosely typed spec input keyed by the wire names
// (tons, btu, cfm, hp, basePrice, pricePerTon, ...). Unknown keys are ignored
// and null values count as absent.
func ValuesFromMap(m map[string]any) Values {
	var out Values
	for key, raw := range m {
		set, ok := valueKeys[key]
		if !ok || raw == nil {
			continue
		}
		set(&out, Coerce(raw))
	}
	return out
}

// ControlsFromMap reads loosely typed control counts keyed by control kind.
// Kinds that are absent stay unset so catalog defaults still apply.
func ControlsFromMap(m map[string]any) catalog.Controls {
	if len(m) == 0 {
		return nil
	}
	out := make(catalog.Controls)
	for _, kind := range catalog.ControlKinds() {
		raw, ok := m[string(kind)]
		if !ok || raw == nil {
			continue
		}
		out[kind] = CoerceCount(raw)
	}
	return out
}
