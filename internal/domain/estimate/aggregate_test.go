package estimate_test

import (
	"testing"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.EquipmentType{
		{
			Type: "rtu", Name: "Rooftop Unit", PricingModel: catalog.PerTon, UnitRate: 2800,
			DefaultControls: catalog.Controls{catalog.Starter: 1, catalog.Switch: 1},
		},
		{
			Type: "pump", Name: "Pump", PricingModel: catalog.PerHP, UnitRate: 1000,
			DefaultControls: catalog.Controls{catalog.Starter: 1, catalog.Relay: 2},
		},
		{
			Type: "stat", Name: "Thermostat", PricingModel: catalog.Fixed, UnitRate: 250,
			DefaultControls: catalog.Controls{catalog.Sensor: 1},
		},
	})
	require.NoError(t, err)
	return cat
}

func zeroControls() catalog.Controls {
	return catalog.Controls{}.Full()
}

func TestControlTotals_Empty(t *testing.T) {
	totals := estimate.ControlTotals(nil, testCatalog(t), nil)
	require.Equal(t, zeroControls(), totals)
	for _, kind := range catalog.ControlKinds() {
		v, ok := totals.Get(kind)
		require.True(t, ok)
		require.Zero(t, v)
	}
}

func TestControlTotals_ItemOverrideWins(t *testing.T) {
	items := []estimate.LineItem{{
		Type:     "rtu",
		Quantity: 3,
		Controls: catalog.Controls{catalog.Starter: 5},
	}}
	totals := estimate.ControlTotals(items, testCatalog(t), nil)
	require.Equal(t, 15, totals[catalog.Starter])
	require.Equal(t, 3, totals[catalog.Switch])
}

func TestControlTotals_TypeOverrideSitsBetween(t *testing.T) {
	cat := testCatalog(t)
	overrides := estimate.ControlOverrides{"rtu": {catalog.Starter: 4}}

	items := []estimate.LineItem{
		{Type: "rtu", Quantity: 1},
		{Type: "rtu", Quantity: 1, Controls: catalog.Controls{catalog.Starter: 0}},
	}
	totals := estimate.ControlTotals(items, cat, overrides)
	require.Equal(t, 4, totals[catalog.Starter])
	require.Equal(t, 2, totals[catalog.Switch])
}

func TestControlTotals_MissingTypeUsesOwnControls(t *testing.T) {
	items := []estimate.LineItem{
		{Type: "gone", Quantity: 2, Controls: catalog.Controls{catalog.Valve: 3}},
		{Type: "gone", Quantity: 2},
	}
	totals := estimate.ControlTotals(items, testCatalog(t), nil)
	require.Equal(t, 6, totals[catalog.Valve])
	require.Equal(t, 6, totals.Total())
}

func TestTotalPrice_LiveRecompute(t *testing.T) {
	cat := testCatalog(t)
	items := []estimate.LineItem{
		{Type: "rtu", Quantity: 2, Spec: pricing.Tonnage{Tons: 5}, UnitPrice: 1},
		{Type: "stat", Quantity: 1, UnitPrice: 1},
		{Type: "gone", Quantity: 4, Spec: pricing.FixedPrice{BasePrice: pricing.Rate(100)}},
	}
	require.Equal(t, 28250.0, estimate.TotalPrice(items, cat))
	require.Zero(t, estimate.TotalPrice(nil, cat))
	require.Zero(t, estimate.TotalPrice(items, nil))
}

func TestQuotedTotal_AppliesAdjustments(t *testing.T) {
	cat := testCatalog(t)
	items := []estimate.LineItem{
		{Type: "rtu", Quantity: 1, Spec: pricing.Tonnage{Tons: 1}},
		{Type: "stat", Quantity: 2},
	}
	require.Equal(t, 3300.0, estimate.QuotedTotal(items, cat, nil))
	require.InDelta(t, 2800*1.1+500, estimate.QuotedTotal(items, cat, map[string]float64{"rtu": 1.1}), 1e-9)
}

func TestGroupByType_OrderAndCoverage(t *testing.T) {
	items := []estimate.LineItem{
		{ID: "a", Type: "rtu", Name: "Rooftop Unit"},
		{ID: "b", Type: "stat", Name: "Thermostat"},
		{ID: "c", Type: "rtu", Name: "Rooftop Unit"},
		{ID: "d", Type: "pump", Name: "Pump"},
		{ID: "e", Type: "stat", Name: "Thermostat"},
	}
	groups := estimate.GroupByType(items)
	require.Len(t, groups, 3)
	require.Equal(t, []string{"rtu", "stat", "pump"}, []string{groups[0].Type, groups[1].Type, groups[2].Type})

	var ids []string
	for _, g := range groups {
		for _, item := range g.Items {
			require.Equal(t, g.Type, item.Type)
			ids = append(ids, item.ID)
		}
	}
	require.Equal(t, []string{"a", "c", "b", "e", "d"}, ids)
	require.Empty(t, estimate.GroupByType(nil))
}

func TestGroupByType_RemovingFirstItem(t *testing.T) {
	items := []estimate.LineItem{
		{ID: "a", Type: "rtu"},
		{ID: "b", Type: "stat"},
	}
	groups := estimate.GroupByType(items)
	require.Len(t, groups, 2)
	require.Equal(t, "rtu", groups[0].Type)
	require.Equal(t, "stat", groups[1].Type)

	groups = estimate.GroupByType(items[1:])
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)
	require.Equal(t, "b", groups[0].Items[0].ID)
}

func TestSubtotalsAndTotals(t *testing.T) {
	cat := testCatalog(t)
	items := []estimate.LineItem{
		{Type: "rtu", Name: "Rooftop Unit", Quantity: 2, Spec: pricing.Tonnage{Tons: 5}},
		{Type: "pump", Name: "Pump", Quantity: 1, Spec: pricing.Horsepower{HP: 3}},
		{Type: "rtu", Name: "Rooftop Unit", Quantity: 1, Spec: pricing.Tonnage{Tons: 2}},
	}
	rows := estimate.Subtotals(estimate.GroupByType(items), cat, nil)
	require.Len(t, rows, 2)

	require.Equal(t, "rtu", rows[0].Type)
	require.Equal(t, 3, rows[0].Quantity)
	require.Equal(t, 3, rows[0].Controls[catalog.Starter])
	require.Equal(t, 3, rows[0].Controls[catalog.Switch])
	require.Equal(t, 6, rows[0].Components)
	require.Equal(t, 33600.0, rows[0].Price)

	require.Equal(t, "pump", rows[1].Type)
	require.Equal(t, 3, rows[1].Components)

	totals := estimate.Totals(rows)
	require.Equal(t, estimate.TotalsLabel, totals.Name)
	require.Equal(t, 4, totals.Quantity)
	require.Equal(t, 9, totals.Components)
	require.Equal(t, estimate.ControlTotals(items, cat, nil), totals.Controls)
	require.Equal(t, estimate.TotalPrice(items, cat), totals.Price)
}

func TestCostDistribution(t *testing.T) {
	cat := testCatalog(t)
	items := []estimate.LineItem{
		{Type: "stat", Name: "Thermostat", Quantity: 3},
		{Type: "pump", Name: "Pump", Quantity: 1, Spec: pricing.Horsepower{HP: 0.25}},
	}
	shares := estimate.CostDistribution(estimate.GroupByType(items), cat)
	require.Len(t, shares, 2)
	require.Equal(t, 750.0, shares[0].Price)
	require.Equal(t, 75, shares[0].Percent)
	require.Equal(t, 25, shares[1].Percent)

	shares = estimate.CostDistribution(estimate.GroupByType([]estimate.LineItem{{Type: "gone"}}), cat)
	require.Len(t, shares, 1)
	require.Zero(t, shares[0].Percent)
}

func TestSummarize_RooftopScenario(t *testing.T) {
	cat := testCatalog(t)
	items := []estimate.LineItem{{Type: "rtu", Name: "Rooftop Unit", Quantity: 2, Spec: pricing.Tonnage{Tons: 5}}}

	summary := estimate.Summarize(items, cat, nil, nil)
	require.Equal(t, 1, summary.ItemCount)
	require.Equal(t, 28000.0, summary.Total)
	require.Equal(t, 28000.0, summary.QuotedTotal)
	require.Equal(t, catalog.Controls{
		catalog.Starter: 2, catalog.Switch: 2, catalog.Sensor: 0, catalog.Relay: 0, catalog.Valve: 0,
	}, summary.Controls)
	require.Equal(t, 4, summary.Components)
	require.Len(t, summary.Distribution, 1)
	require.Equal(t, 100, summary.Distribution[0].Percent)
}
