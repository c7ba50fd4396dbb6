// Package estimate derives totals, control tallies and per-type groupings from
// a list of line items. Nothing here mutates its input, and equal inputs give
// equal, order-stable outputs.
package estimate

import (
	"math"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
)

// TotalsLabel names the grand-total row produced by Totals.
const TotalsLabel = "TOTALS"

// Price recomputes the extended price of item against the current catalog.
// Types missing from the catalog price at zero.
func Price(item LineItem, lookup Lookup) float64 {
	def, ok := find(lookup, item.Type)
	if !ok {
		return 0
	}
	return pricing.ExtendedPrice(&def, item.Spec, item.Quantity)
}

// TotalPrice sums the live price of every item.
func TotalPrice(items []LineItem, lookup Lookup) float64 {
	total := 0.0
	for _, item := range items {
		total += Price(item, lookup)
	}
	return total
}

// QuotedTotal is TotalPrice with each item scaled by the adjustment for its
// type. Types without an adjustment use 1.
func QuotedTotal(items []LineItem, lookup Lookup, adjustments map[string]float64) float64 {
	total := 0.0
	for _, item := range items {
		factor, ok := adjustments[item.Type]
		if !ok || math.IsNaN(factor) || math.IsInf(factor, 0) {
			factor = 1
		}
		total += Price(item, lookup) * factor
	}
	return total
}

// EffectiveControls resolves each control kind for one unit of item: the
// item's own count, else the per-type override, else the catalog default,
// else zero.
func EffectiveControls(item LineItem, lookup Lookup, overrides ControlOverrides) catalog.Controls {
	def, hasDef := find(lookup, item.Type)
	typeOverride := overrides[item.Type]

	out := make(catalog.Controls, len(catalog.ControlKinds()))
	for _, kind := range catalog.ControlKinds() {
		if v, ok := item.Controls.Get(kind); ok {
			out[kind] = v
			continue
		}
		if v, ok := typeOverride.Get(kind); ok {
			out[kind] = v
			continue
		}
		if hasDef {
			out[kind] = def.DefaultControls[kind]
			continue
		}
		out[kind] = 0
	}
	return out
}

// ControlTotals sums the effective controls of every item scaled by quantity.
// Every kind is present in the result.
func ControlTotals(items []LineItem, lookup Lookup, overrides ControlOverrides) catalog.Controls {
	totals := catalog.Controls{}.Full()
	for _, item := range items {
		addControls(totals, item, lookup, overrides)
	}
	return totals
}

// GroupByType partitions items by type. Groups appear in the order their type
// was first seen and keep insertion order within a group.
func GroupByType(items []LineItem) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, item := range items {
		i, ok := index[item.Type]
		if !ok {
			i = len(groups)
			index[item.Type] = i
			groups = append(groups, Group{Type: item.Type, Name: item.Name})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Subtotals produces one summary row per group.
func Subtotals(groups []Group, lookup Lookup, overrides ControlOverrides) []Subtotal {
	rows := make([]Subtotal, 0, len(groups))
	for _, g := range groups {
		row := Subtotal{
			Type:     g.Type,
			Name:     g.Name,
			Controls: catalog.Controls{}.Full(),
		}
		for _, item := range g.Items {
			row.Quantity += pricing.NormalizeQuantity(item.Quantity)
			row.Price += Price(item, lookup)
			addControls(row.Controls, item, lookup, overrides)
		}
		row.Components = row.Controls.Total()
		rows = append(rows, row)
	}
	return rows
}

// Totals folds subtotal rows into the grand-total row.
func Totals(rows []Subtotal) Subtotal {
	out := Subtotal{Name: TotalsLabel, Controls: catalog.Controls{}.Full()}
	for _, row := range rows {
		out.Quantity += row.Quantity
		out.Price += row.Price
		for _, kind := range catalog.ControlKinds() {
			out.Controls[kind] += row.Controls[kind]
		}
	}
	out.Components = out.Controls.Total()
	return out
}

// CostDistribution reports each group's share of the total price. Percentages
// are rounded to whole numbers and are all zero when the total is zero.
func CostDistribution(groups []Group, lookup Lookup) []Share {
	shares := make([]Share, 0, len(groups))
	total := 0.0
	for _, g := range groups {
		s := Share{Type: g.Type, Name: g.Name}
		for _, item := range g.Items {
			s.Price += Price(item, lookup)
		}
		total += s.Price
		shares = append(shares, s)
	}
	if total <= 0 {
		return shares
	}
	for i := range shares {
		shares[i].Percent = int(math.Round(shares[i].Price / total * 100))
	}
	return shares
}

// Summarize computes every derived view in one pass over the groups.
func Summarize(items []LineItem, lookup Lookup, overrides ControlOverrides, adjustments map[string]float64) Summary {
	groups := GroupByType(items)
	rows := Subtotals(groups, lookup, overrides)
	totals := Totals(rows)
	return Summary{
		ItemCount:    len(items),
		Total:        totals.Price,
		QuotedTotal:  QuotedTotal(items, lookup, adjustments),
		Controls:     totals.Controls,
		Components:   totals.Components,
		Subtotals:    rows,
		Totals:       totals,
		Distribution: CostDistribution(groups, lookup),
	}
}

func addControls(dst catalog.Controls, item LineItem, lookup Lookup, overrides ControlOverrides) {
	qty := pricing.NormalizeQuantity(item.Quantity)
	for kind, v := range EffectiveControls(item, lookup, overrides) {
		dst[kind] += v * qty
	}
}

func find(lookup Lookup, typ string) (catalog.EquipmentType, bool) {
	if lookup == nil {
		return catalog.EquipmentType{}, false
	}
	return lookup.Lookup(typ)
}
