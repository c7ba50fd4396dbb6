package estimate

import (
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
)

// LineItem is one piece of equipment added to a project.
type LineItem struct {
	ID       string
	Type     string
	Name     string
	Quantity int
	Spec     pricing.Spec
	Controls catalog.Controls
	// UnitPrice is the quantity-scaled price captured when the item was
	// added or last edited. Totals do not read it.
	UnitPrice float64
}

// Clone returns a copy that shares no maps with li.
func (li LineItem) Clone() LineItem {
	out := li
	out.Controls = li.Controls.Clone()
	return out
}

// Lookup resolves an equipment type to its catalog definition.
// *catalog.Catalog satisfies it.
type Lookup interface {
	Lookup(typ string) (catalog.EquipmentType, bool)
}

// ControlOverrides maps an equipment type to per-kind default counts that
// take precedence over the catalog's defaults.
type ControlOverrides map[string]catalog.Controls

// Group is the run of items sharing one equipment type.
type Group struct {
	Type  string     `json:"type"`
	Name  string     `json:"name"`
	Items []LineItem `json:"-"`
}

// Subtotal is one row of the per-type control summary.
type Subtotal struct {
	Type       string           `json:"type"`
	Name       string           `json:"name"`
	Quantity   int              `json:"quantity"`
	Controls   catalog.Controls `json:"controls"`
	Components int              `json:"components"`
	Price      float64          `json:"price"`
}

// Share is one slice of the cost distribution.
type Share struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Percent int     `json:"percent"`
}

// Summary bundles every derived view of an item list.
type Summary struct {
	ItemCount    int              `json:"itemCount"`
	Total        float64          `json:"total"`
	QuotedTotal  float64          `json:"quotedTotal"`
	Controls     catalog.Controls `json:"controls"`
	Components   int              `json:"components"`
	Subtotals    []Subtotal       `json:"subtotals"`
	Totals       Subtotal         `json:"totals"`
	Distribution []Share          `json:"distribution"`
}
