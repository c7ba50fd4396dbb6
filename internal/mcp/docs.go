package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `hvacquote prices HVAC equipment for a project estimate.

Core concepts:
- Catalog: equipment types (rtu, chiller, ahu, ...) each priced by one model: per-ton, per-btu, per-cfm, per-hp or fixed.
- Project: the single active estimate. It holds line items and settings and is saved automatically shortly after each change.
- Line item: one piece of equipment with a quantity, sizing values and optional control component counts.
- Controls: starters (ST), switches (SW), sensors (SEN), relays (REL) and valves (VA) needed per unit.

Workflow:
1) Browse: list_equipment_types, get_equipment_type, quote_item (prices without saving).
2) Build: add_item, update_item, remove_item. Every response carries the live project total.
3) Review: get_project, get_summary (totals, control counts, groups, cost distribution).
4) Manage: rename_project, create_project, list_projects, load_project, delete_project, save_project.
5) Deliver: export_estimate returns an XLSX workbook.

Totals are always recomputed from the current catalog; an item's unit_price is only the snapshot taken when it was last edited.

Docs:
- hvacquote://docs/pricing
- hvacquote://docs/controls
- hvacquote://docs/projects
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "hvacquote://docs/pricing",
		Name:        "docs_pricing",
		Title:       "Pricing rules",
		Description: "How a line item's price is computed from its catalog definition and sizing values.",
		Content: `# Pricing rules

Each equipment type has one pricing model and a catalog unit rate.

| model   | sizing value | rate override | unit price                  |
|---------|--------------|---------------|-----------------------------|
| per-ton | tons         | pricePerTon   | tons x (pricePerTon or rate) |
| per-btu | btu          | pricePerBtu   | btu x (pricePerBtu or rate)  |
| per-cfm | cfm          | pricePerCfm   | cfm x (pricePerCfm or rate)  |
| per-hp  | hp           | pricePerHp    | hp x (pricePerHp or rate)    |
| fixed   | none         | basePrice     | basePrice or rate           |

- Item price = unit price x quantity. A quantity below 1 counts as 1.
- Missing or non-numeric sizing values count as 0. Numbers may be sent as strings.
- Values belonging to another model are ignored.
- An item whose type is not in the catalog prices at 0; it never fails.
- Catalog sizing ranges are advisory. quote_item reports in_range but nothing is rejected.

## Totals

- total: sum of item prices recomputed against the current catalog.
- quoted_total: each item's price multiplied by its type's price adjustment (default 1).
- unit_price on an item is the snapshot from its last add or edit and may differ from price after a catalog change.
`,
	},
	{
		URI:         "hvacquote://docs/controls",
		Name:        "docs_controls",
		Title:       "Control components",
		Description: "How control component counts are defaulted and totalled.",
		Content: `# Control components

Kinds: ST (starters), SW (switches), SEN (sensors), REL (relays), VA (valves).

For each item and kind the count in effect is the first of:
1. the item's own override (add_item / update_item controls),
2. the project's control_counts setting for the item's type (update_settings),
3. the catalog default for the type,
4. 0.

Project totals multiply each item's counts by its quantity. get_summary also
returns per-type subtotal rows and a TOTALS row.
`,
	},
	{
		URI:         "hvacquote://docs/projects",
		Name:        "docs_projects",
		Title:       "Projects and saving",
		Description: "Project lifecycle, automatic saving and the saved-projects list.",
		Content: `# Projects and saving

- Exactly one project is active. Mutations are saved about a second after the last change; bursts are coalesced into one write.
- save_project writes immediately.
- create_project and load_project save pending changes of the current project first. reset_session does too, then starts an empty project.
- A new project is not listed by list_projects until it has been changed at least once.
- Deleting the active project switches to a new empty one.
- load_project fails with PROJECT_NOT_FOUND or MALFORMED_PROJECT and leaves the active project unchanged.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
