package mcp

import (
	"time"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
	"github.com/rpggio/hvacquote/internal/domain/project"
)

type EmptyParams struct{}

type GetEquipmentTypeParams struct {
	Type string `json:"type" jsonschema:"equipment type key, e.g. rtu"`
}

// Spec and controls arrive loosely typed: numbers may be strings, and
// unparseable values count as 0.
type QuoteItemParams struct {
	Type     string         `json:"type" jsonschema:"equipment type key"`
	Quantity int            `json:"quantity,omitempty" jsonschema:"unit count, values below 1 count as 1"`
	Spec     map[string]any `json:"spec,omitempty" jsonschema:"sizing and override values: tons, btu, cfm, hp, basePrice, pricePerTon, pricePerBtu, pricePerCfm, pricePerHp"`
}

type AddItemParams struct {
	Type     string         `json:"type" jsonschema:"equipment type key"`
	Name     string         `json:"name,omitempty" jsonschema:"display name, defaults to the catalog name"`
	Quantity int            `json:"quantity,omitempty" jsonschema:"unit count, values below 1 count as 1"`
	Spec     map[string]any `json:"spec,omitempty" jsonschema:"sizing and override values"`
	Controls map[string]any `json:"controls,omitempty" jsonschema:"per-kind control counts (ST, SW, SEN, REL, VA)"`
}

type UpdateItemParams struct {
	ID       string         `json:"id" jsonschema:"item id"`
	Name     *string        `json:"name,omitempty"`
	Quantity *int           `json:"quantity,omitempty"`
	Spec     map[string]any `json:"spec,omitempty" jsonschema:"replaces the item's sizing and override values"`
	Controls map[string]any `json:"controls,omitempty" jsonschema:"per-kind control counts merged over the current ones"`
}

type ItemIDParams struct {
	ID string `json:"id" jsonschema:"item id"`
}

type ProjectIDParams struct {
	ID string `json:"id" jsonschema:"project id"`
}

type RenameProjectParams struct {
	Name string `json:"name" jsonschema:"new project name"`
}

type CreateProjectParams struct {
	Name string `json:"name,omitempty" jsonschema:"project name, defaults to Unnamed Project"`
}

type UpdateSettingsParams struct {
	PriceAdjustments map[string]float64        `json:"price_adjustments,omitempty" jsonschema:"price multiplier per equipment type"`
	ControlCounts    map[string]map[string]any `json:"control_counts,omitempty" jsonschema:"default control counts per equipment type"`
}

type ReplaceCatalogParams struct {
	Definitions []catalog.EquipmentType `json:"definitions" jsonschema:"complete replacement catalog"`
}

type GetRecentActivityParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"defaults to the active project"`
	ItemID    string `json:"item_id,omitempty"`
	Type      string `json:"type,omitempty" jsonschema:"activity type filter"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type EquipmentTypesResponse struct {
	Types []catalog.EquipmentType `json:"types"`
}

type EquipmentTypeResponse struct {
	Type catalog.EquipmentType `json:"type"`
}

type QuoteResponse struct {
	Type          string               `json:"type"`
	Name          string               `json:"name"`
	Known         bool                 `json:"known"`
	PricingModel  catalog.PricingModel `json:"pricing_model"`
	Size          float64              `json:"size"`
	InRange       bool                 `json:"in_range"`
	Quantity      int                  `json:"quantity"`
	UnitPrice     float64              `json:"unit_price"`
	ExtendedPrice float64              `json:"extended_price"`
}

type ItemResponse struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	Name         string               `json:"name"`
	Quantity     int                  `json:"quantity"`
	PricingModel catalog.PricingModel `json:"pricing_model,omitempty"`
	Spec         pricing.Values       `json:"spec"`
	Controls     catalog.Controls     `json:"controls"`
	// UnitPrice is the snapshot taken at add or edit time.
	UnitPrice float64 `json:"unit_price"`
	// Price is recomputed against the current catalog.
	Price float64 `json:"price"`
}

type ItemMutationResponse struct {
	Item  ItemResponse `json:"item"`
	Total float64      `json:"total"`
}

type RemoveItemResponse struct {
	Removed bool    `json:"removed"`
	Total   float64 `json:"total"`
}

type SettingsResponse struct {
	PriceAdjustments map[string]float64          `json:"price_adjustments"`
	ControlCounts    map[string]catalog.Controls `json:"control_counts"`
	LastModified     string                      `json:"last_modified,omitempty"`
}

type ProjectResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	LastModified string           `json:"last_modified,omitempty"`
	Items        []ItemResponse   `json:"items"`
	Settings     SettingsResponse `json:"settings"`
	Total        float64          `json:"total"`
	SavePending  bool             `json:"save_pending"`
}

type ProjectRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DeleteProjectResponse struct {
	Deleted  string `json:"deleted"`
	ActiveID string `json:"active_id"`
}

type SaveProjectResponse struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

type SavedProjectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LastModified string `json:"last_modified,omitempty"`
	Active       bool   `json:"active"`
}

type ListProjectsResponse struct {
	Projects []SavedProjectResponse `json:"projects"`
	ActiveID string                 `json:"active_id"`
}

type GroupResponse struct {
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	ItemIDs  []string `json:"item_ids"`
	Quantity int      `json:"quantity"`
}

type SummaryResponse struct {
	ProjectID    string              `json:"project_id"`
	ItemCount    int                 `json:"item_count"`
	Total        float64             `json:"total"`
	QuotedTotal  float64             `json:"quoted_total"`
	Controls     catalog.Controls    `json:"controls"`
	Components   int                 `json:"components"`
	Groups       []GroupResponse     `json:"groups"`
	Subtotals    []estimate.Subtotal `json:"subtotals"`
	Totals       estimate.Subtotal   `json:"totals"`
	Distribution []estimate.Share    `json:"distribution"`
}

type ReplaceCatalogResponse struct {
	Count int `json:"count"`
}

type ActivityEntryResponse struct {
	Timestamp string                `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	ProjectID string                `json:"project_id"`
	ItemID    string                `json:"item_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}

type ActivityResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
}

type ExportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	// Data is the base64-encoded workbook.
	Data  string `json:"data"`
	Items int    `json:"items"`
}

func itemResponse(item estimate.LineItem, lookup estimate.Lookup) ItemResponse {
	resp := ItemResponse{
		ID:        item.ID,
		Type:      item.Type,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Spec:      pricing.ValuesOf(item.Spec),
		Controls:  item.Controls.Clone(),
		UnitPrice: item.UnitPrice,
		Price:     estimate.Price(item, lookup),
	}
	if item.Spec != nil {
		resp.PricingModel = item.Spec.Model()
	}
	if resp.Controls == nil {
		resp.Controls = catalog.Controls{}
	}
	return resp
}

func settingsResponse(s project.Settings) SettingsResponse {
	resp := SettingsResponse{
		PriceAdjustments: s.PriceAdjustments,
		ControlCounts:    s.ControlCounts,
		LastModified:     formatTime(s.LastModified),
	}
	if resp.PriceAdjustments == nil {
		resp.PriceAdjustments = map[string]float64{}
	}
	if resp.ControlCounts == nil {
		resp.ControlCounts = map[string]catalog.Controls{}
	}
	return resp
}

func projectResponse(p project.Project, lookup estimate.Lookup, pending bool) ProjectResponse {
	resp := ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		LastModified: formatTime(p.LastModified),
		Items:        make([]ItemResponse, 0, len(p.Items)),
		Settings:     settingsResponse(p.Settings),
		Total:        estimate.TotalPrice(p.Items, lookup),
		SavePending:  pending,
	}
	for _, item := range p.Items {
		resp.Items = append(resp.Items, itemResponse(item, lookup))
	}
	return resp
}

func summaryResponse(projectID string, s estimate.Summary, groups []estimate.Group) SummaryResponse {
	resp := SummaryResponse{
		ProjectID:    projectID,
		ItemCount:    s.ItemCount,
		Total:        s.Total,
		QuotedTotal:  s.QuotedTotal,
		Controls:     s.Controls.Full(),
		Components:   s.Components,
		Groups:       make([]GroupResponse, 0, len(groups)),
		Subtotals:    make([]estimate.Subtotal, 0, len(s.Subtotals)),
		Totals:       s.Totals,
		Distribution: make([]estimate.Share, 0, len(s.Distribution)),
	}
	resp.Subtotals = append(resp.Subtotals, s.Subtotals...)
	resp.Distribution = append(resp.Distribution, s.Distribution...)
	resp.Totals.Controls = resp.Totals.Controls.Full()
	for _, g := range groups {
		gr := GroupResponse{Type: g.Type, Name: g.Name, ItemIDs: make([]string, 0, len(g.Items))}
		for _, item := range g.Items {
			gr.ItemIDs = append(gr.ItemIDs, item.ID)
			gr.Quantity += pricing.NormalizeQuantity(item.Quantity)
		}
		resp.Groups = append(resp.Groups, gr)
	}
	return resp
}

func activityResponse(entries []activity.ActivityEntry) ActivityResponse {
	resp := ActivityResponse{Entries: make([]ActivityEntryResponse, 0, len(entries))}
	for _, e := range entries {
		r := ActivityEntryResponse{
			Timestamp: formatTime(e.CreatedAt),
			Type:      e.ActivityType,
			ProjectID: e.ProjectID,
			Summary:   e.Summary,
			Details:   e.Details,
		}
		if e.ItemID != nil {
			r.ItemID = *e.ItemID
		}
		resp.Entries = append(resp.Entries, r)
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
