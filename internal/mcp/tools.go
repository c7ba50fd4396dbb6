package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
	"github.com/rpggio/hvacquote/internal/domain/project"
	"github.com/rpggio/hvacquote/internal/export"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type tools struct {
	store    EstimateStore
	activity ActivityService
	metrics  ToolMetrics
	logger   *slog.Logger
}

// addTool registers fn under name, counting each call and mapping domain
// errors to tool errors.
func addTool[In, Out any](server *sdkmcp.Server, t *tools, name, description string, fn func(context.Context, In) (Out, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
			out, err := fn(ctx, in)
			t.metrics.ObserveToolCall(name, err)
			if err != nil {
				t.logger.Debug("tool failed", "tool", name, "error", err)
				var zero Out
				return nil, zero, mapError(err)
			}
			return nil, out, nil
		})
}

func registerTools(server *sdkmcp.Server, t *tools) {
	addTool(server, t, "ping", "Check that the server is responding", t.ping)

	// Catalog
	addTool(server, t, "list_equipment_types", "List every equipment type in the catalog with its pricing model, rate, sizing range and default controls", t.listEquipmentTypes)
	addTool(server, t, "get_equipment_type", "Get one catalog definition by type key", t.getEquipmentType)
	addTool(server, t, "quote_item", "Price an item without adding it to the project", t.quoteItem)
	addTool(server, t, "replace_catalog", "Replace the whole equipment catalog; the new catalog is validated and persisted", t.replaceCatalog)

	// Items
	addTool(server, t, "add_item", "Add equipment to the active project; missing name, sizing and controls default from the catalog", t.addItem)
	addTool(server, t, "update_item", "Edit an item in the active project; omitted fields keep their values", t.updateItem)
	addTool(server, t, "remove_item", "Remove an item from the active project", t.removeItem)

	// Project
	addTool(server, t, "get_project", "Get the active project with its items, settings and live total", t.getProject)
	addTool(server, t, "get_summary", "Get the active project's totals, control component counts, groups and cost distribution", t.getSummary)
	addTool(server, t, "rename_project", "Rename the active project", t.renameProject)
	addTool(server, t, "update_settings", "Update per-type price adjustments or default control counts for the active project", t.updateSettings)
	addTool(server, t, "save_project", "Write any pending changes to storage now", t.saveProject)
	addTool(server, t, "reset_session", "Discard the active project and start an empty one", t.resetSession)
	addTool(server, t, "create_project", "Start a new empty project, saving the current one first", t.createProject)
	addTool(server, t, "load_project", "Make a saved project the active one", t.loadProject)
	addTool(server, t, "delete_project", "Delete a saved project", t.deleteProject)
	addTool(server, t, "list_projects", "List saved projects", t.listProjects)

	addTool(server, t, "get_recent_activity", "List recent changes, newest first", t.getRecentActivity)
	addTool(server, t, "export_estimate", "Export the active project as a base64-encoded XLSX workbook", t.exportEstimate)
}

func (t *tools) ping(_ context.Context, _ EmptyParams) (PingResponse, error) {
	return PingResponse{Status: "pong"}, nil
}

func (t *tools) listEquipmentTypes(_ context.Context, _ EmptyParams) (EquipmentTypesResponse, error) {
	defs := t.store.Catalog().Definitions()
	if defs == nil {
		defs = []catalog.EquipmentType{}
	}
	return EquipmentTypesResponse{Types: defs}, nil
}

func (t *tools) getEquipmentType(_ context.Context, in GetEquipmentTypeParams) (EquipmentTypeResponse, error) {
	def, err := t.store.Catalog().Get(in.Type)
	if err != nil {
		return EquipmentTypeResponse{}, err
	}
	return EquipmentTypeResponse{Type: def}, nil
}

// quoteItem prices without touching the project. Unknown types quote at zero.
func (t *tools) quoteItem(_ context.Context, in QuoteItemParams) (QuoteResponse, error) {
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		return QuoteResponse{}, ErrMissingType
	}

	resp := QuoteResponse{Type: typ, Quantity: pricing.NormalizeQuantity(in.Quantity), InRange: true}
	def, ok := t.store.Catalog().Lookup(typ)
	if !ok {
		return resp, nil
	}

	spec := specFrom(in.Spec, def.PricingModel, nil)
	resp.Known = true
	resp.Name = def.Name
	resp.PricingModel = def.PricingModel
	resp.Size = pricing.Size(spec)
	resp.InRange = def.InRange(resp.Size)
	resp.UnitPrice = pricing.UnitPrice(&def, spec)
	resp.ExtendedPrice = pricing.ExtendedPrice(&def, spec, resp.Quantity)
	return resp, nil
}

func (t *tools) replaceCatalog(ctx context.Context, in ReplaceCatalogParams) (ReplaceCatalogResponse, error) {
	cat, err := t.store.ReplaceCatalog(ctx, in.Definitions)
	if err != nil {
		return ReplaceCatalogResponse{}, err
	}
	return ReplaceCatalogResponse{Count: cat.Len()}, nil
}

func (t *tools) addItem(_ context.Context, in AddItemParams) (ItemMutationResponse, error) {
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		return ItemMutationResponse{}, ErrMissingType
	}

	cat := t.store.Catalog()
	def, _ := cat.Lookup(typ)
	stored := t.store.AddItem(estimate.LineItem{
		Type:     typ,
		Name:     strings.TrimSpace(in.Name),
		Quantity: in.Quantity,
		Spec:     specFrom(in.Spec, def.PricingModel, nil),
		Controls: pricing.ControlsFromMap(in.Controls),
	})
	return ItemMutationResponse{Item: itemResponse(stored, cat), Total: t.store.TotalPrice()}, nil
}

func (t *tools) updateItem(_ context.Context, in UpdateItemParams) (ItemMutationResponse, error) {
	item, ok := findItem(t.store.Active(), in.ID)
	if !ok {
		return ItemMutationResponse{}, ErrItemNotFound
	}

	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	cat := t.store.Catalog()
	if in.Spec != nil {
		def, _ := cat.Lookup(item.Type)
		item.Spec = specFrom(in.Spec, def.PricingModel, item.Spec)
	}
	if overrides := pricing.ControlsFromMap(in.Controls); overrides != nil {
		if item.Controls == nil {
			item.Controls = catalog.Controls{}
		}
		for kind, n := range overrides {
			item.Controls[kind] = n
		}
	}

	if !t.store.UpdateItem(item) {
		return ItemMutationResponse{}, ErrItemNotFound
	}
	updated, ok := findItem(t.store.Active(), in.ID)
	if !ok {
		return ItemMutationResponse{}, ErrItemNotFound
	}
	return ItemMutationResponse{Item: itemResponse(updated, cat), Total: t.store.TotalPrice()}, nil
}

// removeItem is a no-op for unknown ids.
func (t *tools) removeItem(_ context.Context, in ItemIDParams) (RemoveItemResponse, error) {
	removed := t.store.RemoveItem(in.ID)
	return RemoveItemResponse{Removed: removed, Total: t.store.TotalPrice()}, nil
}

func (t *tools) getProject(_ context.Context, _ EmptyParams) (ProjectResponse, error) {
	return projectResponse(t.store.Active(), t.store.Catalog(), t.store.Pending()), nil
}

func (t *tools) getSummary(_ context.Context, _ EmptyParams) (SummaryResponse, error) {
	return summaryResponse(t.store.ActiveID(), t.store.Summary(), t.store.GroupByType()), nil
}

func (t *tools) renameProject(_ context.Context, in RenameProjectParams) (ProjectRefResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ProjectRefResponse{}, ErrEmptyName
	}
	t.store.RenameProject(name)
	return ProjectRefResponse{ID: t.store.ActiveID(), Name: name}, nil
}

func (t *tools) updateSettings(_ context.Context, in UpdateSettingsParams) (SettingsResponse, error) {
	update := project.SettingsUpdate{PriceAdjustments: in.PriceAdjustments}
	if in.ControlCounts != nil {
		update.ControlCounts = make(map[string]catalog.Controls, len(in.ControlCounts))
		for typ, counts := range in.ControlCounts {
			update.ControlCounts[typ] = pricing.ControlsFromMap(counts)
		}
	}
	return settingsResponse(t.store.UpdateSettings(update)), nil
}

func (t *tools) saveProject(ctx context.Context, _ EmptyParams) (SaveProjectResponse, error) {
	pending := t.store.Pending()
	if err := t.store.Flush(ctx); err != nil {
		return SaveProjectResponse{}, err
	}
	return SaveProjectResponse{ID: t.store.ActiveID(), Saved: pending}, nil
}

func (t *tools) resetSession(_ context.Context, _ EmptyParams) (ProjectRefResponse, error) {
	id := t.store.ResetSession()
	return ProjectRefResponse{ID: id, Name: t.store.Active().Name}, nil
}

func (t *tools) createProject(_ context.Context, in CreateProjectParams) (ProjectRefResponse, error) {
	id := t.store.CreateNewProject()
	if name := strings.TrimSpace(in.Name); name != "" {
		t.store.RenameProject(name)
	}
	return ProjectRefResponse{ID: id, Name: t.store.Active().Name}, nil
}

func (t *tools) loadProject(ctx context.Context, in ProjectIDParams) (ProjectResponse, error) {
	if err := t.store.LoadProject(ctx, in.ID); err != nil {
		return ProjectResponse{}, err
	}
	return projectResponse(t.store.Active(), t.store.Catalog(), t.store.Pending()), nil
}

func (t *tools) deleteProject(ctx context.Context, in ProjectIDParams) (DeleteProjectResponse, error) {
	if err := t.store.DeleteProject(ctx, in.ID); err != nil {
		return DeleteProjectResponse{}, err
	}
	return DeleteProjectResponse{Deleted: in.ID, ActiveID: t.store.ActiveID()}, nil
}

func (t *tools) listProjects(ctx context.Context, _ EmptyParams) (ListProjectsResponse, error) {
	entries, err := t.store.SavedProjects(ctx)
	if err != nil {
		return ListProjectsResponse{}, err
	}
	activeID := t.store.ActiveID()
	resp := ListProjectsResponse{
		Projects: make([]SavedProjectResponse, 0, len(entries)),
		ActiveID: activeID,
	}
	for _, e := range entries {
		resp.Projects = append(resp.Projects, SavedProjectResponse{
			ID:           e.ID,
			Name:         e.Name,
			LastModified: formatTime(e.LastModified),
			Active:       e.ID == activeID,
		})
	}
	return resp, nil
}

func (t *tools) getRecentActivity(ctx context.Context, in GetRecentActivityParams) (ActivityResponse, error) {
	if t.activity == nil {
		return activityResponse(nil), nil
	}
	opts := activity.ListActivityOptions{
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if opts.ProjectID == "" {
		opts.ProjectID = t.store.ActiveID()
	}
	if in.ItemID != "" {
		opts.ItemID = &in.ItemID
	}
	if in.Type != "" {
		typ := activity.ActivityType(in.Type)
		opts.ActivityType = &typ
	}
	entries, err := t.activity.GetRecentActivity(ctx, opts)
	if err != nil {
		return ActivityResponse{}, err
	}
	return activityResponse(entries), nil
}

func (t *tools) exportEstimate(_ context.Context, _ EmptyParams) (ExportResponse, error) {
	p := t.store.Active()
	var buf bytes.Buffer
	if err := export.Write(&buf, p, t.store.Catalog()); err != nil {
		return ExportResponse{}, err
	}
	return ExportResponse{
		Filename:    export.Filename(p.Name),
		ContentType: export.ContentType,
		Data:        base64.StdEncoding.EncodeToString(buf.Bytes()),
		Items:       len(p.Items),
	}, nil
}

// specFrom builds a spec from loosely typed values. The model comes from the
// catalog when the type is known, then from the current spec, and is
// otherwise inferred from whichever sizing value is present.
func specFrom(values map[string]any, model catalog.PricingModel, current pricing.Spec) pricing.Spec {
	if values == nil {
		return current
	}
	v := pricing.ValuesFromMap(values)
	if !model.Valid() && current != nil {
		model = current.Model()
	}
	if model.Valid() {
		return v.SpecFor(model)
	}
	return v.Spec()
}

func findItem(p project.Project, id string) (estimate.LineItem, bool) {
	for _, item := range p.Items {
		if item.ID == id {
			return item, true
		}
	}
	return estimate.LineItem{}, false
}
