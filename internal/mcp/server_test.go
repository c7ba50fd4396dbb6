package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/project"
	"github.com/rpggio/hvacquote/internal/export"
	"github.com/rpggio/hvacquote/internal/repository"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type mapKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (m *mapKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return repository.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *mapKV) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

type activityStub struct {
	opts activity.ListActivityOptions
}

func (a *activityStub) GetRecentActivity(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	a.opts = opts
	return []activity.ActivityEntry{{
		ID:           1,
		ProjectID:    opts.ProjectID,
		ActivityType: activity.TypeItemAdded,
		Summary:      "added Rooftop Unit (RTU)",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}, nil
}

type toolCounter struct {
	mu     sync.Mutex
	calls  map[string]int
	failed map[string]int
}

func (c *toolCounter) ObserveToolCall(tool string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[tool]++
	if err != nil {
		c.failed[tool]++
	}
}

func (c *toolCounter) count(tool string) (calls, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[tool], c.failed[tool]
}

type harness struct {
	session *sdkmcp.ClientSession
	store   *project.Store
	kv      *mapKV
	metrics *toolCounter
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	ctx := context.Background()

	kv := &mapKV{data: map[string][]byte{}}
	store := project.NewStore(kv, catalog.Default(), project.WithDebounce(time.Hour))
	require.NoError(t, store.Open(ctx))

	metrics := &toolCounter{calls: map[string]int{}, failed: map[string]int{}}
	cfg.Store = store
	cfg.Metrics = metrics
	server := NewServer(cfg)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Close()
		_ = store.Close(context.Background())
	})
	return &harness{session: session, store: store, kv: kv, metrics: metrics}
}

func (h *harness) call(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	text, isErr := h.callRaw(t, name, args)
	require.False(t, isErr, "tool %s returned error: %s", name, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out))
	}
}

func (h *harness) callErr(t *testing.T, name string, args map[string]any) string {
	t.Helper()
	text, isErr := h.callRaw(t, name, args)
	require.True(t, isErr, "tool %s should fail, got %s", name, text)
	return text
}

func (h *harness) callRaw(t *testing.T, name string, args map[string]any) (string, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text, result.IsError
		}
	}
	t.Fatalf("tool %s returned no text content", name)
	return "", false
}

func TestServer_ListTools(t *testing.T) {
	h := newHarness(t, Config{})

	tools, err := h.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{
		"ping", "list_equipment_types", "get_equipment_type", "quote_item",
		"add_item", "update_item", "remove_item", "get_project", "rename_project",
		"reset_session", "create_project", "load_project", "delete_project",
		"list_projects", "get_summary", "update_settings", "replace_catalog",
		"get_recent_activity", "export_estimate", "save_project",
	} {
		require.True(t, names[name], "missing tool %s", name)
	}

	var pong PingResponse
	h.call(t, "ping", nil, &pong)
	require.Equal(t, "pong", pong.Status)
}

func TestServer_DocResources(t *testing.T) {
	h := newHarness(t, Config{})

	res, err := h.session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "hvacquote://docs/pricing"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "per-ton")
}

func TestTools_ItemWorkflow(t *testing.T) {
	h := newHarness(t, Config{})

	var rtu ItemMutationResponse
	h.call(t, "add_item", map[string]any{"type": "rtu", "quantity": 2, "spec": map[string]any{"tons": 10}}, &rtu)
	require.Equal(t, "Rooftop Unit (RTU)", rtu.Item.Name)
	require.Equal(t, catalog.PerTon, rtu.Item.PricingModel)
	require.Equal(t, 56000.0, rtu.Item.UnitPrice)
	require.Equal(t, 56000.0, rtu.Total)
	require.Equal(t, 1, rtu.Item.Controls[catalog.Starter])

	var updated ItemMutationResponse
	h.call(t, "update_item", map[string]any{"id": rtu.Item.ID, "quantity": 1}, &updated)
	require.Equal(t, 28000.0, updated.Item.Price)
	require.Equal(t, 28000.0, updated.Total)

	var chiller ItemMutationResponse
	h.call(t, "add_item", map[string]any{"type": "chiller", "spec": map[string]any{"tons": "20"}}, &chiller)
	require.Equal(t, 70000.0, chiller.Item.Price)
	require.Equal(t, 98000.0, chiller.Total)

	var summary SummaryResponse
	h.call(t, "get_summary", nil, &summary)
	require.Equal(t, 2, summary.ItemCount)
	require.Equal(t, 98000.0, summary.Total)
	require.Equal(t, 3, summary.Controls[catalog.Starter])
	require.Equal(t, 4, summary.Controls[catalog.Sensor])
	require.Len(t, summary.Groups, 2)
	require.Equal(t, []string{rtu.Item.ID}, summary.Groups[0].ItemIDs)

	var removed RemoveItemResponse
	h.call(t, "remove_item", map[string]any{"id": rtu.Item.ID}, &removed)
	require.True(t, removed.Removed)
	require.Equal(t, 70000.0, removed.Total)

	h.call(t, "remove_item", map[string]any{"id": "missing"}, &removed)
	require.False(t, removed.Removed)

	text := h.callErr(t, "update_item", map[string]any{"id": "missing", "quantity": 3})
	require.Contains(t, text, "ITEM_NOT_FOUND")

	text = h.callErr(t, "add_item", map[string]any{"type": " "})
	require.Contains(t, text, "MISSING_TYPE")

	calls, failed := h.metrics.count("remove_item")
	require.Equal(t, 2, calls)
	require.Zero(t, failed)
	_, failed = h.metrics.count("update_item")
	require.Equal(t, 1, failed)
}

func TestTools_UpdateItemMergesControls(t *testing.T) {
	h := newHarness(t, Config{})

	var added ItemMutationResponse
	h.call(t, "add_item", map[string]any{"type": "chiller", "spec": map[string]any{"tons": 20}}, &added)

	var updated ItemMutationResponse
	h.call(t, "update_item", map[string]any{
		"id":       added.Item.ID,
		"name":     "North chiller",
		"controls": map[string]any{"VA": "5"},
		"spec":     map[string]any{"tons": 20, "pricePerTon": 4000},
	}, &updated)
	require.Equal(t, "North chiller", updated.Item.Name)
	require.Equal(t, 5, updated.Item.Controls[catalog.Valve])
	require.Equal(t, 2, updated.Item.Controls[catalog.Starter])
	require.Equal(t, 80000.0, updated.Item.UnitPrice)
}

func TestTools_QuoteItem(t *testing.T) {
	h := newHarness(t, Config{})

	var quote QuoteResponse
	h.call(t, "quote_item", map[string]any{"type": "rtu", "spec": map[string]any{"tons": 10, "pricePerTon": "3000"}}, &quote)
	require.True(t, quote.Known)
	require.True(t, quote.InRange)
	require.Equal(t, 1, quote.Quantity)
	require.Equal(t, 30000.0, quote.UnitPrice)
	require.Equal(t, 30000.0, quote.ExtendedPrice)

	h.call(t, "quote_item", map[string]any{"type": "rtu", "quantity": 3, "spec": map[string]any{"tons": 60}}, &quote)
	require.False(t, quote.InRange)
	require.Equal(t, 3*60*2800.0, quote.ExtendedPrice)

	h.call(t, "quote_item", map[string]any{"type": "flux-capacitor"}, &quote)
	require.False(t, quote.Known)
	require.Zero(t, quote.ExtendedPrice)

	var proj ProjectResponse
	h.call(t, "get_project", nil, &proj)
	require.Empty(t, proj.Items)
}

func TestTools_RenameRejectsEmptyName(t *testing.T) {
	h := newHarness(t, Config{})

	text := h.callErr(t, "rename_project", map[string]any{"name": "   "})
	require.Contains(t, text, "EMPTY_NAME")

	var ref ProjectRefResponse
	h.call(t, "rename_project", map[string]any{"name": " Smith Residence "}, &ref)
	require.Equal(t, "Smith Residence", ref.Name)
	require.Equal(t, "Smith Residence", h.store.Active().Name)
}

func TestTools_ProjectLifecycle(t *testing.T) {
	h := newHarness(t, Config{})

	var smith ProjectRefResponse
	h.call(t, "rename_project", map[string]any{"name": "Smith"}, &smith)
	h.call(t, "add_item", map[string]any{"type": "rtu", "spec": map[string]any{"tons": 5}}, nil)

	var saved SaveProjectResponse
	h.call(t, "save_project", nil, &saved)
	require.True(t, saved.Saved)
	require.Equal(t, smith.ID, saved.ID)

	var list ListProjectsResponse
	h.call(t, "list_projects", nil, &list)
	require.Len(t, list.Projects, 1)
	require.True(t, list.Projects[0].Active)
	require.Equal(t, "Smith", list.Projects[0].Name)

	var jones ProjectRefResponse
	h.call(t, "create_project", map[string]any{"name": "Jones"}, &jones)
	require.NotEqual(t, smith.ID, jones.ID)
	require.Equal(t, "Jones", jones.Name)

	var loaded ProjectResponse
	h.call(t, "load_project", map[string]any{"id": smith.ID}, &loaded)
	require.Equal(t, "Smith", loaded.Name)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, 14000.0, loaded.Total)

	h.call(t, "list_projects", nil, &list)
	require.Len(t, list.Projects, 2, "load_project saved Jones first")

	text := h.callErr(t, "load_project", map[string]any{"id": "nope"})
	require.Contains(t, text, "PROJECT_NOT_FOUND")
	require.Equal(t, smith.ID, h.store.ActiveID())

	var deleted DeleteProjectResponse
	h.call(t, "delete_project", map[string]any{"id": smith.ID}, &deleted)
	require.Equal(t, smith.ID, deleted.Deleted)
	require.NotEqual(t, smith.ID, deleted.ActiveID)

	h.call(t, "list_projects", nil, &list)
	require.Len(t, list.Projects, 1)
	require.Equal(t, jones.ID, list.Projects[0].ID)

	var reset ProjectRefResponse
	h.call(t, "reset_session", nil, &reset)
	require.Equal(t, project.DefaultName, reset.Name)
}

func TestTools_UpdateSettingsAffectsSummary(t *testing.T) {
	h := newHarness(t, Config{})

	h.call(t, "add_item", map[string]any{"type": "rtu", "spec": map[string]any{"tons": 10}}, nil)

	var settings SettingsResponse
	h.call(t, "update_settings", map[string]any{
		"price_adjustments": map[string]any{"rtu": 1.1},
		"control_counts":    map[string]any{"rtu": map[string]any{"SEN": 2}},
	}, &settings)
	require.Equal(t, 1.1, settings.PriceAdjustments["rtu"])
	require.Equal(t, 2, settings.ControlCounts["rtu"][catalog.Sensor])

	var summary SummaryResponse
	h.call(t, "get_summary", nil, &summary)
	require.Equal(t, 28000.0, summary.Total)
	require.InDelta(t, 30800.0, summary.QuotedTotal, 1e-6)
}

func TestTools_ReplaceCatalog(t *testing.T) {
	h := newHarness(t, Config{})

	widget := map[string]any{
		"id":              "1",
		"type":            "widget",
		"name":            "Widget",
		"pricingModel":    "fixed",
		"unitRate":        100,
		"defaultControls": map[string]any{"ST": 1},
	}

	var replaced ReplaceCatalogResponse
	h.call(t, "replace_catalog", map[string]any{"definitions": []any{widget}}, &replaced)
	require.Equal(t, 1, replaced.Count)

	var types EquipmentTypesResponse
	h.call(t, "list_equipment_types", nil, &types)
	require.Len(t, types.Types, 1)
	require.Equal(t, "widget", types.Types[0].Type)

	text := h.callErr(t, "replace_catalog", map[string]any{"definitions": []any{widget, widget}})
	require.Contains(t, text, "INVALID_CATALOG")

	text = h.callErr(t, "get_equipment_type", map[string]any{"type": "rtu"})
	require.Contains(t, text, "TYPE_NOT_FOUND")
}

func TestTools_GetRecentActivityDefaultsToActiveProject(t *testing.T) {
	stub := &activityStub{}
	h := newHarness(t, Config{Activity: stub})

	var resp ActivityResponse
	h.call(t, "get_recent_activity", map[string]any{"type": "item_added", "limit": 5}, &resp)
	require.Len(t, resp.Entries, 1)
	require.Equal(t, "2026-01-02T03:04:05Z", resp.Entries[0].Timestamp)

	require.Equal(t, h.store.ActiveID(), stub.opts.ProjectID)
	require.Equal(t, 5, stub.opts.Limit)
	require.NotNil(t, stub.opts.ActivityType)
	require.Equal(t, activity.TypeItemAdded, *stub.opts.ActivityType)
}

func TestTools_ExportEstimate(t *testing.T) {
	h := newHarness(t, Config{})

	h.call(t, "rename_project", map[string]any{"name": "Smith Residence"}, nil)
	h.call(t, "add_item", map[string]any{"type": "rtu", "spec": map[string]any{"tons": 10}}, nil)
	h.call(t, "add_item", map[string]any{"type": "vav"}, nil)

	var resp ExportResponse
	h.call(t, "export_estimate", nil, &resp)
	require.Equal(t, "Smith-Residence.xlsx", resp.Filename)
	require.Equal(t, export.ContentType, resp.ContentType)
	require.Equal(t, 2, resp.Items)

	data, err := base64.StdEncoding.DecodeString(resp.Data)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(export.SheetEquipment)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header and two items")
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	h := newHarness(t, Config{TransportMode: "http", AuthToken: "secret"})

	_, err := h.session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: "get_project"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized")
}

func TestAuthMiddleware_StdioSkipsAuth(t *testing.T) {
	h := newHarness(t, Config{TransportMode: "stdio", AuthToken: "secret"})

	var proj ProjectResponse
	h.call(t, "get_project", nil, &proj)
	require.Equal(t, h.store.ActiveID(), proj.ID)
}

func TestTokenMatches(t *testing.T) {
	require.True(t, TokenMatches("Bearer secret", "secret"))
	require.True(t, TokenMatches("Bearer  secret ", "secret"))
	require.False(t, TokenMatches("Bearer other", "secret"))
	require.False(t, TokenMatches("", "secret"))
	require.False(t, TokenMatches("Bearer ", ""))
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("load: %w", project.ErrProjectNotFound), "PROJECT_NOT_FOUND"},
		{project.ErrMalformedProject, "MALFORMED_PROJECT"},
		{catalog.ErrTypeNotFound, "TYPE_NOT_FOUND"},
		{fmt.Errorf("%w: rtu", catalog.ErrDuplicateType), "INVALID_CATALOG"},
		{ErrEmptyName, "EMPTY_NAME"},
		{ErrItemNotFound, "ITEM_NOT_FOUND"},
		{activity.ErrInvalidInput, "INVALID_INPUT"},
	}
	for _, tc := range cases {
		apiErr := MapError(tc.err)
		require.NotNil(t, apiErr, tc.code)
		require.Equal(t, tc.code, apiErr.Code)
		require.ErrorIs(t, apiErr, tc.err)
	}

	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(fmt.Errorf("disk full")))
}
