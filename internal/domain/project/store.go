// Package project owns the active project and its persistence: item and
// settings mutations, the saved-projects index, debounced writes and the
// one-time import of a legacy session.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/hvacquote/internal/debounce"
	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
	"github.com/rpggio/hvacquote/internal/repository"
)

const (
	// DefaultDebounce is the quiet interval before a dirty project is written.
	DefaultDebounce = time.Second

	persistTimeout = 10 * time.Second
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithDebounce sets the quiet interval before a write.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

// WithActivity journals store events to rec.
func WithActivity(rec ActivityRecorder) Option {
	return func(s *Store) { s.activity = rec }
}

// WithMetrics reports store instrumentation to m.
func WithMetrics(m Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides uuid.NewString for project and item ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store holds exactly one active project and mediates every change to it.
// Mutators update memory synchronously and schedule a debounced write; they
// never wait on storage.
type Store struct {
	kv       KeyValueStore
	logger   *slog.Logger
	activity ActivityRecorder
	metrics  Metrics
	now      func() time.Time
	newID    func() string
	delay    time.Duration
	saver    *debounce.Debouncer

	mu      sync.RWMutex
	catalog *catalog.Catalog
	active  Project
	dirty   bool

	// persistMu serialises writes so index read-modify-write cycles never
	// interleave within this process.
	persistMu sync.Mutex
}

// NewStore creates a store with a fresh, unsaved active project.
func NewStore(kv KeyValueStore, cat *catalog.Catalog, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		catalog: cat,
		metrics: noopMetrics{},
		now:     time.Now,
		newID:   uuid.NewString,
		delay:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	s.saver = debounce.New(s.delay)
	s.active = s.freshProject()
	return s
}

// Open restores persisted state: the catalog override, then the last active
// project. Without a current-project pointer the legacy session is imported
// once into the fresh project. A pointer to a missing or unreadable project
// leaves the fresh project in place.
func (s *Store) Open(ctx context.Context) error {
	if err := s.loadCatalogOverride(ctx); err != nil {
		return err
	}
	if err := s.reconcileIndex(ctx); err != nil {
		s.logger.Warn("reconcile projects index", "error", err)
	}

	data, err := s.kv.Get(ctx, KeyCurrentProject)
	switch {
	case err == nil:
		id := decodeID(data)
		if err := s.LoadProject(ctx, id); err != nil {
			s.logger.Warn("restore current project", "project_id", id, "error", err)
		}
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("reading current project id: %w", err)
	}

	return s.importLegacy(ctx)
}

func (s *Store) loadCatalogOverride(ctx context.Context) error {
	data, err := s.kv.Get(ctx, KeyCatalogOverride)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading catalog override: %w", err)
	}
	var defs []catalog.EquipmentType
	if err := json.Unmarshal(data, &defs); err != nil {
		s.logger.Warn("ignoring malformed catalog override", "error", err)
		return nil
	}
	cat, err := catalog.New(defs)
	if err != nil {
		s.logger.Warn("ignoring invalid catalog override", "error", err)
		return nil
	}
	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()
	return nil
}

func (s *Store) importLegacy(ctx context.Context) error {
	data, err := s.kv.Get(ctx, KeyLegacySession)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading legacy session: %w", err)
	}

	s.mu.Lock()
	legacy, err := decodeProject(data, s.catalog)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("ignoring malformed legacy session", "error", err)
		return nil
	}
	s.active.Items = legacy.Items
	s.active.Settings = legacy.Settings
	s.touchLocked()
	id := s.active.ID
	s.mu.Unlock()

	s.logger.Info("imported legacy session", "project_id", id, "items", len(legacy.Items))
	s.record(ctx, id, nil, activity.TypeProjectLoaded, "imported legacy session", nil)
	s.scheduleSave()
	return nil
}

// Catalog returns the catalog items are priced against.
func (s *Store) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Active returns a copy of the active project.
func (s *Store) Active() Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.Clone()
}

// ActiveID returns the active project's id.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.ID
}

// PriceItem prices item against the current catalog without storing it.
func (s *Store) PriceItem(item estimate.LineItem) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return estimate.Price(item, s.catalog)
}

// TotalPrice is the live total of the active project.
func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return estimate.TotalPrice(s.active.Items, s.catalog)
}

// ControlTotals tallies control components across the active project.
func (s *Store) ControlTotals() catalog.Controls {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return estimate.ControlTotals(s.active.Items, s.catalog, s.active.Settings.ControlCounts)
}

// GroupByType groups the active project's items by equipment type.
func (s *Store) GroupByType() []estimate.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return estimate.GroupByType(s.active.Clone().Items)
}

// Summary computes every derived view of the active project.
func (s *Store) Summary() estimate.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return estimate.Summarize(s.active.Items, s.catalog, s.active.Settings.ControlCounts, s.active.Settings.PriceAdjustments)
}

// AddItem appends item to the active project and returns it as stored. A
// missing id becomes "<type>-<uuid>", a missing name is taken from the
// catalog, missing control kinds are filled from the defaults in effect and
// UnitPrice is snapshotted.
func (s *Store) AddItem(item estimate.LineItem) estimate.LineItem {
	s.mu.Lock()
	item = item.Clone()
	if item.ID == "" {
		item.ID = item.Type + "-" + s.newID()
	}
	item.Quantity = pricing.NormalizeQuantity(item.Quantity)

	def, hasDef := s.catalog.Lookup(item.Type)
	if item.Name == "" && hasDef {
		item.Name = def.Name
	}
	if item.Spec == nil && hasDef {
		item.Spec = pricing.Values{}.SpecFor(def.PricingModel)
	}
	item.Controls = s.defaultControlsLocked(item)
	item.UnitPrice = estimate.Price(item, s.catalog)

	s.active.Items = append(s.active.Items, item)
	s.touchLocked()
	projectID, stored := s.active.ID, item.Clone()
	s.mu.Unlock()

	s.afterMutation("add_item")
	s.record(context.Background(), projectID, &stored.ID, activity.TypeItemAdded,
		fmt.Sprintf("added %s", stored.Name), map[string]any{"type": stored.Type, "quantity": stored.Quantity, "price": stored.UnitPrice})
	return stored
}

// UpdateItem replaces the item with the same id, re-snapshotting its price.
// It reports false, changing nothing, when no item matches.
func (s *Store) UpdateItem(item estimate.LineItem) bool {
	s.mu.Lock()
	idx := s.indexLocked(item.ID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	item = item.Clone()
	item.Quantity = pricing.NormalizeQuantity(item.Quantity)
	item.UnitPrice = estimate.Price(item, s.catalog)
	s.active.Items[idx] = item
	s.touchLocked()
	projectID := s.active.ID
	s.mu.Unlock()

	s.afterMutation("update_item")
	s.record(context.Background(), projectID, &item.ID, activity.TypeItemUpdated,
		fmt.Sprintf("updated %s", item.Name), map[string]any{"quantity": item.Quantity, "price": item.UnitPrice})
	return true
}

// RemoveItem drops the item with id. It reports false when no item matches.
func (s *Store) RemoveItem(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.active.Items[idx]
	s.active.Items = append(s.active.Items[:idx:idx], s.active.Items[idx+1:]...)
	s.touchLocked()
	projectID := s.active.ID
	s.mu.Unlock()

	s.afterMutation("remove_item")
	s.record(context.Background(), projectID, &id, activity.TypeItemRemoved, fmt.Sprintf("removed %s", removed.Name), nil)
	return true
}

// RenameProject sets the active project's name. Any string is accepted.
func (s *Store) RenameProject(name string) {
	s.mu.Lock()
	s.active.Name = name
	s.touchLocked()
	projectID := s.active.ID
	s.mu.Unlock()

	s.afterMutation("rename_project")
	s.record(context.Background(), projectID, nil, activity.TypeProjectRenamed, "renamed project", map[string]string{"name": name})
}

// UpdateSettings replaces the settings fields set in update.
func (s *Store) UpdateSettings(update SettingsUpdate) Settings {
	s.mu.Lock()
	next := s.active.Settings.Clone()
	if update.PriceAdjustments != nil {
		next.PriceAdjustments = Settings{PriceAdjustments: update.PriceAdjustments}.Clone().PriceAdjustments
	}
	if update.ControlCounts != nil {
		next.ControlCounts = Settings{ControlCounts: update.ControlCounts}.Clone().ControlCounts
	}
	next.LastModified = s.now()
	s.active.Settings = next
	s.touchLocked()
	projectID, out := s.active.ID, next.Clone()
	s.mu.Unlock()

	s.afterMutation("update_settings")
	s.record(context.Background(), projectID, nil, activity.TypeSettingsUpdated, "updated settings", nil)
	return out
}

// ResetSession abandons the active project without deleting its saved copy.
// Any pending write of it is committed first. The new project has a fresh
// id, the default name and no items or settings; the catalog is kept.
func (s *Store) ResetSession() string {
	return s.switchToFresh("reset session", true)
}

// CreateNewProject detaches from the active project and starts a new one,
// returning its id.
func (s *Store) CreateNewProject() string {
	return s.switchToFresh("created project", true)
}

func (s *Store) switchToFresh(summary string, flush bool) string {
	if flush {
		s.flushPending()
	} else {
		s.saver.Cancel()
	}

	s.mu.Lock()
	s.active = s.freshProject()
	s.dirty = false
	id := s.active.ID
	s.mu.Unlock()

	s.metrics.ObserveMutation("create_project")
	s.metrics.SetActiveItems(0)
	s.record(context.Background(), id, nil, activity.TypeProjectCreated, summary, nil)
	return id
}

// LoadProject replaces the active project with the persisted record for id
// and makes it the current project. On failure the active project is left
// untouched and the error wraps ErrProjectNotFound or ErrMalformedProject.
func (s *Store) LoadProject(ctx context.Context, id string) error {
	// Commit the outgoing project first so reloading it reads its latest state.
	s.flushPending()

	data, err := s.kv.Get(ctx, ProjectKey(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return fmt.Errorf("reading project %s: %w", id, err)
	}

	loaded, err := decodeProject(data, s.Catalog())
	if err != nil {
		return err
	}
	if loaded.ID == "" {
		loaded.ID = id
	}

	s.mu.Lock()
	s.active = loaded
	s.dirty = false
	items := len(loaded.Items)
	s.mu.Unlock()

	s.persistMu.Lock()
	err = s.setJSON(ctx, KeyCurrentProject, loaded.ID)
	s.persistMu.Unlock()
	if err != nil {
		s.logger.Warn("recording current project", "project_id", loaded.ID, "error", err)
	}

	s.metrics.ObserveMutation("load_project")
	s.metrics.SetActiveItems(items)
	s.record(ctx, loaded.ID, nil, activity.TypeProjectLoaded, fmt.Sprintf("loaded %s", loaded.Name), nil)
	return nil
}

// DeleteProject removes the persisted record for id and its index entry.
// Deleting the active project discards its pending write and switches to a
// new project, so the store never points at a deleted id.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if id == s.ActiveID() {
		s.switchToFresh("created project after delete", false)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if err := s.kv.Delete(ctx, ProjectKey(id)); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	entries, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	if err := s.setJSON(ctx, KeyIndex, removeEntry(entries, id)); err != nil {
		return fmt.Errorf("writing projects index: %w", err)
	}

	s.metrics.ObserveMutation("delete_project")
	s.record(ctx, id, nil, activity.TypeProjectDeleted, "deleted project", nil)
	return nil
}

// SavedProjects lists the saved-projects index.
func (s *Store) SavedProjects(ctx context.Context) ([]IndexEntry, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.readIndex(ctx)
}

// ReplaceCatalog validates defs, persists them as the catalog override and
// swaps them in. Existing item snapshots are not repriced; totals are.
func (s *Store) ReplaceCatalog(ctx context.Context, defs []catalog.EquipmentType) (*catalog.Catalog, error) {
	cat, err := catalog.New(defs)
	if err != nil {
		return nil, err
	}

	s.persistMu.Lock()
	err = s.setJSON(ctx, KeyCatalogOverride, cat.Definitions())
	s.persistMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("writing catalog override: %w", err)
	}

	s.mu.Lock()
	s.catalog = cat
	projectID := s.active.ID
	s.mu.Unlock()

	s.metrics.ObserveMutation("replace_catalog")
	s.record(ctx, projectID, nil, activity.TypeCatalogUpdated, "replaced catalog", map[string]int{"types": cat.Len()})
	return cat, nil
}

// Pending reports whether a debounced write is waiting.
func (s *Store) Pending() bool {
	return s.saver.Pending()
}

// Flush writes the active project now if it has unsaved changes, including
// changes left over from a failed write. It waits for a write already in
// flight.
func (s *Store) Flush(ctx context.Context) error {
	s.saver.Cancel()
	return s.persist(ctx)
}

// Close stops scheduling further writes and then flushes.
func (s *Store) Close(ctx context.Context) error {
	s.saver.Stop()
	return s.persist(ctx)
}

func (s *Store) flushPending() {
	s.saver.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persist(ctx); err != nil {
		s.logger.Error("flush project", "error", err)
	}
}

func (s *Store) scheduleSave() {
	s.saver.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.persist(ctx); err != nil {
			s.logger.Error("save project", "error", err)
		}
	})
}

// persist writes the active project as it is now, then updates the index
// entry and the current-project pointer.
func (s *Store) persist(ctx context.Context) (err error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.active.Clone()
	s.dirty = false
	s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.metrics.ObservePersist(time.Since(start), err)
		if err != nil {
			s.mu.Lock()
			if s.active.ID == snapshot.ID {
				s.dirty = true
			}
			s.mu.Unlock()
		}
	}()

	data, err := encodeProject(snapshot)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := s.kv.Set(ctx, ProjectKey(snapshot.ID), data); err != nil {
		return fmt.Errorf("writing project %s: %w", snapshot.ID, err)
	}

	entries, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	entries = upsertEntry(entries, IndexEntry{ID: snapshot.ID, Name: snapshot.Name, LastModified: s.now()})
	if err := s.setJSON(ctx, KeyIndex, entries); err != nil {
		return fmt.Errorf("writing projects index: %w", err)
	}
	if err := s.setJSON(ctx, KeyCurrentProject, snapshot.ID); err != nil {
		return fmt.Errorf("writing current project id: %w", err)
	}

	s.logger.Debug("project saved", "project_id", snapshot.ID, "items", len(snapshot.Items))
	s.record(ctx, snapshot.ID, nil, activity.TypeProjectSaved, "saved project", nil)
	return nil
}

// reconcileIndex drops index entries whose record is gone and adds records
// the index lost, e.g. after a write interrupted between the two keys.
func (s *Store) reconcileIndex(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	keys, err := s.kv.Keys(ctx, projectKeyPrefix)
	if err != nil {
		return fmt.Errorf("listing project keys: %w", err)
	}
	stored := make(map[string]bool, len(keys))
	for _, key := range keys {
		if id, ok := projectIDFromKey(key); ok {
			stored[id] = true
		}
	}

	entries, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	changed := false
	known := make(map[string]bool, len(entries))
	kept := entries[:0]
	for _, e := range entries {
		if !stored[e.ID] {
			changed = true
			continue
		}
		known[e.ID] = true
		kept = append(kept, e)
	}
	for _, key := range keys {
		id, ok := projectIDFromKey(key)
		if !ok || known[id] {
			continue
		}
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		p, err := decodeProject(data, nil)
		if err != nil {
			continue
		}
		kept = append(kept, IndexEntry{ID: id, Name: p.Name, LastModified: p.LastModified})
		changed = true
	}
	if !changed {
		return nil
	}
	return s.setJSON(ctx, KeyIndex, kept)
}

// readIndex must be called with persistMu held.
func (s *Store) readIndex(ctx context.Context) ([]IndexEntry, error) {
	data, err := s.kv.Get(ctx, KeyIndex)
	if errors.Is(err, repository.ErrNotFound) {
		return []IndexEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading projects index: %w", err)
	}
	entries, err := decodeIndex(data)
	if err != nil {
		s.logger.Warn("resetting malformed projects index", "error", err)
		return []IndexEntry{}, nil
	}
	return entries, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, data)
}

func (s *Store) afterMutation(op string) {
	s.metrics.ObserveMutation(op)
	s.mu.RLock()
	n := len(s.active.Items)
	s.mu.RUnlock()
	s.metrics.SetActiveItems(n)
	s.scheduleSave()
}

func (s *Store) record(ctx context.Context, projectID string, itemID *string, typ activity.ActivityType, summary string, details any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, projectID, itemID, typ, summary, details)
}

func (s *Store) freshProject() Project {
	return Project{
		ID:           s.newID(),
		Name:         DefaultName,
		Items:        []estimate.LineItem{},
		LastModified: s.now(),
	}
}

func (s *Store) touchLocked() {
	s.active.LastModified = s.now()
	s.dirty = true
}

func (s *Store) indexLocked(id string) int {
	for i, item := range s.active.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// defaultControlsLocked fills the control kinds item leaves unset.
func (s *Store) defaultControlsLocked(item estimate.LineItem) catalog.Controls {
	return estimate.EffectiveControls(item, s.catalog, s.active.Settings.ControlCounts)
}
