package project

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
)

// Storage keys.
const (
	KeyIndex           = "projects-index"
	KeyCurrentProject  = "current-project-id"
	KeyLegacySession   = "legacy-session"
	KeyCatalogOverride = "catalog-override"
	projectKeyPrefix   = "project:"
)

// ProjectKey returns the storage key of a project record.
func ProjectKey(id string) string {
	return projectKeyPrefix + id
}

func projectIDFromKey(key string) (string, bool) {
	return strings.CutPrefix(key, projectKeyPrefix)
}

type projectRecord struct {
	ProjectID    string       `json:"projectId"`
	ProjectName  string       `json:"projectName"`
	Items        []itemRecord `json:"items"`
	Settings     Settings     `json:"settings"`
	LastModified time.Time    `json:"lastModified"`
}

type itemRecord struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	Name         string               `json:"name"`
	Quantity     int                  `json:"quantity"`
	PricingModel catalog.PricingModel `json:"pricingModel,omitempty"`
	SpecValues   pricing.Values       `json:"specValues"`
	Controls     catalog.Controls     `json:"controls,omitempty"`
	UnitPrice    float64              `json:"unitPrice"`
}

// Decoding is looser than encoding: older records used equipmentList/specs,
// a calculatedPrice snapshot, and could hold numbers as strings.
type projectInput struct {
	ProjectID     string      `json:"projectId"`
	ProjectName   *string     `json:"projectName"`
	Items         []itemInput `json:"items"`
	EquipmentList []itemInput `json:"equipmentList"`
	Settings      *settingsIn `json:"settings"`
	LastModified  time.Time   `json:"lastModified"`
}

type itemInput struct {
	ID              string               `json:"id"`
	Type            string               `json:"type"`
	Name            string               `json:"name"`
	Quantity        any                  `json:"quantity"`
	PricingModel    catalog.PricingModel `json:"pricingModel"`
	SpecValues      map[string]any       `json:"specValues"`
	Specs           map[string]any       `json:"specs"`
	Controls        map[string]any       `json:"controls"`
	UnitPrice       any                  `json:"unitPrice"`
	CalculatedPrice any                  `json:"calculatedPrice"`
}

type settingsIn struct {
	PriceAdjustments map[string]any            `json:"priceAdjustments"`
	ControlCounts    map[string]map[string]any `json:"controlCounts"`
	LastModified     time.Time                 `json:"lastModified"`
}

func encodeProject(p Project) ([]byte, error) {
	rec := projectRecord{
		ProjectID:    p.ID,
		ProjectName:  p.Name,
		Items:        make([]itemRecord, 0, len(p.Items)),
		Settings:     p.Settings,
		LastModified: p.LastModified,
	}
	for _, item := range p.Items {
		r := itemRecord{
			ID:         item.ID,
			Type:       item.Type,
			Name:       item.Name,
			Quantity:   item.Quantity,
			SpecValues: pricing.ValuesOf(item.Spec),
			Controls:   item.Controls,
			UnitPrice:  item.UnitPrice,
		}
		if item.Spec != nil {
			r.PricingModel = item.Spec.Model()
		}
		rec.Items = append(rec.Items, r)
	}
	return json.Marshal(rec)
}

// decodeProject parses a project record. Items without a stored pricing
// model take it from the catalog, falling back to whichever sizing value is
// present.
func decodeProject(data []byte, lookup estimate.Lookup) (Project, error) {
	var in projectInput
	if err := json.Unmarshal(data, &in); err != nil {
		return Project{}, fmt.Errorf("%w: %v", ErrMalformedProject, err)
	}

	p := Project{
		ID:           in.ProjectID,
		Name:         DefaultName,
		LastModified: in.LastModified,
	}
	if in.ProjectName != nil {
		p.Name = *in.ProjectName
	}
	if in.Settings != nil {
		p.Settings = in.Settings.settings()
	}

	items := in.Items
	if items == nil {
		items = in.EquipmentList
	}
	p.Items = make([]estimate.LineItem, 0, len(items))
	for _, raw := range items {
		p.Items = append(p.Items, raw.lineItem(lookup))
	}
	return p, nil
}

func (in itemInput) lineItem(lookup estimate.Lookup) estimate.LineItem {
	specMap := in.SpecValues
	if specMap == nil {
		specMap = in.Specs
	}
	values := pricing.ValuesFromMap(specMap)

	model := in.PricingModel
	if !model.Valid() && lookup != nil {
		if def, ok := lookup.Lookup(in.Type); ok {
			model = def.PricingModel
		}
	}
	var spec pricing.Spec
	if model.Valid() {
		spec = values.SpecFor(model)
	} else {
		spec = values.Spec()
	}

	price := in.UnitPrice
	if price == nil {
		price = in.CalculatedPrice
	}

	qty := 1
	if in.Quantity != nil {
		qty = pricing.NormalizeQuantity(pricing.CoerceCount(in.Quantity))
	}

	return estimate.LineItem{
		ID:        in.ID,
		Type:      in.Type,
		Name:      in.Name,
		Quantity:  qty,
		Spec:      spec,
		Controls:  pricing.ControlsFromMap(in.Controls),
		UnitPrice: pricing.Coerce(price),
	}
}

func (in settingsIn) settings() Settings {
	s := Settings{LastModified: in.LastModified}
	if in.PriceAdjustments != nil {
		s.PriceAdjustments = make(map[string]float64, len(in.PriceAdjustments))
		for typ, v := range in.PriceAdjustments {
			s.PriceAdjustments[typ] = pricing.Coerce(v)
		}
	}
	if in.ControlCounts != nil {
		s.ControlCounts = make(map[string]catalog.Controls, len(in.ControlCounts))
		for typ, counts := range in.ControlCounts {
			s.ControlCounts[typ] = pricing.ControlsFromMap(counts)
		}
	}
	return s
}

func decodeIndex(data []byte) ([]IndexEntry, error) {
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode projects index: %w", err)
	}
	return entries, nil
}

// decodeID accepts a JSON string or a bare id.
func decodeID(data []byte) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	return strings.TrimSpace(string(data))
}

func upsertEntry(entries []IndexEntry, entry IndexEntry) []IndexEntry {
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

func removeEntry(entries []IndexEntry, id string) []IndexEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
