package project

import (
	"time"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
)

// DefaultName is the placeholder name of a freshly created project.
const DefaultName = "Unnamed Project"

// Project is the unit of work a user edits, saves and reloads.
type Project struct {
	ID           string
	Name         string
	Items        []estimate.LineItem
	Settings     Settings
	LastModified time.Time
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	out := p
	out.Settings = p.Settings.Clone()
	if p.Items != nil {
		out.Items = make([]estimate.LineItem, len(p.Items))
		for i, item := range p.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Settings are per-project adjustments layered over the catalog.
type Settings struct {
	// PriceAdjustments multiplies the price of every item of a type in the
	// quoted total.
	PriceAdjustments map[string]float64 `json:"priceAdjustments"`
	// ControlCounts overrides catalog default control counts per type.
	ControlCounts map[string]catalog.Controls `json:"controlCounts"`
	LastModified  time.Time                   `json:"lastModified"`
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := Settings{LastModified: s.LastModified}
	if s.PriceAdjustments != nil {
		out.PriceAdjustments = make(map[string]float64, len(s.PriceAdjustments))
		for k, v := range s.PriceAdjustments {
			out.PriceAdjustments[k] = v
		}
	}
	if s.ControlCounts != nil {
		out.ControlCounts = make(map[string]catalog.Controls, len(s.ControlCounts))
		for k, v := range s.ControlCounts {
			out.ControlCounts[k] = v.Clone()
		}
	}
	return out
}

// SettingsUpdate replaces the settings fields that are non-nil.
type SettingsUpdate struct {
	PriceAdjustments map[string]float64
	ControlCounts    map[string]catalog.Controls
}

// IndexEntry is one row of the saved-projects index.
type IndexEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastModified time.Time `json:"lastModified"`
}
