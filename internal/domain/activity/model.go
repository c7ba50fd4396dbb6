package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeItemAdded       ActivityType = "item_added"
	TypeItemUpdated     ActivityType = "item_updated"
	TypeItemRemoved     ActivityType = "item_removed"
	TypeProjectRenamed  ActivityType = "project_renamed"
	TypeProjectCreated  ActivityType = "project_created"
	TypeProjectLoaded   ActivityType = "project_loaded"
	TypeProjectDeleted  ActivityType = "project_deleted"
	TypeProjectSaved    ActivityType = "project_saved"
	TypeCatalogUpdated  ActivityType = "catalog_updated"
	TypeSettingsUpdated ActivityType = "settings_updated"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id"`
	ItemID       *string      `json:"item_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
