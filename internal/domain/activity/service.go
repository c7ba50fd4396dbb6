package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// DefaultLimit caps GetRecentActivity when no limit is given.
const DefaultLimit = 50

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Record builds and logs an entry. Details, when non-nil, are stored as JSON.
// Failures are logged rather than returned; the journal never blocks the
// operation it describes.
func (s *Service) Record(ctx context.Context, projectID string, itemID *string, typ ActivityType, summary string, details any) {
	entry := &ActivityEntry{
		ProjectID:    projectID,
		ItemID:       itemID,
		ActivityType: typ,
		Summary:      summary,
	}
	if details != nil {
		data, err := json.Marshal(details)
		if err == nil {
			entry.Details = string(data)
		}
	}
	if err := s.LogActivity(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("activity log failed", "type", typ, "project_id", projectID, "error", err)
	}
}

// GetRecentActivity lists activity entries with filtering, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
