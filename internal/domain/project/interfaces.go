package project

import (
	"context"
	"time"

	"github.com/rpggio/hvacquote/internal/domain/activity"
)

// KeyValueStore is the durable store projects are persisted to.
// Get returns repository.ErrNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ActivityRecorder journals store events. Implementations must not block on
// failure.
type ActivityRecorder interface {
	Record(ctx context.Context, projectID string, itemID *string, typ activity.ActivityType, summary string, details any)
}

// Metrics receives store instrumentation.
type Metrics interface {
	ObserveMutation(op string)
	ObservePersist(d time.Duration, err error)
	SetActiveItems(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveMutation(string)               {}
func (noopMetrics) ObservePersist(time.Duration, error) {}
func (noopMetrics) SetActiveItems(int)                  {}
