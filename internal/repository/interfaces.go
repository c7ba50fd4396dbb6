package repository

import (
	"context"

	"github.com/rpggio/hvacquote/internal/domain/activity"
)

// KeyValueStore persists JSON documents under string keys. Get returns
// ErrNotFound for a missing key; Delete of a missing key also returns
// ErrNotFound.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
