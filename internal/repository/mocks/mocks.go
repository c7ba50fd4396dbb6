package mocks

import (
	"context"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/stretchr/testify/mock"
)

// KeyValueStore is a mock for repository.KeyValueStore.
type KeyValueStore struct {
	mock.Mock
}

func (m *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KeyValueStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *KeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
