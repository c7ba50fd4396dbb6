package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	entry := &activity.ActivityEntry{
		ProjectID:    "proj1",
		ActivityType: activity.TypeItemAdded,
		Summary:      "added Rooftop Unit",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListActivityOptions{ProjectID: "proj1", Limit: activity.DefaultLimit}).Return([]activity.ActivityEntry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.GetRecentActivity(ctx, activity.ListActivityOptions{ProjectID: "proj1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_LogValidation(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.LogActivity(context.Background(), nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(context.Background(), &activity.ActivityEntry{}), activity.ErrInvalidInput)
}

func TestActivityService_RecordSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeProjectRenamed && e.Details == `{"name":"Lobby"}`
	})).Return(errors.New("disk full"))

	svc := activity.NewService(repo, nil)
	svc.Record(ctx, "proj1", nil, activity.TypeProjectRenamed, "renamed", map[string]string{"name": "Lobby"})
	repo.AssertExpectations(t)
}
