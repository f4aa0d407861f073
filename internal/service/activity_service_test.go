package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manan-api/internal/dto"
)

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	env := newTestEnv(t)

	entry, err := env.activity.Record(context.Background(), ActivityEntry{
		ActorID:    3,
		ActorRole:  " Teacher ",
		Action:     "Doubt.Resolved",
		EntityType: "Doubt",
		Metadata:   map[string]interface{}{"student_email": "a@b.c", "course_id": 4},
	})
	require.NoError(t, err)
	require.Equal(t, "teacher", entry.ActorRole)
	require.Equal(t, "doubt.resolved", entry.Action)
	require.Equal(t, "***", entry.Metadata["student_email"])

	_, err = env.activity.Record(context.Background(), ActivityEntry{ActorID: 3, EntityType: "doubt"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestActivityServiceListPaginates(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		_, err := env.activity.Record(context.Background(), ActivityEntry{ActorID: 1, ActorRole: "admin", Action: "settings.updated", EntityType: "settings"})
		require.NoError(t, err)
	}

	page, err := env.activity.List(context.Background(), admin(1), dto.ActivityListRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(3), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)
}

func TestActivityServiceListRejectsInvertedWindow(t *testing.T) {
	env := newTestEnv(t)

	since := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	until := since.Add(-time.Hour)
	_, err := env.activity.List(context.Background(), admin(1), dto.ActivityListRequest{Since: &since, Until: &until})
	require.ErrorIs(t, err, ErrValidation)

	until = since.Add(time.Hour)
	resp, err := env.activity.List(context.Background(), admin(1), dto.ActivityListRequest{Since: &since, Until: &until})
	require.NoError(t, err)
	require.Empty(t, resp.Items)
	require.Equal(t, 1, resp.Pagination.Page)
}

func TestActivityServiceListIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.activity.Record(context.Background(), ActivityEntry{ActorID: 1, ActorRole: "admin", Action: "settings.updated", EntityType: "settings"})
	require.NoError(t, err)

	for _, role := range []string{RoleStudent, RoleTeacher, ""} {
		_, err := env.activity.List(context.Background(), ActivityActor{ID: 9, Role: role}, dto.ActivityListRequest{})
		require.ErrorIs(t, err, ErrForbidden, role)
	}
}
