package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manan-api/internal/models"
)

func TestSettingsRepositoryDefaultsThenUpserts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db, models.DefaultRiskSettings())
	ctx := context.Background()

	current, err := repo.Get(ctx)
	require.NoError(t, err)
	require.InDelta(t, models.DefaultAttendanceThreshold, current.AttendanceThreshold, 1e-9)
	require.InDelta(t, models.DefaultCGPAThreshold, current.CGPAThreshold, 1e-9)

	admin := uint(2)
	require.NoError(t, repo.Save(ctx, &models.RiskSettings{AttendanceThreshold: 80, CGPAThreshold: 6, MaintenanceMode: true, UpdatedBy: &admin}))
	require.NoError(t, repo.Save(ctx, &models.RiskSettings{AttendanceThreshold: 70, CGPAThreshold: 5.5, UpdatedBy: &admin}))

	current, err = repo.Get(ctx)
	require.NoError(t, err)
	require.InDelta(t, 70, current.AttendanceThreshold, 1e-9)
	require.InDelta(t, 5.5, current.CGPAThreshold, 1e-9)
	require.False(t, current.MaintenanceMode)

	var rows int64
	require.NoError(t, db.Model(&models.RiskSettings{}).Count(&rows).Error)
	require.Equal(t, int64(1), rows)
}
