package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/models"
)

func TestStudentRepositoryListScopesToTeacher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	courses := NewCourseRepository(db)
	ctx := context.Background()

	course := seedCourse(t, db, 1, "Physics")
	zoya := seedStudent(t, db, "Zoya", floatPtr(90), floatPtr(8))
	seedStudent(t, db, "Arjun", floatPtr(60), floatPtr(4))
	_, err := courses.Enroll(ctx, course.ID, zoya.ID)
	require.NoError(t, err)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Arjun", all[0].Name)

	teacherID := uint(1)
	scoped, err := repo.List(ctx, &teacherID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, zoya.ID, scoped[0].ID)
}

func TestStudentRepositoryUpdateMetricsIsPartial(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()
	student := seedStudent(t, db, "Kiran", floatPtr(80), floatPtr(7.5))

	updated, err := repo.UpdateMetrics(ctx, student.ID, models.AcademicMetrics{AttendancePercent: floatPtr(65)})
	require.NoError(t, err)
	require.InDelta(t, 65, *updated.AttendancePercent, 1e-9)
	require.InDelta(t, 7.5, *updated.CGPA, 1e-9)

	_, err = repo.UpdateMetrics(ctx, 4242, models.AcademicMetrics{CGPA: floatPtr(3)})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
