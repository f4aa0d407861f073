package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Enrollment{},
		&models.Doubt{},
		&models.Notification{},
		&models.NotificationRecipient{},
		&models.RiskSettings{},
		&models.ActivityLog{},
	))
	return db
}

func floatPtr(v float64) *float64 { return &v }

func seedCourse(t *testing.T, db *gorm.DB, teacherID uint, title string) models.Course {
	t.Helper()
	course := models.Course{Title: title, TeacherID: teacherID}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func seedStudent(t *testing.T, db *gorm.DB, name string, attendance, cgpa *float64) models.Student {
	t.Helper()
	student := models.Student{
		Name:              name,
		Email:             uuid.NewString() + "@example.com",
		AttendancePercent: attendance,
		CGPA:              cgpa,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}
