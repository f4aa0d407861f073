package service

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/repository"
)

type testEnv struct {
	db    *gorm.DB
	mini  *miniredis.Miniredis
	redis *redis.Client

	courseRepo  repository.CourseRepository
	studentRepo repository.StudentRepository

	activity      ActivityService
	settings      SettingsService
	stats         StatsService
	notifications NotificationService
	doubts        DoubtService
	courses       CourseService
	roster        RosterService
}

func newTestEnv(t *testing.T) *testEnv {
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

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	doubtRepo := repository.NewDoubtRepository(db)

	env := &testEnv{db: db, mini: mini, redis: redisClient, courseRepo: courseRepo, studentRepo: studentRepo}
	env.activity = NewActivityService(repository.NewActivityLogRepository(db), logger)
	env.settings = NewSettingsService(repository.NewSettingsRepository(db, models.DefaultRiskSettings()), redisClient, 0, validate, env.activity, logger)
	env.stats = NewStatsService(courseRepo, doubtRepo, redisClient, 0, logger)
	env.notifications = NewNotificationService(
		repository.NewNotificationRepository(db),
		studentRepo,
		env.settings,
		env.activity,
		NotificationPublisher{Redis: redisClient, ChannelBase: "manan"},
		validate,
		logger,
	)
	env.doubts = NewDoubtService(doubtRepo, courseRepo, env.stats, env.notifications, env.activity, validate, logger)
	env.courses = NewCourseService(courseRepo, studentRepo, env.stats, env.activity, validate, logger)
	env.roster = NewRosterService(studentRepo, courseRepo, env.settings, validate, logger)
	return env
}

func (e *testEnv) seedCourse(t *testing.T, teacherID uint, title string) models.Course {
	t.Helper()
	course := models.Course{Title: title, TeacherID: teacherID}
	require.NoError(t, e.db.Create(&course).Error)
	return course
}

func (e *testEnv) seedStudent(t *testing.T, name string, attendance, cgpa *float64) models.Student {
	t.Helper()
	student := models.Student{Name: name, Email: uuid.NewString() + "@example.com", AttendancePercent: attendance, CGPA: cgpa}
	require.NoError(t, e.db.Create(&student).Error)
	return student
}

func (e *testEnv) enroll(t *testing.T, courseID, studentID uint) {
	t.Helper()
	_, err := e.courseRepo.Enroll(context.Background(), courseID, studentID)
	require.NoError(t, err)
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var total int64
	require.NoError(t, e.db.Model(model).Count(&total).Error)
	return total
}

func teacher(id uint) ActivityActor { return ActivityActor{ID: id, Role: RoleTeacher} }

func student(id uint) ActivityActor { return ActivityActor{ID: id, Role: RoleStudent} }

func admin(id uint) ActivityActor { return ActivityActor{ID: id, Role: RoleAdmin} }

func floatPointer(v float64) *float64 { return &v }
