package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/service"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

// newApp mounts routes behind a middleware that plays the part of the JWT layer.
func newApp(userID uint, role string, mount func(router fiber.Router)) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1", func(c *fiber.Ctx) error {
		if userID > 0 {
			c.Locals("user_id", userID)
		}
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	mount(group)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

type stubDoubtService struct {
	submitted   dto.DoubtCreateRequest
	actor       service.ActivityActor
	courseID    *uint
	teacherID   uint
	resolvedID  uint
	resolveBody dto.DoubtResolveRequest
	response    dto.DoubtResponse
	list        []dto.DoubtResponse
	err         error
}

func (s *stubDoubtService) Submit(_ context.Context, actor service.ActivityActor, payload dto.DoubtCreateRequest) (dto.DoubtResponse, error) {
	s.actor = actor
	s.submitted = payload
	return s.response, s.err
}

func (s *stubDoubtService) ListByStudent(_ context.Context, studentID uint, courseID *uint) ([]dto.DoubtResponse, error) {
	s.actor = service.ActivityActor{ID: studentID}
	s.courseID = courseID
	return s.list, s.err
}

func (s *stubDoubtService) ListOpenByTeacher(_ context.Context, teacherID uint) ([]dto.DoubtResponse, error) {
	s.teacherID = teacherID
	return s.list, s.err
}

func (s *stubDoubtService) Resolve(_ context.Context, actor service.ActivityActor, doubtID uint, payload dto.DoubtResolveRequest) (dto.DoubtResponse, error) {
	s.actor = actor
	s.resolvedID = doubtID
	s.resolveBody = payload
	return s.response, s.err
}

func (s *stubDoubtService) Answer(_ context.Context, actor service.ActivityActor, doubtID uint, _ dto.DoubtAnswerRequest) (dto.DoubtResponse, error) {
	s.actor = actor
	s.resolvedID = doubtID
	return s.response, s.err
}

type stubNotificationService struct {
	actor     service.ActivityActor
	sent      dto.NotificationSendRequest
	batch     dto.BatchNotifyRequest
	response  dto.SendNotificationResponse
	batchResp dto.BatchNotifyResponse
	feed      []dto.NotificationResponse
	limit     int
	offset    int
	err       error
}

func (s *stubNotificationService) NotifyDoubtSubmitted(context.Context, models.Doubt, models.Course) error {
	return nil
}

func (s *stubNotificationService) Send(_ context.Context, _ service.ActivityActor, payload dto.NotificationSendRequest) (dto.SendNotificationResponse, error) {
	s.sent = payload
	return s.response, s.err
}

func (s *stubNotificationService) BatchNotifyAtRisk(_ context.Context, _ service.ActivityActor, payload dto.BatchNotifyRequest) (dto.BatchNotifyResponse, error) {
	s.batch = payload
	return s.batchResp, s.err
}

func (s *stubNotificationService) History(_ context.Context, _ service.ActivityActor, page, pageSize int) (dto.NotificationListResponse, error) {
	return dto.NotificationListResponse{Pagination: dto.PaginationMeta{Page: page, PageSize: pageSize}}, s.err
}

func (s *stubNotificationService) Inbox(_ context.Context, actor service.ActivityActor, limit, offset int) ([]dto.NotificationResponse, error) {
	s.actor = actor
	s.limit = limit
	s.offset = offset
	return s.feed, s.err
}

func (s *stubNotificationService) Feed(_ context.Context, _ uint, limit, offset int) ([]dto.NotificationResponse, error) {
	s.limit = limit
	s.offset = offset
	return s.feed, s.err
}

type stubStatsService struct {
	teacherID uint
	response  dto.FacultyStatsResponse
	err       error
}

func (s *stubStatsService) Recompute(ctx context.Context, teacherID uint) (dto.FacultyStatsResponse, error) {
	return s.Get(ctx, teacherID)
}

func (s *stubStatsService) Get(_ context.Context, teacherID uint) (dto.FacultyStatsResponse, error) {
	s.teacherID = teacherID
	response := s.response
	response.TeacherID = teacherID
	return response, s.err
}

type stubRosterService struct {
	actor    service.ActivityActor
	metrics  dto.StudentMetricsUpdateRequest
	roster   dto.RosterResponse
	response dto.ClassifiedStudentResponse
	err      error
}

func (s *stubRosterService) ListClassified(_ context.Context, actor service.ActivityActor) (dto.RosterResponse, error) {
	s.actor = actor
	return s.roster, s.err
}

func (s *stubRosterService) GetClassified(_ context.Context, actor service.ActivityActor, studentID uint) (dto.ClassifiedStudentResponse, error) {
	s.actor = actor
	response := s.response
	response.ID = studentID
	return response, s.err
}

func (s *stubRosterService) UpdateOwnMetrics(_ context.Context, actor service.ActivityActor, payload dto.StudentMetricsUpdateRequest) (dto.ClassifiedStudentResponse, error) {
	s.actor = actor
	s.metrics = payload
	return s.response, s.err
}

type stubCourseService struct {
	teacherID *uint
	enrolled  dto.EnrollmentResponse
	deletedID uint
	err       error
}

func (s *stubCourseService) Create(_ context.Context, actor service.ActivityActor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	return dto.CourseResponse{ID: 1, Title: payload.Title, TeacherID: actor.ID}, s.err
}

func (s *stubCourseService) Delete(_ context.Context, _ service.ActivityActor, courseID uint) error {
	s.deletedID = courseID
	return s.err
}

func (s *stubCourseService) List(_ context.Context, teacherID *uint) ([]dto.CourseResponse, error) {
	s.teacherID = teacherID
	return []dto.CourseResponse{}, s.err
}

func (s *stubCourseService) Enroll(_ context.Context, actor service.ActivityActor, courseID uint) (dto.EnrollmentResponse, error) {
	response := s.enrolled
	response.CourseID = courseID
	response.StudentID = actor.ID
	return response, s.err
}

type stubSettingsService struct {
	saved  dto.RiskSettingsRequest
	status dto.PlatformStatusResponse
	err    error
}

func (s *stubSettingsService) Get(context.Context) (models.RiskSettings, error) {
	return models.DefaultRiskSettings(), s.err
}

func (s *stubSettingsService) Current(context.Context) (dto.RiskSettingsResponse, error) {
	return dto.RiskSettingsResponse{AttendanceThreshold: 75, CGPAThreshold: 5}, s.err
}

func (s *stubSettingsService) Save(_ context.Context, _ service.ActivityActor, payload dto.RiskSettingsRequest) (dto.RiskSettingsResponse, error) {
	s.saved = payload
	if s.err != nil {
		return dto.RiskSettingsResponse{}, s.err
	}
	return dto.RiskSettingsResponse{
		AttendanceThreshold: *payload.AttendanceThreshold,
		CGPAThreshold:       *payload.CGPAThreshold,
		MaintenanceMode:     payload.MaintenanceMode,
		ExamMode:            payload.ExamMode,
	}, nil
}

func (s *stubSettingsService) PlatformStatus(context.Context) (dto.PlatformStatusResponse, error) {
	return s.status, s.err
}

type stubActivityService struct {
	actor   service.ActivityActor
	request dto.ActivityListRequest
}

func (s *stubActivityService) Record(context.Context, service.ActivityEntry) (dto.ActivityResponse, error) {
	return dto.ActivityResponse{}, nil
}

func (s *stubActivityService) List(_ context.Context, actor service.ActivityActor, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	s.actor = actor
	s.request = req
	return dto.ActivityListResponse{Items: []dto.ActivityResponse{}, Pagination: dto.PaginationMeta{Page: req.Page}}, nil
}
