package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/observability"
	"github.com/noah-isme/manan-api/internal/repository"
)

const doubtAlertQuestionPreview = 80

// NotificationService persists faculty notifications and hands them off to
// delivery consumers.
type NotificationService interface {
	DoubtAlertNotifier
	Send(ctx context.Context, actor ActivityActor, payload dto.NotificationSendRequest) (dto.SendNotificationResponse, error)
	BatchNotifyAtRisk(ctx context.Context, actor ActivityActor, payload dto.BatchNotifyRequest) (dto.BatchNotifyResponse, error)
	History(ctx context.Context, actor ActivityActor, page, pageSize int) (dto.NotificationListResponse, error)
	Feed(ctx context.Context, recipientID uint, limit, offset int) ([]dto.NotificationResponse, error)
	Inbox(ctx context.Context, actor ActivityActor, limit, offset int) ([]dto.NotificationResponse, error)
}

// NotificationPublisher wires the optional brokers used for delivery hand-off.
type NotificationPublisher struct {
	Redis       *redis.Client
	NATS        *nats.Conn
	ChannelBase string
}

type notificationService struct {
	repo         repository.NotificationRepository
	students     repository.StudentRepository
	settings     RiskSettingsProvider
	recorder     ActivityRecorder
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// dispatchEvent is the payload published to delivery consumers.
type dispatchEvent struct {
	DispatchID     string    `json:"dispatch_id"`
	NotificationID uint      `json:"notification_id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	Audience       string    `json:"audience"`
	Source         string    `json:"source"`
	SenderID       uint      `json:"sender_id"`
	RecipientIDs   []uint    `json:"recipient_ids"`
	SentAt         time.Time `json:"sent_at"`
}

// NewNotificationService constructs the notification dispatcher.
func NewNotificationService(
	repo repository.NotificationRepository,
	students repository.StudentRepository,
	settings RiskSettingsProvider,
	recorder ActivityRecorder,
	publisher NotificationPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) NotificationService {
	channel := ""
	subject := ""
	if base := strings.TrimSpace(publisher.ChannelBase); base != "" {
		channel = base + ":notifications:dispatch"
		subject = strings.ReplaceAll(base, ":", ".") + ".notifications.dispatch"
	}

	return &notificationService{
		repo:         repo,
		students:     students,
		settings:     settings,
		recorder:     recorder,
		redis:        publisher.Redis,
		redisChannel: channel,
		nats:         publisher.NATS,
		natsSubject:  subject,
		validator:    validate,
		logger:       logger.With().Str("component", "notification_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/manan-api/internal/service/notification"),
		now:          time.Now,
	}
}

func (s *notificationService) Send(ctx context.Context, actor ActivityActor, payload dto.NotificationSendRequest) (dto.SendNotificationResponse, error) {
	if !actor.IsFaculty() {
		return dto.SendNotificationResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SendNotificationResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	title, notificationType, err := s.normalizeContent(payload.Title, payload.Type)
	if err != nil {
		return dto.SendNotificationResponse{}, err
	}

	recipients := dedupeIDs(payload.RecipientIDs)
	audience := models.NotificationAudience(strings.ToLower(strings.TrimSpace(payload.Audience)))
	if audience == "" {
		audience = models.NotificationAudienceBroadcast
		if len(recipients) > 0 {
			audience = models.NotificationAudienceTargeted
		}
	}
	switch {
	case audience == models.NotificationAudienceTargeted && len(recipients) == 0:
		return dto.SendNotificationResponse{}, fmt.Errorf("%w: targeted notification needs recipients", ErrValidation)
	case audience == models.NotificationAudienceBroadcast && len(recipients) > 0:
		return dto.SendNotificationResponse{}, fmt.Errorf("%w: broadcast notification cannot list recipients", ErrValidation)
	}

	key := strings.TrimSpace(payload.IdempotencyKey)
	if existing, ok, err := s.findReplay(ctx, actor.ID, key, models.NotificationSourceManual); err != nil || ok {
		return dto.SendNotificationResponse{Notification: dto.NewNotificationResponse(existing), Replayed: ok}, err
	}

	model := models.Notification{
		Title:       title,
		Type:        notificationType,
		Audience:    audience,
		Source:      models.NotificationSourceManual,
		SenderID:    actor.ID,
		TargetCount: len(recipients),
		Recipients:  recipientRows(recipients),
	}
	if key != "" {
		model.IdempotencyKey = &key
	}

	stored, replayed, err := s.dispatch(ctx, model)
	if err != nil {
		return dto.SendNotificationResponse{}, err
	}
	if !replayed {
		audit(ctx, s.recorder, s.logger, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.ActionNotificationSent,
			EntityType: "notification",
			EntityID:   &stored.ID,
			Metadata: map[string]interface{}{
				"audience":     string(stored.Audience),
				"type":         string(stored.Type),
				"target_count": stored.TargetCount,
			},
		})
	}

	return dto.SendNotificationResponse{Notification: dto.NewNotificationResponse(stored), Replayed: replayed}, nil
}

// BatchNotifyAtRisk snapshots the thresholds and the actor's students, then
// targets every student whose tier needs attention. When nobody does, the
// whole directory is targeted and the record is flagged as a fallback.
func (s *notificationService) BatchNotifyAtRisk(ctx context.Context, actor ActivityActor, payload dto.BatchNotifyRequest) (dto.BatchNotifyResponse, error) {
	if !actor.IsFaculty() {
		return dto.BatchNotifyResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.BatchNotifyResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	title, notificationType, err := s.normalizeContent(payload.Title, payload.Type)
	if err != nil {
		return dto.BatchNotifyResponse{}, err
	}

	key := strings.TrimSpace(payload.IdempotencyKey)
	if existing, ok, err := s.findReplay(ctx, actor.ID, key, models.NotificationSourceBatchAtRisk); err != nil || ok {
		return batchResponse(existing, ok), err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.BatchNotifyResponse{}, err
	}

	students, err := s.students.List(ctx, teacherScope(actor))
	if err != nil {
		return dto.BatchNotifyResponse{}, err
	}
	if len(students) == 0 {
		return dto.BatchNotifyResponse{}, ErrNoRecipients
	}

	targets, fellBack := ResolveBatchTargets(students, settings)
	model := models.Notification{
		Title:       title,
		Type:        notificationType,
		Audience:    models.NotificationAudienceTargeted,
		Source:      models.NotificationSourceBatchAtRisk,
		SenderID:    actor.ID,
		TargetCount: len(targets),
		Fallback:    fellBack,
		Recipients:  recipientRows(targets),
	}
	if key != "" {
		model.IdempotencyKey = &key
	}

	stored, replayed, err := s.dispatch(ctx, model)
	if err != nil {
		return dto.BatchNotifyResponse{}, err
	}
	if !replayed {
		audit(ctx, s.recorder, s.logger, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.ActionNotificationBatchSent,
			EntityType: "notification",
			EntityID:   &stored.ID,
			Metadata: map[string]interface{}{
				"target_count":         stored.TargetCount,
				"fallback":             stored.Fallback,
				"attendance_threshold": settings.AttendanceThreshold,
				"cgpa_threshold":       settings.CGPAThreshold,
			},
		})
		s.logger.Info().
			Uint("sender_id", actor.ID).
			Int("target_count", stored.TargetCount).
			Bool("fallback", stored.Fallback).
			Msg("batch at-risk notification dispatched")
	}

	return batchResponse(stored, replayed), nil
}

func (s *notificationService) History(ctx context.Context, actor ActivityActor, page, pageSize int) (dto.NotificationListResponse, error) {
	if !actor.IsFaculty() {
		return dto.NotificationListResponse{}, ErrForbidden
	}

	page = maxInt(page, 1)
	pageSize = clampPageSize(pageSize)

	items, total, err := s.repo.ListBySender(ctx, actor.ID, page, pageSize)
	if err != nil {
		return dto.NotificationListResponse{}, err
	}

	return dto.NotificationListResponse{
		Items:      dto.NewNotificationResponseSlice(items),
		Pagination: paginationMeta(page, pageSize, total),
	}, nil
}

func (s *notificationService) Feed(ctx context.Context, recipientID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	if offset < 0 {
		offset = 0
	}
	items, err := s.repo.ListFeed(ctx, recipientID, clampPageSize(limit), offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(items), nil
}

// Inbox lists what was addressed to a faculty member, such as doubt alerts.
// Student broadcasts are left out.
func (s *notificationService) Inbox(ctx context.Context, actor ActivityActor, limit, offset int) ([]dto.NotificationResponse, error) {
	if !actor.IsFaculty() {
		return nil, ErrForbidden
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.repo.ListAddressed(ctx, actor.ID, clampPageSize(limit), offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(items), nil
}

func (s *notificationService) NotifyDoubtSubmitted(ctx context.Context, doubt models.Doubt, course models.Course) error {
	if course.TeacherID == 0 {
		return nil
	}

	doubtID := doubt.ID
	courseID := course.ID
	model := models.Notification{
		Title:       fmt.Sprintf("New doubt in %s: %s", course.Title, previewText(doubt.Question, doubtAlertQuestionPreview)),
		Type:        models.NotificationTypeInfo,
		Audience:    models.NotificationAudienceTargeted,
		Source:      models.NotificationSourceDoubtSubmitted,
		SenderID:    doubt.StudentID,
		TargetCount: 1,
		DoubtID:     &doubtID,
		CourseID:    &courseID,
		Recipients:  recipientRows([]uint{course.TeacherID}),
	}

	_, _, err := s.dispatch(ctx, model)
	return err
}

// dispatch persists the record and hands it to the brokers. A unique key
// collision means a concurrent request with the same key won; its record is
// returned as a replay.
func (s *notificationService) dispatch(ctx context.Context, model models.Notification) (models.Notification, bool, error) {
	spanCtx, span := s.tracer.Start(ctx, "notifications.dispatch", trace.WithAttributes(
		attribute.String("notification.source", string(model.Source)),
		attribute.String("notification.audience", string(model.Audience)),
		attribute.Int("notification.targets", model.TargetCount),
	))
	defer span.End()

	if err := s.repo.Create(spanCtx, &model); err != nil {
		if model.IdempotencyKey != nil {
			if existing, ok, lookupErr := s.findReplay(spanCtx, model.SenderID, *model.IdempotencyKey, model.Source); ok || lookupErr != nil {
				return existing, ok, lookupErr
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist notification")
		return models.Notification{}, false, err
	}

	observability.NotificationsDispatched().WithLabelValues(string(model.Source), string(model.Type)).Inc()
	if model.Audience == models.NotificationAudienceTargeted {
		observability.NotificationTargets().Observe(float64(model.TargetCount))
	}

	s.publish(spanCtx, model)
	return model, false, nil
}

// findReplay looks up an earlier dispatch by the same sender and key. A key
// first spent on a different kind of dispatch is rejected instead of replayed.
func (s *notificationService) findReplay(ctx context.Context, senderID uint, key string, source models.NotificationSource) (models.Notification, bool, error) {
	if key == "" {
		return models.Notification{}, false, nil
	}
	existing, err := s.repo.FindByIdempotencyKey(ctx, senderID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Notification{}, false, nil
	}
	if err != nil {
		return models.Notification{}, false, err
	}
	if existing.Source != source {
		return models.Notification{}, false, fmt.Errorf("%w: key belongs to a %s notification", ErrIdempotencyKeyReused, existing.Source)
	}
	return existing, true, nil
}

func (s *notificationService) publish(ctx context.Context, model models.Notification) {
	if (s.redis == nil || s.redisChannel == "") && (s.nats == nil || s.natsSubject == "") {
		return
	}

	event := dispatchEvent{
		DispatchID:     uuid.NewString(),
		NotificationID: model.ID,
		Title:          model.Title,
		Type:           string(model.Type),
		Audience:       string(model.Audience),
		Source:         string(model.Source),
		SenderID:       model.SenderID,
		RecipientIDs:   model.RecipientIDs(),
		SentAt:         s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Uint("notification_id", model.ID).Msg("failed to encode dispatch event")
		return
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			observability.DispatchPublishFailures().WithLabelValues("redis").Inc()
			s.logger.Warn().Err(err).Uint("notification_id", model.ID).Msg("failed to publish dispatch event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			observability.DispatchPublishFailures().WithLabelValues("nats").Inc()
			s.logger.Warn().Err(err).Uint("notification_id", model.ID).Msg("failed to publish dispatch event to nats")
		}
	}
}

func (s *notificationService) normalizeContent(rawTitle, rawType string) (string, models.NotificationType, error) {
	title := strings.TrimSpace(rawTitle)
	if title == "" {
		return "", "", fmt.Errorf("%w: title is empty", ErrValidation)
	}

	notificationType := models.NotificationType(strings.ToLower(strings.TrimSpace(rawType)))
	if notificationType == "" {
		notificationType = models.NotificationTypeInfo
	}
	if !notificationType.Valid() {
		return "", "", fmt.Errorf("%w: unknown notification type %q", ErrValidation, rawType)
	}
	return title, notificationType, nil
}

func batchResponse(model models.Notification, replayed bool) dto.BatchNotifyResponse {
	return dto.BatchNotifyResponse{
		Notification: dto.NewNotificationResponse(model),
		TargetCount:  model.TargetCount,
		Fallback:     model.Fallback,
		Replayed:     replayed,
	}
}

func recipientRows(ids []uint) []models.NotificationRecipient {
	rows := make([]models.NotificationRecipient, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.NotificationRecipient{RecipientID: id})
	}
	return rows
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func previewText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
