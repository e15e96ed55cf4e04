package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/config"
	"github.com/campuslane/learning-service/internal/events"
)

// NotificationService turns domain events into notifications.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// EventTypes lists the events the service reacts to.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventCourseEnrolled,
		events.EventCourseUnenrolled,
		events.EventAssignmentCreated,
		events.EventAssignmentSubmitted,
		events.EventSubmissionGraded,
	}
}

// Notify emits the notifications for one event.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("course_id", event.CourseID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Any("payload", event.Payload),
	}

	switch event.Type {
	case events.EventCourseEnrolled:
		n.logger.Info("CourseEnrolled", fields...)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventCourseUnenrolled:
		n.logger.Info("CourseUnenrolled", fields...)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventAssignmentCreated:
		n.logger.Info("AssignmentCreated", fields...)
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventAssignmentSubmitted:
		n.logger.Info("AssignmentSubmitted", fields...)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventSubmissionGraded:
		n.logger.Info("SubmissionGraded", fields...)
		n.sendEmailNotificationStub(ctx, event)
	default:
		n.logger.Debug("ignoring event", zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("course_id", event.CourseID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("course_id", event.CourseID),
		zap.String("event_type", string(event.Type)))
}
