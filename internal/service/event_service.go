package service

import (
	"context"
	"errors"

	"product-catalog/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	ErrEventTypeRequired      = errors.New("event type is required")
	ErrNotificationIncomplete = errors.New("message and recipient are required")
)

// EventService counts analytics events by type
type EventService interface {
	Record(ctx context.Context, eventType string) error
}

type eventService struct {
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewEventService creates a new instance of EventService
func NewEventService(registry *metrics.Registry, logger *zap.Logger) EventService {
	_ = registry.RegisterCounter(metrics.AnalyticsEventsTotal, "Total number of analytics events by type", "type")

	return &eventService{registry: registry, logger: logger}
}

func (s *eventService) Record(ctx context.Context, eventType string) error {
	if eventType == "" {
		return ErrEventTypeRequired
	}

	s.registry.Inc(metrics.AnalyticsEventsTotal, prometheus.Labels{"type": eventType})
	s.logger.Debug("Event recorded", zap.String("type", eventType))
	return nil
}

// NotificationService accepts notifications for delivery. Delivery itself is
// a log line; there is no outbound channel.
type NotificationService interface {
	Send(ctx context.Context, message, recipient string) error
}

type notificationService struct {
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewNotificationService creates a new instance of NotificationService
func NewNotificationService(registry *metrics.Registry, logger *zap.Logger) NotificationService {
	_ = registry.RegisterCounter(metrics.NotificationsSentTotal, "Total number of notifications sent")

	return &notificationService{registry: registry, logger: logger}
}

func (s *notificationService) Send(ctx context.Context, message, recipient string) error {
	if message == "" || recipient == "" {
		return ErrNotificationIncomplete
	}

	s.logger.Info("Notification sent",
		zap.String("recipient", recipient),
		zap.String("message", message),
	)
	s.registry.Inc(metrics.NotificationsSentTotal, nil)
	return nil
}
