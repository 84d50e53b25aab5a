package transport

import (
	"errors"
	"net/http"

	"product-catalog/internal/middleware"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventRequest is the analytics intake payload. Fields other than type are accepted and ignored.
type EventRequest struct {
	Type string `json:"type" validate:"required"`
}

// NotifyRequest is the notification intake payload
type NotifyRequest struct {
	Message   string `json:"message" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
}

// AnalyticsHandler handles analytics event intake
type AnalyticsHandler struct {
	eventService service.EventService
	logger       *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(eventService service.EventService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{eventService: eventService, logger: logger}
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/event", h.Record)
}

// Record handles a single analytics event
func (h *AnalyticsHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeIntake(w, r, h.logger, &req, "Event type is required") {
		return
	}

	if err := h.eventService.Record(r.Context(), req.Type); err != nil {
		if errors.Is(err, service.ErrEventTypeRequired) {
			middleware.RespondWithText(w, http.StatusBadRequest, "Event type is required")
			return
		}
		middleware.RespondWithServerError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithText(w, http.StatusOK, "Event recorded")
}

// NotificationHandler handles notification intake
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// RegisterRoutes registers the notification routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notify", h.Notify)
}

// Notify handles a single notification
func (h *NotificationHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if !decodeIntake(w, r, h.logger, &req, "Message and recipient are required") {
		return
	}

	if err := h.notificationService.Send(r.Context(), req.Message, req.Recipient); err != nil {
		if errors.Is(err, service.ErrNotificationIncomplete) {
			middleware.RespondWithText(w, http.StatusBadRequest, "Message and recipient are required")
			return
		}
		middleware.RespondWithServerError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithText(w, http.StatusOK, "Notification sent")
}

// decodeIntake decodes and validates an intake body. On failure it writes the
// 400 response and returns false.
func decodeIntake(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any, missing string) bool {
	if err := middleware.DecodeJSON(w, r, v); err != nil {
		logger.Debug("Intake request body rejected", zap.Error(err))
		middleware.RespondWithText(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := middleware.ValidateRequest(v); err != nil {
		logger.Debug("Intake request validation failed",
			zap.Any("validation_errors", middleware.FormatValidationErrors(err)),
		)
		middleware.RespondWithText(w, http.StatusBadRequest, missing)
		return false
	}

	return true
}
