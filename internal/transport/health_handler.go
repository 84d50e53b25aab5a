package transport

import (
	"net/http"

	"product-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// HealthHandler reports liveness. It never probes the store, so a catalog whose
// store is unreachable still answers 200 here.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// RegisterCatalogRoutes registers the JSON liveness routes of the catalog service
func (h *HealthHandler) RegisterCatalogRoutes(r chi.Router) {
	r.Get("/api/health", h.JSON)
	r.Get("/health", h.JSON)
}

// RegisterIntakeRoutes registers the plain text liveness route of the intake services
func (h *HealthHandler) RegisterIntakeRoutes(r chi.Router) {
	r.Get("/health", h.Text)
}

// JSON answers {"ok":true}
func (h *HealthHandler) JSON(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Text answers OK
func (h *HealthHandler) Text(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithText(w, http.StatusOK, "OK")
}
