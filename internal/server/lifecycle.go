package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	custommiddleware "product-catalog/internal/middleware"

	"go.uber.org/zap"
)

// Phase is a step of the catalog startup sequence
type Phase int32

const (
	PhaseStarting Phase = iota
	PhaseConnected
	PhaseServing
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseConnected:
		return "connected"
	case PhaseServing:
		return "serving"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// ErrInvalidTransition is returned when a phase is skipped or revisited
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Lifecycle tracks Starting -> Connected -> Serving. Phases only move forward,
// one step at a time.
type Lifecycle struct {
	phase  atomic.Int32
	logger *zap.Logger
}

// NewLifecycle creates a lifecycle in PhaseStarting
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Phase returns the current phase
func (l *Lifecycle) Phase() Phase {
	return Phase(l.phase.Load())
}

// Advance moves to next, which must directly follow the current phase
func (l *Lifecycle) Advance(next Phase) error {
	prev := next - 1
	if next <= PhaseStarting || next > PhaseServing || !l.phase.CompareAndSwap(int32(prev), int32(next)) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, l.Phase(), next)
	}

	l.logger.Info("Lifecycle advanced", zap.Stringer("from", prev), zap.Stringer("to", next))
	return nil
}

// RequireConnected answers 503 until the store connection is established
func RequireConnected(l *Lifecycle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Phase() < PhaseConnected {
				w.Header().Set("Retry-After", "1")
				custommiddleware.RespondWithError(w, http.StatusServiceUnavailable, "service is starting")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
