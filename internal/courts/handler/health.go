package handler

import (
	"context"
	"net/http"
	"time"

	httputil "courts/pkg/http"
	"courts/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type HealthHandler struct {
	database string
	pinger   Pinger
	log      *logger.Logger
}

// NewHealthHandler checks pinger on /ready. A nil pinger means an in-process store that is always ready.
func NewHealthHandler(database string, pinger Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		pinger:   pinger,
		log:      log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			h.log.Error("Database health check failed", "database", h.database, "error", err, "path", r.URL.Path)
			if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "unavailable",
				Database: h.database + ": error",
			}); writeErr != nil {
				h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
			}
			return
		}
	}

	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:   "ready",
		Database: h.database + ": ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
