package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"courts/internal/courts/service"
	apperrors "courts/pkg/errors"
	httputil "courts/pkg/http"
	"courts/pkg/logger"
	"courts/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const SuccessMessage = "success"

var routePrefixes = []string{"/courts", "/api/courts"}

type CourtSlotHandler struct {
	service service.CourtSlotService
	log     *logger.Logger
}

func NewCourtSlotHandler(service service.CourtSlotService, log *logger.Logger) *CourtSlotHandler {
	return &CourtSlotHandler{
		service: service,
		log:     log,
	}
}

// List answers GET /courts?startDate=...&endDate=... with a bare JSON array.
func (h *CourtSlotHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	start, err := parseDateParam(query.Get("startDate"), "startDate")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	end, err := parseDateParam(query.Get("endDate"), "endDate")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	slots, err := h.service.ListByDateRange(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CourtSlotHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, "Register", apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge))
			return
		}
		h.writeError(w, "Register", apperrors.InvalidInput("Invalid request body"))
		return
	}

	slot, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.ReservationResponse{Message: SuccessMessage, Slot: slot}); err != nil {
		h.log.Error("failed to write success response", "handler", "Register", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CourtSlotHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseDateParam(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput("Both startDate and endDate query parameters are required").
			WithDetails(map[string]any{"missing": name})
	}
	date, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("Invalid " + name + " format, must be YYYY-MM-DD or RFC3339").
			WithDetails(map[string]any{name: value})
	}
	return date, nil
}

func (h *CourtSlotHandler) RegisterRoutes(router *httprouter.Router) {
	for _, prefix := range routePrefixes {
		router.GET(prefix, h.List)
		router.POST(prefix, h.Register)
	}
}
