package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "courts/pkg/errors"
	"courts/pkg/model"
)

func TestCourtsClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != courtsPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("startDate") != "2025-01-01" || r.URL.Query().Get("endDate") != "2025-01-07" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"a","date":"2025-01-02T00:00:00Z","timeSlot":"09:00","reservedCourts":2,"totalCourts":6}]`))
	}))
	defer server.Close()

	slots, err := NewCourtsClient(server.URL).List(context.Background(), "2025-01-01", "2025-01-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 || slots[0].TimeSlot != "09:00" || slots[0].ReservedCourts != 2 {
		t.Errorf("unexpected slots %+v", slots)
	}
}

func TestCourtsClient_RegisterSendsIdempotencyKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Idempotency-Key"); got != "key-1" {
			t.Errorf("expected idempotency key, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected JSON content type, got %q", got)
		}

		var req model.ReservationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			return
		}
		json.NewEncoder(w).Encode(model.ReservationResponse{
			Message: "success",
			Slot:    &model.CourtSlot{TimeSlot: req.TimeSlot, ReservedCourts: 1, TotalCourts: 6},
		})
	}))
	defer server.Close()

	resp, err := NewCourtsClient(server.URL).Register(context.Background(),
		model.ReservationRequest{Date: "2025-01-01", TimeSlot: "08:00", TeamID: "A"}, "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != "success" || resp.Slot.TimeSlot != "08:00" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCourtsClient_DecodesAPIErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCode     string
		wantCapacity bool
	}{
		{
			name:         "capacity exceeded",
			status:       http.StatusBadRequest,
			body:         `{"code":"CAPACITY_EXCEEDED","message":"Time slot is fully booked"}`,
			wantCode:     apperrors.CodeCapacityExceeded,
			wantCapacity: true,
		},
		{
			name:     "validation",
			status:   http.StatusBadRequest,
			body:     `{"code":"VALIDATION_ERROR","message":"teamId is required"}`,
			wantCode: apperrors.CodeValidation,
		},
		{
			name:   "non-json body",
			status: http.StatusBadGateway,
			body:   `upstream unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewCourtsClient(server.URL).Register(context.Background(),
				model.ReservationRequest{Date: "2025-01-01", TimeSlot: "08:00", TeamID: "A"}, "")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, apiErr.Code)
			}
			if got := IsCapacityExceeded(err); got != tt.wantCapacity {
				t.Errorf("IsCapacityExceeded() = %v, want %v", got, tt.wantCapacity)
			}
		})
	}
}
