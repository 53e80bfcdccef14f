package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusBadRequest)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeCapacityExceeded,
				Message: "slot is full",
			},
			expected: "CAPACITY_EXCEEDED: slot is full",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should see the original error through Unwrap")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusBadRequest)
	err = err.WithDetails(map[string]any{"field": "timeSlot"})

	if err.Details["field"] != "timeSlot" {
		t.Errorf("expected field 'timeSlot', got %v", err.Details["field"])
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"validation", Validation("bad", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"capacity exceeded", CapacityExceeded("full", nil), CodeCapacityExceeded, http.StatusBadRequest},
		{"conflict", Conflict("in flight"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("MongoDB"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.StatusCode())
			}
		})
	}
}

func TestCapacityExceededIsDistinctFromValidation(t *testing.T) {
	capacity := CapacityExceeded("slot is full", map[string]any{"timeSlot": "08:00"})
	validation := Validation("missing teamId", nil)

	if capacity.StatusCode() != validation.StatusCode() {
		t.Fatalf("both errors are client errors, got %d and %d", capacity.StatusCode(), validation.StatusCode())
	}
	if capacity.Code == validation.Code {
		t.Errorf("capacity and validation errors must carry different codes")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := InvalidInput("bad")
	regularErr := errors.New("regular error")
	wrapped := fmt.Errorf("handler: %w", appErr)

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should return true for a wrapped AppError")
	}
	if IsAppError(regularErr) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("register: %w", CapacityExceeded("full", nil))

	if !IsCode(err, CodeCapacityExceeded) {
		t.Errorf("IsCode() should match wrapped capacity error")
	}
	if IsCode(err, CodeValidation) {
		t.Errorf("IsCode() should not match a different code")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := InvalidInput("bad")
	regularErr := errors.New("regular error")

	result := AsAppError(appErr)
	if result != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result = AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := CapacityExceeded("Time slot is fully booked", map[string]any{"totalCourts": 6})
	jsonStr := string(err.ToJSON())

	if !strings.Contains(jsonStr, CodeCapacityExceeded) {
		t.Errorf("ToJSON() should contain error code, got %s", jsonStr)
	}
	if !strings.Contains(jsonStr, `"message":"Time slot is fully booked"`) {
		t.Errorf("ToJSON() should contain error message, got %s", jsonStr)
	}
	if strings.Contains(jsonStr, "caused by") {
		t.Errorf("ToJSON() must not leak the cause, got %s", jsonStr)
	}
}
