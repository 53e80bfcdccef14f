package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	apperrors "courts/pkg/errors"
	"courts/pkg/model"
)

const courtsPath = "/api/courts"

// CourtsClient talks to the reservation API.
type CourtsClient struct {
	httpClient *HttpClient
}

func NewCourtsClient(baseURL string) *CourtsClient {
	return &CourtsClient{httpClient: NewHttpClient(baseURL)}
}

// APIError is a non-2xx reply decoded from the {code, message, details} body.
type APIError struct {
	StatusCode int
	apperrors.ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("courts api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (c *CourtsClient) List(ctx context.Context, startDate, endDate string) ([]model.CourtSlot, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)

	resp, err := c.httpClient.GET(ctx, courtsPath+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	slots := []model.CourtSlot{}
	if err := resp.DecodeJSON(&slots); err != nil {
		return nil, fmt.Errorf("could not decode court slots: %w (%s)", err, resp.ToString())
	}
	return slots, nil
}

// Register reserves one court. idempotencyKey may be empty.
func (c *CourtsClient) Register(ctx context.Context, req model.ReservationRequest, idempotencyKey string) (*model.ReservationResponse, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	resp, err := c.httpClient.POSTWithHeaders(ctx, courtsPath, req, headers)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out model.ReservationResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("could not decode reservation: %w (%s)", err, resp.ToString())
	}
	return &out, nil
}

func checkStatus(resp *Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := resp.DecodeJSON(&apiErr.ErrorResponse); err != nil || apiErr.Code == "" {
		apiErr.Message = string(resp.Body)
	}
	return apiErr
}

// IsCapacityExceeded reports whether err is the API's full-slot rejection.
func IsCapacityExceeded(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == apperrors.CodeCapacityExceeded
}
