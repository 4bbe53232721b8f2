package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const maxErrorBody = 1 << 20

// ErrorPayload is the error body the storefront backend returns: a flat
// {"error": "..."} object.
type ErrorPayload struct {
	Error string `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. If the body carries an {"error": "..."} message it is
// preserved; otherwise the raw body is used.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, backend string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", backend, resp.StatusCode, err)
	}

	return StatusToError(resp.StatusCode, bodyBytes, backend)
}

// StatusToError maps a status code and raw body to an AppError. It is shared by
// ParseResponseError and callers holding a *StatusError.
func StatusToError(status int, body []byte, backend string) error {
	message := string(body)
	var payload ErrorPayload
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		message = payload.Error
	}
	qualified := fmt.Sprintf("%s: %s", backend, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(backend, message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualified)
	case status >= 500:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualified,
			Status:  status,
			Err:     apperrors.ErrInternal,
		}
	default:
		return &apperrors.AppError{
			Code:    "UNEXPECTED_STATUS",
			Message: qualified,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
