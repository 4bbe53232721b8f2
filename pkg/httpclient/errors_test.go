package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_NotFound(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusNotFound, `{"error":"no such product"}`), "storefront")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestParseResponseError_BadRequestKeepsMessage(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadRequest, `{"error":"Message is required"}`), "storefront")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "storefront: Message is required", appErr.Message)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusTeapot, `short and stout`), "storefront")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UNEXPECTED_STATUS", appErr.Code)
	assert.Contains(t, appErr.Message, "short and stout")
}

func TestStatusToError_ServerErrors(t *testing.T) {
	err := StatusToError(http.StatusServiceUnavailable, nil, "storefront")
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))

	err = StatusToError(http.StatusInternalServerError, []byte(`{"error":"boom"}`), "storefront")
	assert.True(t, errors.Is(err, apperrors.ErrInternal))
	assert.Equal(t, "UPSTREAM_ERROR", apperrors.Code(err))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusBadRequest))
	assert.True(t, IsClientError(http.StatusNotFound))
	assert.False(t, IsClientError(http.StatusOK))
	assert.False(t, IsClientError(http.StatusInternalServerError))
}
