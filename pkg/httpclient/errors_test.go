package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bafoyewv/SupplyChainLite-sub000/pkg/errors"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredBody(t *testing.T) {
	resp := fakeResponse(http.StatusUnprocessableEntity,
		`{"error":{"code":"INVALID_QUANTITY","message":"quantity must be at least 1"}}`)

	err := ParseResponseError(resp, "order")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "order:")
	assert.Contains(t, appErr.Message, "quantity must be at least 1")
}

func TestParseResponseError_NotFound(t *testing.T) {
	resp := fakeResponse(http.StatusNotFound,
		`{"error":{"code":"NOT_FOUND","message":"product missing"}}`)

	err := ParseResponseError(resp, "catalog")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestParseResponseError_Conflict(t *testing.T) {
	resp := fakeResponse(http.StatusConflict,
		`{"error":{"code":"CONFLICT","message":"duplicate order"}}`)

	err := ParseResponseError(resp, "order")
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestParseResponseError_GatewayErrorsMapToUnavailable(t *testing.T) {
	for _, status := range []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		resp := fakeResponse(status, `{"error":{"code":"X","message":"down"}}`)
		err := ParseResponseError(resp, "order")
		assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail), "status %d", status)
	}
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := fakeResponse(http.StatusBadRequest, "plain text failure")

	err := ParseResponseError(resp, "order")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order returned status 400")
	assert.Contains(t, err.Error(), "plain text failure")
}
