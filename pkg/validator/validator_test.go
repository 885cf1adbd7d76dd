package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(addLineRequest{ProductID: "prod-1", Quantity: 2}))
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(addLineRequest{Quantity: 1})
	require.Error(t, err)

	valErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, valErr.Fields(), "ProductID")
	assert.Equal(t, "is required", valErr.Fields()["ProductID"])
}

func TestValidate_BelowMinimum(t *testing.T) {
	err := Validate(addLineRequest{ProductID: "prod-1", Quantity: 0})
	require.Error(t, err)

	valErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "must be greater than or equal to 1", valErr.Fields()["Quantity"])
	assert.Contains(t, valErr.Error(), "Quantity")
}

func TestDecodeAndValidate_OK(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"product_id":"prod-1","quantity":3}`))

	var req addLineRequest
	require.NoError(t, DecodeAndValidate(r, &req))
	assert.Equal(t, "prod-1", req.ProductID)
	assert.Equal(t, 3, req.Quantity)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"product_id":`))

	var req addLineRequest
	err := DecodeAndValidate(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
