package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeRoleUnresolved, http.StatusForbidden},
		{ErrCodeRoleResolutionFailed, http.StatusInternalServerError},
		{ErrCodeEmailInUse, http.StatusConflict},
		{ErrCodePropertyInUse, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeExceedsOutstanding, http.StatusUnprocessableEntity},
		{ErrCodeDuplicateSubmission, http.StatusConflict},
		{ErrCodeAIService, http.StatusBadGateway},
		{ErrCodeStorageUnavailable, http.StatusServiceUnavailable},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"INVALID_PERIOD", http.StatusBadRequest},
		{"EMPTY_SELECTION", http.StatusBadRequest},
		{"ROLES_REQUIRED", http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestPage(t *testing.T) {
	resp := Page([]int{1, 2}, 21, 2, 10)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	exact := Page(nil, 20, 1, 10)
	assert.Equal(t, 2, exact.Meta.TotalPages)

	empty := Page(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestInvalid_JSON(t *testing.T) {
	resp := Invalid("Request validation failed", "req-1", []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
	assert.NotContains(t, decoded, "data")
}
