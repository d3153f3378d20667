package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"DUPLICATE_APPLICATION", http.StatusConflict},
		{"DUPLICATE_NUMBER", http.StatusConflict},
		{"OPTIMISTIC_LOCK_ERROR", http.StatusConflict},
		{"OVER_APPLICATION", http.StatusUnprocessableEntity},
		{"INVALID_TRANSITION", http.StatusUnprocessableEntity},
		{"INVOICE_NOT_OPEN", http.StatusUnprocessableEntity},
		{"PAYMENT_NOT_APPLICABLE", http.StatusUnprocessableEntity},
		{"SEQUENCE_EXHAUSTED", http.StatusUnprocessableEntity},
		{"SEQUENCE_NOT_FOUND", http.StatusNotFound},
		{"SOME_UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-123", []ValidationDetail{
		{Field: "amount", Message: "This field is required"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-123", resp.RequestID)
	assert.Len(t, resp.Details, 1)
}
