package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
)

// Validation and input error codes
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Conflicts between concurrent writers map to 409; business rule
// violations against current document state map to 422.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	"DUPLICATE_NUMBER":      http.StatusConflict,
	"DUPLICATE_APPLICATION": http.StatusConflict,
	"DUPLICATE_SEQUENCE":    http.StatusConflict,
	"ALREADY_EXISTS":        http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR": http.StatusConflict,

	"INVALID_TRANSITION":         http.StatusUnprocessableEntity,
	"OVER_APPLICATION":           http.StatusUnprocessableEntity,
	"INVOICE_NOT_OPEN":           http.StatusUnprocessableEntity,
	"PAYMENT_NOT_APPLICABLE":     http.StatusUnprocessableEntity,
	"NOT_ACTIVE":                 http.StatusUnprocessableEntity,
	"SEQUENCE_EXHAUSTED":         http.StatusUnprocessableEntity,
	"INVALID_SEQUENCE_NAME":      http.StatusBadRequest,
	"INVALID_SEQUENCE_RANGE":     http.StatusBadRequest,
	"INVALID_SEQUENCE_INCREMENT": http.StatusBadRequest,

	"SEQUENCE_NOT_FOUND": http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 so a new domain error never silently
// reports success-shaped statuses.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
