package dto

import (
	"net/http"
	"strings"
)

// Error codes are the DomainError codes surfaced unchanged to clients.

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeTooLarge   = "REQUEST_TOO_LARGE"
)

// Authentication and session error codes
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodePasswordNotSet       = "PASSWORD_NOT_SET"
	ErrCodeLinkInvalid          = "LINK_INVALID"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid         = "TOKEN_INVALID"
	ErrCodeTokenMaxRefresh      = "TOKEN_MAX_REFRESH"
	ErrCodeTokenRevoked         = "TOKEN_REVOKED"
	ErrCodeRoleUnresolved       = "ROLE_UNRESOLVED"
	ErrCodeRoleNotDeclared      = "ROLE_NOT_DECLARED"
	ErrCodeRoleResolutionFailed = "ROLE_RESOLUTION_FAILED"
	ErrCodeSessionRequired      = "SESSION_REQUIRED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUserNotFound  = "USER_NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeEmailInUse    = "EMAIL_IN_USE"
	ErrCodePropertyInUse = "PROPERTY_IN_USE"
)

// Billing rule error codes
const (
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeInvoiceNotPayable    = "INVOICE_NOT_PAYABLE"
	ErrCodeExceedsOutstanding   = "EXCEEDS_OUTSTANDING"
	ErrCodeDuplicateInvoice     = "DUPLICATE_INVOICE"
	ErrCodeDuplicateSubmission  = "DUPLICATE_SUBMISSION"
	ErrCodeProofRequired        = "PROOF_REQUIRED"
	ErrCodeStatementUnavailable = "STATEMENT_UNAVAILABLE"
	ErrCodeStorageUnavailable   = "STORAGE_UNAVAILABLE"
	ErrCodeAIService            = "AI_SERVICE_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeTooLarge:   http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized:         http.StatusUnauthorized,
	ErrCodeForbidden:            http.StatusForbidden,
	ErrCodeInvalidCredentials:   http.StatusUnauthorized,
	ErrCodePasswordNotSet:       http.StatusUnauthorized,
	ErrCodeLinkInvalid:          http.StatusBadRequest,
	ErrCodeTokenExpired:         http.StatusUnauthorized,
	ErrCodeTokenInvalid:         http.StatusUnauthorized,
	ErrCodeTokenMaxRefresh:      http.StatusUnauthorized,
	ErrCodeTokenRevoked:         http.StatusUnauthorized,
	ErrCodeRoleUnresolved:       http.StatusForbidden,
	ErrCodeRoleNotDeclared:      http.StatusForbidden,
	ErrCodeRoleResolutionFailed: http.StatusInternalServerError,
	ErrCodeSessionRequired:      http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeUserNotFound:  http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeEmailInUse:    http.StatusConflict,
	ErrCodePropertyInUse: http.StatusConflict,

	// Billing rules -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInvoiceNotPayable:   http.StatusUnprocessableEntity,
	ErrCodeExceedsOutstanding:  http.StatusUnprocessableEntity,
	ErrCodeDuplicateInvoice:    http.StatusConflict,
	ErrCodeDuplicateSubmission: http.StatusConflict,
	ErrCodeProofRequired:       http.StatusUnprocessableEntity,

	// Unavailable collaborators
	ErrCodeStatementUnavailable: http.StatusServiceUnavailable,
	ErrCodeStorageUnavailable:   http.StatusServiceUnavailable,
	ErrCodeAIService:            http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_*, EMPTY_* and DUPLICATE_* codes are input errors (400);
// anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	for _, prefix := range []string{"INVALID_", "EMPTY_", "DUPLICATE_"} {
		if strings.HasPrefix(code, prefix) {
			return http.StatusBadRequest
		}
	}
	if strings.HasSuffix(code, "_REQUIRED") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
