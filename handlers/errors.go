package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation errors
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeConflict      ErrorCode = "CONFLICT"

	// Server errors
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new API error
func NewAPIError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeMissingParameter:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists, ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError sends a standardized error response
func RespondError(c echo.Context, err *APIError) error {
	return c.JSON(err.HTTPStatus(), map[string]interface{}{
		"error":   err.Message,
		"code":    err.Code,
		"details": err.Details,
	})
}

// Common error constructors for convenience

// ErrUnauthorized returns an unauthorized error
func ErrUnauthorized(message string) *APIError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAPIError(ErrCodeUnauthorized, message)
}

// ErrForbidden returns a forbidden error
func ErrForbidden(message string) *APIError {
	if message == "" {
		message = "Access denied"
	}
	return NewAPIError(ErrCodeForbidden, message)
}

// ErrNotFound returns a not found error
func ErrNotFound(resource string) *APIError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAPIError(ErrCodeNotFound, message)
}

// ErrBadRequest returns a bad request error
func ErrBadRequest(message string) *APIError {
	if message == "" {
		message = "Invalid request"
	}
	return NewAPIError(ErrCodeBadRequest, message)
}

// ErrAlreadyExists returns an already exists error
func ErrAlreadyExists(resource string) *APIError {
	message := "Resource already exists"
	if resource != "" {
		message = fmt.Sprintf("%s already exists", resource)
	}
	return NewAPIError(ErrCodeAlreadyExists, message)
}

// ErrInternal returns an internal server error
func ErrInternal(message string) *APIError {
	if message == "" {
		message = "Internal server error"
	}
	return NewAPIError(ErrCodeInternal, message)
}

// ErrMissingParameter returns a missing parameter error
func ErrMissingParameter(param string) *APIError {
	return NewAPIError(ErrCodeMissingParameter, fmt.Sprintf("Missing required parameter: %s", param))
}

// principalKey is the echo.Context key holding the authenticated Principal.
const principalKey = "principal"

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil if the request is unauthenticated.
func GetPrincipal(c echo.Context) *Principal {
	p, ok := c.Get(principalKey).(*Principal)
	if !ok || p == nil {
		return nil
	}
	return p
}

// RequirePrincipal extracts the principal and responds with an error if the
// request is unauthenticated.
func RequirePrincipal(c echo.Context) (*Principal, error) {
	p := GetPrincipal(c)
	if p == nil {
		return nil, RespondError(c, ErrUnauthorized(""))
	}
	return p, nil
}
