package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Provider Mappings (MAP) ----

func ErrMappingNotFound() *AppError {
	return New("MAP_001", "Provider mapping not found", http.StatusNotFound)
}

func ErrMappingAlreadyActive() *AppError {
	return New("MAP_002", "An active mapping already exists for this venue and provider", http.StatusConflict)
}

func ErrUnsupportedProvider(provider string) *AppError {
	return New("MAP_003", fmt.Sprintf("Unsupported provider %q", provider), http.StatusBadRequest)
}

// ---- Sync Engine (SYNC) ----

// ErrSyncNotConfigured is a configuration error: no active, sync-enabled
// mapping exists. Callers fall back to local-only behaviour.
func ErrSyncNotConfigured() *AppError {
	return New("SYNC_001", "Provider sync is not configured for this venue", http.StatusUnprocessableEntity)
}

func ErrInvalidTransition(from, to string) *AppError {
	return New("SYNC_002", fmt.Sprintf("Cannot move external reservation from %s to %s", from, to), http.StatusConflict)
}

func ErrNotRetryable() *AppError {
	return New("SYNC_003", "External reservation is not in a retryable state", http.StatusConflict)
}

func ErrInvalidOperation(op string) *AppError {
	return New("SYNC_004", fmt.Sprintf("Unknown sync operation %q", op), http.StatusBadRequest)
}

// ---- Provider calls (PRV) ----

// ErrProviderRejected propagates the provider's HTTP status and message.
func ErrProviderRejected(err error) *AppError {
	return Wrap("PRV_001", "Provider rejected the request", http.StatusBadGateway, err)
}

func ErrProviderUnavailable(err error) *AppError {
	return Wrap("PRV_002", "Provider is unavailable", http.StatusServiceUnavailable, err)
}

// ---- Webhooks (WHK) ----

func ErrMalformedWebhook(reason string) *AppError {
	return New("WHK_001", fmt.Sprintf("Malformed webhook request: %s", reason), http.StatusBadRequest)
}

func ErrUnknownWebhookProvider(provider string) *AppError {
	return New("WHK_002", fmt.Sprintf("Unknown webhook provider %q", provider), http.StatusNotFound)
}

// ---- Generic ----

func ErrNotFound(entity string) *AppError {
	return New("GEN_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("GEN_002", message, http.StatusBadRequest)
}

func ErrPayloadTooLarge() *AppError {
	return New("GEN_003", "Request body too large", http.StatusRequestEntityTooLarge)
}

func ErrUnsupportedMediaType() *AppError {
	return New("GEN_004", "Content-Type must be application/json", http.StatusUnsupportedMediaType)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrVenueForbidden() *AppError {
	return New("AUTH_002", "Token does not grant access to this venue", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
