package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"` // Safe, client-facing context
	Err        error          `json:"-"`                 // Wrapped internal error (not exposed to client)
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

// WithDetails returns the error with client-facing details attached.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// WithCause attaches an internal cause without changing what the client sees.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
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

// ---- Validation (VAL) ----

// Validation returns a VAL_001 error for missing or malformed input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Token gate (GATE) ----

// ErrAccessDenied is returned when the caller's token holding is below the policy minimum.
func ErrAccessDenied(balance, required string) *AppError {
	return New("GATE_001",
		fmt.Sprintf("Insufficient token balance: you need at least %s tokens to create markets, current balance %s", required, balance),
		http.StatusForbidden,
	).WithDetails(map[string]any{
		"balance":  balance,
		"required": required,
	})
}

// ---- Market lifecycle (MKT) ----

func ErrMarketNotFound() *AppError {
	return New("MKT_001", "Market not found", http.StatusNotFound)
}

func ErrAlreadyResolved() *AppError {
	return New("MKT_002", "Market has already been resolved", http.StatusConflict)
}

func ErrInvalidState() *AppError {
	return New("MKT_003", "Market is not resolved yet", http.StatusConflict)
}

func ErrResolutionBeforeExpiry() *AppError {
	return New("MKT_004", "Market cannot be resolved before its expiry", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidSignature() *AppError {
	return New("AUTH_001", "Invalid wallet signature", http.StatusUnauthorized)
}

func ErrChallengeExpired() *AppError {
	return New("AUTH_002", "Sign-in challenge expired or unknown", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAdminRequired() *AppError {
	return New("AUTH_004", "Admin privileges required", http.StatusForbidden)
}

// ---- Ledger oracle (ORC) ----

func ErrOracleUnavailable(err error) *AppError {
	return Wrap("ORC_001", "Ledger node unavailable, please try again later", http.StatusServiceUnavailable, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
