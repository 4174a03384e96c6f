package internal

import (
	"errors"
	"net/http"
)

// ErrNotFound is returned by repositories for rows that are missing or owned by someone else.
var ErrNotFound = errors.New("not found")

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindTimeout
	KindRateLimit
	KindGeneration
	KindNotFound
	KindDatabase
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindTimeout:
		return "timeout"
	case KindRateLimit:
		return "rate_limit"
	case KindGeneration:
		return "generation"
	case KindNotFound:
		return "not_found"
	case KindDatabase:
		return "database"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// AppError is the single error shape that crosses the HTTP boundary.
// Message is for logs; UserMessage is what the caller sees.
type AppError struct {
	Kind        ErrorKind
	Reason      string
	Message     string
	UserMessage string
	StatusCode  int
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// AsAppError reports whether err is, or wraps, an *AppError.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewValidationError(message, userMessage string) *AppError {
	return &AppError{
		Kind:        KindValidation,
		Message:     message,
		UserMessage: userMessage,
		StatusCode:  http.StatusBadRequest,
	}
}

func NewAuthenticationError(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return &AppError{
		Kind:        KindAuthentication,
		Message:     message,
		UserMessage: "ログインが必要です",
		StatusCode:  http.StatusUnauthorized,
	}
}

// NewGenerationError builds a generic generation failure. reason is a short
// machine label used for logging (too_short, transport, ...).
func NewGenerationError(reason, message, userMessage string, cause error) *AppError {
	return &AppError{
		Kind:        KindGeneration,
		Reason:      reason,
		Message:     message,
		UserMessage: userMessage,
		StatusCode:  http.StatusInternalServerError,
		Err:         cause,
	}
}

func NewTimeoutError(message, userMessage string) *AppError {
	return &AppError{
		Kind:        KindTimeout,
		Reason:      "timeout",
		Message:     message,
		UserMessage: userMessage,
		StatusCode:  http.StatusGatewayTimeout,
	}
}

func NewRateLimitError(message, userMessage string, cause error) *AppError {
	return &AppError{
		Kind:        KindRateLimit,
		Reason:      "rate_limit",
		Message:     message,
		UserMessage: userMessage,
		StatusCode:  http.StatusTooManyRequests,
		Err:         cause,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Kind:        KindNotFound,
		Message:     message,
		UserMessage: "日記が見つかりません",
		StatusCode:  http.StatusNotFound,
		Err:         ErrNotFound,
	}
}

func NewDatabaseError(message, userMessage string, cause error) *AppError {
	if userMessage == "" {
		userMessage = "データの保存に失敗しました。もう一度お試しください。"
	}
	return &AppError{
		Kind:        KindDatabase,
		Message:     message,
		UserMessage: userMessage,
		StatusCode:  http.StatusInternalServerError,
		Err:         cause,
	}
}

// NewUpstreamError reports a collaborator (the auth API) that could not be reached
// or answered with something we could not use.
func NewUpstreamError(message string, cause error) *AppError {
	return &AppError{
		Kind:        KindUpstream,
		Message:     message,
		UserMessage: "予期しないエラーが発生しました",
		StatusCode:  http.StatusBadGateway,
		Err:         cause,
	}
}
