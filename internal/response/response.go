package response

import (
	"net/http"

	"github.com/yourname/aidiary/internal"
)

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeTimeout       = "TIMEOUT"
	CodeRateLimit     = "RATE_LIMIT"
	CodeAIError       = "AI_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeUpstream      = "UPSTREAM_ERROR"
)

type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func Success(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// Generated is the success body of the generate endpoint.
func Generated(content string) APIResponse {
	return APIResponse{Success: true, Content: content}
}

// Classify maps an error kind to its wire code and HTTP status.
func Classify(kind internal.ErrorKind) (string, int) {
	switch kind {
	case internal.KindValidation:
		return CodeInvalidInput, http.StatusBadRequest
	case internal.KindAuthentication:
		return CodeUnauthorized, http.StatusUnauthorized
	case internal.KindTimeout:
		return CodeTimeout, http.StatusGatewayTimeout
	case internal.KindRateLimit:
		return CodeRateLimit, http.StatusTooManyRequests
	case internal.KindGeneration:
		return CodeAIError, http.StatusInternalServerError
	case internal.KindNotFound:
		return CodeNotFound, http.StatusNotFound
	case internal.KindDatabase:
		return CodeDatabaseError, http.StatusInternalServerError
	case internal.KindUpstream:
		return CodeUpstream, http.StatusBadGateway
	default:
		return CodeAIError, http.StatusInternalServerError
	}
}

// Failure renders an AppError. Only UserMessage is exposed.
func Failure(err *internal.AppError) (int, APIResponse) {
	code, status := Classify(err.Kind)
	if err.StatusCode != 0 {
		status = err.StatusCode
	}
	return status, APIResponse{Success: false, Error: err.UserMessage, Code: code}
}

func Unauthorized() (int, APIResponse) {
	return Failure(internal.NewAuthenticationError(""))
}
