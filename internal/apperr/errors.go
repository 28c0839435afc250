// Package apperr provides the standardized error taxonomy for chatcore.
//
// Every error an HTTP handler or client-session dispatcher returns is an
// *AppError carrying a machine-readable code and an HTTP status. Inside
// the WebSocket client session, only SendError is fatal to the
// connection; every other AppError is logged and the session continues.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a standardized application error with HTTP context.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorResponse is the JSON body returned to HTTP clients.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL_SERVER_ERROR"
	CodeSendError     = "SEND_ERROR"
)

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusFor(code)}
}

func statusFor(code string) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeSendError, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToResponse converts an AppError to its wire shape.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Code, Message: e.Message}
}

func BadRequest(message string) *AppError   { return New(CodeBadRequest, message) }
func Unauthorized(message string) *AppError { return New(CodeUnauthorized, message) }
func Forbidden(message string) *AppError    { return New(CodeForbidden, message) }
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}
func InternalServer(message string) *AppError { return New(CodeInternal, message) }

// SendError means a client session's outbound channel has died; the
// only error kind that terminates a Client session's dispatch loop.
func SendError() *AppError {
	return New(CodeSendError, "downstream channel disconnected")
}

// IsSendError reports whether err is (or wraps) a fatal SendError.
func IsSendError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == CodeSendError
}
