package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError. Callers render every kind the same way;
// the kind only selects the HTTP status and the log level.
type Kind string

const (
	KindInvalidURL            Kind = "invalid_url"
	KindTranscriptUnavailable Kind = "transcript_unavailable"
	KindModelInvocation       Kind = "model_invocation"
	KindInvalidInput          Kind = "invalid_input"
	KindNotFound              Kind = "not_found"
	KindRateLimited           Kind = "rate_limited"
	KindInternal              Kind = "internal"
)

const (
	MsgInvalidURL            = "Invalid YouTube URL. Please enter a valid video link."
	MsgTranscriptUnavailable = "Error fetching transcript"
	MsgModelInvocation       = "Error generating response"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code int, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidURL(op string, err error) *AppError {
	return newError(KindInvalidURL, http.StatusBadRequest, op, err, MsgInvalidURL)
}

func TranscriptUnavailable(op string, err error) *AppError {
	return newError(KindTranscriptUnavailable, http.StatusBadGateway, op, err, MsgTranscriptUnavailable)
}

func ModelInvocation(op string, err error) *AppError {
	return newError(KindModelInvocation, http.StatusBadGateway, op, err, MsgModelInvocation)
}

func InvalidInput(op string, err error, message string) *AppError {
	return newError(KindInvalidInput, http.StatusBadRequest, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return newError(KindNotFound, http.StatusNotFound, op, err, message)
}

func RateLimited(op string) *AppError {
	return newError(KindRateLimited, http.StatusTooManyRequests, op, nil, "Rate limit exceeded")
}

func Internal(op string, err error, message string) *AppError {
	return newError(KindInternal, http.StatusInternalServerError, op, err, message)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

func IsInvalidURL(err error) bool {
	return err != nil && KindOf(err) == KindInvalidURL
}

func IsTranscriptUnavailable(err error) bool {
	return err != nil && KindOf(err) == KindTranscriptUnavailable
}

func IsModelInvocation(err error) bool {
	return err != nil && KindOf(err) == KindModelInvocation
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
