package api

import (
	"fmt"
	"net/http"
)

// Kind is the error code exposed in the response envelope.
type Kind string

const (
	KindBadRequest           Kind = "BadRequest"
	KindNotFound             Kind = "NotFound"
	KindConflict             Kind = "Conflict"
	KindPreconditionRequired Kind = "PreconditionRequired"
	KindPreconditionFailed   Kind = "PreconditionFailed"
	KindInternal             Kind = "InternalError"
)

func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPreconditionRequired:
		return http.StatusPreconditionRequired
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *Error {
	return NewError(KindBadRequest, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return NewError(KindNotFound, format, args...)
}

type envelope struct {
	Error envelopeBody `json:"error"`
}

type envelopeBody struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
}
