package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies pipeline failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInput is a problem with the submitted form.
	KindInput
	// KindGeneration is an AI-mode metrics failure.
	KindGeneration
	// KindRender covers narrative composition and document rendering.
	KindRender
	// KindDelivery is a mail transport failure. It is logged, never returned
	// to the client.
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindGeneration:
		return "generation"
	case KindRender:
		return "render"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Op   string // pipeline step, e.g. "resolve_age"
	Msg  string // safe to show to the client for KindInput
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInput:
		return http.StatusBadRequest
	case KindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text shown to clients. Only input errors carry
// detail; everything else gets a generic message.
func PublicMessage(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		switch pe.Kind {
		case KindInput:
			return pe.Msg
		case KindGeneration:
			return "report generation is temporarily unavailable"
		}
	}
	return "internal error"
}
