// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at one of the remote boundaries. Every failure
// the detection or persistence clients return carries exactly one Kind so the
// engine and the handlers can react without string matching.
type Kind string

const (
	KindNetwork            Kind = "network_error"
	KindTimeout            Kind = "timeout"
	KindServiceUnavailable Kind = "service_unavailable"
	KindInvalidImage       Kind = "invalid_image"
	KindInvalidParameters  Kind = "invalid_parameters"
	KindServerError        Kind = "server_error"
	KindMalformedResponse  Kind = "malformed_response"
)

// Error is a typed boundary failure. Status is the remote HTTP status when
// one was received, zero otherwise.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a boundary error.
func E(op string, kind Kind, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// EStatus builds a boundary error that carries the remote HTTP status.
func EStatus(op string, kind Kind, status int, err error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Err: err}
}

// KindOf extracts the failure kind from an error chain. Errors that did not
// originate at a client boundary report KindServerError.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServerError
}

// UserMessage maps a failure kind to the one human-readable message category
// shown to the operator. The operator can always retry the attempt from
// scratch, so every message is phrased as a recoverable condition.
func UserMessage(kind Kind) string {
	switch kind {
	case KindInvalidImage:
		return "the photograph could not be processed, retake and try again"
	case KindInvalidParameters:
		return "the selected format is not supported for detection"
	case KindServiceUnavailable:
		return "the detection service is unavailable, try again shortly"
	case KindTimeout:
		return "the request timed out, the quantity was not recorded"
	case KindNetwork:
		return "connection failed, the quantity was not recorded"
	case KindMalformedResponse:
		return "the server returned an unexpected answer, try again"
	default:
		return "the server reported an error, try again"
	}
}
