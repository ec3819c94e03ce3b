// Package lsperr defines the small error taxonomy shared by the broker,
// session, and CLI so that callers can distinguish user-fault from
// server-fault without parsing message strings.
package lsperr

import (
	"errors"
	"fmt"
)

// Kind tags an Error with the taxonomy bucket it belongs to (spec §7).
type Kind string

const (
	// KindUnsupportedPath means no language descriptor claims the path.
	KindUnsupportedPath Kind = "unsupported_path"
	// KindCapabilityUnsupported means the resolved client lacks the requested capability.
	KindCapabilityUnsupported Kind = "capability_unsupported"
	// KindServerFault means the LSP subprocess crashed, sent malformed
	// JSON-RPC, or failed to initialize in time.
	KindServerFault Kind = "server_fault"
	// KindProtocolError means the LSP server answered with a JSON-RPC error response.
	KindProtocolError Kind = "protocol_error"
	// KindBrokerUnreachable means the CLI could not reach the broker after retries.
	KindBrokerUnreachable Kind = "broker_unreachable"
	// KindParseError means a locate-string or flag failed to parse.
	KindParseError Kind = "parse_error"
	// KindNotReady means a capability request arrived before the session reached ready.
	KindNotReady Kind = "not_ready"
)

// Error is the taxonomy-tagged error type threaded through broker, session,
// and CLI layers. It wraps an underlying cause with errors.Unwrap support.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a taxonomy error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a taxonomy error wrapping cause, or returns nil if cause is nil.
func Wrap(kind Kind, message string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, and reports
// whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// KindFromStatus maps an HTTP status code back to the Kind a remote peer's
// response most likely carried, for callers (the CLI) that only see the
// status code and a detail string, not the original Kind value.
func KindFromStatus(status int) Kind {
	switch status {
	case 404:
		return KindUnsupportedPath
	case 422:
		return KindCapabilityUnsupported
	case 503:
		return KindBrokerUnreachable
	case 400:
		return KindParseError
	case 502:
		return KindProtocolError
	default:
		return KindServerFault
	}
}

// HTTPStatus maps a Kind to the HTTP status the broker/session routers use.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnsupportedPath:
		return 404
	case KindCapabilityUnsupported:
		return 422
	case KindNotReady:
		return 503
	case KindParseError:
		return 400
	case KindProtocolError:
		return 502
	case KindServerFault:
		return 500
	case KindBrokerUnreachable:
		return 503
	default:
		return 500
	}
}
