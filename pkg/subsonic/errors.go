package subsonic

import (
	"fmt"
)

// ErrorKind categorizes a protocol error independent of the raw wire code.
type ErrorKind int

const (
	// KindServerGeneric is a generic server-side failure (wire code 0).
	KindServerGeneric ErrorKind = iota
	// KindMissingParameter indicates a malformed request (wire code 10).
	KindMissingParameter
	// KindVersionMismatch indicates an incompatible client or server
	// protocol version (wire codes 20, 30, 43, 44).
	KindVersionMismatch
	// KindAuthentication indicates rejected credentials (wire codes 40-42).
	KindAuthentication
	// KindAuthorization indicates the user lacks permission (wire code 50).
	KindAuthorization
	// KindTrialExpired indicates the server's trial period is over (wire code 60).
	KindTrialExpired
	// KindNotFound indicates the requested resource does not exist (wire code 70).
	KindNotFound
	// KindNetworkTransient covers timeouts, connection resets, and HTTP
	// 5xx responses that never produced a protocol envelope.
	KindNetworkTransient
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindServerGeneric:
		return "server error"
	case KindMissingParameter:
		return "missing parameter"
	case KindVersionMismatch:
		return "version mismatch"
	case KindAuthentication:
		return "authentication failed"
	case KindAuthorization:
		return "not authorized"
	case KindTrialExpired:
		return "trial expired"
	case KindNotFound:
		return "not found"
	case KindNetworkTransient:
		return "network error"
	default:
		return "unknown error"
	}
}

// Disposition is the classifier's verdict on how an error should be handled.
type Disposition int

const (
	// Retry means the call may be reissued, consuming one retry attempt.
	Retry Disposition = iota
	// FallbackAuth means the server rejected token authentication; switch
	// to legacy password authentication and reissue immediately without
	// consuming a retry attempt.
	FallbackAuth
	// Fatal means the call must not be retried; the error propagates to
	// the caller as-is.
	Fatal
	// SkipItem means the referenced resource is gone; during enumeration
	// the item is logged and skipped rather than aborting the traversal.
	SkipItem
)

// String returns a human-readable name for the disposition.
func (d Disposition) String() string {
	switch d {
	case Retry:
		return "retry"
	case FallbackAuth:
		return "fallback-auth"
	case Fatal:
		return "fatal"
	case SkipItem:
		return "skip-item"
	default:
		return "unknown"
	}
}

// Subsonic wire error codes.
const (
	CodeGeneric             = 0
	CodeMissingParameter    = 10
	CodeClientIncompatible  = 20
	CodeServerIncompatible  = 30
	CodeWrongCredentials    = 40
	CodeTokenAuthNotSupport = 41
	CodeTokenAuthDisabled   = 42
	CodeClientTooOld        = 43
	CodeServerTooOld        = 44
	CodeNotAuthorized       = 50
	CodeTrialExpired        = 60
	CodeNotFound            = 70

	// codeNetwork is a synthetic code for errors that never produced a
	// protocol envelope (timeouts, connection failures, bare 5xx).
	codeNetwork = -1
)

// Error represents a classified Subsonic protocol error.
//
// It carries the taxonomy kind, the raw wire code from the error envelope
// (or a synthetic code for network-level failures), and the server's
// message. It implements error and supports errors.Is comparison by kind.
type Error struct {
	Kind    ErrorKind // Error taxonomy category
	Code    int       // Wire error code from the response envelope
	Message string    // Error message from the server
}

// Error returns the error message, naming the kind and the wire message.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("subsonic: %s (code %d)", e.Kind, e.Code)
	}
	return fmt.Sprintf("subsonic: %s (code %d): %s", e.Kind, e.Code, e.Message)
}

// Is reports whether target is a subsonic *Error of the same kind.
// This allows errors.Is() to match on taxonomy rather than exact code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Classify maps a wire error code and HTTP status to a typed protocol
// error and its retry disposition.
//
// The mapping follows the Subsonic error table:
//
//	 0 generic server error      -> Retry (once)
//	10 missing parameter         -> Fatal (caller bug)
//	20/30 version incompatible   -> Fatal
//	40 wrong credentials         -> Retry until budget, then Fatal
//	41/42 token auth unsupported -> FallbackAuth
//	43/44 client/server too old  -> Fatal
//	50 not authorized            -> Fatal
//	60 trial expired             -> Fatal
//	70 not found                 -> SkipItem
//
// Any HTTP 5xx without an envelope, and the synthetic network code, map
// to a transient network error with Retry disposition.
func Classify(wireCode, httpStatus int) (*Error, Disposition) {
	if wireCode == codeNetwork || httpStatus >= 500 {
		return &Error{Kind: KindNetworkTransient, Code: wireCode}, Retry
	}

	switch wireCode {
	case CodeGeneric:
		return &Error{Kind: KindServerGeneric, Code: wireCode}, Retry
	case CodeMissingParameter:
		return &Error{Kind: KindMissingParameter, Code: wireCode}, Fatal
	case CodeClientIncompatible, CodeServerIncompatible, CodeClientTooOld, CodeServerTooOld:
		return &Error{Kind: KindVersionMismatch, Code: wireCode}, Fatal
	case CodeWrongCredentials:
		return &Error{Kind: KindAuthentication, Code: wireCode}, Retry
	case CodeTokenAuthNotSupport, CodeTokenAuthDisabled:
		return &Error{Kind: KindAuthentication, Code: wireCode}, FallbackAuth
	case CodeNotAuthorized:
		return &Error{Kind: KindAuthorization, Code: wireCode}, Fatal
	case CodeTrialExpired:
		return &Error{Kind: KindTrialExpired, Code: wireCode}, Fatal
	case CodeNotFound:
		return &Error{Kind: KindNotFound, Code: wireCode}, SkipItem
	default:
		// Unknown codes are treated as generic server errors.
		return &Error{Kind: KindServerGeneric, Code: wireCode}, Retry
	}
}

// classifyEnvelope classifies an error envelope, preserving the message.
func classifyEnvelope(code int, message string) (*Error, Disposition) {
	perr, disp := Classify(code, 0)
	perr.Message = message
	return perr, disp
}

// CircuitOpenError is returned when the circuit breaker is open and a
// call is rejected without reaching the network.
type CircuitOpenError struct {
	Failures int // Consecutive failures that opened the circuit
}

// Error returns the error message.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("subsonic: circuit open after %d consecutive failures", e.Failures)
}

// EnumerationError is returned when a library enumeration aborts before
// completion. The partial record set is discarded; Discarded reports how
// many records had been collected before the abort.
type EnumerationError struct {
	Discarded int   // Records discarded when enumeration aborted
	Cause     error // Terminal error that aborted the traversal
}

// Error returns the error message, naming the cause and discard count.
func (e *EnumerationError) Error() string {
	return fmt.Sprintf("subsonic: enumeration aborted, %d records discarded: %v", e.Discarded, e.Cause)
}

// Unwrap returns the terminal error that aborted the enumeration.
func (e *EnumerationError) Unwrap() error {
	return e.Cause
}

// Predefined errors for common cases.
var (
	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = fmt.Errorf("subsonic: invalid configuration")

	// ErrClosed is returned when a call is made on a closed client.
	ErrClosed = fmt.Errorf("subsonic: client closed")
)
