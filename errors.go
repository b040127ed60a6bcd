// Package ventbridge is a pure Go client for the ventilation bridge's
// TCP/UDP protocol: framed envelopes, an RMI get/set dialect and a PDO
// streaming dialect, fronting a residential ventilation unit.
package ventbridge

import (
	"errors"
	"fmt"
)

// Transport errors: fatal to the connection, fail all pending requests.
var (
	ErrTransportLost     = errors.New("transport lost")
	ErrStalledConnection = errors.New("no inbound traffic within the stall window")
	ErrFrameTooLarge     = errors.New("frame exceeds maximum size")
	ErrEmptyFrame        = errors.New("frame has zero length")
	ErrMalformedEnvelope = errors.New("malformed envelope")
)

// Protocol session errors: fatal to the session, surfaced to the caller.
var (
	ErrNotRegistered           = errors.New("application not registered with bridge")
	ErrSessionClosed           = errors.New("session closed by bridge")
	ErrProtocolVersionMismatch = errors.New("protocol version mismatch")
)

// Request-scoped errors: the session continues. ErrRefIdCollision is
// the exception: pkg/dispatch treats it as fatal and closes the
// connection.
var (
	ErrTimeout         = errors.New("request timed out")
	ErrCancelled       = errors.New("request cancelled")
	ErrUnexpectedReply = errors.New("unexpected reply tag for pending request")
	ErrRefIdCollision  = errors.New("reference id collision with a still-pending request")
)

// Decode errors: logged and dropped, never tear down the session.
var (
	ErrUnknownPDID     = errors.New("unknown pdid")
	ErrUnknownType     = errors.New("unknown value type tag")
	ErrTruncatedValue  = errors.New("truncated value")
)

// Argument / usage errors.
var (
	ErrIllegalArgument = errors.New("illegal argument")
	ErrIdConflict      = errors.New("id already exists, this would create conflicts")
	ErrNotFound        = errors.New("not found")
)

// RMIError carries a numeric RMI error code returned by the bridge when it
// rejects a "get property", "get multiple" or "set property" request.
type RMIError struct {
	Code uint8
}

func (e *RMIError) Error() string {
	if desc, ok := rmiErrorDescription[e.Code]; ok {
		return fmt.Sprintf("rmi error %d: %s", e.Code, desc)
	}
	return fmt.Sprintf("rmi error %d", e.Code)
}

// RMI error codes, spec §6.
const (
	RMIErrUnknownCommand            uint8 = 11
	RMIErrUnknownUnit               uint8 = 12
	RMIErrUnknownSubunit             uint8 = 13
	RMIErrUnknownProperty            uint8 = 14
	RMIErrTypeCannotHaveRange        uint8 = 15
	RMIErrValueOutOfRange            uint8 = 30
	RMIErrPropertyNotGettableOrSettable uint8 = 32
	RMIErrInternalError               uint8 = 40
	RMIErrInternalErrorMaybeWrongCmd  uint8 = 41
)

var rmiErrorDescription = map[uint8]string{
	RMIErrUnknownCommand:               "unknown command",
	RMIErrUnknownUnit:                  "unknown unit",
	RMIErrUnknownSubunit:               "unknown subunit",
	RMIErrUnknownProperty:              "unknown property",
	RMIErrTypeCannotHaveRange:          "type cannot have range",
	RMIErrValueOutOfRange:              "value out of range",
	RMIErrPropertyNotGettableOrSettable: "property not gettable or settable",
	RMIErrInternalError:                "internal error",
	RMIErrInternalErrorMaybeWrongCmd:   "internal error, maybe wrong command",
}
