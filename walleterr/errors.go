// Package walleterr defines the error kinds shared across the wallet core
// (key derivation, storage, services, wire codec) in place of the source
// toolkit's Python exception hierarchy.
package walleterr

import "fmt"

// Code identifies one of the error kinds in the wallet core's error
// handling design. Callers should branch on Code, never on error string
// contents.
type Code int

const (
	// Unknown is the zero value; a real error always sets a specific code.
	Unknown Code = iota

	InvalidArgument
	Unauthorized
	InsufficientFunds
	ReservationConflict
	ScriptMismatch
	BroadcastRejected
	BroadcastTransient
	ServiceUnavailable
	StorageConflict
	Canceled
	MalformedFrame
	UnknownMethod
	TransactionSize
)

var codeNames = map[Code]string{
	Unknown:             "Unknown",
	InvalidArgument:     "InvalidArgument",
	Unauthorized:        "Unauthorized",
	InsufficientFunds:   "InsufficientFunds",
	ReservationConflict: "ReservationConflict",
	ScriptMismatch:      "ScriptMismatch",
	BroadcastRejected:   "BroadcastRejected",
	BroadcastTransient:  "BroadcastTransient",
	ServiceUnavailable:  "ServiceUnavailable",
	StorageConflict:     "StorageConflict",
	Canceled:            "Canceled",
	MalformedFrame:      "MalformedFrame",
	UnknownMethod:       "UnknownMethod",
	TransactionSize:     "TransactionSize",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Error is the structured error every wallet-core method returns on
// failure: {code, description, data?} per the error handling design.
type Error struct {
	Code        Code
	Description string
	Data        map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is reports whether target is a *Error with the same Code, so callers
// can use errors.Is(err, walleterr.New(walleterr.InsufficientFunds, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New constructs an *Error with the given code and description.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// Newf constructs an *Error with a formatted description.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Description: fmt.Sprintf(format, args...)}
}

// WithData attaches structured data to an *Error and returns it.
func (e *Error) WithData(data map[string]interface{}) *Error {
	e.Data = data
	return e
}

// Retriable reports whether the error kind is safe to retry without
// caller intervention (§7 propagation policy).
func Retriable(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	switch e.Code {
	case BroadcastTransient, ServiceUnavailable, StorageConflict:
		return true
	default:
		return false
	}
}

// IsCode reports whether err is a *Error carrying the given code.
func IsCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
