package stories

import (
	"errors"
	"fmt"
)

// Code categorizes a failed mutation so callers can react without string
// matching: the HTTP layer maps codes to statuses and the optimistic client
// applies a compensating action on any of them.
type Code string

const (
	// CodeUnauthenticated means no valid actor identity was supplied.
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// CodeNotFound means the target entity does not exist (or no longer
	// exists - an expired story that already migrated reports this too).
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnauthorized means the actor is not the owner/author the
	// operation requires.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeConflict means a uniqueness rule would be violated: duplicate
	// (subject, actor) pair, or a story that already has an archive.
	CodeConflict Code = "CONFLICT"

	// CodeInvalid means the input failed validation (empty text, temp id
	// leaking into a server call, malformed reorder permutation).
	CodeInvalid Code = "INVALID"

	// CodeUnavailable means the store or a collaborator failed
	// transiently; the operation may be retried by the user.
	CodeUnavailable Code = "UNAVAILABLE"
)

// Error is the typed failure every mutation entry point returns.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrCode extracts the code from err, or CodeUnavailable if err is not a
// typed failure (unknown errors are treated as transient).
func ErrCode(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnavailable
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

func notFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

func unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func invalid(msg string) *Error {
	return &Error{Code: CodeInvalid, Message: msg}
}

func unavailable(msg string, err error) *Error {
	return &Error{Code: CodeUnavailable, Message: msg, Err: err}
}
