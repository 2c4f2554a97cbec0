package benchmark

import (
	"errors"
	"fmt"
	"syscall"
)

// Error kinds. Match them with errors.Is.
var (
	ErrEngineOpen   = errors.New("engine open failed")
	ErrEngineTxn    = errors.New("engine transaction failed")
	ErrEngineCommit = errors.New("engine commit failed")
	ErrEntropyRead  = errors.New("entropy read failed")
)

// NoCode is reported when the cause carries no native error code.
const NoCode = -1

// Error is a fatal benchmark failure. It names the stage that failed and
// carries the native code of the engine or OS.
type Error struct {
	Kind  error
	Stage string
	Code  int
	Err   error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v on %s: code %d: %v", e.Kind, e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("%v on %s: code %d", e.Kind, e.Stage, e.Code)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// NewError builds an Error. The code is taken from err when it is a
// syscall.Errno; callers with a richer code source set Code themselves.
func NewError(kind error, stage string, err error) *Error {
	return &Error{
		Kind:  kind,
		Stage: stage,
		Code:  ErrnoCode(err),
		Err:   err,
	}
}

// ErrnoCode extracts a system errno from err, or NoCode.
func ErrnoCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return NoCode
}

// Diagnostic renders the one-line message printed before the process exits.
func Diagnostic(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return fmt.Sprintf("Failed with error %d on %s", be.Code, be.Stage)
	}
	return fmt.Sprintf("Failed with error %d on %s", NoCode, err)
}
