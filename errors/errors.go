// Package errors defines the FSAL error taxonomy shared by every package in
// this module. It deliberately does not reuse Go's syscall.Errno as the
// primary error type: the taxonomy groups many distinct errnos under one
// kind (STALE, ATTRNOTSUPP, ...) and synthesizes kinds that have no errno
// at all (TOOSMALL, SERVERFAULT).
package errors

import (
	"fmt"
	"syscall"
)

// Kind is one entry of the FSAL error taxonomy. The zero value is NoError.
type Kind uint8

const (
	NoError Kind = iota
	Fault
	NotADirectory
	Stale
	NoMem
	Inval
	AttrNotSupp
	NotSupp
	TooSmall
	NameTooLong
	ServerFault
	Busy
	// System is the passthrough kind: the wrapped error is a syscall.Errno
	// that didn't warrant translation into one of the kinds above.
	System
)

func (k Kind) String() string {
	switch k {
	case NoError:
		return "NO_ERROR"
	case Fault:
		return "FAULT"
	case NotADirectory:
		return "NOT_A_DIRECTORY"
	case Stale:
		return "STALE"
	case NoMem:
		return "NO_MEM"
	case Inval:
		return "INVAL"
	case AttrNotSupp:
		return "ATTRNOTSUPP"
	case NotSupp:
		return "NOTSUPP"
	case TooSmall:
		return "TOOSMALL"
	case NameTooLong:
		return "NAMETOOLONG"
	case ServerFault:
		return "SERVERFAULT"
	case Busy:
		return "BUSY"
	case System:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Error is the concrete error type returned by every operation in this
// module. Err, when non-nil, is the underlying cause (typically a
// syscall.Errno); it is preserved so callers can still errors.Is/As against
// the original errno.
type Error struct {
	Kind Kind
	Err  error
}

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same Kind. Two *Error values with
// equal Kind are considered equivalent regardless of their wrapped cause,
// which is what callers that switch on the taxonomy (rather than on errno)
// want.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}

// FromErrno maps a raw errno returned by the kernel syscall adapter to the
// FSAL taxonomy, using the default mapping table. Call sites that need the
// ENOENT-means-STALE special case (handle re-open) or the readlink
// exact-fill-means-NAMETOOLONG special case must apply those before falling
// back to FromErrno for everything else.
func FromErrno(errno syscall.Errno) *Error {
	switch errno {
	case 0:
		return nil
	case syscall.ENOMEM:
		return New(NoMem, errno)
	case syscall.EINVAL:
		return New(Inval, errno)
	case syscall.ENAMETOOLONG:
		return New(NameTooLong, errno)
	case syscall.ENOTDIR:
		return New(NotADirectory, errno)
	case syscall.EFAULT:
		return New(Fault, errno)
	case syscall.EBUSY:
		return New(Busy, errno)
	default:
		return New(System, errno)
	}
}

// Stale builds the STALE error for a handle that the kernel no longer
// recognizes.
func Stale(errno syscall.Errno) *Error {
	return New(Stale, errno)
}
