package mcleece

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure modes exposed at the Actions
// boundary. The CLI (cmd/mcleece) is the only place these are translated
// to sysexits-style process exit codes.
type ErrorKind int

const (
	// OK indicates success; KindError is never constructed with this kind.
	OK ErrorKind = iota
	// Usage indicates bad arguments to a CLI invocation.
	Usage
	// DataErr indicates malformed input, authentication failure, or a
	// profile mismatch.
	DataErr
	// NoInput indicates the input stream or key file could not be read.
	NoInput
	// CantCreat indicates an output or key file could not be created.
	CantCreat
	// NoPerm indicates a wrong password or private-key authentication
	// failure.
	NoPerm
)

// ExitCode returns the sysexits-inspired process exit code for k.
func (k ErrorKind) ExitCode() int {
	switch k {
	case OK:
		return 0
	case Usage:
		return 64
	case DataErr:
		return 65
	case NoInput:
		return 66
	case CantCreat:
		return 73
	case NoPerm:
		return 77
	default:
		return 1
	}
}

func (k ErrorKind) String() string {
	switch k {
	case OK:
		return "OK"
	case Usage:
		return "USAGE"
	case DataErr:
		return "DATAERR"
	case NoInput:
		return "NOINPUT"
	case CantCreat:
		return "CANTCREAT"
	case NoPerm:
		return "NOPERM"
	default:
		return "UNKNOWN"
	}
}

// KindError wraps an underlying error with its ErrorKind so callers (and
// the CLI) can recover the exit code without string matching.
type KindError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *KindError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mcleece: %s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("mcleece: %s: %s", e.Kind, e.Msg)
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// Wrap builds a KindError, tagging err with kind and a human-readable msg.
func Wrap(kind ErrorKind, msg string, err error) error {
	return &KindError{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to DataErr for errors
// that did not originate from this package (an unannotated failure is
// treated as a data/authentication problem, never silently as success).
func KindOf(err error) ErrorKind {
	if err == nil {
		return OK
	}
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return DataErr
}
