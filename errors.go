package ohist

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRange reports a tid range expression that does not parse.
	ErrMalformedRange = errors.New("malformed tid range")

	// ErrInvertedRange reports a range whose resolved begin is after its end.
	ErrInvertedRange = errors.New("inverted tid range")

	// ErrOutOfOrderRestore reports a transaction arriving at the restore
	// engine with a tid not greater than what the target already holds.
	ErrOutOfOrderRestore = errors.New("transactions out of order")

	// ErrNoData is returned by Storage.LoadAt when the object has no stored
	// revision at the requested tid (never existed, or deleted by then).
	ErrNoData = errors.New("no object data")

	// ErrCommitInProgress is returned by Storage.BeginCommit when another
	// commit is already open. At most one commit may be in flight.
	ErrCommitInProgress = errors.New("commit already in progress")
)

// RangeError reports a problem with a tid range expression. It wraps
// ErrMalformedRange or ErrInvertedRange.
type RangeError struct {
	Expr string
	Err  error
	Msg  string
}

func rangeErrf(expr string, err error, format string, args ...any) error {
	return &RangeError{expr, err, fmt.Sprintf(format, args...)}
}

func (e *RangeError) Unwrap() error { return e.Err }

func (e *RangeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%v %q: %s", e.Err, e.Expr, e.Msg)
	}
	return fmt.Sprintf("%v %q", e.Err, e.Expr)
}

// CorruptDumpError reports structural or integrity damage detected while
// parsing a dump stream. Line is the position of the offending block;
// transactions yielded before the failure remain valid.
type CorruptDumpError struct {
	Name string // name of the input, if known
	Line int
	Msg  string
	Err  error
}

func (e *CorruptDumpError) Unwrap() error { return e.Err }

func (e *CorruptDumpError) Error() string {
	s := fmt.Sprintf("%s+%d: corrupt dump: %s", e.Name, e.Line, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// RestoreError reports a failed replay of one transaction. The target is
// left as if that transaction never started. It wraps ErrOutOfOrderRestore
// when ordering was violated.
type RestoreError struct {
	Tid Tid
	Oid Oid // offending object, if the failure is record-level
	Msg string
	Err error
}

func (e *RestoreError) Unwrap() error { return e.Err }

func (e *RestoreError) Error() string {
	s := fmt.Sprintf("restore txn %v", e.Tid)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
