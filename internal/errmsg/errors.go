package errmsg

import (
	"database/sql"
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPersistence means the store rejected a read or write.
	KindPersistence
	// KindNotFound means a referenced playlist, track or entry does not exist.
	KindNotFound
	// KindValidation means the caller supplied structurally invalid input.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindPersistence:
		return "persistence"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   Op
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Persistence wraps a store error. sql.ErrNoRows becomes a NotFound error.
// Returns nil if err is nil. An err that is already an *Error keeps its kind.
func Persistence(op Op, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Op: op, Err: e.Err}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	}
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// NotFound reports a missing entity.
func NotFound(op Op, what string) error {
	return &Error{Kind: KindNotFound, Op: op, Err: errors.New(what + " not found")}
}

// Validation reports invalid caller input.
func Validation(op Op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Err: errors.New(msg)}
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
