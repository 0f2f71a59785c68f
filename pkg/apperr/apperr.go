package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBusinessRule
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Kinder is implemented by errors that know how they should be reported.
type Kinder interface {
	Kind() Kind
}

// Publisher is implemented by errors whose Error() carries internal detail
// that must not reach end users.
type Publisher interface {
	Public() string
}

// Detailer is implemented by errors that carry fields a client can act on,
// such as the amounts behind a failed charge.
type Detailer interface {
	Details() map[string]any
}

var (
	ErrUnauthorized = New(KindUnauthorized, "authentication required")
	ErrForbidden    = New(KindForbidden, "you do not have access to this resource")
	ErrNotFound     = New(KindNotFound, "resource not found")
)

type Error struct {
	kind Kind
	msg  string
}

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Kind() Kind    { return e.kind }

func Validation(format string, args ...any) error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// DetailsOf returns the client-facing fields of err, or nil. Internal errors
// never expose details.
func DetailsOf(err error) map[string]any {
	var d Detailer
	if KindOf(err) == KindInternal || !errors.As(err, &d) {
		return nil
	}
	return d.Details()
}

// PublicMessage returns the text safe to show to an end user. Context added
// by wrapping is dropped; only the message of the classified error is kept.
func PublicMessage(err error) string {
	var p Publisher
	if errors.As(err, &p) {
		return p.Public()
	}
	var k Kinder
	if !errors.As(err, &k) || k.Kind() == KindInternal {
		return "internal server error"
	}
	if e, ok := k.(error); ok {
		return e.Error()
	}
	return "internal server error"
}
