package mwdump

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies why a dump could not be read.
type ErrorKind int

const (
	// MalformedXML is reported for tokenizer errors, bad entity
	// references and non-integer <ns> values.
	MalformedXML ErrorKind = iota + 1
	// DuplicateRevision is reported when a page holds more than one
	// <revision>. Full-history dumps are not supported.
	DuplicateRevision
	// MissingField is reported when a page or revision closes without
	// a required child.
	MissingField
	// UnexpectedEOF is reported when input ends inside an open page,
	// revision or skipped element.
	UnexpectedEOF
	// StructuralMismatch is reported for events the dump layout does
	// not allow at that point, e.g. an end tag with no matching start.
	StructuralMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedXML:
		return "malformed xml"
	case DuplicateRevision:
		return "duplicate revision"
	case MissingField:
		return "missing field"
	case UnexpectedEOF:
		return "unexpected eof"
	case StructuralMismatch:
		return "structural mismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrMalformedXML       = &Error{Kind: MalformedXML}
	ErrDuplicateRevision  = &Error{Kind: DuplicateRevision}
	ErrMissingField       = &Error{Kind: MissingField}
	ErrUnexpectedEOF      = &Error{Kind: UnexpectedEOF}
	ErrStructuralMismatch = &Error{Kind: StructuralMismatch}
)

// Error is the terminal error of a Parser.
type Error struct {
	Kind ErrorKind
	// Field names the absent child for MissingField.
	Field string
	// Element is the element being read when the error occurred, if
	// known.
	Element string
	Pos     Position
	// Err is the underlying cause, e.g. the tokenizer error.
	Err error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Field != "" {
		s += " " + e.Field
	}
	if e.Element != "" {
		s += " in <" + e.Element + ">"
	}
	if e.Pos.Line > 0 {
		s += " at " + e.Pos.String()
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, and on Field when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

func newError(kind ErrorKind, ev Event, cause error) *Error {
	return &Error{Kind: kind, Element: ev.Name, Pos: ev.Pos, Err: cause}
}

func errMissing(field, element string, pos Position) *Error {
	return &Error{Kind: MissingField, Field: field, Element: element, Pos: pos}
}

func errMismatch(ev Event, format string, args ...interface{}) *Error {
	return newError(StructuralMismatch, ev, errors.Errorf(format, args...))
}
