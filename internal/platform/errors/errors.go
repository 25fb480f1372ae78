// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine facing class of an error. Values are on the wire; append only
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeUnauthorized
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB

	// ErrorCodeInvalidSpec rejects a task configuration at startup
	ErrorCodeInvalidSpec
	// ErrorCodeUnknownLabel is a training label outside the declared encoding
	ErrorCodeUnknownLabel
	// ErrorCodeSchemaMismatch is a batch missing required columns
	ErrorCodeSchemaMismatch
	// ErrorCodeArtifactNotFound is a task that has not been trained yet
	ErrorCodeArtifactNotFound
	// ErrorCodeArtifactCorrupt is a stored artifact that cannot be decoded
	ErrorCodeArtifactCorrupt
)

var statusOf = map[ErrorCode]int{
	ErrorCodeUnavailable:      http.StatusServiceUnavailable,
	ErrorCodeUnauthorized:     http.StatusUnauthorized,
	ErrorCodeInvalidArgument:  http.StatusUnprocessableEntity,
	ErrorCodeInvalidSpec:      http.StatusUnprocessableEntity,
	ErrorCodeUnknownLabel:     http.StatusUnprocessableEntity,
	ErrorCodeValidation:       http.StatusBadRequest,
	ErrorCodeJSON:             http.StatusBadRequest,
	ErrorCodeSchemaMismatch:   http.StatusBadRequest,
	ErrorCodeNotFound:         http.StatusNotFound,
	ErrorCodeArtifactNotFound: http.StatusNotFound,
	ErrorCodeDuplicateKey:     http.StatusConflict,
}

// HTTPStatusCode maps a code to its response status; unmapped codes are 500
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusOf[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrNotFound is returned by single-row lookups that match nothing
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code, a message, and optionally the offending field, an op
// label and the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the JSON body of an error response
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error   { return e.orig }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string   { return e.field }
func (e *Error) Op() string      { return e.op }

// ToWire drops the cause and op; they stay server side
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom converts any error; foreign errors become ErrorCodeUnknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf defaults to ErrorCodeUnknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WithField returns a copy of err's *Error with field set; foreign errors pass through
func WithField(err error, field string) error {
	return edit(err, func(e *Error) { e.field = field })
}

// WithOp returns a copy of err's *Error labelled with op; foreign errors pass through
func WithOp(err error, op string) error {
	return edit(err, func(e *Error) { e.op = op })
}

func edit(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap keeps orig reachable through errors.Is and errors.As
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error {
	return Newf(ErrorCodeInvalidArgument, format, a...)
}
func JSONErrf(format string, a ...any) error       { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error      { return Newf(ErrorCodePanic, format, a...) }
func Unauthorizedf(format string, a ...any) error  { return Newf(ErrorCodeUnauthorized, format, a...) }
func Unavailablef(format string, a ...any) error   { return Newf(ErrorCodeUnavailable, format, a...) }
func InvalidSpecf(format string, a ...any) error   { return Newf(ErrorCodeInvalidSpec, format, a...) }
func UnknownLabelf(format string, a ...any) error  { return Newf(ErrorCodeUnknownLabel, format, a...) }
func Internalf(format string, a ...any) error      { return Newf(ErrorCodeUnknown, format, a...) }
func SchemaMismatchf(format string, a ...any) error {
	return Newf(ErrorCodeSchemaMismatch, format, a...)
}
func ArtifactNotFoundf(format string, a ...any) error {
	return Newf(ErrorCodeArtifactNotFound, format, a...)
}
func ArtifactCorruptf(format string, a ...any) error {
	return Newf(ErrorCodeArtifactCorrupt, format, a...)
}
