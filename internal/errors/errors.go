package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindUnauthenticated Kind = "unauthenticated"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUpstream        Kind = "upstream_unavailable"
	KindParse           Kind = "parse_error"
	KindEmptyResult     Kind = "empty_result"
	KindPersistence     Kind = "persistence_error"
	KindInternal        Kind = "internal"
)

var kind2http = map[Kind]int{
	KindInvalidInput:    http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindUpstream:        http.StatusServiceUnavailable,
	KindParse:           http.StatusBadGateway,
	KindEmptyResult:     http.StatusBadGateway,
	KindPersistence:     http.StatusInternalServerError,
	KindInternal:        http.StatusInternalServerError,
}

var defaultMessages = map[Kind]string{
	KindInvalidInput:    "invalid input",
	KindUnauthenticated: "authentication required",
	KindNotFound:        "not found",
	KindConflict:        "already exists",
	KindUpstream:        "quiz provider is unavailable",
	KindParse:           "could not parse quiz from provider response",
	KindEmptyResult:     "provider returned no questions",
	KindPersistence:     "storage failure",
	KindInternal:        "internal error",
}

// Error is the domain error rendered at the HTTP boundary.
type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	status  int
	err     error
}

func New(kind Kind, opts ...Option) *Error {
	e := &Error{
		Kind:    kind,
		Message: defaultMessages[kind],
	}

	for _, opt := range opts {
		opt.apply(e)
	}

	return e
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.err != nil {
		s += fmt.Sprintf(": %s", e.err)
	}

	return s
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) HTTPStatusCode() int {
	if e.status != 0 {
		return e.status
	}
	if c, ok := kind2http[e.Kind]; ok {
		return c
	}

	return http.StatusInternalServerError
}

func Convert(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return Internal(err)
	}

	return e
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func Internal(err error) *Error {
	return New(KindInternal, WithCause(err))
}

func InvalidInput(format string, args ...any) *Error {
	return New(KindInvalidInput, WithMessagef(format, args...))
}

func Upstream(err error, opts ...Option) *Error {
	return New(KindUpstream, append([]Option{WithCause(err)}, opts...)...)
}

func Parse(format string, args ...any) *Error {
	return New(KindParse, WithMessagef(format, args...))
}

func EmptyResult() *Error {
	return New(KindEmptyResult)
}

func Persistence(err error) *Error {
	return New(KindPersistence, WithCause(err))
}

type Option interface {
	apply(*Error)
}

type optionFunc func(*Error)

func (f optionFunc) apply(e *Error) {
	f(e)
}

func WithCause(err error) Option {
	return optionFunc(func(e *Error) {
		e.err = err
	})
}

func WithMessagef(format string, args ...any) Option {
	return optionFunc(func(e *Error) {
		e.Message = fmt.Sprintf(format, args...)
	})
}

// WithStatus overrides the HTTP status derived from the kind.
func WithStatus(status int) Option {
	return optionFunc(func(e *Error) {
		e.status = status
	})
}
