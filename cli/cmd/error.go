package cmd

import (
	"log/slog"
	"strings"
)

// Error represents a CLI command error with structured logging support.
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] match it
// with errors.Is.
type Error struct {
	msg   string
	err   error
	base  *Error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && (e == t || e.root() == t)
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, base: e.root(), attrs: e.attrs}
}

// With returns a copy of e with attrs added for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		base:  e.root(),
		attrs: append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...),
	}
}

var (
	ErrSourceNotFound = NewError("source not found")
	ErrReadSource     = NewError("read source")
	ErrWriteOutput    = NewError("write output")
	ErrWriteConfig    = NewError("write configuration file")
	ErrFileExists     = NewError("file exists (use --force to overwrite)")
)
