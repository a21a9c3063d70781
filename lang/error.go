package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrLex       = NewError("lexical error")
	ErrSyntax    = NewError("syntax error")
	ErrBinding   = NewError("binding error")
	ErrRuntime   = NewError("runtime error")
	ErrReadInput = NewError("failed to read input")
	ErrFormat    = NewError("format error")
	ErrFilter    = NewError("invalid token filter")
)

// Error represents an error with optional source position and structured
// logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.Wrap], [Error.With] or
// [Error.WithPosition] still match that sentinel with [errors.Is].
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	base  *Error      // Sentinel this error was derived from
	pos   *Position   // Source position, if known
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<msg> at <line>:<col>: <err>", omitting each
// part that is not set.
func (e *Error) Error() string {
	head := e.msg
	if e.pos != nil {
		head = strings.TrimSpace(head + " at " + e.pos.String())
	}

	part := make([]string, 0, 2)

	if head != "" {
		part = append(part, head)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || e.root() == t
}

// Position returns the source position attached to e, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition returns a copy of e reporting the given source position.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = &pos

	return c
}

func (e *Error) clone() *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		base:  e.root(),
		pos:   e.pos,
		attrs: e.attrs, // Share attrs
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// errTryNext signals that a backtracking alternative does not apply and the
// parser should rewind and try the next one. It never leaves the parser.
var errTryNext = errors.New("try next alternative")

// partialMatch is an errTryNext raised after an alternative consumed tokens.
// The cause describes where the alternative gave up.
type partialMatch struct{ cause error }

func (e *partialMatch) Error() string { return errTryNext.Error() + ": " + e.cause.Error() }

func (e *partialMatch) Is(target error) bool { return target == errTryNext }
