// Package errs defines the error kinds shared by the render pipeline.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// category of a pipeline failure
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindRender        Kind = "render"
	KindIO            Kind = "io"
)

// sentinels for errors.Is checks against a kind
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrRender        = &Error{Kind: KindRender}
	ErrIO            = &Error{Kind: KindIO}
)

// Error carries the kind of failure, the operation that failed and the cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	b.WriteString(" error")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func Configuration(op, format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Render(op string, err error) error {
	return &Error{Kind: KindRender, Op: op, Err: err}
}

func Renderf(op, format string, args ...any) error {
	return &Error{Kind: KindRender, Op: op, Message: fmt.Sprintf(format, args...)}
}

func IO(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
