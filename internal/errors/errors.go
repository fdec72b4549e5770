// Package errors provides the closed set of failure kinds reported by kubegen.
//
// Every component returns an *Error (possibly wrapped with fmt.Errorf) so the
// CLI can branch on what went wrong instead of a bare pass/fail:
//
//	if errors.KindOf(err) == errors.KindToolNotFound {
//	    ui.Warning("install kubectl first")
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	// KindNotFound is a missing file or directory.
	KindNotFound Kind = "NOT_FOUND"

	// KindToolNotFound is a missing external binary (kubectl).
	KindToolNotFound Kind = "TOOL_NOT_FOUND"

	// KindParse is malformed YAML or JSON input.
	KindParse Kind = "PARSE"

	// KindValidation is input that parsed but failed a structural check.
	KindValidation Kind = "VALIDATION"

	// KindRender is a template that failed to parse or execute.
	KindRender Kind = "RENDER"

	// KindProcess is a non-zero exit from an external process.
	KindProcess Kind = "PROCESS"

	// KindUnknown is everything else.
	KindUnknown Kind = "UNKNOWN"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Stderr holds the verbatim stderr of a failed process, if any.
	Stderr string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Process creates a KindProcess error carrying the process stderr.
func Process(stderr string, format string, args ...any) *Error {
	return &Error{Kind: KindProcess, Message: fmt.Sprintf(format, args...), Stderr: stderr}
}

// KindOf returns the kind of the first *Error in err's chain.
// Nil yields the empty kind; errors from outside this package yield KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StderrOf returns the process stderr carried anywhere in err's chain.
func StderrOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Stderr
	}
	return ""
}
