// Package builderr classifies build failures into the kinds the CLI reports.
package builderr

import (
	"errors"
	"fmt"
)

// Kind identifies the broad class of a build failure.
type Kind string

// Failure kinds reported by a build run.
const (
	KindIO       Kind = "io"
	KindParse    Kind = "parse"
	KindTemplate Kind = "template"
	KindConfig   Kind = "config"
)

// Exit codes returned by the CLI for each kind.
const (
	ExitOK           = 0
	ExitUnclassified = 1
	ExitConfig       = 2
	ExitIO           = 3
	ExitParse        = 4
	ExitTemplate     = 5
)

// Error is a classified build failure. Path is the file the failure relates
// to, relative to the content root when known.
type Error struct {
	Err  error
	Kind Kind
	Op   string
	Path string
}

func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IO reports a filesystem failure while performing op on path.
func IO(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// Parse reports malformed input in path.
func Parse(op, path string, err error) error {
	return &Error{Kind: KindParse, Op: op, Path: path, Err: err}
}

// Template reports a missing template or a failed render for path.
func Template(op, path string, err error) error {
	return &Error{Kind: KindTemplate, Op: op, Path: path, Err: err}
}

// Config reports an invalid build configuration.
func Config(format string, args ...any) error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first classified error in err's chain, or
// an empty Kind when none is present.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindConfig:
		return ExitConfig
	case KindIO:
		return ExitIO
	case KindParse:
		return ExitParse
	case KindTemplate:
		return ExitTemplate
	default:
		return ExitUnclassified
	}
}
