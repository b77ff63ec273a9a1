package errx

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds. Callers wrap these with %w so the CLI can pick an exit code
// without inspecting messages.
var (
	ErrMissingSettings = errors.New("missing settings")
	ErrExecution       = errors.New("execution failed")
	ErrDiagnostic      = errors.New("interpreter wrote to stderr")

	// ErrDocumentChanged means the note was edited while the interpreter ran and
	// the block could no longer be found.
	ErrDocumentChanged = errors.New("document changed during execution")
)

const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitConfig    = 3
	ExitExecution = 4
)

// Execution wraps the failure reported by the interpreter process.
func Execution(detail error) error {
	if detail == nil {
		return ErrExecution
	}
	return fmt.Errorf("%w: %w", ErrExecution, detail)
}

// Diagnostic wraps stderr content produced by an otherwise clean run.
// Blank stderr is quoted so the message still shows what was written.
func Diagnostic(stderr string) error {
	if strings.TrimSpace(stderr) == "" {
		return fmt.Errorf("%w: %q", ErrDiagnostic, stderr)
	}
	return fmt.Errorf("%w:\n%s", ErrDiagnostic, stderr)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrMissingSettings):
		return ExitConfig
	case errors.Is(err, ErrExecution), errors.Is(err, ErrDiagnostic):
		return ExitExecution
	default:
		return ExitFailure
	}
}
