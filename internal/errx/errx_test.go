package errx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"settings", fmt.Errorf("validate: %w", ErrMissingSettings), ExitConfig},
		{"execution", Execution(errors.New("exit status 1")), ExitExecution},
		{"diagnostic", Diagnostic("boom"), ExitExecution},
		{"changed", ErrDocumentChanged, ExitFailure},
		{"other", errors.New("disk full"), ExitFailure},
	}
	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("%s: ExitCode() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestExecution_KeepsDetail(t *testing.T) {
	t.Parallel()

	detail := errors.New("exit status 2")
	err := Execution(detail)
	if !errors.Is(err, ErrExecution) || !errors.Is(err, detail) {
		t.Fatalf("Execution() = %v, want it to wrap both ErrExecution and the detail", err)
	}
	if Execution(nil) != ErrExecution {
		t.Fatalf("Execution(nil) should return ErrExecution")
	}
}

func TestDiagnostic_IncludesStderr(t *testing.T) {
	t.Parallel()

	err := Diagnostic("Syntax error reading source")
	if !errors.Is(err, ErrDiagnostic) {
		t.Fatalf("Diagnostic() does not wrap ErrDiagnostic")
	}
	if !strings.Contains(err.Error(), "Syntax error reading source") {
		t.Fatalf("Diagnostic() = %q, want stderr text included", err.Error())
	}
}

func TestDiagnostic_BlankStderrIsQuoted(t *testing.T) {
	t.Parallel()

	err := Diagnostic("\n")
	if !errors.Is(err, ErrDiagnostic) {
		t.Fatalf("Diagnostic() does not wrap ErrDiagnostic")
	}
	if !strings.HasSuffix(err.Error(), `"\n"`) {
		t.Fatalf("Diagnostic() = %q, want quoted stderr", err.Error())
	}
}
