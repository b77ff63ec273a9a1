package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Outcome is the completion policy applied to a finished run.
type Outcome int

const (
	// OutcomeFailure: the process could not start or exited non-zero.
	OutcomeFailure Outcome = iota
	// OutcomeDiagnostic: the run succeeded but wrote to stderr.
	OutcomeDiagnostic
	// OutcomeOutput: clean run with something on stdout.
	OutcomeOutput
	// OutcomeEmpty: clean run, nothing to insert.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailure:
		return "failure"
	case OutcomeDiagnostic:
		return "diagnostic"
	case OutcomeOutput:
		return "output"
	case OutcomeEmpty:
		return "empty"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is what a finished interpreter run produced.
type Result struct {
	Err      error
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Outcome classifies r. The checks are ordered: a failure hides any output,
// and any stderr content, even a lone newline, hides stdout.
func (r Result) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return OutcomeFailure
	case r.Stderr != "":
		return OutcomeDiagnostic
	case strings.TrimSpace(r.Stdout) != "":
		return OutcomeOutput
	default:
		return OutcomeEmpty
	}
}

// Runner starts interpreter processes.
type Runner interface {
	// Start spawns inv and returns at once. The channel receives exactly one
	// Result and is then closed.
	Start(ctx context.Context, inv Invocation) <-chan Result
}

// ProcessRunner is a Runner implemented via os/exec.
type ProcessRunner struct{}

func NewProcessRunner() *ProcessRunner { return &ProcessRunner{} }

func (r *ProcessRunner) Start(ctx context.Context, inv Invocation) <-chan Result {
	done := make(chan Result, 1)

	if err := ctx.Err(); err != nil {
		done <- Result{Err: err}
		close(done)
		return done
	}
	if strings.TrimSpace(inv.Name) == "" {
		done <- Result{Err: errors.New("interpreter command is empty")}
		close(done)
		return done
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killGroup(cmd) }

	start := time.Now()
	if err := cmd.Start(); err != nil {
		done <- Result{Err: fmt.Errorf("start %s: %w", inv.Name, err), Duration: time.Since(start)}
		close(done)
		return done
	}

	go func() {
		defer close(done)
		err := cmd.Wait()
		if err != nil {
			err = fmt.Errorf("run %s: %w", inv.Name, err)
		}
		done <- Result{
			Err:      err,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Duration: time.Since(start),
		}
	}()
	return done
}
