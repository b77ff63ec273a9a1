package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cljblock/internal/config"
)

// BlockInfo describes a recognized block in a note, for `cljblock blocks`.
type BlockInfo struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Language string `json:"language"`
	Preview  string `json:"preview"`
}

// Insertion describes output written back into a note.
type Insertion struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
	DryRun   bool   `json:"dry_run,omitempty"`
}

// Printer is the user-facing notification surface.
type Printer interface {
	Notice(ctx context.Context, msg string) error
	PrintInsertion(ctx context.Context, ins Insertion) error
	PrintBlocks(ctx context.Context, blocks []BlockInfo) error
	PrintConfig(ctx context.Context, path string, fields []config.Field) error
	PrintError(ctx context.Context, err error) error
}

// StdPrinter is a simple stdout/stderr printer.
type StdPrinter struct {
	Out  io.Writer
	Err  io.Writer
	JSON bool
}

func NewStdPrinter(out io.Writer, err io.Writer, asJSON bool) *StdPrinter {
	return &StdPrinter{Out: out, Err: err, JSON: asJSON}
}

func (p *StdPrinter) Notice(ctx context.Context, msg string) error {
	if p.JSON {
		return json.NewEncoder(p.Out).Encode(map[string]string{"notice": msg})
	}
	_, err := fmt.Fprintln(p.Out, msg)
	return err
}

func (p *StdPrinter) PrintInsertion(ctx context.Context, ins Insertion) error {
	if p.JSON {
		return json.NewEncoder(p.Out).Encode(ins)
	}
	if ins.DryRun {
		if _, err := fmt.Fprintf(p.Out, "would insert after %s:%d:\n", ins.Path, ins.Line); err != nil {
			return err
		}
		_, err := fmt.Fprint(p.Out, strings.TrimPrefix(ins.Text, "\n"))
		return err
	}
	n := strings.Count(strings.TrimSpace(ins.Text), "\n") + 1
	_, err := fmt.Fprintf(p.Out, "inserted %d line(s) of %s output after %s:%d\n", n, ins.Language, ins.Path, ins.Line)
	return err
}

func (p *StdPrinter) PrintBlocks(ctx context.Context, blocks []BlockInfo) error {
	if p.JSON {
		if blocks == nil {
			blocks = []BlockInfo{}
		}
		return json.NewEncoder(p.Out).Encode(blocks)
	}
	for _, b := range blocks {
		if _, err := fmt.Fprintf(p.Out, "%s:%d: %s  %s\n", b.Path, b.Line, b.Language, b.Preview); err != nil {
			return err
		}
	}
	return nil
}

func (p *StdPrinter) PrintConfig(ctx context.Context, path string, fields []config.Field) error {
	if p.JSON {
		m := map[string]string{"path": path}
		for _, f := range fields {
			m[f.Key] = f.Value
		}
		return json.NewEncoder(p.Out).Encode(m)
	}

	if _, err := fmt.Fprintf(p.Out, "path: %s\n", path); err != nil {
		return err
	}
	for _, f := range fields {
		v := f.Value
		if v == "" {
			v = "(not set)"
		}
		if _, err := fmt.Fprintf(p.Out, "%s: %s\n", f.Key, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *StdPrinter) PrintError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if p.JSON {
		return json.NewEncoder(p.Err).Encode(map[string]string{"error": err.Error()})
	}
	_, werr := fmt.Fprintf(p.Err, "error: %v\n", err)
	return werr
}
