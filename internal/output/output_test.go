package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cljblock/internal/config"
)

func TestStdPrinter_PrintInsertion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewStdPrinter(&out, &out, false)
	ins := Insertion{Path: "note.md", Language: "clojure", Line: 3, Text: "\n;; 1\n;; 2\n"}

	if err := p.PrintInsertion(context.Background(), ins); err != nil {
		t.Fatalf("PrintInsertion() error = %v", err)
	}
	if want := "inserted 2 line(s) of clojure output after note.md:3\n"; out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}

	out.Reset()
	ins.DryRun = true
	if err := p.PrintInsertion(context.Background(), ins); err != nil {
		t.Fatalf("PrintInsertion() error = %v", err)
	}
	if want := "would insert after note.md:3:\n;; 1\n;; 2\n"; out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestStdPrinter_PrintConfig(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewStdPrinter(&out, &out, false)
	fields := config.Fields(config.Config{BBPath: "/bin/bb", LimitOutput: true})
	if err := p.PrintConfig(context.Background(), "/cfg.yaml", fields); err != nil {
		t.Fatalf("PrintConfig() error = %v", err)
	}
	for _, want := range []string{"path: /cfg.yaml\n", "bb_path: /bin/bb\n", "node_path: (not set)\n", "limit_output: true\n"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	p.JSON = true
	if err := p.PrintConfig(context.Background(), "/cfg.yaml", fields); err != nil {
		t.Fatalf("PrintConfig() error = %v", err)
	}
	var m map[string]string
	if err := json.Unmarshal(out.Bytes(), &m); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if m["bb_path"] != "/bin/bb" || m["path"] != "/cfg.yaml" {
		t.Fatalf("JSON config = %v", m)
	}
}

func TestStdPrinter_PrintBlocks_JSONEmptyIsArray(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewStdPrinter(&out, &out, true)
	if err := p.PrintBlocks(context.Background(), nil); err != nil {
		t.Fatalf("PrintBlocks() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Fatalf("output = %q, want []", out.String())
	}
}

func TestStdPrinter_PrintError(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	p := NewStdPrinter(&stdout, &stderr, false)
	if err := p.PrintError(context.Background(), errors.New("bb_path is empty")); err != nil {
		t.Fatalf("PrintError() error = %v", err)
	}
	if stderr.String() != "error: bb_path is empty\n" || stdout.Len() != 0 {
		t.Fatalf("stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}
