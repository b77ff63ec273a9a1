package document

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestFSManager_LoadInsertSave_Sanity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	const text = "```clojure\n(+ 1 2)\n```\nafter\n"
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write note: %v", err)
	}

	m := NewFSManager()
	doc, err := m.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Text != text {
		t.Fatalf("Load() text = %q, want %q", doc.Text, text)
	}

	at := strings.Index(text, "```\nafter") + 3
	doc, err = doc.Insert(at, "\n;; 3\n")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := m.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if want := "```clojure\n(+ 1 2)\n```\n;; 3\n\nafter\n"; string(b) != want {
		t.Fatalf("saved note = %q, want %q", string(b), want)
	}

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat note: %v", err)
		}
		if got := fi.Mode().Perm(); got != 0o600 {
			t.Fatalf("note perms = %#o, want %#o preserved", got, 0o600)
		}
	}
}

func TestFSManager_Load_Errors(t *testing.T) {
	t.Parallel()

	m := NewFSManager()
	if _, err := m.Load(context.Background(), ""); err == nil {
		t.Fatalf("Load(\"\") expected error")
	}
	if _, err := m.Load(context.Background(), t.TempDir()); err == nil || !strings.Contains(err.Error(), "directory") {
		t.Fatalf("Load(dir) error = %v, want directory error", err)
	}
	if _, err := m.Load(context.Background(), filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatalf("Load(missing) expected error")
	}
}

func TestDocument_Insert_OutOfRange(t *testing.T) {
	t.Parallel()

	d := Document{Text: "abc"}
	if _, err := d.Insert(4, "x"); err == nil {
		t.Fatalf("Insert(4) expected error")
	}
	if _, err := d.Insert(-1, "x"); err == nil {
		t.Fatalf("Insert(-1) expected error")
	}
	got, err := d.Insert(3, "x")
	if err != nil || got.Text != "abcx" {
		t.Fatalf("Insert(3) = %q, %v", got.Text, err)
	}
}

func TestOffsetAt(t *testing.T) {
	t.Parallel()

	const text = "ab\nλx\n\nlast"
	cases := []struct {
		line, col int
		want      int
	}{
		{1, 1, 0},
		{1, 3, 2},
		{1, 99, 2},
		{2, 1, 3},
		{2, 2, 5}, // λ is two bytes
		{3, 1, 7},
		{4, 5, 12},
	}
	for _, tc := range cases {
		got, err := OffsetAt(text, tc.line, tc.col)
		if err != nil {
			t.Fatalf("OffsetAt(%d, %d) error = %v", tc.line, tc.col, err)
		}
		if got != tc.want {
			t.Fatalf("OffsetAt(%d, %d) = %d, want %d", tc.line, tc.col, got, tc.want)
		}
	}

	if _, err := OffsetAt(text, 5, 1); err == nil {
		t.Fatalf("OffsetAt past last line expected error")
	}
	if _, err := OffsetAt(text, 0, 1); err == nil {
		t.Fatalf("OffsetAt(0, 1) expected error")
	}
}

func TestFindRoot(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	if err := os.MkdirAll(filepath.Join(vault, ".obsidian"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	notes := filepath.Join(vault, "daily", "2026")
	if err := os.MkdirAll(notes, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := FindRoot(filepath.Join(notes, "note.md"))
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	if got != vault {
		t.Fatalf("FindRoot() = %q, want vault %q", got, vault)
	}

	loose := t.TempDir()
	got, err = FindRoot(filepath.Join(loose, "note.md"))
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	if got != loose {
		t.Fatalf("FindRoot() = %q, want note dir %q", got, loose)
	}
}

func TestGlob(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, p := range []string{"a.md", "sub/b.md", "sub/c.txt", "sub/deep/d.md"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got, err := Glob(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	want := []string{
		filepath.Join(root, "a.md"),
		filepath.Join(root, "sub", "b.md"),
		filepath.Join(root, "sub", "deep", "d.md"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Glob() = %v, want %v", got, want)
	}

	got, err = Glob(context.Background(), root, []string{"sub/*.md", "sub/*.md"})
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(got) != 1 || got[0] != filepath.Join(root, "sub", "b.md") {
		t.Fatalf("Glob(sub/*.md) = %v", got)
	}

	if _, err := Glob(context.Background(), root, []string{"[unclosed"}); err == nil {
		t.Fatalf("Glob() expected error for invalid pattern")
	}
}

func TestWatch_DetectsWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}

	w, err := Watch(path)
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	if w.Changed() {
		t.Fatalf("Changed() = true before any write")
	}

	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !w.Changed() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	changed, err := w.Close()
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !changed {
		t.Fatalf("Close() changed = false, want true after write")
	}
}
