package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// kVaultMarker is the directory that marks a note collection root.
	kVaultMarker = ".obsidian"
)

// Document is a note loaded from disk.
type Document struct {
	Path string
	Text string
	Mode os.FileMode
}

// Insert returns a copy of d with text inserted at the byte offset.
func (d Document) Insert(offset int, text string) (Document, error) {
	if offset < 0 || offset > len(d.Text) {
		return Document{}, fmt.Errorf("insert offset %d out of range [0, %d]", offset, len(d.Text))
	}
	out := d
	out.Text = d.Text[:offset] + text + d.Text[offset:]
	return out, nil
}

// Manager reads and writes notes.
type Manager interface {
	Load(ctx context.Context, path string) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// FSManager manages notes on disk.
type FSManager struct{}

func NewFSManager() *FSManager { return &FSManager{} }

func (m *FSManager) Load(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return Document{}, fmt.Errorf("note path is required")
	}

	fi, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("stat note %s: %w", path, err)
	}
	if fi.IsDir() {
		return Document{}, fmt.Errorf("note path is a directory: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read note %s: %w", path, err)
	}
	return Document{Path: path, Text: string(b), Mode: fi.Mode().Perm()}, nil
}

func (m *FSManager) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(doc.Path) == "" {
		return fmt.Errorf("note path is empty")
	}

	mode := doc.Mode
	if mode == 0 {
		mode = 0o644
	}

	// Write in place so editors holding the file keep the same inode.
	if err := os.WriteFile(doc.Path, []byte(doc.Text), mode); err != nil {
		return fmt.Errorf("write note %s: %w", doc.Path, err)
	}
	return nil
}

// OffsetAt converts a 1-based line and 1-based column (counted in characters)
// to a byte offset in text. A column past the end of the line clamps to the
// line end.
func OffsetAt(text string, line, col int) (int, error) {
	if line < 1 || col < 1 {
		return 0, fmt.Errorf("line and column are 1-based, got %d:%d", line, col)
	}

	start := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d is past the end of the note (%d lines)", line, l)
		}
		start += i + 1
	}

	end := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		end = start + i
	}

	off := start
	for c := 1; c < col && off < end; c++ {
		_, size := utf8.DecodeRuneInString(text[off:end])
		off += size
	}
	return off, nil
}

// FindRoot returns the note collection root for path: the nearest ancestor
// directory containing .obsidian, or the note's own directory.
func FindRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	noteDir := filepath.Dir(abs)

	for dir := noteDir; ; {
		fi, err := os.Stat(filepath.Join(dir, kVaultMarker))
		if err == nil && fi.IsDir() {
			return dir, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", filepath.Join(dir, kVaultMarker), err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return noteDir, nil
		}
		dir = parent
	}
}
