package app

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"cljblock/internal/codeblock"
	"cljblock/internal/document"
	"cljblock/internal/output"
)

const (
	kDefaultScanWorkers = 8
	kPreviewLen         = 60
)

// ListOptions selects the notes scanned by ListBlocks.
type ListOptions struct {
	Root     string
	Patterns []string
	Workers  int
}

// ListBlocks prints every recognized block in the notes under Root matching
// Patterns. Paths are reported relative to Root.
func (a *App) ListBlocks(ctx context.Context, opts ListOptions) error {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}

	paths, err := document.Glob(ctx, root, opts.Patterns)
	if err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = kDefaultScanWorkers
	}

	perNote := make([][]output.BlockInfo, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			doc, err := a.Documents.Load(gctx, p)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				rel = p
			}
			for _, b := range codeblock.FindAll(doc.Text) {
				perNote[i] = append(perNote[i], output.BlockInfo{
					Path:     filepath.ToSlash(rel),
					Line:     b.Line(doc.Text),
					Language: string(b.Language),
					Preview:  preview(b.Source),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var blocks []output.BlockInfo
	for _, bs := range perNote {
		blocks = append(blocks, bs...)
	}
	a.Logger.Debug().Str("root", root).Int("notes", len(paths)).Int("blocks", len(blocks)).Msg("scanned notes")
	return a.Output.PrintBlocks(ctx, blocks)
}

// preview returns the first non-blank source line, shortened.
func preview(src string) string {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > kPreviewLen {
			return string(r[:kPreviewLen-3]) + "..."
		}
		return line
	}
	return ""
}
