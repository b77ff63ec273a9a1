package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every markdown note under the root.
const DefaultPattern = "**/*.md"

// Glob returns the notes under root matching any of the doublestar patterns,
// as paths joined with root, sorted and without duplicates.
func Glob(ctx context.Context, root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
		if err != nil {
			return nil, fmt.Errorf("glob %q under %s: %w", p, root, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, filepath.Join(root, filepath.FromSlash(m)))
		}
	}
	sort.Strings(out)
	return out, nil
}
