package render

import (
	"fmt"
	"strings"
)

const (
	// CommentPrefix starts every inserted line; `;;` is a Clojure line comment.
	CommentPrefix = ";; "

	DefaultMaxChars = 10000
)

// Options controls how interpreter output is rendered.
type Options struct {
	// Limit enables truncation to MaxChars characters.
	Limit bool

	// MaxChars is the truncation threshold in characters. Zero or less means
	// DefaultMaxChars.
	MaxChars int
}

// CommentOutput turns captured stdout into the text inserted after a block:
// trimmed, optionally truncated, every line commented, and wrapped in a
// leading and trailing newline. Empty output renders as "".
func CommentOutput(stdout string, opts Options) string {
	body := strings.TrimSpace(stdout)
	if body == "" {
		return ""
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")

	if opts.Limit {
		body = Truncate(body, opts.MaxChars)
	}
	return "\n" + prefixLines(CommentPrefix, body)
}

// Truncate keeps the first limit characters of s and appends a note with the
// number of characters dropped. s is returned unchanged when it fits.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxChars
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	omitted := len(runes) - limit
	return string(runes[:limit]) + fmt.Sprintf("\n... %d characters omitted", omitted)
}

func prefixLines(prefix string, body string) string {
	lines := strings.Split(body, "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
