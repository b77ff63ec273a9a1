package codeblock

import (
	"fmt"
	"regexp"
	"strings"
)

// Language is a recognized fence tag.
type Language string

const (
	Clojure       Language = "clojure"
	ClojureScript Language = "clojurescript"
)

// ParseLanguage maps a fence tag to a Language.
func ParseLanguage(tag string) (Language, error) {
	switch Language(strings.TrimSpace(tag)) {
	case Clojure:
		return Clojure, nil
	case ClojureScript:
		return ClojureScript, nil
	default:
		return "", fmt.Errorf("unsupported language tag: %q", tag)
	}
}

// Block is a fenced code block found in a note.
type Block struct {
	Language Language

	// Source is the text between the fence lines, without the newline that
	// precedes the closing fence.
	Source string

	// Start and End delimit the outer span in bytes, from the first backtick of
	// the opening fence to just past the closing fence.
	Start int
	End   int

	// InsertAt is the byte offset right after the closing fence, where output
	// is written back.
	InsertAt int
}

// Line returns the 1-based line number of the opening fence in doc.
func (b Block) Line(doc string) int {
	if b.Start > len(doc) {
		return 0
	}
	return strings.Count(doc[:b.Start], "\n") + 1
}

// The opening line is exactly ```<tag> and the closing line exactly ```,
// both allowing trailing blanks. The lazy body stops at the first line that
// is a bare fence, so backticks elsewhere in the body are kept.
var reFence = regexp.MustCompile("(?m)^```(clojurescript|clojure)[ \\t]*\\r?\\n((?s:.*?))^```[ \\t]*(\\r?)$")

// FindAll returns every recognized block in document order.
func FindAll(doc string) []Block {
	matches := reFence.FindAllStringSubmatchIndex(doc, -1)
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		body := doc[m[4]:m[5]]
		body = strings.TrimSuffix(body, "\n")
		body = strings.TrimSuffix(body, "\r")

		// A trailing \r belongs to the line ending, not the fence.
		insertAt := m[1] - (m[7] - m[6])

		lang, err := ParseLanguage(doc[m[2]:m[3]])
		if err != nil {
			continue
		}
		blocks = append(blocks, Block{
			Language: lang,
			Source:   body,
			Start:    m[0],
			End:      m[1],
			InsertAt: insertAt,
		})
	}
	return blocks
}

// Locate returns the first block whose outer span contains offset. Both ends
// are inclusive, so a cursor on either fence line counts as inside.
func Locate(doc string, offset int) (Block, bool) {
	for _, b := range FindAll(doc) {
		if b.Start <= offset && offset <= b.End {
			return b, true
		}
	}
	return Block{}, false
}

// Relocate finds prev again in a document that may have been edited since it
// was located. Candidates must have the same language and source; the one
// starting nearest to prev.Start wins.
func Relocate(doc string, prev Block) (Block, bool) {
	var (
		best  Block
		found bool
		dist  int
	)
	for _, b := range FindAll(doc) {
		if b.Language != prev.Language || b.Source != prev.Source {
			continue
		}
		d := b.Start - prev.Start
		if d < 0 {
			d = -d
		}
		if !found || d < dist {
			best, dist, found = b, d, true
		}
	}
	return best, found
}
