package content

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const wordsPerMinute = 200

// ReadingTimeMinutes estimates how long an average reader needs for a
// markdown document. Counts only rendered text, not markup.
func ReadingTimeMinutes(markdown string) int {
	source := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	words := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if textNode, ok := n.(*ast.Text); ok {
			words += len(strings.Fields(string(textNode.Segment.Value(source))))
		}
		return ast.WalkContinue, nil
	})

	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
