package fields

import (
	"strings"

	"github.com/yuin/goldmark"
	gm_ast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// HeadingTitle returns the text of the first level-1 heading of the
// Markdown body, or "" when there is none.
func HeadingTitle(body string) string {
	if body == "" {
		return ""
	}

	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var title strings.Builder
	found := false
	_ = gm_ast.Walk(doc, func(n gm_ast.Node, entering bool) (gm_ast.WalkStatus, error) {
		if !entering {
			return gm_ast.WalkContinue, nil
		}
		h, ok := n.(*gm_ast.Heading)
		if !ok || h.Level != 1 {
			return gm_ast.WalkContinue, nil
		}
		collectText(&title, h, source)
		found = true
		return gm_ast.WalkStop, nil
	})
	if !found {
		return ""
	}
	return strings.TrimSpace(title.String())
}

func collectText(b *strings.Builder, n gm_ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gm_ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gm_ast.String:
			b.Write(t.Value)
		default:
			collectText(b, c, source)
		}
	}
}
