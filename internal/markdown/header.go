package markdown

import (
	"strings"

	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ReadHeader returns the YAML front matter of a generated variant, nil if it
// has none or if it cannot be read.
func ReadHeader(content string) map[string]any {
	if !strings.HasPrefix(content, "---") {
		return nil
	}

	md := New(meta.Meta)

	context := parser.NewContext()
	md.Parser().Parse(text.NewReader([]byte(content)), parser.WithContext(context))

	return meta.Get(context)
}
