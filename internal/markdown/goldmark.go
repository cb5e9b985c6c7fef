package markdown

import (
	"github.com/Bornholm/amatl/pkg/markdown/renderer/markdown"
	"github.com/Bornholm/amatl/pkg/markdown/renderer/markdown/node"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// New returns the markdown processor used to read article bodies and to
// render them back as markdown. Front matter is handled beforehand so that
// a leading thematic break is never mistaken for a metadata block.
func New(extenders ...goldmark.Extender) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			append([]goldmark.Extender{extension.GFM}, extenders...)...,
		),
		goldmark.WithRenderer(markdown.NewRenderer()),
		goldmark.WithRendererOptions(
			markdown.WithNodeRenderers(node.Renderers()),
		),
	)
}
