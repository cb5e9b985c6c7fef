package model

import "slices"

type BlockKind string

const (
	BlockParagraph     BlockKind = "paragraph"
	BlockHeading       BlockKind = "heading"
	BlockFencedCode    BlockKind = "fenced-code"
	BlockCode          BlockKind = "code"
	BlockList          BlockKind = "list"
	BlockQuote         BlockKind = "blockquote"
	BlockTable         BlockKind = "table"
	BlockHTML          BlockKind = "html"
	BlockMarker        BlockKind = "marker"
	BlockThematicBreak BlockKind = "thematic-break"
	BlockImage         BlockKind = "image"
	BlockCallout       BlockKind = "callout"
	// BlockCalloutOpen and BlockCalloutClose are the delimiters of a callout
	// enclosing region markers, its content being kept as separate blocks.
	BlockCalloutOpen  BlockKind = "callout-open"
	BlockCalloutClose BlockKind = "callout-close"
	BlockMath         BlockKind = "math"
)

// Block is the smallest transformable unit of a document.
type Block struct {
	Index int
	Kind  BlockKind
	// Raw is the exact source text of the block, without trailing newline.
	Raw string
	// Level is the heading level, zero for other kinds.
	Level int
	// Text is the plain heading text.
	Text string
	// Info is the fenced code block info string.
	Info string
	// Regions holds the region tags of the block, most specific first.
	Regions []string
}

func (b Block) InRegion(name string) bool {
	return slices.Contains(b.Regions, name)
}

func (b Block) clone() Block {
	b.Regions = slices.Clone(b.Regions)
	if b.Regions == nil {
		b.Regions = []string{}
	}
	return b
}
