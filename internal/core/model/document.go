package model

import (
	"slices"
)

// Document is the parsed representation of an authored article. Its blocks
// are never mutated once parsed: accessors return copies and transformations
// produce new documents or variants.
type Document struct {
	metadata Metadata
	blocks   []Block
	regions  []Region
	warnings []Warning
}

func (d *Document) Metadata() Metadata {
	return d.metadata.Clone()
}

func (d *Document) Blocks() []Block {
	blocks := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		blocks[i] = b.clone()
	}
	return blocks
}

func (d *Document) Block(index int) (Block, bool) {
	if index < 0 || index >= len(d.blocks) {
		return Block{}, false
	}
	return d.blocks[index].clone(), true
}

func (d *Document) Len() int {
	return len(d.blocks)
}

func (d *Document) Regions() []Region {
	return slices.Clone(d.regions)
}

// Warnings returns the recoverable problems found while reading the source,
// e.g. regions closed implicitly at the end of the document.
func (d *Document) Warnings() []Warning {
	return slices.Clone(d.warnings)
}

// WithRegions returns a copy of the document whose blocks carry the given
// region tags.
func (d *Document) WithRegions(blocks []Block, regions []Region, warnings ...Warning) *Document {
	copied := make([]Block, len(blocks))
	for i, b := range blocks {
		copied[i] = b.clone()
	}

	return &Document{
		metadata: d.metadata.Clone(),
		blocks:   copied,
		regions:  slices.Clone(regions),
		warnings: append(slices.Clone(d.warnings), warnings...),
	}
}

func NewDocument(metadata Metadata, blocks []Block) *Document {
	copied := make([]Block, len(blocks))
	for i, b := range blocks {
		b.Index = i
		copied[i] = b.clone()
	}

	return &Document{
		metadata: metadata.Clone(),
		blocks:   copied,
		regions:  make([]Region, 0),
		warnings: make([]Warning, 0),
	}
}
