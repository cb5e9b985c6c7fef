package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Parse reads an article: its front matter, its top level blocks and the
// regions they belong to.
func Parse(data []byte, funcs ...OptionFunc) (*model.Document, error) {
	opts := NewOptions(funcs...)

	markers, err := compileMarkers(opts.Markers)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	metadata, body, err := parseFrontMatter(data, metadataDefaults{
		Author:   opts.DefaultAuthor,
		Category: opts.DefaultCategory,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	blocks := splitBlocks(body, markers)

	doc := model.NewDocument(metadata, blocks)

	doc, err = ExtractRegions(doc, funcs...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return doc, nil
}

type span struct {
	block model.Block
	start int
	end   int
}

func splitBlocks(source []byte, markers markerSet) []model.Block {
	root := New().Parser().Parse(text.NewReader(source))

	spans := make([]span, 0)
	cursor := 0

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		start := skipBlankLines(source, cursor)
		if start >= len(source) {
			break
		}

		end := nodeEnd(source, n)
		if end <= start {
			end = lineEnd(source, start)
		}

		switch node := n.(type) {
		case *ast.Heading:
			end = includeSetextUnderline(source, start, end)
		case *ast.FencedCodeBlock:
			if fenceOpening(source, node) < 0 {
				end = includeClosingFence(source, start, end)
			}
		case *east.Table:
			end = max(end, tableEnd(source, start))
		}

		raw := string(bytes.TrimRight(source[start:end], " \t\r\n"))

		spans = append(spans, span{
			block: classify(source, n, raw, markers),
			start: start,
			end:   end,
		})

		cursor = end
	}

	spans = mergeDelimited(source, spans, calloutDelimiters)
	spans = mergeDelimited(source, spans, mathDelimiters)

	blocks := make([]model.Block, len(spans))
	for i, s := range spans {
		s.block.Index = i
		blocks[i] = s.block
	}

	return blocks
}

func classify(source []byte, n ast.Node, raw string, markers markerSet) model.Block {
	block := model.Block{
		Kind:    model.BlockParagraph,
		Raw:     raw,
		Regions: []string{},
	}

	switch node := n.(type) {
	case *ast.Heading:
		block.Kind = model.BlockHeading
		block.Level = node.Level
		block.Text = headingText(source, node)
	case *ast.FencedCodeBlock:
		block.Kind = model.BlockFencedCode
		block.Info = string(node.Language(source))
	case *ast.CodeBlock:
		block.Kind = model.BlockCode
	case *ast.List:
		block.Kind = model.BlockList
	case *ast.Blockquote:
		block.Kind = model.BlockQuote
	case *ast.ThematicBreak:
		block.Kind = model.BlockThematicBreak
	case *ast.HTMLBlock:
		block.Kind = model.BlockHTML
		if _, isMarker := markers.match(raw); isMarker {
			block.Kind = model.BlockMarker
		}
	case *east.Table:
		block.Kind = model.BlockTable
	case *ast.Paragraph:
		if isImageParagraph(node) {
			block.Kind = model.BlockImage
		}
	}

	return block
}

func headingText(source []byte, heading *ast.Heading) string {
	lines := heading.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(segment.Value(source))))
	}
	return strings.Join(parts, " ")
}

func isImageParagraph(paragraph *ast.Paragraph) bool {
	if paragraph.ChildCount() != 1 {
		return false
	}

	switch child := paragraph.FirstChild().(type) {
	case *ast.Image:
		return true
	case *ast.Link:
		_, isImage := child.FirstChild().(*ast.Image)
		return child.ChildCount() == 1 && isImage
	}

	return false
}

// nodeEnd returns the offset following the last source line covered by the
// node or one of its descendants, -1 if the node carries no position.
func nodeEnd(source []byte, n ast.Node) int {
	if n.Type() != ast.TypeBlock {
		return -1
	}

	end := -1

	if lines := n.Lines(); lines.Len() > 0 {
		end = segmentLineEnd(source, lines.At(lines.Len()-1))
	}

	switch node := n.(type) {
	case *ast.FencedCodeBlock:
		if node.Info != nil {
			end = max(end, segmentLineEnd(source, node.Info.Segment))
		}
		if end > 0 {
			end = includeClosingFence(source, fenceOpening(source, node), end)
		}
	case *ast.HTMLBlock:
		if node.HasClosure() {
			end = max(end, segmentLineEnd(source, node.ClosureLine))
		}
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		end = max(end, nodeEnd(source, child))
	}

	return end
}

// fenceOpening returns the offset of the opening fence line of a fenced code
// block, -1 if it cannot be located.
func fenceOpening(source []byte, node *ast.FencedCodeBlock) int {
	if node.Info != nil {
		return lineStart(source, node.Info.Segment.Start)
	}

	if lines := node.Lines(); lines.Len() > 0 {
		first := lineStart(source, lines.At(0).Start)
		if first == 0 {
			return -1
		}
		return lineStart(source, first-1)
	}

	return -1
}

func segmentLineEnd(source []byte, segment text.Segment) int {
	if segment.Stop > segment.Start {
		return lineEnd(source, segment.Stop-1)
	}
	return lineEnd(source, segment.Start)
}

// lineEnd returns the offset following the end of line of the line
// containing pos.
func lineEnd(source []byte, pos int) int {
	if pos >= len(source) {
		return len(source)
	}
	if idx := bytes.IndexByte(source[pos:], '\n'); idx >= 0 {
		return pos + idx + 1
	}
	return len(source)
}

func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

func nextLine(source []byte, pos int) []byte {
	if pos >= len(source) {
		return nil
	}
	return source[pos:lineEnd(source, pos)]
}

func skipBlankLines(source []byte, pos int) int {
	for pos < len(source) {
		line := nextLine(source, pos)
		if len(bytes.TrimSpace(line)) != 0 {
			return pos
		}
		pos += len(line)
	}
	return pos
}

// containerPrefix strips the indentation and blockquote markers of a line.
func containerPrefix(line []byte) []byte {
	return bytes.TrimLeft(line, " \t>")
}

func fenceOf(line []byte) (byte, int) {
	line = containerPrefix(line)
	if len(line) == 0 || (line[0] != '`' && line[0] != '~') {
		return 0, 0
	}

	char := line[0]
	count := 0
	for count < len(line) && line[count] == char {
		count++
	}

	if count < 3 {
		return 0, 0
	}

	return char, count
}

func includeClosingFence(source []byte, opening int, end int) int {
	if opening < 0 {
		return end
	}

	char, count := fenceOf(nextLine(source, opening))
	if count == 0 {
		return end
	}

	line := nextLine(source, end)
	if line == nil {
		return end
	}

	closingChar, closingCount := fenceOf(line)
	if closingChar != char || closingCount < count {
		return end
	}

	if rest := bytes.TrimLeft(containerPrefix(line), string(char)); len(bytes.TrimSpace(rest)) != 0 {
		return end
	}

	return end + len(line)
}

var setextUnderline = regexp.MustCompile(`^ {0,3}(=+|-+)[ \t]*\r?\n?$`)

func includeSetextUnderline(source []byte, start int, end int) int {
	if first := bytes.TrimLeft(nextLine(source, start), " "); len(first) > 0 && first[0] == '#' {
		return end
	}

	if line := nextLine(source, end); line != nil && setextUnderline.Match(line) {
		return end + len(line)
	}

	return end
}

func tableEnd(source []byte, start int) int {
	pos := start
	for pos < len(source) {
		line := nextLine(source, pos)
		if len(bytes.TrimSpace(line)) == 0 || !bytes.ContainsRune(line, '|') {
			break
		}
		pos += len(line)
	}
	return pos
}

type delimiters struct {
	kind  model.BlockKind
	open  *regexp.Regexp
	close *regexp.Regexp
}

var (
	calloutDelimiters = delimiters{
		kind:  model.BlockCallout,
		open:  regexp.MustCompile(`^:::\s*(\S.*)$`),
		close: regexp.MustCompile(`^:::\s*$`),
	}
	mathDelimiters = delimiters{
		kind:  model.BlockMath,
		open:  regexp.MustCompile(`^\$\$(.*)$`),
		close: regexp.MustCompile(`\$\$\s*$`),
	}
)

// mergeDelimited merges the blocks enclosed between an opening and a closing
// delimiter line into a single block, goldmark knowing nothing about them.
func mergeDelimited(source []byte, spans []span, d delimiters) []span {
	merged := make([]span, 0, len(spans))

	for i := 0; i < len(spans); i++ {
		current := spans[i]

		if current.block.Kind != model.BlockParagraph {
			merged = append(merged, current)
			continue
		}

		lines := strings.Split(current.block.Raw, "\n")
		opening := d.open.FindStringSubmatch(strings.TrimSpace(lines[0]))
		if opening == nil {
			merged = append(merged, current)
			continue
		}

		closing := -1
		for j := i; j < len(spans); j++ {
			blockLines := strings.Split(spans[j].block.Raw, "\n")
			if j == i && len(blockLines) == 1 && (d.kind != model.BlockMath || len(strings.TrimSpace(blockLines[0])) <= 4) {
				continue
			}
			if d.close.MatchString(strings.TrimSpace(blockLines[len(blockLines)-1])) {
				closing = j
				break
			}
		}

		if closing < 0 {
			merged = append(merged, current)
			continue
		}

		if containsMarker(spans[i+1 : closing]) {
			if d.kind == model.BlockCallout {
				merged = append(merged, splitCallout(source, spans[i:closing+1], strings.TrimSpace(opening[1]))...)
				i = closing
				continue
			}

			merged = append(merged, current)
			continue
		}

		last := spans[closing]
		block := current.block
		block.Kind = d.kind
		block.Raw = string(bytes.TrimRight(source[current.start:last.end], " \t\r\n"))
		if d.kind == model.BlockCallout {
			block.Info = strings.TrimSpace(opening[1])
		}

		merged = append(merged, span{block: block, start: current.start, end: last.end})
		i = closing
	}

	return merged
}

func containsMarker(spans []span) bool {
	for _, s := range spans {
		if s.block.Kind == model.BlockMarker {
			return true
		}
	}
	return false
}

// splitCallout keeps the blocks of a callout enclosing region markers apart,
// the opening and closing delimiter lines becoming blocks of their own so
// that the markers still delimit regions.
func splitCallout(source []byte, group []span, info string) []span {
	first := group[0]
	last := group[len(group)-1]

	result := make([]span, 0, len(group)+2)

	openEnd := first.end
	if idx := bytes.IndexByte(source[first.start:first.end], '\n'); idx >= 0 {
		openEnd = first.start + idx
	}

	result = append(result, span{
		block: model.Block{
			Kind:    model.BlockCalloutOpen,
			Raw:     strings.TrimSpace(string(source[first.start:openEnd])),
			Info:    info,
			Regions: []string{},
		},
		start: first.start,
		end:   openEnd,
	})

	if rest := fragment(source, openEnd, first.end); rest != nil {
		result = append(result, *rest)
	}

	result = append(result, group[1:len(group)-1]...)

	closeStart := last.start
	if idx := strings.LastIndexByte(last.block.Raw, '\n'); idx >= 0 {
		closeStart = last.start + idx
		if body := fragment(source, last.start, closeStart); body != nil {
			result = append(result, *body)
		}
	}

	result = append(result, span{
		block: model.Block{
			Kind:    model.BlockCalloutClose,
			Raw:     strings.TrimSpace(string(source[closeStart:last.end])),
			Regions: []string{},
		},
		start: closeStart,
		end:   last.end,
	})

	return result
}

// fragment returns the paragraph made of the non blank text between start
// and end, if any.
func fragment(source []byte, start int, end int) *span {
	start = skipBlankLines(source, start)
	if start >= end {
		return nil
	}

	raw := string(bytes.TrimRight(source[start:end], " \t\r\n"))
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	return &span{
		block: model.Block{
			Kind:    model.BlockParagraph,
			Raw:     raw,
			Regions: []string{},
		},
		start: start,
		end:   end,
	}
}
