package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bornholm/crosspost/internal/core/model"
)

// Capabilities reports whether a platform renders a markup construct.
type Capabilities interface {
	Supports(c model.Capability) bool
}

// Downgrade rewrites a block for a platform lacking some of the constructs
// it uses. Content is rewritten to its nearest supported equivalent, never
// silently discarded: comments and scripts are the only constructs removed,
// removed is then true.
func Downgrade(block model.Block, caps Capabilities) (content string, removed bool, warnings []model.Warning) {
	warnings = make([]model.Warning, 0)

	warn := func(subject model.Capability, action model.WarningAction, format string, args ...any) {
		warnings = append(warnings, model.Warning{
			Subject: string(subject),
			Action:  action,
			Detail:  fmt.Sprintf(format, args...),
			Block:   block.Index,
		})
	}

	content = block.Raw

	switch block.Kind {
	case model.BlockFencedCode:
		if !caps.Supports(model.CapabilityFencedCode) {
			content = fencedContent(block.Raw)
			warn(model.CapabilityFencedCode, model.ActionDowngraded, "code block rendered as plain text")
		}
		return content, false, warnings

	case model.BlockCode:
		if !caps.Supports(model.CapabilityFencedCode) {
			content = dedent(block.Raw)
			warn(model.CapabilityFencedCode, model.ActionDowngraded, "indented code block rendered as plain text")
		}
		return content, false, warnings

	case model.BlockTable:
		if caps.Supports(model.CapabilityTable) {
			return content, false, warnings
		}
		if caps.Supports(model.CapabilityFencedCode) {
			warn(model.CapabilityTable, model.ActionDowngraded, "table rendered as fenced code")
			return "```\n" + block.Raw + "\n```", false, warnings
		}
		warn(model.CapabilityTable, model.ActionDowngraded, "table rendered as plain text")
		return tableText(block.Raw), false, warnings

	case model.BlockHTML:
		content, removed = downgradeHTML(block, caps, warn)
		return content, removed, warnings

	case model.BlockCallout:
		content = downgradeCallout(block, caps, warn)
		return content, false, warnings

	case model.BlockCalloutOpen, model.BlockCalloutClose:
		content, removed = downgradeCalloutDelimiter(block, caps, warn)
		return content, removed, warnings

	case model.BlockMath:
		if caps.Supports(model.CapabilityMath) {
			return content, false, warnings
		}
		expression := mathExpression(block.Raw)
		if caps.Supports(model.CapabilityFencedCode) {
			warn(model.CapabilityMath, model.ActionDowngraded, "math rendered as fenced code")
			return "```math\n" + expression + "\n```", false, warnings
		}
		warn(model.CapabilityMath, model.ActionDowngraded, "math rendered as plain text")
		return expression, false, warnings

	case model.BlockParagraph, model.BlockHeading, model.BlockList, model.BlockQuote:
		if !caps.Supports(model.CapabilityInlineCode) {
			var count int
			content, count = stripCodeSpans(content)
			if count > 0 {
				warn(model.CapabilityInlineCode, model.ActionDowngraded, "%d inline code span(s) rendered as plain text", count)
			}
		}
		if !caps.Supports(model.CapabilityStrikethrough) {
			var count int
			content, count = stripStrikethrough(content)
			if count > 0 {
				warn(model.CapabilityStrikethrough, model.ActionDowngraded, "%d strikethrough span(s) rendered as plain text", count)
			}
		}
		return content, false, warnings
	}

	return content, false, warnings
}

type warnFunc func(subject model.Capability, action model.WarningAction, format string, args ...any)

var (
	scriptPattern = regexp.MustCompile(`(?is)^<script\b`)
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
)

func downgradeHTML(block model.Block, caps Capabilities, warn warnFunc) (string, bool) {
	raw := strings.TrimSpace(block.Raw)

	switch {
	case strings.HasPrefix(raw, "<!--"):
		if caps.Supports(model.CapabilityHTMLComment) {
			return block.Raw, false
		}
		warn(model.CapabilityHTMLComment, model.ActionRemoved, "html comment removed")
		return "", true

	case scriptPattern.MatchString(raw):
		if caps.Supports(model.CapabilityScript) {
			return block.Raw, false
		}
		warn(model.CapabilityScript, model.ActionRemoved, "embedded script removed")
		return "", true

	default:
		if caps.Supports(model.CapabilityRawHTML) {
			return block.Raw, false
		}
		stripped := strings.TrimSpace(tagPattern.ReplaceAllString(block.Raw, ""))
		if stripped == "" {
			warn(model.CapabilityRawHTML, model.ActionRemoved, "html without text content removed")
			return "", true
		}
		warn(model.CapabilityRawHTML, model.ActionDowngraded, "html tags stripped")
		return stripped, false
	}
}

func downgradeCallout(block model.Block, caps Capabilities, warn warnFunc) string {
	if caps.Supports(model.CapabilityCallout) {
		return block.Raw
	}

	lines := strings.Split(block.Raw, "\n")
	inner := strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))

	if caps.Supports(model.CapabilityCalloutMessage) {
		opener := messageOpener(block.Info)
		warn(model.CapabilityCallout, model.ActionDowngraded, "callout '%s' rewritten as '%s'", block.Info, strings.TrimPrefix(opener, ":::"))
		return opener + "\n" + inner + "\n:::"
	}

	paragraphs := strings.Split(inner, "\n\n")
	for i, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs[i] = "**" + p + "**"
		}
	}

	warn(model.CapabilityCallout, model.ActionDowngraded, "callout '%s' rendered as bold paragraph", block.Info)

	return strings.Join(paragraphs, "\n\n")
}

func messageOpener(info string) string {
	if variant := strings.Fields(info); len(variant) > 1 {
		switch variant[1] {
		case "warn", "warning", "alert", "danger":
			return ":::message alert"
		}
	}
	return ":::message"
}

// downgradeCalloutDelimiter rewrites the delimiter of a callout whose
// content is kept as separate blocks. Without any callout support the
// delimiters are removed and the content rendered as is.
func downgradeCalloutDelimiter(block model.Block, caps Capabilities, warn warnFunc) (string, bool) {
	if caps.Supports(model.CapabilityCallout) {
		return block.Raw, false
	}

	if caps.Supports(model.CapabilityCalloutMessage) {
		if block.Kind == model.BlockCalloutClose {
			return ":::", false
		}
		opener := messageOpener(block.Info)
		warn(model.CapabilityCallout, model.ActionDowngraded, "callout '%s' rewritten as '%s'", block.Info, strings.TrimPrefix(opener, ":::"))
		return opener, false
	}

	if block.Kind == model.BlockCalloutOpen {
		warn(model.CapabilityCallout, model.ActionDowngraded, "callout '%s' delimiters removed, content kept as plain blocks", block.Info)
	}

	return "", true
}

func fencedContent(raw string) string {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 {
		return raw
	}

	lines = lines[1:]
	if len(lines) > 0 {
		if _, count := fenceOf([]byte(lines[len(lines)-1])); count > 0 {
			lines = lines[:len(lines)-1]
		}
	}

	return strings.Join(lines, "\n")
}

func dedent(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "    "):
			lines[i] = l[4:]
		case strings.HasPrefix(l, "\t"):
			lines[i] = l[1:]
		}
	}
	return strings.Join(lines, "\n")
}

var tableDelimiterRow = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|?\s*$`)

func tableText(raw string) string {
	lines := strings.Split(raw, "\n")
	rows := make([]string, 0, len(lines))

	for _, l := range lines {
		if tableDelimiterRow.MatchString(l) {
			continue
		}

		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "|")
		l = strings.TrimSuffix(l, "|")

		cells := strings.Split(l, "|")
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}

		rows = append(rows, strings.Join(cells, " / "))
	}

	return strings.Join(rows, "  \n")
}

func mathExpression(raw string) string {
	expression := strings.TrimSpace(raw)
	expression = strings.TrimPrefix(expression, "$$")
	expression = strings.TrimSuffix(expression, "$$")
	return strings.TrimSpace(expression)
}

// stripCodeSpans replaces code spans by their content. A code span opens
// with a run of backticks and closes with the next run of the same length.
func stripCodeSpans(s string) (string, int) {
	var sb strings.Builder
	count := 0

	for i := 0; i < len(s); {
		c := s[i]

		if c == '\\' && i+1 < len(s) {
			sb.WriteString(s[i : i+2])
			i += 2
			continue
		}

		if c != '`' {
			sb.WriteByte(c)
			i++
			continue
		}

		openEnd := i
		for openEnd < len(s) && s[openEnd] == '`' {
			openEnd++
		}
		length := openEnd - i

		closeStart := -1
		for k := openEnd; k < len(s); {
			if s[k] != '`' {
				k++
				continue
			}
			runEnd := k
			for runEnd < len(s) && s[runEnd] == '`' {
				runEnd++
			}
			if runEnd-k == length {
				closeStart = k
				break
			}
			k = runEnd
		}

		if closeStart < 0 {
			sb.WriteString(s[i:openEnd])
			i = openEnd
			continue
		}

		content := s[openEnd:closeStart]
		if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.TrimSpace(content) != "" {
			content = content[1 : len(content)-1]
		}

		sb.WriteString(content)
		count++
		i = closeStart + length
	}

	return sb.String(), count
}

var strikethroughPattern = regexp.MustCompile(`~~([^~\s](?:[^~\n]*[^~\s])?)~~`)

func stripStrikethrough(s string) (string, int) {
	count := len(strikethroughPattern.FindAllStringIndex(s, -1))
	if count == 0 {
		return s, 0
	}
	return strikethroughPattern.ReplaceAllString(s, "$1"), count
}
