package markdown

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/pkg/errors"
)

type headingRegion struct {
	name     string
	phrases  []string
	patterns []*regexp.Regexp
}

type vocabulary struct {
	minLevel int
	regions  []headingRegion
}

func compileVocabulary(v model.HeadingVocabulary) (*vocabulary, error) {
	compiled := &vocabulary{
		minLevel: v.MinLevel,
		regions:  make([]headingRegion, 0, len(v.Regions)),
	}

	for _, r := range v.Regions {
		region := headingRegion{
			name:     r.Name,
			phrases:  make([]string, 0, len(r.Phrases)),
			patterns: make([]*regexp.Regexp, 0, len(r.Patterns)),
		}

		for _, p := range r.Phrases {
			if normalized := NormalizeHeading(p); normalized != "" {
				region.phrases = append(region.phrases, normalized)
			}
		}

		for _, p := range r.Patterns {
			pattern, err := regexp.Compile(p)
			if err != nil {
				return nil, errors.Wrapf(err, "could not compile heading pattern '%s'", p)
			}
			region.patterns = append(region.patterns, pattern)
		}

		compiled.regions = append(compiled.regions, region)
	}

	return compiled, nil
}

// match returns the name of the heading region opened by the given heading,
// if any. The first matching region of the vocabulary wins.
func (v *vocabulary) match(block model.Block) (string, bool) {
	if block.Kind != model.BlockHeading || block.Level < v.minLevel {
		return "", false
	}

	text := NormalizeHeading(block.Text)
	if text == "" {
		return "", false
	}

	for _, r := range v.regions {
		for _, p := range r.phrases {
			if strings.Contains(text, p) {
				return r.name, true
			}
		}
		for _, p := range r.patterns {
			if p.MatchString(text) {
				return r.name, true
			}
		}
	}

	return "", false
}

type regionFrame struct {
	name   string
	syntax int
	level  int
	start  int
}

// ExtractRegions scans the blocks of the document and returns a copy of it
// whose blocks are tagged with the regions they belong to.
//
// Explicit regions are delimited by comment markers. A start marker left
// open is closed at the end of the document with a warning, an end marker
// without start is an error. Heading regions are opened by headings matching
// the vocabulary and closed by the next heading of equal or higher level.
//
// Tags are ordered by precedence: explicit regions before heading regions,
// inner regions before outer ones.
func ExtractRegions(doc *model.Document, funcs ...OptionFunc) (*model.Document, error) {
	opts := NewOptions(funcs...)

	markers, err := compileMarkers(opts.Markers)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	vocabulary, err := compileVocabulary(opts.Vocabulary)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	blocks := doc.Blocks()
	last := len(blocks) - 1

	explicit := make([]regionFrame, 0)
	headings := make([]regionFrame, 0)
	regions := make([]model.Region, 0)
	warnings := make([]model.Warning, 0)

	closeFrame := func(f regionFrame, kind model.RegionKind, end int, closed bool) {
		regions = append(regions, model.Region{
			Name:   f.name,
			Kind:   kind,
			Start:  f.start,
			End:    end,
			Closed: closed,
		})
	}

	for i, b := range blocks {
		switch b.Kind {
		case model.BlockHeading:
			for len(headings) > 0 && headings[len(headings)-1].level >= b.Level {
				closeFrame(headings[len(headings)-1], model.RegionHeading, i-1, true)
				headings = headings[:len(headings)-1]
			}

			if name, ok := vocabulary.match(b); ok {
				headings = append(headings, regionFrame{name: name, level: b.Level, start: i})
			}

		case model.BlockMarker:
			match, ok := markers.match(b.Raw)
			if !ok {
				continue
			}

			if !match.end {
				explicit = append(explicit, regionFrame{name: match.region, syntax: match.syntax, start: i})
				continue
			}

			idx := -1
			for k := len(explicit) - 1; k >= 0; k-- {
				if explicit[k].syntax == match.syntax && (match.region == "" || explicit[k].name == match.region) {
					idx = k
					break
				}
			}

			if idx < 0 {
				return nil, model.NewMalformedDocumentError(i, nil, "end marker '%s' without matching start", strings.TrimSpace(b.Raw))
			}

			for k := len(explicit) - 1; k > idx; k-- {
				inner := explicit[k]
				closeFrame(inner, model.RegionExplicit, i, false)
				warnings = append(warnings, model.Warning{
					Subject: inner.name,
					Action:  model.ActionClosed,
					Detail:  fmt.Sprintf("region %s closed by the end of region %s", inner.name, explicit[idx].name),
					Block:   i,
				})
			}

			closeFrame(explicit[idx], model.RegionExplicit, i, true)
			explicit = explicit[:idx]
		}
	}

	for k := len(explicit) - 1; k >= 0; k-- {
		f := explicit[k]
		closeFrame(f, model.RegionExplicit, last, false)
		warnings = append(warnings, model.Warning{
			Subject: f.name,
			Action:  model.ActionClosed,
			Detail:  fmt.Sprintf("region %s closed at document end", f.name),
			Block:   f.start,
		})
	}

	for k := len(headings) - 1; k >= 0; k-- {
		closeFrame(headings[k], model.RegionHeading, last, true)
	}

	slices.SortStableFunc(regions, func(a, b model.Region) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return b.End - a.End
	})

	for i := range blocks {
		blocks[i].Regions = tagsOf(i, regions)
	}

	return doc.WithRegions(blocks, regions, warnings...), nil
}

func tagsOf(index int, regions []model.Region) []string {
	tags := make([]string, 0)

	for _, kind := range []model.RegionKind{model.RegionExplicit, model.RegionHeading} {
		for k := len(regions) - 1; k >= 0; k-- {
			r := regions[k]
			if r.Kind != kind || !r.Contains(index) || slices.Contains(tags, r.Name) {
				continue
			}
			tags = append(tags, r.Name)
		}
	}

	return tags
}
