package service

import (
	"regexp"

	"github.com/pkg/errors"
	"github.com/redmatter/go-globre/v2"
)

// regionPatterns matches region names against glob patterns, ':' acting as
// the path delimiter.
type regionPatterns []*regexp.Regexp

func compileRegionPatterns(globs []string) (regionPatterns, error) {
	patterns := make(regionPatterns, 0, len(globs))

	for _, g := range globs {
		expr := globre.RegexFromGlob(
			g,
			globre.ExtendedSyntaxEnabled(true),
			globre.GlobStarEnabled(true),
			globre.WithDelimiter(':'),
		)

		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "could not compile region pattern '%s'", g)
		}

		patterns = append(patterns, pattern)
	}

	return patterns, nil
}

func (p regionPatterns) Match(name string) bool {
	for _, pattern := range p {
		if loc := pattern.FindStringIndex(name); loc != nil && loc[0] == 0 && loc[1] == len(name) {
			return true
		}
	}
	return false
}

type regionDecision int

const (
	undecided regionDecision = iota
	keepRegion
	dropRegion
)

type regionFilter struct {
	keep regionPatterns
	drop regionPatterns
}

// decide returns the decision taken for a block from its region tags, tags
// being ordered by precedence. The first tag matched by a keep or a drop
// pattern decides, keep winning over drop for the same tag.
func (f *regionFilter) decide(tags []string) (regionDecision, string) {
	for _, tag := range tags {
		if f.keep.Match(tag) {
			return keepRegion, tag
		}
		if f.drop.Match(tag) {
			return dropRegion, tag
		}
	}
	return undecided, ""
}
