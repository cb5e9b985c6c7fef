package markdown

import (
	"regexp"
	"strings"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/pkg/errors"
)

type markerSyntax struct {
	start  *regexp.Regexp
	end    *regexp.Regexp
	region string
}

type markerMatch struct {
	syntax int
	// region is empty for an end marker not naming the region it closes.
	region string
	end    bool
}

type markerSet []markerSyntax

func compileMarkers(markers []model.MarkerSyntax) (markerSet, error) {
	set := make(markerSet, 0, len(markers))

	for _, m := range markers {
		start, err := regexp.Compile(m.Start)
		if err != nil {
			return nil, errors.Wrapf(err, "could not compile start marker '%s'", m.Start)
		}

		end, err := regexp.Compile(m.End)
		if err != nil {
			return nil, errors.Wrapf(err, "could not compile end marker '%s'", m.End)
		}

		set = append(set, markerSyntax{
			start:  start,
			end:    end,
			region: m.Region,
		})
	}

	return set, nil
}

func (s markerSet) match(raw string) (markerMatch, bool) {
	raw = strings.TrimSpace(raw)

	for i, syntax := range s {
		if submatches := syntax.start.FindStringSubmatchIndex(raw); submatches != nil {
			region := string(syntax.start.ExpandString(nil, syntax.region, raw, submatches))
			return markerMatch{syntax: i, region: region}, true
		}

		if submatches := syntax.end.FindStringSubmatchIndex(raw); submatches != nil {
			match := markerMatch{syntax: i, end: true}
			if idx := syntax.end.SubexpIndex("name"); idx >= 0 && submatches[2*idx] >= 0 {
				match.region = string(syntax.end.ExpandString(nil, syntax.region, raw, submatches))
			}
			return match, true
		}
	}

	return markerMatch{}, false
}
