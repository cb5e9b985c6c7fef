package model

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"gopkg.in/yaml.v3"
)

type ReportStatus string

const (
	// ReportSuccess means every platform attempted succeeded.
	ReportSuccess ReportStatus = "success"
	// ReportPartial means at least one platform failed and one succeeded.
	ReportPartial ReportStatus = "partial"
	// ReportFailure means every platform attempted failed.
	ReportFailure ReportStatus = "failure"
	// ReportIncomplete means nothing was attempted.
	ReportIncomplete ReportStatus = "incomplete"
)

type ReportID string

func NewReportID() ReportID {
	return ReportID(xid.New().String())
}

// PublishReport is the consolidated result of a publish run, one outcome per
// configured platform in configured order.
type PublishReport struct {
	ID         ReportID         `json:"id" yaml:"id"`
	Title      string           `json:"title" yaml:"title"`
	Slug       string           `json:"slug" yaml:"slug"`
	DryRun     bool             `json:"dryRun" yaml:"dryRun"`
	StartedAt  time.Time        `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt" yaml:"finishedAt"`
	Outcomes   []PublishOutcome `json:"outcomes" yaml:"outcomes"`
}

func (r *PublishReport) Count(kind OutcomeKind) int {
	count := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			count++
		}
	}
	return count
}

func (r *PublishReport) Outcome(platform PlatformID) (PublishOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Platform == platform {
			return o, true
		}
	}
	return PublishOutcome{}, false
}

// Status derives the overall status of the run. Skipped platforms do not
// count as attempted.
func (r *PublishReport) Status() ReportStatus {
	succeeded := r.Count(OutcomeSucceeded)
	failed := r.Count(OutcomeFailed)

	switch {
	case succeeded == 0 && failed == 0:
		return ReportIncomplete
	case failed == 0:
		return ReportSuccess
	case succeeded == 0:
		return ReportFailure
	default:
		return ReportPartial
	}
}

// OK is true when the report holds no failed outcome.
func (r *PublishReport) OK() bool {
	return r.Count(OutcomeFailed) == 0
}

type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatYAML ReportFormat = "yaml"
)

func (r *PublishReport) Encode(w io.Writer, format ReportFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(r); err != nil {
			return errors.WithStack(err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return errors.WithStack(err)
		}
		if err := encoder.Close(); err != nil {
			return errors.WithStack(err)
		}
	default:
		return errors.Errorf("unknown report format '%s'", format)
	}

	return nil
}

func DecodeReport(r io.Reader, format ReportFormat) (*PublishReport, error) {
	report := &PublishReport{}

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(report); err != nil {
			return nil, errors.WithStack(err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(report); err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.Errorf("unknown report format '%s'", format)
	}

	return report, nil
}
