package gorm

import (
	"time"

	"github.com/bornholm/crosspost/internal/core/model"
)

type Report struct {
	ID string `gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Title  string
	Slug   string `gorm:"index"`
	DryRun bool
	Status string `gorm:"index"`

	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time

	Outcomes []*Outcome `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE;"`
}

type Outcome struct {
	ID uint `gorm:"primaryKey"`

	Report   *Report
	ReportID string `gorm:"index:report_platform_index,unique"`

	Position int
	Platform string `gorm:"index:report_platform_index,unique"`
	Kind     string `gorm:"index"`
	State    string

	ReferenceID  string
	ReferenceURL string

	Reason   string
	Error    string
	Duration time.Duration

	Variant *model.Variant `gorm:"serializer:json"`
}

func fromReport(r *model.PublishReport) *Report {
	report := &Report{
		ID:         string(r.ID),
		Title:      r.Title,
		Slug:       r.Slug,
		DryRun:     r.DryRun,
		Status:     string(r.Status()),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Outcomes:   make([]*Outcome, 0, len(r.Outcomes)),
	}

	for i, o := range r.Outcomes {
		outcome := &Outcome{
			ReportID: report.ID,
			Position: i,
			Platform: string(o.Platform),
			Kind:     string(o.Kind),
			State:    string(o.State),
			Reason:   o.Reason,
			Error:    o.Error,
			Duration: o.Duration,
			Variant:  o.Variant,
		}

		if o.Reference != nil {
			outcome.ReferenceID = o.Reference.ID
			outcome.ReferenceURL = o.Reference.URL
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

func toReport(r *Report) *model.PublishReport {
	report := &model.PublishReport{
		ID:         model.ReportID(r.ID),
		Title:      r.Title,
		Slug:       r.Slug,
		DryRun:     r.DryRun,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Outcomes:   make([]model.PublishOutcome, 0, len(r.Outcomes)),
	}

	for _, o := range r.Outcomes {
		outcome := model.PublishOutcome{
			Platform: model.PlatformID(o.Platform),
			Kind:     model.OutcomeKind(o.Kind),
			State:    model.PlatformState(o.State),
			Reason:   o.Reason,
			Error:    o.Error,
			Duration: o.Duration,
			Variant:  o.Variant,
		}

		if o.ReferenceID != "" || o.ReferenceURL != "" {
			outcome.Reference = &model.PublishedRef{
				ID:  o.ReferenceID,
				URL: o.ReferenceURL,
			}
		} else if outcome.Kind == model.OutcomeSucceeded && !report.DryRun {
			outcome.Reference = &model.PublishedRef{}
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}
