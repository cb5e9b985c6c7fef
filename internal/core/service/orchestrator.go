package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/metrics"
	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
)

const (
	ReasonDisabled    = "platform disabled"
	ReasonNotSelected = "excluded by platform selection"
	ReasonInterrupted = "run interrupted"
)

// Orchestrator builds and publishes the variants of a document, one platform
// after the other, in the catalog order.
type Orchestrator struct {
	catalog       *catalog.Catalog
	collaborators map[model.PlatformID]port.Collaborator
	now           func() time.Time
}

type OrchestrateOptions struct {
	DryRun    bool
	Platforms []model.PlatformID
}

type OrchestrateOptionFunc func(opts *OrchestrateOptions)

// WithDryRun builds the variants without calling any collaborator.
func WithDryRun(dryRun bool) OrchestrateOptionFunc {
	return func(opts *OrchestrateOptions) {
		opts.DryRun = dryRun
	}
}

// WithPlatforms restricts the run to the given platforms. Other configured
// platforms are reported as skipped.
func WithPlatforms(platforms ...model.PlatformID) OrchestrateOptionFunc {
	return func(opts *OrchestrateOptions) {
		opts.Platforms = platforms
	}
}

func NewOrchestrateOptions(funcs ...OrchestrateOptionFunc) *OrchestrateOptions {
	opts := &OrchestrateOptions{}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// Orchestrate processes every configured platform and returns the report.
// Failures of a platform are recorded in its outcome and never stop the
// processing of the others. A canceled context skips the platforms not yet
// processed.
func (o *Orchestrator) Orchestrate(ctx context.Context, doc *model.Document, funcs ...OrchestrateOptionFunc) *model.PublishReport {
	opts := NewOrchestrateOptions(funcs...)

	metadata := doc.Metadata()

	report := &model.PublishReport{
		ID:        model.NewReportID(),
		Title:     metadata.Title,
		Slug:      metadata.Slug,
		DryRun:    opts.DryRun,
		StartedAt: o.now(),
		Outcomes:  make([]model.PublishOutcome, 0, len(o.catalog.Platforms)),
	}

	ctx = slogx.WithAttrs(ctx,
		slog.String("report", string(report.ID)),
		slog.String("slug", metadata.Slug),
		slog.Bool("dryRun", opts.DryRun),
	)

	slog.InfoContext(ctx, "starting publish run", slog.Int("platforms", len(o.catalog.Platforms)))

	for i := range o.catalog.Platforms {
		rules := &o.catalog.Platforms[i]

		platformCtx := slogx.WithAttrs(ctx, slog.String("platform", string(rules.ID)))

		start := o.now()
		outcome := o.process(platformCtx, doc, rules, opts)
		outcome.Duration = o.now().Sub(start)

		o.record(platformCtx, outcome, opts.DryRun)

		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.FinishedAt = o.now()

	slog.InfoContext(ctx, "publish run finished",
		slog.String("status", string(report.Status())),
		slog.Int("succeeded", report.Count(model.OutcomeSucceeded)),
		slog.Int("failed", report.Count(model.OutcomeFailed)),
		slog.Int("skipped", report.Count(model.OutcomeSkipped)),
	)

	return report
}

func (o *Orchestrator) process(ctx context.Context, doc *model.Document, rules *model.PlatformRuleSet, opts *OrchestrateOptions) model.PublishOutcome {
	if len(opts.Platforms) > 0 && !slices.Contains(opts.Platforms, rules.ID) {
		return model.Skipped(rules.ID, ReasonNotSelected)
	}

	if ctx.Err() != nil {
		return model.Skipped(rules.ID, ReasonInterrupted)
	}

	if !doc.Metadata().Platform(rules.ID).IsEnabled(rules.Enabled) {
		return model.Skipped(rules.ID, ReasonDisabled)
	}

	transition(ctx, model.StatePending, model.StateBuilding)

	variant, err := o.build(doc, rules)
	if err != nil {
		transition(ctx, model.StateBuilding, model.StateBuildFailed, slogx.Error(err))
		return model.Failed(rules.ID, model.StateBuildFailed, err)
	}

	transition(ctx, model.StateBuilding, model.StateBuilt, slog.Int("warnings", len(variant.Warnings)))

	for _, w := range variant.Warnings {
		slog.DebugContext(ctx, "variant warning", slog.String("warning", w.String()))
	}

	if opts.DryRun {
		transition(ctx, model.StateBuilt, model.StateSucceeded)
		return model.Succeeded(rules.ID, nil, variant)
	}

	transition(ctx, model.StateBuilt, model.StatePublishing)

	ref, err := o.publish(ctx, rules.ID, variant)
	if err != nil {
		transition(ctx, model.StatePublishing, model.StateFailed, slogx.Error(err))
		outcome := model.Failed(rules.ID, model.StateFailed, err)
		outcome.Variant = variant
		return outcome
	}

	transition(ctx, model.StatePublishing, model.StateSucceeded)

	return model.Succeeded(rules.ID, ref, variant)
}

func (o *Orchestrator) build(doc *model.Document, rules *model.PlatformRuleSet) (variant *model.Variant, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("variant build panicked: %v", r)
		}
	}()

	variant, err = Build(doc, rules, o.catalog)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return variant, nil
}

func (o *Orchestrator) publish(ctx context.Context, platform model.PlatformID, variant *model.Variant) (ref *model.PublishedRef, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &model.PublishCollaboratorError{
				Platform: platform,
				Cause:    errors.Errorf("collaborator panicked: %v", r),
			}
		}
	}()

	collaborator, exists := o.collaborators[platform]
	if !exists || collaborator == nil {
		return nil, &model.PublishCollaboratorError{
			Platform: platform,
			Cause:    errors.Wrap(port.ErrNotSupported, "no collaborator configured"),
		}
	}

	ref, err = collaborator.Publish(ctx, variant)
	if err != nil {
		return nil, &model.PublishCollaboratorError{
			Platform: platform,
			Cause:    errors.WithStack(err),
		}
	}

	if ref == nil {
		ref = &model.PublishedRef{}
	}

	return ref, nil
}

func (o *Orchestrator) record(ctx context.Context, outcome model.PublishOutcome, dryRun bool) {
	platform := string(outcome.Platform)

	metrics.PublishOutcomes.With(map[string]string{
		metrics.LabelPlatform: platform,
		metrics.LabelOutcome:  string(outcome.Kind),
		metrics.LabelDryRun:   strconv.FormatBool(dryRun),
	}).Inc()

	if outcome.Kind == model.OutcomeSkipped {
		slog.InfoContext(ctx, "platform skipped", slog.String("reason", outcome.Reason))
		return
	}

	metrics.PublishDuration.With(map[string]string{
		metrics.LabelPlatform: platform,
	}).Observe(outcome.Duration.Seconds())

	if outcome.Variant != nil {
		metrics.VariantWarnings.With(map[string]string{
			metrics.LabelPlatform: platform,
		}).Add(float64(len(outcome.Variant.Warnings)))
	}
}

func transition(ctx context.Context, from, to model.PlatformState, attrs ...any) {
	args := append([]any{slog.String("from", string(from)), slog.String("to", string(to))}, attrs...)

	level := slog.LevelDebug
	switch to {
	case model.StateBuildFailed, model.StateFailed:
		level = slog.LevelError
	case model.StateSucceeded:
		level = slog.LevelInfo
	}

	slog.Log(ctx, level, fmt.Sprintf("platform %s", to), args...)
}

func NewOrchestrator(cat *catalog.Catalog, collaborators map[model.PlatformID]port.Collaborator) *Orchestrator {
	return &Orchestrator{
		catalog:       cat,
		collaborators: collaborators,
		now:           time.Now,
	}
}
