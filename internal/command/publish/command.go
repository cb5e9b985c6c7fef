package publish

import (
	"context"
	"log/slog"
	"os"

	"github.com/bornholm/crosspost/internal/command/common"
	"github.com/bornholm/crosspost/internal/config"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/core/service"
	"github.com/bornholm/crosspost/internal/metrics"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func Command() *cli.Command {
	flags := common.WithCommonFlags(
		withPublishFlags()...,
	)
	return &cli.Command{
		Name:      "publish",
		Usage:     "Build the variants of an article and publish them on every configured platform",
		ArgsUsage: "ARTICLE",
		Flags:     flags,
		Before:    altsrc.InitInputSourceWithContext(flags, common.NewResolverSourceFromFlagFunc("config")),
		Action: func(cCtx *cli.Context) error {
			location, err := common.ArticleArg(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			conf, err := common.GetConfig(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			cat, err := common.GetCatalog(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			platforms, err := getPlatforms(cCtx, cat)
			if err != nil {
				return errors.WithStack(err)
			}

			overrides, err := getCollaboratorOverrides(cCtx, cat)
			if err != nil {
				return errors.WithStack(err)
			}

			doc, err := common.LoadDocument(cCtx, location, cat)
			if err != nil {
				return errors.WithStack(err)
			}

			dryRun := cCtx.Bool(paramDryRun)

			ctx := cCtx.Context

			var collaborators map[model.PlatformID]port.Collaborator
			if !dryRun {
				collaborators = setup.NewCollaborators(ctx, cat, overrides)
			}

			orchestrator := service.NewOrchestrator(cat, collaborators)

			report := orchestrator.Orchestrate(ctx, doc,
				service.WithDryRun(dryRun),
				service.WithPlatforms(platforms...),
			)

			previewLength := 0
			if dryRun {
				previewLength = conf.Preview.Length
				if cCtx.IsSet(paramPreviewLength) {
					previewLength = cCtx.Int(paramPreviewLength)
				}
			}

			if err := service.RenderPreview(cCtx.App.Writer, report, service.WithPreviewLength(previewLength)); err != nil {
				return errors.Wrap(err, "could not render report")
			}

			if path := cCtx.String(paramReport); path != "" {
				if err := writeReport(path, report); err != nil {
					return errors.WithStack(err)
				}
			}

			if !cCtx.Bool(paramNoHistory) {
				recordHistory(context.WithoutCancel(ctx), conf, report)
			}

			metricsTextfile := conf.Metrics.Textfile
			if cCtx.IsSet(paramMetricsTextfile) {
				metricsTextfile = cCtx.String(paramMetricsTextfile)
			}

			if path := metricsTextfile; path != "" {
				if err := metrics.WriteTextfile(path); err != nil {
					return errors.Wrapf(err, "could not write metrics to '%s'", path)
				}
			}

			if failed := report.Count(model.OutcomeFailed); failed > 0 {
				return errors.Errorf("%d platform(s) failed, run status is '%s'", failed, report.Status())
			}

			if ctx.Err() != nil {
				return errors.New("run interrupted")
			}

			return nil
		},
	}
}

func writeReport(path string, report *model.PublishReport) error {
	format, err := getReportFormat(path)
	if err != nil {
		return errors.WithStack(err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create report file '%s'", path)
	}

	defer file.Close()

	if err := report.Encode(file, format); err != nil {
		return errors.Wrapf(err, "could not write report to '%s'", path)
	}

	return nil
}

// recordHistory saves the report in the history store. Failures are logged,
// the run itself being already done.
func recordHistory(ctx context.Context, conf *config.Config, report *model.PublishReport) {
	if conf.Storage.Database.DSN == "" {
		return
	}

	ctx = slogx.WithAttrs(ctx, slog.String("report", string(report.ID)))

	store, err := setup.NewReportStoreFromConfig(ctx, conf)
	if err != nil {
		slog.WarnContext(ctx, "could not open publish history", slogx.Error(errors.WithStack(err)))
		return
	}

	if err := store.SaveReport(ctx, report); err != nil {
		slog.WarnContext(ctx, "could not record report in publish history", slogx.Error(errors.WithStack(err)))
		return
	}

	slog.DebugContext(ctx, "report recorded in publish history")
}
