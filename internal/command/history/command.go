package history

import (
	"fmt"
	"text/tabwriter"

	"github.com/bornholm/crosspost/internal/command/common"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	paramLimit  = "limit"
	paramPage   = "page"
	paramSlug   = "slug"
	paramFormat = "format"
)

func Command() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.IntFlag{
			Name:  paramLimit,
			Value: 10,
			Usage: "Maximum number of reports to list",
		},
		&cli.IntFlag{
			Name:  paramPage,
			Usage: "Page of reports to list",
		},
		&cli.StringFlag{
			Name:  paramSlug,
			Usage: "Only list the reports of the given article slug",
		},
		&cli.StringFlag{
			Name:  paramFormat,
			Value: string(model.FormatYAML),
			Usage: "Format of a single report (yaml or json)",
		},
	)
	return &cli.Command{
		Name:      "history",
		Usage:     "List the past publish runs, or show one of them",
		ArgsUsage: "[ID]",
		Flags:     flags,
		Before:    altsrc.InitInputSourceWithContext(flags, common.NewResolverSourceFromFlagFunc("config")),
		Action: func(cCtx *cli.Context) error {
			conf, err := common.GetConfig(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			store, err := setup.NewReportStoreFromConfig(cCtx.Context, conf)
			if err != nil {
				return errors.Wrap(err, "could not open publish history")
			}

			if id := cCtx.Args().First(); id != "" {
				report, err := store.GetReportByID(cCtx.Context, model.ReportID(id))
				if err != nil {
					if errors.Is(err, port.ErrNotFound) {
						return errors.Errorf("report '%s' not found", id)
					}
					return errors.WithStack(err)
				}

				format := model.ReportFormat(cCtx.String(paramFormat))
				if err := report.Encode(cCtx.App.Writer, format); err != nil {
					return errors.WithStack(err)
				}

				return nil
			}

			opts := port.QueryReportsOptions{}

			if limit := cCtx.Int(paramLimit); limit > 0 {
				opts.Limit = &limit
			}

			if page := cCtx.Int(paramPage); page > 0 {
				opts.Page = &page
			}

			if slug := cCtx.String(paramSlug); slug != "" {
				opts.Slug = &slug
			}

			reports, total, err := store.QueryReports(cCtx.Context, opts)
			if err != nil {
				return errors.WithStack(err)
			}

			tw := tabwriter.NewWriter(cCtx.App.Writer, 0, 0, 2, ' ', 0)

			fmt.Fprintln(tw, "ID\tSTARTED\tSLUG\tSTATUS\tSUCCEEDED\tFAILED\tSKIPPED\tDRY-RUN")

			for _, r := range reports {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%v\n",
					r.ID,
					humanize.Time(r.StartedAt),
					r.Slug,
					r.Status(),
					r.Count(model.OutcomeSucceeded),
					r.Count(model.OutcomeFailed),
					r.Count(model.OutcomeSkipped),
					r.DryRun,
				)
			}

			if err := tw.Flush(); err != nil {
				return errors.WithStack(err)
			}

			fmt.Fprintf(cCtx.App.ErrWriter, "%d of %d report(s)\n", len(reports), total)

			return nil
		},
	}
}
