package validate

import (
	"github.com/bornholm/crosspost/internal/command/common"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/service"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func Command() *cli.Command {
	flags := common.WithCommonFlags()
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check that an article can be transformed for every enabled platform",
		ArgsUsage: "ARTICLE",
		Flags:     flags,
		Before:    altsrc.InitInputSourceWithContext(flags, common.NewResolverSourceFromFlagFunc("config")),
		Action: func(cCtx *cli.Context) error {
			location, err := common.ArticleArg(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			cat, err := common.GetCatalog(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			doc, err := common.LoadDocument(cCtx, location, cat)
			if err != nil {
				return errors.WithStack(err)
			}

			orchestrator := service.NewOrchestrator(cat, nil)

			report := orchestrator.Orchestrate(cCtx.Context, doc, service.WithDryRun(true))

			if err := service.RenderPreview(cCtx.App.Writer, report, service.WithPreviewLength(0)); err != nil {
				return errors.Wrap(err, "could not render report")
			}

			if failed := report.Count(model.OutcomeFailed); failed > 0 {
				return errors.Errorf("article is not valid for %d platform(s)", failed)
			}

			return nil
		},
	}
}
