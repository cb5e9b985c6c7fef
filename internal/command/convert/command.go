package convert

import (
	"fmt"
	"os"

	"github.com/bornholm/crosspost/internal/command/common"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/service"
	"github.com/bornholm/crosspost/internal/markdown"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	paramOutput    = "output"
	paramNormalize = "normalize"
	paramWarnings  = "warnings"
)

func Command() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.StringFlag{
			Name:    paramOutput,
			Aliases: []string{"o"},
			Usage:   "Write the variant to the given file instead of the standard output",
		},
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:  paramNormalize,
			Usage: "Render the variant body through the markdown renderer, stripping inlined data urls",
		}),
		&cli.BoolFlag{
			Name:  paramWarnings,
			Usage: "Print the transform warnings on the standard error",
			Value: true,
		},
	)
	return &cli.Command{
		Name:      "convert",
		Usage:     "Print the variant of an article for a single platform",
		ArgsUsage: "ARTICLE PLATFORM",
		Flags:     flags,
		Before:    altsrc.InitInputSourceWithContext(flags, common.NewResolverSourceFromFlagFunc("config")),
		Action: func(cCtx *cli.Context) error {
			location, err := common.ArticleArg(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			platform := model.PlatformID(cCtx.Args().Get(1))
			if platform == "" {
				return errors.New("missing platform")
			}

			cat, err := common.GetCatalog(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			rules, exists := cat.Platform(platform)
			if !exists {
				return errors.Errorf("unknown platform '%s', expected one of %v", platform, cat.PlatformIDs())
			}

			doc, err := common.LoadDocument(cCtx, location, cat)
			if err != nil {
				return errors.WithStack(err)
			}

			variant, err := service.Build(doc, rules, cat)
			if err != nil {
				return errors.Wrapf(err, "could not build variant for platform '%s'", platform)
			}

			content := variant.Content

			if cCtx.Bool(paramNormalize) {
				content, err = markdown.Normalize(content, markdown.StripDataURL)
				if err != nil {
					return errors.Wrap(err, "could not normalize variant")
				}
			}

			if cCtx.Bool(paramWarnings) {
				for _, w := range variant.Warnings {
					fmt.Fprintf(cCtx.App.ErrWriter, "warning: %s\n", w)
				}
			}

			if path := cCtx.String(paramOutput); path != "" {
				if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
					return errors.Wrapf(err, "could not write variant to '%s'", path)
				}

				return nil
			}

			if _, err := fmt.Fprint(cCtx.App.Writer, content); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}
}
