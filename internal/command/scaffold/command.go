package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bornholm/crosspost/internal/command/common"
	"github.com/bornholm/crosspost/internal/markdown"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	paramTitle    = "title"
	paramSlug     = "slug"
	paramCategory = "category"
	paramTags     = "tags"
	paramOutput   = "output"
	paramForce    = "force"
)

func Command() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.StringFlag{
			Name:     paramTitle,
			Aliases:  []string{"t"},
			Usage:    "Title of the article",
			Required: true,
		},
		&cli.StringFlag{
			Name:    paramSlug,
			Aliases: []string{"s"},
			Usage:   "Slug of the article, derived from the title if empty",
		},
		&cli.StringFlag{
			Name:  paramCategory,
			Usage: "Category of the article, the catalog default if empty",
		},
		&cli.StringSliceFlag{
			Name:  paramTags,
			Usage: "Tags of the article (comma separated)",
		},
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    paramOutput,
			Aliases: []string{"o"},
			Value:   "articles/drafts",
			Usage:   "Directory to create the article in",
		}),
		&cli.BoolFlag{
			Name:  paramForce,
			Usage: "Overwrite an existing article",
		},
	)
	return &cli.Command{
		Name:   "new",
		Usage:  "Create a new article from a template",
		Flags:  flags,
		Before: altsrc.InitInputSourceWithContext(flags, common.NewResolverSourceFromFlagFunc("config")),
		Action: func(cCtx *cli.Context) error {
			cat, err := common.GetCatalog(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			title := strings.TrimSpace(cCtx.String(paramTitle))

			slug := cCtx.String(paramSlug)
			if slug == "" {
				slug, err = markdown.Slugify(title)
				if err != nil {
					return errors.Wrap(err, "could not derive slug from title, use --slug")
				}
			}

			category := cat.DefaultCategory
			if raw := cCtx.String(paramCategory); raw != "" {
				resolved, ok := cat.ResolveCategory(raw)
				if !ok {
					return errors.Errorf("unknown category '%s'", raw)
				}
				category = resolved
			}

			tags := make([]string, 0)
			for _, raw := range cCtx.StringSlice(paramTags) {
				for _, tag := range strings.Split(raw, ",") {
					if tag = strings.TrimSpace(tag); tag != "" {
						tags = append(tags, tag)
					}
				}
			}

			data, err := Render(cat, Article{
				Title:     title,
				Slug:      slug,
				Category:  category,
				Tags:      tags,
				CreatedAt: time.Now(),
			})
			if err != nil {
				return errors.Wrap(err, "could not render article template")
			}

			dir := cCtx.String(paramOutput)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.WithStack(err)
			}

			path := filepath.Join(dir, slug+".md")

			flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if cCtx.Bool(paramForce) {
				flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}

			file, err := os.OpenFile(path, flag, 0o644)
			if err != nil {
				if errors.Is(err, os.ErrExist) {
					return errors.Errorf("article '%s' already exists, use --force to overwrite it", path)
				}
				return errors.WithStack(err)
			}

			defer file.Close()

			if _, err := file.Write(data); err != nil {
				return errors.WithStack(err)
			}

			fmt.Fprintf(cCtx.App.Writer, "created %s\n", path)

			return nil
		},
	}
}
