package categories

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/bornholm/crosspost/internal/command/common"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func Command() *cli.Command {
	flags := common.WithCommonFlags()
	return &cli.Command{
		Name:   "categories",
		Usage:  "List the article categories of the catalog and their aliases",
		Flags:  flags,
		Before: altsrc.InitInputSourceWithContext(flags, common.NewResolverSourceFromFlagFunc("config")),
		Action: func(cCtx *cli.Context) error {
			cat, err := common.GetCatalog(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			aliases := make(map[string][]string)
			for alias, target := range cat.Aliases {
				aliases[target] = append(aliases[target], alias)
			}

			w := tabwriter.NewWriter(cCtx.App.Writer, 0, 4, 2, ' ', 0)

			fmt.Fprintln(w, "CATEGORY\tALIASES\tDESCRIPTION")

			for _, c := range cat.Categories {
				names := aliases[c.ID]
				slices.Sort(names)

				id := c.ID
				if id == cat.DefaultCategory {
					id += " (default)"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\n", id, strings.Join(names, ", "), c.Description)
			}

			if err := w.Flush(); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}
}
