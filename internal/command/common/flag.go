package common

import (
	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/config"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/markdown"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	paramCatalog  = "catalog"
	paramDatabase = "database"
)

var (
	flagCatalog = altsrc.NewStringFlag(&cli.StringFlag{
		Name:    paramCatalog,
		EnvVars: []string{"CROSSPOST_CATALOG"},
		Usage:   "Catalog of categories, heading vocabulary and platform rules (path or url), the embedded catalog is used if empty",
	})
	flagDatabase = altsrc.NewStringFlag(&cli.StringFlag{
		Name:    paramDatabase,
		EnvVars: []string{"CROSSPOST_STORAGE_DATABASE_DSN"},
		Value:   "crosspost.sqlite",
		Usage:   "SQLite database keeping the publish history, empty to disable the history",
	})
)

func WithCommonFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		flagCatalog,
		flagDatabase,
	}, flags...)
}

// GetConfig returns the process configuration, command line flags taking
// precedence over the environment.
func GetConfig(ctx *cli.Context) (*config.Config, error) {
	conf, err := config.Parse()
	if err != nil {
		return nil, errors.Wrap(err, "could not parse configuration")
	}

	if ctx.IsSet(paramCatalog) {
		conf.Catalog = ctx.String(paramCatalog)
	}

	if ctx.IsSet(paramDatabase) {
		conf.Storage.Database.DSN = ctx.String(paramDatabase)
	}

	return conf, nil
}

func GetCatalog(ctx *cli.Context) (*catalog.Catalog, error) {
	conf, err := GetConfig(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cat, err := setup.NewCatalogFromConfig(ctx.Context, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not load catalog")
	}

	return cat, nil
}

// LoadDocument reads and parses the article located at the given path or
// url.
func LoadDocument(ctx *cli.Context, location string, cat *catalog.Catalog) (*model.Document, error) {
	data, err := ReadResource(ctx.Context, location)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read article '%s'", location)
	}

	doc, err := markdown.Parse(data, markdown.WithCatalog(cat))
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse article '%s'", location)
	}

	return doc, nil
}

// ArticleArg returns the article location given as first argument.
func ArticleArg(ctx *cli.Context) (string, error) {
	location := ctx.Args().First()
	if location == "" {
		return "", errors.New("missing article path or url ('-' for stdin)")
	}

	return location, nil
}
