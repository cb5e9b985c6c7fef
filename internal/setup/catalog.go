package setup

import (
	"context"
	"net/url"
	"path/filepath"

	"github.com/Bornholm/amatl/pkg/resolver"
	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/config"
	"github.com/pkg/errors"

	_ "github.com/Bornholm/amatl/pkg/resolver/file"
	_ "github.com/Bornholm/amatl/pkg/resolver/http"
	_ "github.com/Bornholm/amatl/pkg/resolver/stdin"
)

var getCatalogFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*catalog.Catalog, error) {
	if conf.Catalog == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return cat, nil
	}

	cat, err := LoadCatalog(ctx, conf.Catalog)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return cat, nil
})

func NewCatalogFromConfig(ctx context.Context, conf *config.Config) (*catalog.Catalog, error) {
	cat, err := getCatalogFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return cat, nil
}

// LoadCatalog loads the catalog located at the given url. Plain paths are
// read from the local filesystem.
func LoadCatalog(ctx context.Context, rawURL string) (*catalog.Catalog, error) {
	u, err := ResolveURL(rawURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	reader, err := resolver.Resolve(ctx, u)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve catalog '%s'", u)
	}

	defer reader.Close()

	cat, err := catalog.Load(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load catalog '%s'", u)
	}

	return cat, nil
}

// ResolveURL parses a resource location, plain paths being converted to
// absolute file urls.
func ResolveURL(raw string) (*url.URL, error) {
	if raw == "-" {
		return &url.URL{Scheme: "stdin"}, nil
	}

	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return u, nil
	}

	path, err := filepath.Abs(raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}, nil
}
