package common

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"regexp"

	"github.com/Bornholm/amatl/pkg/resolver"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
	"gopkg.in/yaml.v2"
)

func NewResolverSourceFromFlagFunc(flag string) func(cCtx *cli.Context) (altsrc.InputSourceContext, error) {
	return func(cCtx *cli.Context) (altsrc.InputSourceContext, error) {
		if urlStr := cCtx.String(flag); urlStr != "" {
			return NewResolvedInputSource(cCtx.Context, urlStr)
		}

		return altsrc.NewMapInputSource("", map[any]any{}), nil
	}
}

func NewResolvedInputSource(ctx context.Context, urlStr string) (altsrc.InputSourceContext, error) {
	url, err := setup.ResolveURL(urlStr)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse url '%s'", urlStr)
	}

	data, err := readURL(ctx, url)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ext := filepath.Ext(url.Path)
	switch ext {
	case ".json":
		fallthrough
	case ".yaml":
		fallthrough
	case ".yml":
		var values map[any]any

		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, errors.WithStack(err)
		}

		values, err = resolveRelativePaths(url, values)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return altsrc.NewMapInputSource(urlStr, values), nil

	default:
		return nil, errors.Errorf("no parser associated with '%s' file extension", ext)
	}

}

// ReadResource reads the resource at the given location: a local path, a
// file, http(s) or stdin url, or '-' for the standard input.
func ReadResource(ctx context.Context, location string) ([]byte, error) {
	url, err := setup.ResolveURL(location)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	data, err := readURL(ctx, url)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}

func readURL(ctx context.Context, url *url.URL) ([]byte, error) {
	reader, err := resolver.Resolve(ctx, url)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}

// resolveRelativePaths makes the relative paths found in a local
// configuration file relative to the file directory. Values of remote
// configuration files are kept as is.
func resolveRelativePaths(fromURL *url.URL, values map[any]any) (map[any]any, error) {
	if fromURL.Scheme != "file" {
		return values, nil
	}

	dir, err := filepath.Abs(filepath.Dir(filepath.FromSlash(fromURL.Path)))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for key, rawValue := range values {
		value, ok := rawValue.(string)
		if !ok || isURL(value) || !isPath(value) || filepath.IsAbs(value) {
			continue
		}

		values[key] = filepath.Join(dir, value)
	}

	return values, nil
}

var filepathRegExp = regexp.MustCompile(`^(?i)(?:\/[^\/]+)+\/?[^\s]+(?:\.[^\s]+)+|[^\s]+(?:\.[^\s]+)+$`)

func isPath(str string) bool {
	return filepathRegExp.MatchString(str)
}

func isURL(str string) bool {
	_, err := url.ParseRequestURI(str)
	return err == nil
}
