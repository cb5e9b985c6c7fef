package blog

import (
	"context"
	"log/slog"
	"os"
	"path"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/filesystem"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const DefaultArticlesDir = "src/content/articles"

// Collaborator writes variants as markdown files of a static site content
// directory, one file per slug.
type Collaborator struct {
	backend     filesystem.Backend
	articlesDir string
	overwrite   bool
}

// Publish implements [port.Collaborator].
func (c *Collaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	slug := variant.Metadata.Slug
	if slug == "" || path.Base(slug) != slug {
		return nil, errors.Wrapf(port.ErrRejected, "invalid slug '%s'", slug)
	}

	filename := path.Join(c.articlesDir, slug+".md")

	err := c.backend.Mount(ctx, func(ctx context.Context, fs afero.Fs) error {
		fs = filesystem.NewLogger(ctx, fs, slog.LevelDebug)

		if !c.overwrite {
			exists, err := afero.Exists(fs, filename)
			if err != nil {
				return errors.WithStack(err)
			}

			if exists {
				return errors.Wrapf(port.ErrRejected, "article '%s' already exists", filename)
			}
		}

		if err := fs.MkdirAll(c.articlesDir, 0o755); err != nil {
			return errors.WithStack(err)
		}

		if err := afero.WriteFile(fs, filename, []byte(variant.Content), 0o644); err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, port.ErrRejected) {
			return nil, errors.WithStack(err)
		}

		if errors.Is(err, os.ErrPermission) {
			return nil, errors.Wrap(port.ErrUnauthorized, err.Error())
		}

		return nil, errors.Wrap(port.ErrUnavailable, err.Error())
	}

	url := variant.Metadata.CanonicalURL
	if url == "" {
		url = filename
	}

	return &model.PublishedRef{
		ID:  slug,
		URL: url,
	}, nil
}

type Options struct {
	ArticlesDir string
	Overwrite   bool
}

type OptionFunc func(opts *Options)

func WithArticlesDir(dir string) OptionFunc {
	return func(opts *Options) {
		opts.ArticlesDir = dir
	}
}

func WithOverwrite(overwrite bool) OptionFunc {
	return func(opts *Options) {
		opts.Overwrite = overwrite
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		ArticlesDir: DefaultArticlesDir,
		Overwrite:   true,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewCollaborator(backend filesystem.Backend, funcs ...OptionFunc) *Collaborator {
	opts := NewOptions(funcs...)
	return &Collaborator{
		backend:     backend,
		articlesDir: path.Clean(opts.ArticlesDir),
		overwrite:   opts.Overwrite,
	}
}

var _ port.Collaborator = &Collaborator{}
