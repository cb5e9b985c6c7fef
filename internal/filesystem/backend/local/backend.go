package local

import (
	"context"
	"os"

	"github.com/bornholm/crosspost/internal/filesystem"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type Backend struct {
	basePath string
	create   bool
}

// Mount implements filesystem.Backend.
func (b *Backend) Mount(ctx context.Context, fn filesystem.MountFunc) error {
	if _, err := os.Stat(b.basePath); err != nil {
		if !os.IsNotExist(err) || !b.create {
			return errors.Wrapf(err, "could not access '%s'", b.basePath)
		}

		if err := os.MkdirAll(b.basePath, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}

	fs := afero.NewBasePathFs(afero.NewOsFs(), b.basePath)

	if err := fn(ctx, fs); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (b *Backend) BasePath() string {
	return b.basePath
}

// New returns a backend rooted at basePath. The directory is created on
// mount when create is true, otherwise it must exist.
func New(basePath string, create bool) *Backend {
	return &Backend{
		basePath: basePath,
		create:   create,
	}
}

var _ filesystem.Backend = &Backend{}
