package memory

import (
	"context"
	"net/url"

	"github.com/bornholm/crosspost/internal/filesystem"
	"github.com/bornholm/crosspost/internal/filesystem/backend"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

func init() {
	backend.RegisterBackendFactory("mem", func(url *url.URL) (filesystem.Backend, error) {
		return New(), nil
	})
}

// Backend keeps its files in memory, for the lifetime of the backend.
type Backend struct {
	fs afero.Fs
}

// Mount implements filesystem.Backend.
func (b *Backend) Mount(ctx context.Context, fn filesystem.MountFunc) error {
	if err := fn(ctx, b.fs); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (b *Backend) Fs() afero.Fs {
	return b.fs
}

func New() *Backend {
	return &Backend{
		fs: afero.NewMemMapFs(),
	}
}

var _ filesystem.Backend = &Backend{}
