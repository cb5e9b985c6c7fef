package setup

import (
	"context"
	"sync"

	"github.com/bornholm/crosspost/internal/config"
	"github.com/pkg/errors"
)

// createFromConfigOnce memoizes the first result of factory, errors
// included.
func createFromConfigOnce[T any](factory func(ctx context.Context, conf *config.Config) (T, error)) func(ctx context.Context, conf *config.Config) (T, error) {
	var (
		once    sync.Once
		service T
		err     error
	)

	return func(ctx context.Context, conf *config.Config) (T, error) {
		once.Do(func() {
			service, err = factory(ctx, conf)
		})

		if err != nil {
			return service, errors.WithStack(err)
		}

		return service, nil
	}
}
