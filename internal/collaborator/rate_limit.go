package collaborator

import (
	"context"
	"time"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type RateLimitedCollaborator struct {
	limiter      *rate.Limiter
	collaborator port.Collaborator
}

// Publish implements [port.Collaborator].
func (c *RateLimitedCollaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(port.ErrCanceled, err.Error())
	}

	return c.collaborator.Publish(ctx, variant)
}

func NewRateLimitedCollaborator(collaborator port.Collaborator, interval time.Duration, maxBurst int) *RateLimitedCollaborator {
	if maxBurst < 1 {
		maxBurst = 1
	}

	return &RateLimitedCollaborator{
		limiter:      rate.NewLimiter(rate.Every(interval), maxBurst),
		collaborator: collaborator,
	}
}

var _ port.Collaborator = &RateLimitedCollaborator{}
