package collaborator

import (
	"context"
	"time"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/metrics"
	"github.com/pkg/errors"
)

const (
	StatusSuccess      = "success"
	StatusRejected     = "rejected"
	StatusUnauthorized = "unauthorized"
	StatusUnavailable  = "unavailable"
	StatusCanceled     = "canceled"
	StatusError        = "error"
)

type InstrumentedCollaborator struct {
	platform     model.PlatformID
	collaborator port.Collaborator
}

// Publish implements [port.Collaborator].
func (c *InstrumentedCollaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	start := time.Now()

	ref, err := c.collaborator.Publish(ctx, variant)

	metrics.CollaboratorDuration.With(map[string]string{
		metrics.LabelPlatform: string(c.platform),
	}).Observe(time.Since(start).Seconds())

	metrics.CollaboratorCalls.With(map[string]string{
		metrics.LabelPlatform: string(c.platform),
		metrics.LabelStatus:   Status(err),
	}).Inc()

	return ref, err
}

// Status returns the label describing the given publish error.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, port.ErrRejected):
		return StatusRejected
	case errors.Is(err, port.ErrUnauthorized):
		return StatusUnauthorized
	case errors.Is(err, port.ErrUnavailable):
		return StatusUnavailable
	case errors.Is(err, port.ErrCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusError
	}
}

func NewInstrumentedCollaborator(platform model.PlatformID, collaborator port.Collaborator) *InstrumentedCollaborator {
	return &InstrumentedCollaborator{
		platform:     platform,
		collaborator: collaborator,
	}
}

var _ port.Collaborator = &InstrumentedCollaborator{}
