package port

import (
	"context"

	"github.com/bornholm/crosspost/internal/core/model"
)

// Collaborator delivers a variant to an external platform.
//
// Errors should wrap one of ErrRejected, ErrUnauthorized, ErrUnavailable or
// ErrNotSupported so that callers can tell a remote validation failure from a
// transport one.
type Collaborator interface {
	Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error)
}

type CollaboratorFunc func(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error)

func (fn CollaboratorFunc) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	return fn(ctx, variant)
}
