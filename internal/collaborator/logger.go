package collaborator

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/go-x/slogx"
	"github.com/dustin/go-humanize"
)

type LoggedCollaborator struct {
	collaborator port.Collaborator
}

// Publish implements [port.Collaborator].
func (c *LoggedCollaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	ctx = slogx.WithAttrs(ctx,
		slog.String("checksum", variant.Checksum),
		slog.String("size", humanize.Bytes(uint64(len(variant.Content)))),
	)

	slog.DebugContext(ctx, "publishing variant")

	start := time.Now()

	ref, err := c.collaborator.Publish(ctx, variant)
	if err != nil {
		slog.ErrorContext(ctx, "could not publish variant", slog.Duration("duration", time.Since(start)), slogx.Error(err))
		return nil, err
	}

	attrs := []any{slog.Duration("duration", time.Since(start))}
	if ref != nil {
		attrs = append(attrs, slog.String("id", ref.ID), slog.String("url", ref.URL))
	}

	slog.InfoContext(ctx, "variant published", attrs...)

	return ref, nil
}

func NewLoggedCollaborator(collaborator port.Collaborator) *LoggedCollaborator {
	return &LoggedCollaborator{
		collaborator: collaborator,
	}
}

var _ port.Collaborator = &LoggedCollaborator{}
