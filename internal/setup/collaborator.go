package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/collaborator"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
)

var Collaborator = NewRegistry[port.Collaborator]()

// NewCollaborators creates the collaborator of every configured platform.
// Overrides replace the collaborator uri of the catalog for the given
// platforms. A platform whose collaborator cannot be created gets a
// collaborator failing with the creation error, leaving the other platforms
// unaffected.
func NewCollaborators(ctx context.Context, cat *catalog.Catalog, overrides map[model.PlatformID]string) map[model.PlatformID]port.Collaborator {
	collaborators := make(map[model.PlatformID]port.Collaborator, len(cat.Platforms))

	for i := range cat.Platforms {
		rules := &cat.Platforms[i]

		uri := rules.Collaborator
		if override, exists := overrides[rules.ID]; exists {
			uri = catalog.ExpandEnv(override)
		}

		if uri == "" {
			continue
		}

		c, err := Collaborator.From(uri)
		if err != nil {
			err = errors.Wrapf(err, "could not create collaborator of platform '%s'", rules.ID)
			if errors.Is(err, ErrSchemeNotRegistered) {
				err = errors.Wrap(port.ErrNotSupported, err.Error())
			}

			slog.WarnContext(ctx, "collaborator unavailable", slog.String("platform", string(rules.ID)), slogx.Error(err))

			c = newFailingCollaborator(err)
		}

		collaborators[rules.ID] = collaborator.Decorate(rules, c)
	}

	return collaborators
}

func newFailingCollaborator(err error) port.Collaborator {
	return port.CollaboratorFunc(func(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
		return nil, errors.WithStack(err)
	})
}
