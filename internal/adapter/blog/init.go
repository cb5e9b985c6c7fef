package blog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/filesystem/backend"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/pkg/errors"

	_ "github.com/bornholm/crosspost/internal/filesystem/backend/local"
	_ "github.com/bornholm/crosspost/internal/filesystem/backend/memory"
)

const schemePrefix = "blog+"

func init() {
	for _, scheme := range backend.Schemes() {
		setup.Collaborator.Register(schemePrefix+scheme, FromURL)
	}
}

// FromURL creates a collaborator from an url such as
// blog+local://path/to/site?articles=src/content/articles. The part after
// the '+' selects the filesystem backend.
func FromURL(u *url.URL) (port.Collaborator, error) {
	backendURL := *u
	backendURL.Scheme = strings.TrimPrefix(u.Scheme, schemePrefix)

	query := backendURL.Query()

	funcs := make([]OptionFunc, 0)

	if articles := query.Get("articles"); articles != "" {
		funcs = append(funcs, WithArticlesDir(articles))
		query.Del("articles")
	}

	if raw := query.Get("overwrite"); raw != "" {
		overwrite, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrap(err, "could not parse 'overwrite' parameter")
		}

		funcs = append(funcs, WithOverwrite(overwrite))
		query.Del("overwrite")
	}

	backendURL.RawQuery = query.Encode()

	b, err := backend.FromURL(&backendURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewCollaborator(b, funcs...), nil
}
