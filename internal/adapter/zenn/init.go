package zenn

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/pkg/errors"
)

func init() {
	setup.Collaborator.Register("zenn+git", FromURL)
}

// FromURL creates a collaborator from an url such as
// zenn+git://path/to/repository?push=true&remote=origin&user=account.
func FromURL(u *url.URL) (port.Collaborator, error) {
	repoPath := u.Host + "/" + strings.TrimPrefix(u.Path, "/")
	if u.Host == "" {
		repoPath = "/" + strings.TrimPrefix(u.Path, "/")
	}

	query := u.Query()

	funcs := []OptionFunc{
		WithUser(query.Get("user")),
	}

	if raw := query.Get("push"); raw != "" {
		push, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrap(err, "could not parse 'push' parameter")
		}

		remote := query.Get("remote")
		if remote == "" {
			remote = DefaultRemote
		}

		funcs = append(funcs, WithPush(push, remote))
	}

	if name := query.Get("author"); name != "" {
		funcs = append(funcs, WithAuthor(name, query.Get("email")))
	}

	return NewCollaborator(strings.TrimSuffix(repoPath, "/"), funcs...), nil
}
