package qiita

import (
	"net/url"
	"strconv"

	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/bornholm/crosspost/pkg/qiita"
	"github.com/pkg/errors"
)

func init() {
	setup.Collaborator.Register("qiita", FromURL)
}

// FromURL creates a collaborator from an url such as
// qiita://qiita.com?token=xxx&private=false. The 'scheme' parameter
// overrides the https scheme used to reach the api.
func FromURL(u *url.URL) (port.Collaborator, error) {
	query := u.Query()

	clientFuncs := []qiita.OptionFunc{
		qiita.WithToken(query.Get("token")),
	}

	if u.Host != "" {
		scheme := query.Get("scheme")
		if scheme == "" {
			scheme = "https"
		}

		clientFuncs = append(clientFuncs, qiita.WithBaseURL(&url.URL{Scheme: scheme, Host: u.Host}))
	}

	funcs := make([]OptionFunc, 0)

	for name, fn := range map[string]func(bool) OptionFunc{
		"private": WithPrivate,
		"tweet":   WithTweet,
	} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}

		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse '%s' parameter", name)
		}

		funcs = append(funcs, fn(value))
	}

	return NewCollaborator(qiita.New(clientFuncs...), funcs...), nil
}
