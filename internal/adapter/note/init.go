package note

import (
	"net/url"
	"strconv"
	"time"

	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/pkg/errors"
)

func init() {
	setup.Collaborator.Register("note+chromedp", FromURL)
}

// FromURL creates a collaborator from an url such as
// note+chromedp://note.com?headless=true&cookies=note-cookies.json.
func FromURL(u *url.URL) (port.Collaborator, error) {
	query := u.Query()

	funcs := make([]OptionFunc, 0)

	if u.Host != "" {
		funcs = append(funcs, WithBaseURL(&url.URL{Scheme: "https", Host: u.Host}))
	}

	if cookies := query.Get("cookies"); cookies != "" {
		funcs = append(funcs, WithCookiesPath(cookies))
	}

	if remote := query.Get("remote"); remote != "" {
		funcs = append(funcs, WithRemoteURL(remote))
	}

	for name, fn := range map[string]func(bool) OptionFunc{
		"headless": WithHeadless,
		"publish":  WithPublish,
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

	if raw := query.Get("timeout"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Wrap(err, "could not parse 'timeout' parameter")
		}

		funcs = append(funcs, WithTimeout(timeout))
	}

	return NewCollaborator(funcs...), nil
}
