package memory

import (
	"net/url"

	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
)

func init() {
	setup.Collaborator.Register("memory", func(u *url.URL) (port.Collaborator, error) {
		name := u.Host
		if name == "" {
			name = "default"
		}

		return Named(name), nil
	})
}
