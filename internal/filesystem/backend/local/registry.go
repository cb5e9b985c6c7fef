package local

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bornholm/crosspost/internal/filesystem"
	"github.com/bornholm/crosspost/internal/filesystem/backend"
	"github.com/pkg/errors"
)

func init() {
	backend.RegisterBackendFactory("local", FromDSN)
}

// FromDSN creates a backend from an url such as local:///var/www/blog or
// local://blog (relative to the working directory).
func FromDSN(dsn *url.URL) (filesystem.Backend, error) {
	basePath := dsn.Host + "/" + strings.TrimPrefix(dsn.Path, "/")
	if dsn.Host == "" {
		basePath = "/" + strings.TrimPrefix(dsn.Path, "/")
	}

	create := false
	if raw := dsn.Query().Get("create"); raw != "" {
		var err error
		create, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse 'create' parameter")
		}
	}

	return New(basePath, create), nil
}
