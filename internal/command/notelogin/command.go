package notelogin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/command/common"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const platformNote model.PlatformID = "note"

const (
	paramCollaborator = "collaborator"
	paramCookies      = "cookies"
	paramLogin        = "login"
	paramTimeout      = "timeout"
)

// sessionCollaborator is a collaborator relying on a browser session.
type sessionCollaborator interface {
	CheckSession(ctx context.Context) error
	Login(ctx context.Context, timeout time.Duration) error
}

func Command() *cli.Command {
	flags := common.WithCommonFlags(
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  paramCollaborator,
			Usage: "Collaborator uri of the note platform, the one of the catalog is used if empty",
		}),
		&cli.StringFlag{
			Name:  paramCookies,
			Usage: "Cookie file of the note session, overrides the one of the collaborator uri",
		},
		&cli.BoolFlag{
			Name:  paramLogin,
			Usage: "Sign in through a visible browser when the stored session is not valid",
		},
		&cli.DurationFlag{
			Name:  paramTimeout,
			Value: 5 * time.Minute,
			Usage: "Time given to sign in",
		},
	)
	return &cli.Command{
		Name:   "note-login",
		Usage:  "Check the stored note session, optionally signing in again",
		Flags:  flags,
		Before: altsrc.InitInputSourceWithContext(flags, common.NewResolverSourceFromFlagFunc("config")),
		Action: func(cCtx *cli.Context) error {
			cat, err := common.GetCatalog(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			uri, err := collaboratorURI(cat, cCtx.String(paramCollaborator), cCtx.String(paramCookies))
			if err != nil {
				return errors.WithStack(err)
			}

			collaborator, err := newSessionCollaborator(uri)
			if err != nil {
				return errors.WithStack(err)
			}

			return checkSession(cCtx.Context, cCtx.App.Writer, collaborator, cCtx.Bool(paramLogin), cCtx.Duration(paramTimeout))
		},
	}
}

// collaboratorURI returns the collaborator uri of the note platform, the
// cookie file being replaced when one is given.
func collaboratorURI(cat *catalog.Catalog, override string, cookies string) (string, error) {
	uri := catalog.ExpandEnv(override)
	if uri == "" {
		rules, exists := cat.Platform(platformNote)
		if !exists {
			return "", errors.Errorf("platform '%s' not found in catalog", platformNote)
		}
		uri = rules.Collaborator
	}

	if uri == "" {
		return "", errors.Errorf("no collaborator configured for platform '%s'", platformNote)
	}

	if cookies == "" {
		return uri, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Wrapf(err, "could not parse collaborator uri '%s'", uri)
	}

	query := u.Query()
	query.Set("cookies", cookies)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func newSessionCollaborator(uri string) (sessionCollaborator, error) {
	c, err := setup.Collaborator.From(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create collaborator '%s'", uri)
	}

	collaborator, ok := c.(sessionCollaborator)
	if !ok {
		return nil, errors.Wrapf(port.ErrNotSupported, "collaborator '%s' does not use a browser session", uri)
	}

	return collaborator, nil
}

func checkSession(ctx context.Context, w io.Writer, collaborator sessionCollaborator, login bool, timeout time.Duration) error {
	err := collaborator.CheckSession(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(w, "note session is valid")
		return nil
	case !errors.Is(err, port.ErrUnauthorized):
		return errors.Wrap(err, "could not check note session")
	case !login:
		return cli.Exit(fmt.Sprintf("note session is not valid: %s", err), 1)
	}

	slog.InfoContext(ctx, "no valid note session, waiting for sign in", slogx.Error(err), slog.Duration("timeout", timeout))

	if err := collaborator.Login(ctx, timeout); err != nil {
		return errors.Wrap(err, "could not sign in to note")
	}

	if err := collaborator.CheckSession(ctx); err != nil {
		return errors.Wrap(err, "note session still not valid after sign in")
	}

	fmt.Fprintln(w, "note session saved and valid")

	return nil
}
