package zenn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/workflow"
	"github.com/bornholm/go-x/slogx"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
)

const (
	ArticlesDir   = "articles"
	DefaultRemote = "origin"
)

// Collaborator commits variants as articles of a Zenn content repository,
// the Zenn GitHub integration taking care of the actual publication.
type Collaborator struct {
	repoPath string
	user     string
	remote   string
	push     bool
	author   object.Signature
	now      func() time.Time
}

// Publish implements [port.Collaborator].
func (c *Collaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	slug := variant.Metadata.Slug
	if slug == "" || path.Base(slug) != slug {
		return nil, errors.Wrapf(port.ErrRejected, "invalid slug '%s'", slug)
	}

	repo, err := git.PlainOpen(c.repoPath)
	if err != nil {
		return nil, errors.Wrapf(port.ErrUnavailable, "could not open repository '%s': %s", c.repoPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(port.ErrUnavailable, err.Error())
	}

	filename := path.Join(ArticlesDir, slug+".md")

	ctx = slogx.WithAttrs(ctx, slog.String("repository", c.repoPath), slog.String("file", filename))

	var (
		previous    []byte
		existed     bool
		previousRef *plumbing.Reference
		headTarget  plumbing.ReferenceName
		committed   plumbing.Hash
		unchanged   bool
	)

	write := workflow.StepFunc("write",
		func(ctx context.Context) error {
			previous, existed, err = readFile(worktree.Filesystem, filename)
			if err != nil {
				return errors.WithStack(err)
			}

			if err := worktree.Filesystem.MkdirAll(ArticlesDir, 0o755); err != nil {
				return errors.WithStack(err)
			}

			if err := util.WriteFile(worktree.Filesystem, filename, []byte(variant.Content), 0o644); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
		func(ctx context.Context) error {
			if !existed {
				if err := worktree.Filesystem.Remove(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
					return errors.WithStack(err)
				}
				return nil
			}

			if err := util.WriteFile(worktree.Filesystem, filename, previous, 0o644); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	)

	commit := workflow.StepFunc("commit",
		func(ctx context.Context) error {
			head, err := repo.Storer.Reference(plumbing.HEAD)
			if err != nil {
				return errors.WithStack(err)
			}

			headTarget = head.Target()

			previousRef, err = repo.Head()
			if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
				return errors.WithStack(err)
			}

			if _, err := worktree.Add(filename); err != nil {
				return errors.WithStack(err)
			}

			status, err := worktree.Status()
			if err != nil {
				return errors.WithStack(err)
			}

			if fileStatus, exists := status[filename]; !exists || fileStatus.Staging == git.Unmodified {
				slog.DebugContext(ctx, "article unchanged, nothing to commit")
				unchanged = true
				if previousRef != nil {
					committed = previousRef.Hash()
				}
				return nil
			}

			action := "add"
			if existed {
				action = "update"
			}

			author := c.author
			author.When = c.now()

			committed, err = worktree.Commit(fmt.Sprintf("%s article '%s'", action, slug), &git.CommitOptions{
				Author: &author,
			})
			if err != nil {
				return errors.WithStack(err)
			}

			slog.DebugContext(ctx, "article committed", slog.String("commit", committed.String()))

			return nil
		},
		func(ctx context.Context) error {
			if unchanged || committed.IsZero() {
				return nil
			}

			if previousRef == nil {
				if err := repo.Storer.RemoveReference(headTarget); err != nil {
					return errors.WithStack(err)
				}

				return nil
			}

			err := worktree.Reset(&git.ResetOptions{
				Mode:   git.MixedReset,
				Commit: previousRef.Hash(),
			})
			if err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	)

	steps := []workflow.Step{write, commit}

	if c.push {
		steps = append(steps, workflow.StepFunc("push",
			func(ctx context.Context) error {
				if unchanged {
					return nil
				}

				err := repo.PushContext(ctx, &git.PushOptions{
					RemoteName: c.remote,
				})
				if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
					return errors.WithStack(err)
				}

				return nil
			},
			nil,
		))
	}

	if err := workflow.New(steps...).Execute(ctx); err != nil {
		return nil, c.translateError(err)
	}

	return &model.PublishedRef{
		ID:  committed.String(),
		URL: c.articleURL(slug, filename),
	}, nil
}

func (c *Collaborator) articleURL(slug string, filename string) string {
	if c.user == "" {
		return "file://" + path.Join(c.repoPath, filename)
	}

	return fmt.Sprintf("https://zenn.dev/%s/articles/%s", c.user, slug)
}

func (c *Collaborator) translateError(err error) error {
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
		return errors.Wrap(port.ErrUnauthorized, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(port.ErrCanceled, err.Error())
	default:
		return errors.Wrap(port.ErrUnavailable, err.Error())
	}
}

func readFile(fs billy.Filesystem, filename string) ([]byte, bool, error) {
	file, err := fs.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, errors.WithStack(err)
	}

	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	return data, true, nil
}

type Options struct {
	User        string
	Remote      string
	Push        bool
	AuthorName  string
	AuthorEmail string
}

type OptionFunc func(opts *Options)

// WithUser sets the Zenn account used to build article urls.
func WithUser(user string) OptionFunc {
	return func(opts *Options) {
		opts.User = user
	}
}

func WithPush(push bool, remote string) OptionFunc {
	return func(opts *Options) {
		opts.Push = push
		opts.Remote = remote
	}
}

func WithAuthor(name, email string) OptionFunc {
	return func(opts *Options) {
		opts.AuthorName = name
		opts.AuthorEmail = email
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Remote:      DefaultRemote,
		AuthorName:  "crosspost",
		AuthorEmail: "crosspost@localhost",
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewCollaborator(repoPath string, funcs ...OptionFunc) *Collaborator {
	opts := NewOptions(funcs...)
	return &Collaborator{
		repoPath: repoPath,
		user:     opts.User,
		remote:   opts.Remote,
		push:     opts.Push,
		author: object.Signature{
			Name:  opts.AuthorName,
			Email: opts.AuthorEmail,
		},
		now: time.Now,
	}
}

var _ port.Collaborator = &Collaborator{}
