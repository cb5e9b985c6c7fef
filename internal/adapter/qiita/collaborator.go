package qiita

import (
	"context"
	"net/http"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/pkg/qiita"
	"github.com/pkg/errors"
)

// Collaborator publishes variants as Qiita items. A variant carrying an
// item identifier updates the existing item.
type Collaborator struct {
	client  *qiita.Client
	private bool
	tweet   bool
}

// Publish implements [port.Collaborator].
func (c *Collaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	payload := qiita.ItemPayload{
		Title:   variant.Metadata.Title,
		Body:    variant.Content,
		Tags:    qiita.Tags(variant.Metadata.Tags...),
		Private: c.private || variant.Metadata.Private,
		Tweet:   c.tweet,
	}

	var (
		item *qiita.Item
		err  error
	)

	if id := variant.Metadata.ID; id != "" {
		item, err = c.client.UpdateItem(ctx, id, payload)
	} else {
		item, err = c.client.CreateItem(ctx, payload)
	}
	if err != nil {
		return nil, translateError(ctx, err)
	}

	return &model.PublishedRef{
		ID:  item.ID,
		URL: item.URL,
	}, nil
}

func translateError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(port.ErrCanceled, err.Error())
	}

	var apiErr *qiita.APIError
	if !errors.As(err, &apiErr) {
		return errors.Wrap(port.ErrUnavailable, err.Error())
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
		return errors.Wrap(port.ErrUnauthorized, apiErr.Error())
	case apiErr.StatusCode == http.StatusNotFound:
		return errors.Wrap(port.ErrNotFound, apiErr.Error())
	case apiErr.Temporary():
		return errors.Wrap(port.ErrUnavailable, apiErr.Error())
	default:
		return errors.Wrap(port.ErrRejected, apiErr.Error())
	}
}

type Options struct {
	Private bool
	Tweet   bool
}

type OptionFunc func(opts *Options)

// WithPrivate publishes every item as a limited sharing item.
func WithPrivate(private bool) OptionFunc {
	return func(opts *Options) {
		opts.Private = private
	}
}

func WithTweet(tweet bool) OptionFunc {
	return func(opts *Options) {
		opts.Tweet = tweet
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewCollaborator(client *qiita.Client, funcs ...OptionFunc) *Collaborator {
	opts := NewOptions(funcs...)
	return &Collaborator{
		client:  client,
		private: opts.Private,
		tweet:   opts.Tweet,
	}
}

var _ port.Collaborator = &Collaborator{}
