package qiita

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

type Tagging struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

func Tags(names ...string) []Tagging {
	tags := make([]Tagging, 0, len(names))
	for _, n := range names {
		tags = append(tags, Tagging{Name: n, Versions: []string{}})
	}
	return tags
}

type ItemPayload struct {
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Tags    []Tagging `json:"tags"`
	Private bool      `json:"private"`
	Tweet   bool      `json:"tweet"`
}

type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Private   bool      `json:"private"`
	Tags      []Tagging `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateItem publishes a new article.
func (c *Client) CreateItem(ctx context.Context, payload ItemPayload) (*Item, error) {
	item := &Item{}
	if err := c.jsonRequest(ctx, http.MethodPost, "/items", payload, item); err != nil {
		return nil, errors.WithStack(err)
	}
	return item, nil
}

// UpdateItem replaces the content of an existing article.
func (c *Client) UpdateItem(ctx context.Context, id string, payload ItemPayload) (*Item, error) {
	item := &Item{}
	if err := c.jsonRequest(ctx, http.MethodPatch, "/items/"+url.PathEscape(id), payload, item); err != nil {
		return nil, errors.WithStack(err)
	}
	return item, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*Item, error) {
	item := &Item{}
	if err := c.jsonRequest(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil, item); err != nil {
		return nil, errors.WithStack(err)
	}
	return item, nil
}

// AuthenticatedUser returns the owner of the token.
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	user := &User{}
	if err := c.jsonRequest(ctx, http.MethodGet, "/authenticated_user", nil, user); err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}
