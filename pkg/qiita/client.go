// Package qiita is a client of the Qiita API v2.
package qiita

import (
	"net/http"
	"net/url"
)

type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

func New(funcs ...OptionFunc) *Client {
	opts := NewOptions(funcs...)
	return &Client{
		baseURL:    opts.BaseURL,
		token:      opts.Token,
		httpClient: opts.HTTPClient,
	}
}
