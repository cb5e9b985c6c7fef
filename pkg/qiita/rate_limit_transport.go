package qiita

import (
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// RateLimitTransport retries requests answered with 429 Too Many Requests,
// waiting for the delay announced by the server.
type RateLimitTransport struct {
	Base        http.RoundTripper
	MaxRetries  int
	DefaultWait time.Duration
	// MaxWait bounds the delay taken from the response headers.
	MaxWait time.Duration
}

func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Base
	if transport == nil {
		transport = http.DefaultTransport
	}

	for attempt := 0; ; attempt++ {
		res, err := transport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if res.StatusCode != http.StatusTooManyRequests || attempt >= t.MaxRetries {
			return res, nil
		}

		if req.Body != nil && req.GetBody == nil {
			// The body has been consumed and cannot be sent again.
			return res, nil
		}

		io.Copy(io.Discard, res.Body)
		res.Body.Close()

		wait := t.waitTime(res)

		slog.WarnContext(req.Context(), "rate limited by qiita",
			slog.Duration("wait", wait),
			slog.Int("attempt", attempt+1),
			slog.Int("maxRetries", t.MaxRetries),
		)

		timer := time.NewTimer(wait)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, errors.Wrap(err, "could not rewind request body")
			}
			req.Body = body
		}
	}
}

func (t *RateLimitTransport) waitTime(res *http.Response) time.Duration {
	wait := t.DefaultWait

	if retryAfter := res.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			base := time.Duration(seconds) * time.Second
			wait = base + time.Duration(rand.Int63n(int64(base/4)+1))
		} else if date, err := http.ParseTime(retryAfter); err == nil {
			wait = time.Until(date)
		}
	} else if reset := res.Header.Get("Rate-Reset"); reset != "" {
		if ts, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if until := time.Until(time.Unix(ts, 0)); until > 0 {
				wait = until
			}
		}
	}

	if wait < 0 {
		wait = 0
	}

	if t.MaxWait > 0 && wait > t.MaxWait {
		wait = t.MaxWait
	}

	return wait
}
