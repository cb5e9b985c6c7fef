package note

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// Cookie is a browser cookie as exported by common browser automation
// tools.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errors.Wrapf(err, "could not decode cookies '%s'", path)
	}

	return cookies, nil
}

func SaveCookies(path string, cookies []Cookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			params := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)

			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				params = params.WithExpires(&expires)
			}

			if sameSite := network.CookieSameSite(c.SameSite); sameSite != "" {
				params = params.WithSameSite(sameSite)
			}

			if err := params.Do(ctx); err != nil {
				return errors.Wrapf(err, "could not set cookie '%s'", c.Name)
			}
		}

		return nil
	})
}

func getCookies(cookies *[]Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		browserCookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		result := make([]Cookie, 0, len(browserCookies))
		for _, c := range browserCookies {
			result = append(result, Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
				SameSite: string(c.SameSite),
			})
		}

		*cookies = result

		return nil
	})
}
