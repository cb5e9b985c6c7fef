package note

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/go-x/slogx"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/pkg/errors"
)

const (
	selectorLogin   = `a[href="/login"]`
	selectorTitle   = `textarea`
	selectorEditor  = `[contenteditable="true"]`
	selectorDraft   = `//button[contains(., '下書き保存')]`
	selectorPublish = `//button[contains(., '公開に進む')]`
)

const loggedInExpr = `document.querySelector('` + selectorLogin + `') === null`

var draftIDRegExp = regexp.MustCompile(`/(n[0-9a-f]{8,})(?:/|$)`)

// Collaborator drafts articles on note.com by driving a browser, note.com
// offering no publication API. The session is restored from an exported
// cookie file.
type Collaborator struct {
	baseURL     *url.URL
	cookiesPath string
	headless    bool
	remoteURL   string
	publish     bool
	timeout     time.Duration
}

// Publish implements [port.Collaborator].
func (c *Collaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	cookies, err := LoadCookies(c.cookiesPath)
	if err != nil {
		return nil, errors.Wrap(port.ErrUnauthorized, err.Error())
	}

	browserCtx, cancel := c.newBrowserContext(ctx, c.headless, c.timeout)
	defer cancel()

	if err := c.restoreSession(ctx, browserCtx, cookies); err != nil {
		return nil, errors.WithStack(err)
	}

	var (
		location  string
		refreshed []Cookie
	)

	submit := selectorDraft
	if c.publish {
		submit = selectorPublish
	}

	actions := []chromedp.Action{
		chromedp.Navigate(c.baseURL.JoinPath("notes", "new").String()),
		chromedp.WaitVisible(selectorTitle, chromedp.ByQuery),
		chromedp.SendKeys(selectorTitle, variant.Metadata.Title, chromedp.ByQuery),
		chromedp.Click(selectorEditor, chromedp.ByQuery),
	}

	actions = append(actions, typeBody(variant.Content)...)

	actions = append(actions,
		chromedp.Click(submit, chromedp.BySearch),
		chromedp.Sleep(3*time.Second),
		chromedp.Location(&location),
		getCookies(&refreshed),
	)

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, translateError(ctx, err)
	}

	if len(refreshed) > 0 {
		if err := SaveCookies(c.cookiesPath, refreshed); err != nil {
			slog.WarnContext(ctx, "could not save refreshed cookies", slogx.Error(errors.WithStack(err)))
		}
	}

	id, ok := DraftID(location)
	if !ok {
		return nil, errors.Wrapf(port.ErrUnavailable, "unexpected location '%s' after saving", location)
	}

	return &model.PublishedRef{
		ID:  id,
		URL: location,
	}, nil
}

// CheckSession verifies that the stored cookies still open an authenticated
// session. An expired session is reported as [port.ErrUnauthorized].
func (c *Collaborator) CheckSession(ctx context.Context) error {
	cookies, err := LoadCookies(c.cookiesPath)
	if err != nil {
		return errors.Wrap(port.ErrUnauthorized, err.Error())
	}

	browserCtx, cancel := c.newBrowserContext(ctx, c.headless, c.timeout)
	defer cancel()

	if err := c.restoreSession(ctx, browserCtx, cookies); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Login opens the login page in a visible browser and waits for the user to
// sign in, then stores the session cookies.
func (c *Collaborator) Login(ctx context.Context, timeout time.Duration) error {
	browserCtx, cancel := c.newBrowserContext(ctx, false, timeout)
	defer cancel()

	var cookies []Cookie

	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(c.baseURL.JoinPath("login").String()),
		chromedp.WaitReady("body"),
		chromedp.Poll(`location.pathname !== '/login' && `+loggedInExpr, nil, chromedp.WithPollingInterval(time.Second)),
		getCookies(&cookies),
	)
	if err != nil {
		return translateError(ctx, err)
	}

	if len(cookies) == 0 {
		return errors.Wrap(port.ErrUnauthorized, "no cookie received after login")
	}

	if err := SaveCookies(c.cookiesPath, cookies); err != nil {
		return errors.WithStack(err)
	}

	slog.InfoContext(ctx, "note session saved", slog.String("cookies", c.cookiesPath), slog.Int("count", len(cookies)))

	return nil
}

func (c *Collaborator) restoreSession(ctx context.Context, browserCtx context.Context, cookies []Cookie) error {
	var loggedIn bool

	err := chromedp.Run(browserCtx,
		network.Enable(),
		setCookies(cookies),
		chromedp.Navigate(c.baseURL.String()),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(loggedInExpr, &loggedIn),
	)
	if err != nil {
		return translateError(ctx, err)
	}

	if !loggedIn {
		return errors.Wrap(port.ErrUnauthorized, "note session expired, export fresh cookies or run note-login")
	}

	return nil
}

func (c *Collaborator) newBrowserContext(ctx context.Context, headless bool, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)

	if c.remoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, c.remoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", headless))
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		slog.DebugContext(ctx, "chromedp", slog.String("message", fmt.Sprintf(format, args...)))
	}))

	timeoutCtx, timeoutCancel := context.WithTimeout(browserCtx, timeout)

	return timeoutCtx, func() {
		timeoutCancel()
		browserCancel()
		allocCancel()
	}
}

// typeBody types the body line by line, the editor turning each new line
// into a paragraph.
func typeBody(content string) []chromedp.Action {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	actions := make([]chromedp.Action, 0, len(lines)*2)
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			actions = append(actions, input.InsertText(line))
		}
		if i < len(lines)-1 {
			actions = append(actions, chromedp.KeyEvent(kb.Enter))
		}
	}

	return actions
}

// DraftID extracts the note identifier from an editor or article url.
func DraftID(location string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return "", false
	}

	matches := draftIDRegExp.FindStringSubmatch(u.Path)
	if matches == nil {
		return "", false
	}

	return matches[1], true
}

func translateError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return errors.Wrap(port.ErrCanceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(port.ErrUnavailable, "browser automation timed out")
	default:
		return errors.Wrap(port.ErrUnavailable, err.Error())
	}
}

type Options struct {
	BaseURL     *url.URL
	CookiesPath string
	Headless    bool
	RemoteURL   string
	Publish     bool
	Timeout     time.Duration
}

type OptionFunc func(opts *Options)

func WithBaseURL(baseURL *url.URL) OptionFunc {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

func WithCookiesPath(path string) OptionFunc {
	return func(opts *Options) {
		opts.CookiesPath = path
	}
}

func WithHeadless(headless bool) OptionFunc {
	return func(opts *Options) {
		opts.Headless = headless
	}
}

// WithRemoteURL connects to a running browser through its devtools
// websocket url instead of starting one.
func WithRemoteURL(remoteURL string) OptionFunc {
	return func(opts *Options) {
		opts.RemoteURL = remoteURL
	}
}

// WithPublish submits the article for publication instead of saving a
// draft.
func WithPublish(publish bool) OptionFunc {
	return func(opts *Options) {
		opts.Publish = publish
	}
}

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		BaseURL:     &url.URL{Scheme: "https", Host: "note.com"},
		CookiesPath: "note-cookies.json",
		Headless:    true,
		Timeout:     2 * time.Minute,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewCollaborator(funcs ...OptionFunc) *Collaborator {
	opts := NewOptions(funcs...)
	return &Collaborator{
		baseURL:     opts.BaseURL,
		cookiesPath: opts.CookiesPath,
		headless:    opts.Headless,
		remoteURL:   opts.RemoteURL,
		publish:     opts.Publish,
		timeout:     opts.Timeout,
	}
}

var _ port.Collaborator = &Collaborator{}
