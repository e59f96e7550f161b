// Package client implements the authenticated request pipeline for the
// planner backend: bearer injection, inactivity policing, transparent
// refresh-and-replay on 401, and the typed auth endpoints built on top.
package client

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sgdea/go-planner-client/session"
	"github.com/sgdea/go-planner-client/tokenstore"
)

// Doer issues HTTP requests. *http.Client satisfies it; tests substitute
// their own. Timeouts and cancellation are the transport's and the
// context's job, not the pipeline's.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config is the client's initialisation surface.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.planner.example".
	BaseURL string

	// InactivityLimit is how long the session may idle before being
	// forcibly logged out. Zero means the 20 minute default.
	InactivityLimit time.Duration

	// HTTPClient overrides the transport. Defaults to a plain *http.Client.
	HTTPClient Doer

	// Logger for pipeline events. Defaults to a disabled logger.
	Logger zerolog.Logger

	// OnSessionExpired fires when the session is terminally ended (idle
	// timeout or rejected refresh) - the "redirect to login" seam.
	OnSessionExpired func()
}

// Client is the authenticated request pipeline. All methods are safe for
// concurrent use; concurrent 401s coalesce into a single refresh call.
type Client struct {
	baseURL *url.URL
	http    Doer
	tokens  *tokenstore.Store
	policy  *session.Policy
	log     zerolog.Logger
	nowTime func() time.Time

	onExpire func()

	refreshLock sync.Mutex
	inflight    *refreshCall
}

// Option tweaks a Client after Config is applied.
type Option func(*Client)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// New builds a Client over the given token store.
func New(config Config, tokens *tokenstore.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, errors.New("[client New] BaseURL is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[client New] invalid BaseURL")
	}
	if tokens == nil {
		return nil, errors.New("[client New] token store is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		baseURL:  base,
		http:     httpClient,
		tokens:   tokens,
		log:      config.Logger,
		nowTime:  time.Now,
		onExpire: config.OnSessionExpired,
	}
	for _, opt := range options {
		opt(c)
	}

	policyOpts := []session.PolicyOption{
		session.WithNowTime(func() time.Time { return c.nowTime() }),
		session.WithPolicyLogger(c.log),
	}
	if config.InactivityLimit > 0 {
		policyOpts = append(policyOpts, session.WithInactivityLimit(config.InactivityLimit))
	}
	if c.onExpire != nil {
		policyOpts = append(policyOpts, session.WithOnExpire(c.onExpire))
	}
	c.policy = session.NewPolicy(tokens, policyOpts...)

	return c, nil
}

// Tokens exposes the underlying token store.
func (c *Client) Tokens() *tokenstore.Store {
	return c.tokens
}

// Policy exposes the session policy, for hosts that want to ask "is the
// session still alive" without issuing a request.
func (c *Client) Policy() *session.Policy {
	return c.policy
}

func (c *Client) sessionExpired() {
	if c.onExpire != nil {
		c.onExpire()
	}
}
