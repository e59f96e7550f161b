package client

import (
	"context"

	"github.com/pkg/errors"
)

// refreshCall is one in-flight refresh. Concurrent 401s share a single
// refresh rather than each consuming the refresh token - backends that
// rotate refresh tokens on use invalidate the old one, so racing refreshes
// would log half the callers out for no reason.
type refreshCall struct {
	done chan struct{}
	err  error
}

// refreshAccess exchanges the stored refresh token for a new access token.
// Idle -> Refreshing -> Refreshed persists the new pair and counts as
// activity; Refreshing -> Failed destroys both tokens, clears the activity
// timestamp, fires the session-expired hook and propagates. A failed
// refresh is terminal for the session - the refresh call itself is never
// retried.
func (c *Client) refreshAccess(ctx context.Context) error {
	c.refreshLock.Lock()
	if c.inflight != nil {
		call := c.inflight
		c.refreshLock.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.refreshLock.Unlock()

	call.err = c.doRefresh(ctx)

	c.refreshLock.Lock()
	c.inflight = nil
	c.refreshLock.Unlock()
	close(call.done)

	return call.err
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *Client) doRefresh(ctx context.Context) error {
	refresh := c.tokens.Refresh()
	if refresh == "" {
		c.endSession()
		return ErrNoRefreshToken
	}

	var tokens refreshResponse
	err := c.do(ctx, request{
		method:   "POST",
		resource: RefreshEndpoint,
		payload:  map[string]string{"refresh": refresh},
	}, &tokens)
	if err != nil {
		c.log.Warn().Err(err).Msg("token refresh rejected")
		c.endSession()
		return errors.Wrap(err, ErrRefreshFailed.Error())
	}
	if tokens.Access == "" {
		c.endSession()
		return ErrRefreshFailed
	}

	if err := c.tokens.SaveAccess(tokens.Access); err != nil {
		return errors.Wrap(err, "[doRefresh] persisting access token")
	}
	if tokens.Refresh != "" {
		if err := c.tokens.SaveRefresh(tokens.Refresh); err != nil {
			return errors.Wrap(err, "[doRefresh] persisting refresh token")
		}
	}
	c.tokens.Touch(c.nowTime())
	c.log.Debug().Msg("access token refreshed")
	return nil
}

// endSession is the terminal failure side effect shared by the inactivity
// and refresh-rejection paths.
func (c *Client) endSession() {
	c.tokens.PurgeTokens()
	c.tokens.ClearActivity()
	c.sessionExpired()
}

// Refresh forces a token refresh outside the 401 path.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refreshAccess(ctx)
}
