package client

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sgdea/go-planner-client/session"
)

// LoginResponse is the backend's answer to a credential login.
type LoginResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh,omitempty"`
	User    session.User `json:"user"`
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Login exchanges credentials for a token pair. On success both tokens are
// persisted (the access token also under the legacy key older pages read),
// the user is mirrored into storage, and the activity clock starts.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.PostPublic(ctx, LoginEndpoint, map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, errors.New("[Login] backend returned no access token")
	}

	if err := c.tokens.SaveAccess(resp.Access); err != nil {
		return nil, errors.Wrap(err, "[Login] persisting access token")
	}
	if err := c.tokens.SaveLegacyAccess(resp.Access); err != nil {
		return nil, errors.Wrap(err, "[Login] persisting legacy access token")
	}
	if resp.Refresh != "" {
		if err := c.tokens.SaveRefresh(resp.Refresh); err != nil {
			return nil, errors.Wrap(err, "[Login] persisting refresh token")
		}
	}
	if err := c.tokens.SaveUser(resp.User); err != nil {
		c.log.Warn().Err(err).Msg("persisting user mirror failed")
	}
	c.tokens.Touch(c.nowTime())

	c.log.Info().Int64("user_id", int64(resp.User.ID)).Msg("logged in")
	return &resp, nil
}

// Register creates an account. Validation failures come back as an
// *APIError with the backend's per-field messages.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.PostPublic(ctx, RegisterEndpoint, req, nil)
}

// Me asks the backend who the current session belongs to, through the
// authenticated pipeline (so an expired access token gets its one refresh).
// It satisfies session.Identity.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := c.Get(ctx, MeEndpoint, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout destroys the stored session state. Purely client-side; the backend
// keeps no session to tear down.
func (c *Client) Logout() {
	c.tokens.PurgeTokens()
	c.tokens.ClearActivity()
	c.tokens.ClearUser()
	c.tokens.ClearSnapshot()
	c.log.Info().Msg("logged out")
}

var _ session.Identity = (*Client)(nil)
