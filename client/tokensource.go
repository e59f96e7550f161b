package client

import (
	"context"
	"time"

	"github.com/sgdea/go-planner-client/token"
	"golang.org/x/oauth2"
)

// TokenSource adapts the session to golang.org/x/oauth2, so code built on
// oauth2.NewClient or oauth2.Transport can ride the same stored credentials
// and refresh flow as the pipeline. Expired or missing access tokens
// trigger the regular (coalesced) refresh; a terminal refresh failure
// surfaces as the Token() error.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &sessionTokenSource{ctx: ctx, client: c})
}

type sessionTokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	access := s.client.tokens.BestAccess()
	if access == "" || token.IsExpired(access) {
		if err := s.client.refreshAccess(s.ctx); err != nil {
			return nil, err
		}
		access = s.client.tokens.Access()
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if payload := token.Decode(access); payload != nil {
		if exp, ok := payload.Exp(); ok {
			tok.Expiry = time.Unix(exp, 0)
		}
	}
	return tok, nil
}
