package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// request is one logical call through the pipeline. The retry budget lives
// here, per call, never shared between requests - interleaved requests each
// get exactly one refresh-and-replay.
type request struct {
	method   string
	resource string
	params   url.Values
	payload  any
	authed   bool
}

// do runs the pipeline: policy check, bearer attach, send, and at most one
// refresh-and-replay when the backend answers 401.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if r.authed {
		if err := c.policy.CheckActivity(); err != nil {
			// Terminal: the request is never issued.
			return err
		}
	}

	attempted := false
	for {
		req, err := c.newRequest(ctx, r)
		if err != nil {
			return err
		}
		if r.authed {
			if access := c.tokens.BestAccess(); access != "" {
				req.Header.Set("Authorization", "Bearer "+access)
			}
			// A missing token is not fatal here; the backend answers 401
			// and the refresh path takes over.
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return errors.Wrapf(err, "[client do] %s %s", r.method, r.resource)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return errors.Wrapf(readErr, "[client do] reading %s %s response", r.method, r.resource)
		}

		if resp.StatusCode == http.StatusUnauthorized && r.authed && !attempted {
			attempted = true
			c.log.Debug().Str("resource", r.resource).Msg("401 received, attempting token refresh")
			if err := c.refreshAccess(ctx); err != nil {
				return err
			}
			continue
		}

		// Any settled response counts as activity (terminal 401s ended the
		// session instead).
		if resp.StatusCode != http.StatusUnauthorized {
			c.tokens.Touch(c.nowTime())
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return newAPIError(resp.StatusCode, body)
		}

		if out != nil && len(body) > 0 {
			if err := json.Unmarshal(body, out); err != nil {
				return errors.Wrapf(err, "[client do] decoding %s %s response", r.method, r.resource)
			}
		}
		return nil
	}
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	target := *c.baseURL
	target.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + strings.TrimPrefix(r.resource, "/")
	if len(r.params) > 0 {
		target.RawQuery = r.params.Encode()
	}

	var body io.Reader
	if r.payload != nil {
		data, err := json.Marshal(r.payload)
		if err != nil {
			return nil, errors.Wrap(err, "[client newRequest] encoding payload")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "[client newRequest]")
	}
	req.Header.Set("Accept", "application/json")
	if r.payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}
