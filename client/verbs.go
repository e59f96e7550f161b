package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// The verb helpers mirror the resource/slug surface the planner UI consumes.
// All of them run through the authenticated pipeline except the *Public
// variants, which skip the policy check and bearer attachment entirely.

func joinSlug(resource, slug string) string {
	if slug == "" {
		return resource
	}
	return strings.TrimSuffix(resource, "/") + "/" + slug
}

// Get fetches a resource, optionally narrowed by slug.
func (c *Client) Get(ctx context.Context, resource, slug string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, resource: joinSlug(resource, slug), authed: true}, out)
}

// Query fetches a resource with query parameters.
func (c *Client) Query(ctx context.Context, resource string, params url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, resource: resource, params: params, authed: true}, out)
}

// Post creates a resource.
func (c *Client) Post(ctx context.Context, resource string, payload, out any) error {
	return c.do(ctx, request{method: http.MethodPost, resource: resource, payload: payload, authed: true}, out)
}

// Put replaces a resource.
func (c *Client) Put(ctx context.Context, resource string, payload, out any) error {
	return c.do(ctx, request{method: http.MethodPut, resource: resource, payload: payload, authed: true}, out)
}

// Update replaces a specific resource identified by slug.
func (c *Client) Update(ctx context.Context, resource, slug string, payload, out any) error {
	return c.do(ctx, request{method: http.MethodPut, resource: joinSlug(resource, slug), payload: payload, authed: true}, out)
}

// Patch partially updates a resource.
func (c *Client) Patch(ctx context.Context, resource string, payload, out any) error {
	return c.do(ctx, request{method: http.MethodPatch, resource: resource, payload: payload, authed: true}, out)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, resource string) error {
	return c.do(ctx, request{method: http.MethodDelete, resource: resource, authed: true}, nil)
}

// GetPublic fetches without authentication.
func (c *Client) GetPublic(ctx context.Context, resource, slug string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, resource: joinSlug(resource, slug)}, out)
}

// QueryPublic fetches with query parameters, without authentication.
func (c *Client) QueryPublic(ctx context.Context, resource string, params url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, resource: resource, params: params}, out)
}

// PostPublic posts without authentication.
func (c *Client) PostPublic(ctx context.Context, resource string, payload, out any) error {
	return c.do(ctx, request{method: http.MethodPost, resource: resource, payload: payload}, out)
}
