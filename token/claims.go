package token

import (
	"math"
	"strconv"
	"strings"
)

// Claim names the backend puts into token payloads. The identity claims vary
// between endpoints (login tokens carry user_id, federated ones sub), so the
// accessors below try them in a documented order.
const (
	claimExp       = "exp"
	claimTokenType = "token_type"
	claimType      = "type"
)

// Payload is the decoded (but unverified) claim set of a token.
type Payload struct {
	claims map[string]any
}

// Claims exposes the raw claim map for callers that need something this
// package has no accessor for.
func (p *Payload) Claims() map[string]any {
	return p.claims
}

// Exp returns the expiry claim in epoch seconds. The second return value is
// false when the claim is absent or not numeric.
func (p *Payload) Exp() (int64, bool) {
	return claimInt64(p.claims[claimExp])
}

// Type returns the token type discriminator, lowercased. The backend writes
// it as either "token_type" or "type"; tokens without one return "".
func (p *Payload) Type() string {
	for _, key := range []string{claimTokenType, claimType} {
		if s, ok := p.claims[key].(string); ok && s != "" {
			return strings.ToLower(s)
		}
	}
	return ""
}

// IsAccess reports whether the payload may be treated as an access token: a
// type claim, when present, must equal "access". Tokens with no type claim
// qualify for backwards compatibility with older backends.
func (p *Payload) IsAccess() bool {
	t := p.Type()
	return t == "" || t == "access"
}

// UserID resolves the numeric user identity, trying user_id, then id, then
// sub. String and numeric claim forms are both accepted.
func (p *Payload) UserID() (int64, bool) {
	for _, key := range []string{"user_id", "id", "sub"} {
		if id, ok := claimInt64(p.claims[key]); ok && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// DisplayName returns the best human-readable name in the payload, falling
// back through first_name, firstName, name, username and email before giving
// up and returning the supplied fallback.
func (p *Payload) DisplayName(fallback string) string {
	for _, key := range []string{"first_name", "firstName", "name", "username", "email"} {
		if s, ok := p.claims[key].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// Permissions returns the permissions claim as a string slice. Non-string
// entries are skipped; a missing claim yields an empty slice.
func (p *Payload) Permissions() []string {
	raw, ok := p.claims["permissions"].([]any)
	if !ok {
		return nil
	}
	return toStringSlice(raw)
}

func toStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// claimInt64 converts the loose claim forms JSON decoding produces (float64,
// string, the occasional real integer) into an int64.
func claimInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
