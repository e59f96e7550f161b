// Package token decodes and inspects the JWTs issued by the planner backend.
//
// The backend verifies signatures server-side; the client only needs to read
// claims (expiry, identity) out of tokens it already trusts, so everything
// here parses unverified. Nothing in this package can prove a token is
// genuine - it can only tell whether one is well formed and unexpired.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Decode extracts the payload segment of a compact JWT without verifying the
// signature. It returns nil for anything malformed (wrong segment count,
// invalid base64url, invalid JSON) and never returns an error - a token that
// cannot be decoded is simply not a token.
func Decode(raw string) *Payload {
	if raw == "" {
		return nil
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil
	}

	return &Payload{claims: map[string]any(claims)}
}

// IsExpired reports whether a raw token should be treated as expired. A
// missing, malformed or exp-less token is always expired; otherwise the exp
// claim (epoch seconds) is compared against the current time.
func IsExpired(raw string) bool {
	payload := Decode(raw)
	if payload == nil {
		return true
	}

	exp, ok := payload.Exp()
	if !ok {
		return true
	}

	return exp < NowTimeFunc().Unix()
}

// ExpiresIn returns the remaining lifetime of a token. The second return
// value is false when the token is invalid or already expired.
func ExpiresIn(raw string) (time.Duration, bool) {
	payload := Decode(raw)
	if payload == nil {
		return 0, false
	}

	exp, ok := payload.Exp()
	if !ok {
		return 0, false
	}

	remaining := exp - NowTimeFunc().Unix()
	if remaining <= 0 {
		return 0, false
	}

	return time.Duration(remaining) * time.Second, true
}
