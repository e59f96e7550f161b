package session

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sgdea/go-planner-client/token"
	"github.com/sgdea/go-planner-client/tokenstore"
)

// DefaultInactivityLimit is how long a session may sit idle before it is
// forcibly logged out.
const DefaultInactivityLimit = 20 * time.Minute

// Policy decides whether the stored session is still usable. Token lifetime
// and inactivity are different failure modes: an expired access token can be
// refreshed, an idle session cannot - violating the inactivity limit purges
// both tokens on the spot.
type Policy struct {
	tokens   *tokenstore.Store
	limit    time.Duration
	nowTime  func() time.Time
	onExpire func()
	log      zerolog.Logger
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithInactivityLimit overrides the default idle limit.
func WithInactivityLimit(limit time.Duration) PolicyOption {
	return func(p *Policy) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) PolicyOption {
	return func(p *Policy) {
		p.nowTime = nowFunc
	}
}

// WithOnExpire registers the hook fired when the session is forcibly ended.
// The browser client redirected to the login page here; a CLI typically
// prints and exits.
func WithOnExpire(hook func()) PolicyOption {
	return func(p *Policy) {
		p.onExpire = hook
	}
}

// WithPolicyLogger attaches a logger. The default discards everything.
func WithPolicyLogger(log zerolog.Logger) PolicyOption {
	return func(p *Policy) {
		p.log = log
	}
}

// NewPolicy creates a Policy over the given token store.
func NewPolicy(tokens *tokenstore.Store, options ...PolicyOption) *Policy {
	p := &Policy{
		tokens:  tokens,
		limit:   DefaultInactivityLimit,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// InactivityLimit returns the configured idle limit.
func (p *Policy) InactivityLimit() time.Duration {
	return p.limit
}

// CheckActivity enforces the inactivity limit. A session with no recorded
// activity yet is initialised to now instead of being treated as expired, so
// the first call after load never spuriously logs anyone out. On violation
// both tokens are destroyed, the activity timestamp is cleared, the expiry
// hook fires and ErrSessionExpired is returned; otherwise the timestamp is
// advanced to now.
func (p *Policy) CheckActivity() error {
	now := p.nowTime()

	last, ok := p.tokens.LastActivity()
	if !ok {
		p.tokens.Touch(now)
		return nil
	}

	if now.Sub(last) > p.limit {
		p.log.Warn().
			Time("last_activity", last).
			Dur("limit", p.limit).
			Msg("session expired due to inactivity")
		p.tokens.PurgeTokens()
		p.tokens.ClearActivity()
		if p.onExpire != nil {
			p.onExpire()
		}
		return ErrSessionExpired
	}

	p.tokens.Touch(now)
	return nil
}

// Active reports whether the session is currently valid: a well-formed,
// unexpired access token exists and the inactivity limit is not violated.
// An inactivity violation carries its usual side effects.
func (p *Policy) Active() bool {
	access := p.tokens.BestAccess()
	if access == "" {
		return false
	}

	payload := token.Decode(access)
	if payload == nil {
		return false
	}
	exp, ok := payload.Exp()
	if !ok || exp < p.nowTime().Unix() {
		return false
	}

	return p.CheckActivity() == nil
}
