package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sgdea/go-planner-client/tokenstore"
)

// Identity is the "who am I" dependency, satisfied by the API client. It is
// an interface here so the state cache stays testable without HTTP.
type Identity interface {
	Me(ctx context.Context) (*User, error)
}

// persistedState is the slice of store state mirrored into the token store
// for cross-reload rehydration.
type persistedState struct {
	User            User `json:"user"`
	IsAuthenticated bool `json:"isAuthenticated"`
}

// Store is the session state cache: the last-known authenticated user and
// authentication flag, derived from pipeline outcomes and exposed to UI
// collaborators. Persistence is a cache of this store, never the other way
// around once the process is live.
type Store struct {
	tokens   *tokenstore.Store
	identity Identity
	log      zerolog.Logger

	lock            sync.RWMutex
	user            User
	isAuthenticated bool
	errs            map[string]any
	accessKey       string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger attaches a logger. The default discards everything.
func WithStoreLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a session state cache. identity may be nil, in which case
// VerifyAuth can only purge.
func NewStore(tokens *tokenstore.Store, identity Identity, options ...StoreOption) *Store {
	s := &Store{
		tokens:   tokens,
		identity: identity,
		log:      zerolog.Nop(),
		errs:     map[string]any{},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// User returns the cached user.
func (s *Store) User() User {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.user
}

// IsAuthenticated returns the cached authentication flag.
func (s *Store) IsAuthenticated() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.isAuthenticated
}

// AccessKey returns the access token reference recorded by the last SetAuth.
func (s *Store) AccessKey() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.accessKey
}

// Errors returns the last recorded error mapping.
func (s *Store) Errors() map[string]any {
	s.lock.RLock()
	defer s.lock.RUnlock()
	out := make(map[string]any, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// SetAuth marks the session authenticated, records the user and access token
// reference, clears prior errors and refreshes the persisted snapshot.
func (s *Store) SetAuth(user User, access string) {
	s.lock.Lock()
	s.isAuthenticated = true
	s.user = user
	s.errs = map[string]any{}
	s.accessKey = access
	s.lock.Unlock()

	if err := s.tokens.SaveUser(user); err != nil {
		s.log.Warn().Err(err).Msg("persisting user mirror failed")
	}
	if err := s.tokens.SaveSnapshot(persistedState{User: user, IsAuthenticated: true}); err != nil {
		s.log.Warn().Err(err).Msg("persisting auth snapshot failed")
	}
}

// SetError records a non-fatal validation/error mapping. The authentication
// flag is untouched.
func (s *Store) SetError(errs map[string]any) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if errs == nil {
		errs = map[string]any{}
	}
	s.errs = errs
}

// PurgeAuth clears the cached user, flag and access reference, and destroys
// both stored tokens. Calling it on an already-purged store is a no-op.
func (s *Store) PurgeAuth() {
	s.lock.Lock()
	s.isAuthenticated = false
	s.user = User{}
	s.errs = map[string]any{}
	s.accessKey = ""
	s.lock.Unlock()

	s.tokens.PurgeTokens()
	s.tokens.ClearUser()
	s.tokens.ClearSnapshot()
}

// Logout ends the session.
func (s *Store) Logout() {
	s.PurgeAuth()
}

// VerifyToken purges the session when no access token is stored.
func (s *Store) VerifyToken() {
	if s.tokens.BestAccess() == "" {
		s.PurgeAuth()
	}
}

// VerifyAuth re-establishes the session on load. Without a stored access
// token it purges and returns nothing. Otherwise it asks the backend who the
// session belongs to (through the authenticated pipeline, so an expired
// access token gets its one refresh attempt); a valid identity becomes the
// cached user, and any failure purges.
func (s *Store) VerifyAuth(ctx context.Context) (*User, error) {
	access := s.tokens.BestAccess()
	if access == "" || s.identity == nil {
		s.PurgeAuth()
		return nil, nil
	}

	user, err := s.identity.Me(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("identity verification failed")
		s.PurgeAuth()
		return nil, err
	}
	if user == nil || !user.HasIdentity() {
		s.PurgeAuth()
		return nil, nil
	}

	// Re-read: a refresh during the Me call may have rotated the token.
	s.SetAuth(*user, s.tokens.BestAccess())
	return user, nil
}

// ValidatePermission reports whether the cached user holds the named
// permission. "all" and "is_staff" are wildcards; an absent or empty
// permission list simply yields false.
func (s *Store) ValidatePermission(name string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, p := range s.user.Permissions {
		if p == "all" || p == "is_staff" || p == name {
			return true
		}
	}
	return false
}

// RequirePermission is the error-returning form of ValidatePermission, for
// call sites that gate an operation rather than a view.
func (s *Store) RequirePermission(name string) error {
	if !s.ValidatePermission(name) {
		return ErrNotAuthorized
	}
	return nil
}

// Hydrate restores the cached user and flag from persisted state: the user
// mirror first, then the auth snapshot. The authenticated flag is only
// honoured while a usable access token is still stored - persistence is a
// cache, and a cache without credentials does not make a session.
func (s *Store) Hydrate() {
	var state persistedState

	var mirrored User
	if s.tokens.User(&mirrored) && mirrored.HasIdentity() {
		state.User = mirrored
		state.IsAuthenticated = true
	} else if !s.tokens.Snapshot(&state) {
		return
	}

	access := s.tokens.BestAccess()
	if access == "" {
		state.IsAuthenticated = false
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.user = state.User
	s.isAuthenticated = state.IsAuthenticated
	s.accessKey = access
}
