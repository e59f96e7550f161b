package tokenstore

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/sgdea/go-planner-client/token"
)

// Storage keys, kept byte-identical to the ones the web frontend writes so
// both client generations can read each other's state. The "_sgdea" suffix
// keeps the token keys from colliding with anything else in a shared store.
const (
	accessKey       = "id_token_sgdea"
	refreshKey      = "id_refresh_token_sgdea"
	legacyAccessKey = "access_token"
	activityKey     = "lastActivity"
	userKey         = "user"
	snapshotKey     = "auth-store"
)

// Store persists the access/refresh token pair, the inactivity timestamp and
// the cached user identity on top of a KV backend.
//
// A Store with a nil KV is valid: every read returns a zero value and every
// write is a no-op. That mirrors the original client's behaviour when no
// persistent context exists (server-side rendering), and lets callers hold a
// Store unconditionally.
type Store struct {
	kv KV
}

// New creates a Store over the given backend. kv may be nil.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) available() bool {
	return s != nil && s.kv != nil
}

// Access returns the stored access token, or "".
func (s *Store) Access() string {
	if !s.available() {
		return ""
	}
	v, _ := s.kv.Get(accessKey)
	return v
}

// Refresh returns the stored refresh token, or "".
func (s *Store) Refresh() string {
	if !s.available() {
		return ""
	}
	v, _ := s.kv.Get(refreshKey)
	return v
}

// BestAccess returns the freshest valid access token across the current and
// legacy storage locations (legacy first, matching the original candidate
// order), or "" when neither holds a usable one.
func (s *Store) BestAccess() string {
	if !s.available() {
		return ""
	}
	legacy, _ := s.kv.Get(legacyAccessKey)
	current, _ := s.kv.Get(accessKey)
	return token.BestAccess(legacy, current)
}

// SaveAccess stores an access token. No validation happens at write time.
func (s *Store) SaveAccess(t string) error {
	if !s.available() {
		return nil
	}
	return s.kv.Set(accessKey, t)
}

// SaveRefresh stores a refresh token.
func (s *Store) SaveRefresh(t string) error {
	if !s.available() {
		return nil
	}
	return s.kv.Set(refreshKey, t)
}

// ClearAccess removes the access token from both its storage locations.
func (s *Store) ClearAccess() error {
	if !s.available() {
		return nil
	}
	if err := s.kv.Delete(accessKey); err != nil {
		return err
	}
	return s.kv.Delete(legacyAccessKey)
}

// ClearRefresh removes the refresh token.
func (s *Store) ClearRefresh() error {
	if !s.available() {
		return nil
	}
	return s.kv.Delete(refreshKey)
}

// PurgeTokens destroys both tokens. Used on logout and on any terminal
// session failure.
func (s *Store) PurgeTokens() {
	_ = s.ClearAccess()
	_ = s.ClearRefresh()
}

// LastActivity returns the recorded last-activity time. The second return
// value is false when no timestamp has been recorded yet.
func (s *Store) LastActivity() (time.Time, bool) {
	if !s.available() {
		return time.Time{}, false
	}
	raw, ok := s.kv.Get(activityKey)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Touch records now as the last-activity time, stored as stringified epoch
// milliseconds for compatibility with the web frontend.
func (s *Store) Touch(now time.Time) {
	if !s.available() {
		return
	}
	_ = s.kv.Set(activityKey, strconv.FormatInt(now.UnixMilli(), 10))
}

// ClearActivity removes the last-activity timestamp.
func (s *Store) ClearActivity() {
	if !s.available() {
		return
	}
	_ = s.kv.Delete(activityKey)
}

// SaveUser mirrors the authenticated user into storage as JSON.
func (s *Store) SaveUser(user any) error {
	if !s.available() {
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.kv.Set(userKey, string(data))
}

// User unmarshals the mirrored user into dst. Returns false when absent or
// unreadable; storage is a cache, never the source of truth, so a bad entry
// is simply ignored.
func (s *Store) User(dst any) bool {
	if !s.available() {
		return false
	}
	raw, ok := s.kv.Get(userKey)
	if !ok || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

// ClearUser removes the mirrored user.
func (s *Store) ClearUser() {
	if !s.available() {
		return
	}
	_ = s.kv.Delete(userKey)
}

// snapshot is the persisted auth-store document: the web frontend's state
// management library wraps its persisted slice in a {"state": ...} envelope.
type snapshot struct {
	State json.RawMessage `json:"state"`
}

// SaveSnapshot persists the session state cache's rehydration snapshot.
func (s *Store) SaveSnapshot(state any) error {
	if !s.available() {
		return nil
	}
	inner, err := json.Marshal(state)
	if err != nil {
		return err
	}
	data, err := json.Marshal(snapshot{State: inner})
	if err != nil {
		return err
	}
	return s.kv.Set(snapshotKey, string(data))
}

// Snapshot unmarshals the persisted rehydration snapshot into dst.
func (s *Store) Snapshot(dst any) bool {
	if !s.available() {
		return false
	}
	raw, ok := s.kv.Get(snapshotKey)
	if !ok || raw == "" {
		return false
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil || len(snap.State) == 0 {
		return false
	}
	return json.Unmarshal(snap.State, dst) == nil
}

// ClearSnapshot removes the persisted snapshot.
func (s *Store) ClearSnapshot() {
	if !s.available() {
		return
	}
	_ = s.kv.Delete(snapshotKey)
}

// SaveLegacyAccess writes the legacy access-token key. Only the login flow
// uses it, to stay interoperable with pages that still read "access_token".
func (s *Store) SaveLegacyAccess(t string) error {
	if !s.available() {
		return nil
	}
	return s.kv.Set(legacyAccessKey, t)
}
