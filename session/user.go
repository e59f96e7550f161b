// Package session holds the client-side view of an authenticated session:
// the policy deciding whether one is still alive, and the state cache UI
// collaborators read the current user from.
package session

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UserID tolerates the two encodings the backend uses for identifiers:
// plain numbers and numeric strings.
type UserID int64

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		// Non-numeric identity is treated as absent rather than fatal.
		*id = 0
		return nil
	}
	*id = UserID(n)
	return nil
}

func (id UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(id))
}

// User is the identity the backend reports for a session.
type User struct {
	ID          UserID   `json:"id,omitempty"`
	Email       string   `json:"email,omitempty"`
	Username    string   `json:"username,omitempty"`
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Name        string   `json:"name,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// DisplayName returns the best human-readable name for the user, matching
// the fallback chain the planner UI uses.
func (u User) DisplayName(fallback string) string {
	for _, candidate := range []string{u.FirstName, u.Name, u.Username, u.Email} {
		if candidate != "" {
			return candidate
		}
	}
	return fallback
}

// HasIdentity reports whether the user carries a usable identity.
func (u User) HasIdentity() bool {
	return u.ID > 0
}
