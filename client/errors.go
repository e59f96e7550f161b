package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrRefreshFailed  = errors.New("failed to refresh token")
)

// APIError is a non-2xx backend response. The HTTP status and the backend's
// field-error mapping are preserved so collaborators can branch on them
// (validation display vs auth handling).
type APIError struct {
	Status  int
	Message string
	Fields  map[string]any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, http.StatusText(e.Status))
}

// IsValidation reports whether the error looks like backend input
// validation rather than an auth or server problem.
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}

// newAPIError builds an APIError from a response body. Backends report a
// human message under "message" or "detail"; everything else is kept as
// per-field errors.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil || decoded == nil {
		return apiErr
	}

	for _, key := range []string{"message", "detail"} {
		if msg, ok := decoded[key].(string); ok && msg != "" {
			apiErr.Message = msg
			delete(decoded, key)
			break
		}
	}
	if len(decoded) > 0 {
		apiErr.Fields = decoded
	}
	return apiErr
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}
