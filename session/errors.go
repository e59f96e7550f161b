package session

import "errors"

var (
	ErrSessionExpired = errors.New("session expired due to inactivity")
	ErrNotAuthorized  = errors.New("not authorized")
)
