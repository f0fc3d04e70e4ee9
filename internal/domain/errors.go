package domain

import "errors"

var (
	// ErrUnauthorized classifies a backend rejection of the presented credential (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAuthorizationRequired is returned when a privileged call has no session to run with.
	ErrAuthorizationRequired = errors.New("authorization required")
	ErrPostNotFound          = errors.New("post not found")
)
