package domain

import "context"

// LoginResult is what the session and login endpoints return on success.
type LoginResult struct {
	Token             string   `json:"token"`
	ExpirationSeconds int64    `json:"expiration_seconds"`
	Identity          Identity `json:"user"`
}

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator talks to the backend session endpoints.
// Refresh returns (nil, nil) when the backend reports no session.
// Errors for rejected credentials must match ErrUnauthorized via errors.Is.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Refresh(ctx context.Context) (*LoginResult, error)
	Logout(ctx context.Context) error
}

// NavigateOptions controls a navigation request.
type NavigateOptions struct {
	// From records the location the user should return to afterwards.
	From    string
	Replace bool
}

// Navigator moves the application to another location.
type Navigator interface {
	CurrentLocation() string
	NavigateTo(path string, opts NavigateOptions)
}
