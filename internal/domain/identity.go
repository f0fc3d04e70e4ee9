package domain

import "time"

// Identity is a snapshot of the authenticated principal as reported by the backend.
// It is replaced wholesale on every login or refresh and never mutated in place.
type Identity struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Avatar         string    `json:"avatar"`
	CreatedAt      time.Time `json:"created_at"`
	EmailConfirmed bool      `json:"email_confirmed"`
	DisplayName    string    `json:"display_name,omitempty"`
	Admin          bool      `json:"admin"`
	Banned         bool      `json:"banned"`
}

// Name returns the display name, falling back to the user name.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Username
}
