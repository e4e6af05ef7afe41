package entities

import "time"

// StartingPoints is the balance a brand new local profile receives
const StartingPoints int64 = 1000

// User is the logged-in player as the front ends see them
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Points       int64  `json:"points"`
	IsLoggedIn   bool   `json:"isLoggedIn"`
	IsFirstLogin bool   `json:"isFirstLogin"`
}

// Profile is the stored record the local backend keeps per username
type Profile struct {
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Points       int64     `json:"points"`
	IsFirstLogin bool      `json:"isFirstLogin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewProfile creates a profile with the starting balance
func NewProfile(username, email, passwordHash string, now time.Time) *Profile {
	return &Profile{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Points:       StartingPoints,
		IsFirstLogin: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// User converts the profile into a logged-in user. Local users are keyed by name.
func (p *Profile) User() *User {
	return &User{
		ID:           p.Username,
		Name:         p.Username,
		Email:        p.Email,
		Points:       p.Points,
		IsLoggedIn:   true,
		IsFirstLogin: p.IsFirstLogin,
	}
}
