package users

import (
	"slices"
	"time"
)

// User is a member of a single user pool.
type User struct {
	ID         string    `json:"id,omitempty"`          // Unique identifier for the user (token subject)
	UserPoolID string    `json:"user_pool_id"`          // Owning user pool
	Username   string    `json:"username,omitempty"`    // Unique username within the pool
	Email      string    `json:"email,omitempty"`       // User's email address
	Enabled    bool      `json:"enabled"`               // Disabled users cannot exchange refresh tokens
	Groups     []string  `json:"groups,omitempty"`      // Ordered group memberships, copied into token claims
	DateJoined time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	c := *u
	c.Groups = slices.Clone(u.Groups)
	return &c
}

// GroupMemberships returns a copy of the user's groups in membership order
func (u *User) GroupMemberships() []string {
	return slices.Clone(u.Groups)
}
