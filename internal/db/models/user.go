package models

import (
	"strings"
	"time"
)

// User represents a user account in the system.
// Accounts are created lazily: on the first successful OIDC callback for an
// unseen subject, or on the first profile update. They are never deleted by
// the application.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// ExternalSubject is the stable OIDC subject claim issued by the identity
	// provider. It is the only join key between a session and a user row.
	ExternalSubject string `gorm:"uniqueIndex;size:255;not null"`
	// Email is the user's email address as last reported by the identity provider.
	Email string `gorm:"index;size:255"`
	// FirstName is the user's first or given name, maintained via the profile form.
	FirstName string `gorm:"size:100"`
	// LastName is the user's last or family name, maintained via the profile form.
	LastName string `gorm:"size:100"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// FullName returns the user's first and last name joined with a space.
// Returns an empty string if both parts are empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
