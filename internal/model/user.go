package model

import "time"

// User is a registered account. PasswordHash and the reset challenge fields
// never leave the server; they are excluded from every JSON response.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber"`
	Domain       string    `json:"domain"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// In-flight password reset challenge. Nil when no reset is pending.
	ResetCode      *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
}
