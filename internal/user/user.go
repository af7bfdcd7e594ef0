// Package user defines the user model used throughout the application,
// particularly for authentication and note ownership.
package user

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Email is unique across all users.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password.
	// It is never serialized into API responses.
	PasswordHash string `json:"-"`

	Name string `json:"name,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
