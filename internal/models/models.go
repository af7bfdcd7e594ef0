// Package models defines the request and response bodies of the HTTP API
// together with the sentinel errors shared between the service and router layers.
package models

import (
	"errors"
	"time"
)

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// UserView is the public projection of a user record.
// It never carries the password hash.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignupResponse is the body returned on successful signup.
type SignupResponse struct {
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUserView is the trimmed user projection returned by login.
type LoginUserView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse carries the bearer token and the user it was issued for.
// The browser-session cookie is set alongside and does not appear in the body.
type LoginResponse struct {
	Token string        `json:"token"`
	User  LoginUserView `json:"user"`
}

// CreateNoteRequest is the body of POST /api/notes.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	IsAudio bool   `json:"isAudio"`
}

// UpdateNoteRequest is the body of PATCH /api/notes/{id}.
// Nil fields are left untouched.
type UpdateNoteRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	IsFavorite *bool   `json:"isFavorite"`
}

// MessageResponse is a generic `{"message": ...}` response body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the JSON error body produced at the router boundary.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Accepted values of the `sort` query parameter of GET /api/notes.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// Sentinel errors of the service layer. The router converts them to HTTP
// statuses: 400, 401, 409 and 404 respectively. Anything else becomes a 500
// with a generic body.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrConflict           = errors.New("user already exists")
	ErrNotFound           = errors.New("not found")
)
