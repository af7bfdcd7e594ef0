// Package storage declares the full contract a storage backend must satisfy.
// The concrete implementations live in the sibling postgresdb, jsondb and
// memorystorage packages.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

type Storage interface {
	// CreateUser persists a new user. Returns models.ErrConflict when the
	// email is already registered.
	CreateUser(ctx context.Context, usr *user.User) (*user.User, error)

	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	InsertNote(ctx context.Context, theNote *note.Note) error

	// FindNotes returns the notes owned by userID, optionally filtered by a
	// case-insensitive substring match of search against title or content,
	// ordered by creation time per sortOrder (models.SortOrderAsc|Desc).
	FindNotes(ctx context.Context, userID, search, sortOrder string) ([]note.Note, error)

	GetNoteByID(ctx context.Context, noteID string) (*note.Note, bool, error)

	UpdateNote(ctx context.Context, theNote *note.Note) error

	// DeleteNote removes the note. Returns models.ErrNotFound when no such
	// note exists.
	DeleteNote(ctx context.Context, noteID string) error

	Ping(ctx context.Context) error

	Close() error
}
