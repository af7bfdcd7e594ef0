// Package mockstorage provides a testify-based mock implementation
// of the storage contract. It is used to simulate storage behavior,
// including infrastructure failures, in service and router tests.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

// StorageMock is a testify mock implementing the storage interface.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks persisting a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	args := m.Called(ctx, usr)
	result, _ := args.Get(0).(*user.User)
	return result, args.Error(1)
}

// FindUserByEmail mocks the email lookup.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	result, _ := args.Get(0).(*user.User)
	return result, args.Bool(1), args.Error(2)
}

// GetUserByID mocks the id lookup.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*user.User)
	return result, args.Bool(1), args.Error(2)
}

// InsertNote mocks storing a note.
func (m *StorageMock) InsertNote(ctx context.Context, theNote *note.Note) error {
	args := m.Called(ctx, theNote)
	return args.Error(0)
}

// FindNotes mocks the owner-scoped listing.
func (m *StorageMock) FindNotes(ctx context.Context, userID, search, sortOrder string) ([]note.Note, error) {
	args := m.Called(ctx, userID, search, sortOrder)
	result, _ := args.Get(0).([]note.Note)
	return result, args.Error(1)
}

// GetNoteByID mocks the note lookup.
func (m *StorageMock) GetNoteByID(ctx context.Context, noteID string) (*note.Note, bool, error) {
	args := m.Called(ctx, noteID)
	result, _ := args.Get(0).(*note.Note)
	return result, args.Bool(1), args.Error(2)
}

// UpdateNote mocks overwriting a note.
func (m *StorageMock) UpdateNote(ctx context.Context, theNote *note.Note) error {
	args := m.Called(ctx, theNote)
	return args.Error(0)
}

// DeleteNote mocks removing a note.
func (m *StorageMock) DeleteNote(ctx context.Context, noteID string) error {
	args := m.Called(ctx, noteID)
	return args.Error(0)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
