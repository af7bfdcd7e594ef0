// Package service contains the business logic of the application:
// credential-based signup and login, session issuance and the per-user
// note operations with their ownership checks.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (*user.User, error)

	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
}

type notesKeeper interface {
	InsertNote(ctx context.Context, theNote *note.Note) error

	FindNotes(ctx context.Context, userID, search, sortOrder string) ([]note.Note, error)

	GetNoteByID(ctx context.Context, noteID string) (*note.Note, bool, error)

	UpdateNote(ctx context.Context, theNote *note.Note) error

	DeleteNote(ctx context.Context, noteID string) error
}

type storage interface {
	userKeeper
	notesKeeper
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type tokenBuilder interface {
	BuildJWTString(userID, email string, ttl time.Duration) (string, error)
}

// Session is the result of a successful login: the same identity signed
// twice, once as a short-lived bearer token for API clients and once as a
// longer-lived token destined for the browser-session cookie.
type Session struct {
	BearerToken string
	CookieToken string
	User        *user.User
}

// Service implements the application operations on top of a storage
// backend, a password hasher and a token builder.
type Service struct {
	db        storage
	hasher    passwordHasher
	auth      tokenBuilder
	tokenTTL  time.Duration
	cookieTTL time.Duration
}

// New creates a Service.
func New(
	db storage,
	hasher passwordHasher,
	auth tokenBuilder,
	tokenTTL time.Duration,
	cookieTTL time.Duration,
) *Service {
	return &Service{
		db:        db,
		hasher:    hasher,
		auth:      auth,
		tokenTTL:  tokenTTL,
		cookieTTL: cookieTTL,
	}
}

// Signup registers a new user. The returned user carries no password hash
// field in its public projection. Fails with models.ErrValidation on empty
// email or password and models.ErrConflict on a duplicate email.
func (s *Service) Signup(ctx context.Context, email, password, name string) (*user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}

	_, found, err := s.db.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error calling the `s.db.FindUserByEmail()`: %w", err)
	}
	if found {
		return nil, models.ErrConflict
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error calling the `s.hasher.Hash()`: %w", err)
	}

	usr := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		CreatedAt:    time.Now(),
	}

	// the storage enforces email uniqueness too, so a concurrent signup
	// with the same email still surfaces as models.ErrConflict
	return s.db.CreateUser(ctx, usr)
}

// Login validates the credentials and issues the session tokens. Unknown
// email and wrong password produce the same models.ErrInvalidCredentials
// so callers cannot tell which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	usr, found, err := s.db.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("error calling the `s.db.FindUserByEmail()`: %w", err)
	}
	if !found || !s.hasher.Verify(password, usr.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	bearerToken, err := s.auth.BuildJWTString(usr.ID, usr.Email, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error calling the `s.auth.BuildJWTString()`: %w", err)
	}

	cookieToken, err := s.auth.BuildJWTString(usr.ID, usr.Email, s.cookieTTL)
	if err != nil {
		return nil, fmt.Errorf("error calling the `s.auth.BuildJWTString()`: %w", err)
	}

	return &Session{
		BearerToken: bearerToken,
		CookieToken: cookieToken,
		User:        usr,
	}, nil
}

// ListNotes returns the user's notes, filtered by an optional
// case-insensitive substring search and ordered by creation time.
// Any sort order other than "asc" collapses to "desc".
func (s *Service) ListNotes(ctx context.Context, userID, search, sortOrder string) ([]note.Note, error) {
	if sortOrder != models.SortOrderAsc {
		sortOrder = models.SortOrderDesc
	}

	return s.db.FindNotes(ctx, userID, search, sortOrder)
}

// CreateNote persists a new note owned by userID. Title and content are
// trimmed; either being empty after trimming is models.ErrValidation.
func (s *Service) CreateNote(ctx context.Context, userID, title, content string, isAudio bool) (*note.Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", models.ErrValidation)
	}

	now := time.Now()
	theNote := &note.Note{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		Content:    content,
		IsAudio:    isAudio,
		IsFavorite: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.InsertNote(ctx, theNote); err != nil {
		return nil, fmt.Errorf("error calling the `s.db.InsertNote()`: %w", err)
	}

	return theNote, nil
}

// UpdateNote applies a partial update to the user's note and bumps its
// updated timestamp. A missing note and a note owned by someone else are
// both models.ErrNotFound.
func (s *Service) UpdateNote(
	ctx context.Context,
	userID string,
	noteID string,
	patch models.UpdateNoteRequest,
) (*note.Note, error) {
	theNote, err := s.getOwnedNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", models.ErrValidation)
		}
		theNote.Title = title
	}

	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, fmt.Errorf("%w: content must not be empty", models.ErrValidation)
		}
		theNote.Content = content
	}

	if patch.IsFavorite != nil {
		theNote.IsFavorite = *patch.IsFavorite
	}

	theNote.UpdatedAt = time.Now()

	if err := s.db.UpdateNote(ctx, theNote); err != nil {
		return nil, fmt.Errorf("error calling the `s.db.UpdateNote()`: %w", err)
	}

	return theNote, nil
}

// DeleteNote removes the user's note. Repeating the call for the same id
// yields models.ErrNotFound.
func (s *Service) DeleteNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.getOwnedNote(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.db.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("error calling the `s.db.DeleteNote()`: %w", err)
	}

	return nil
}

// getOwnedNote is the shared ownership check: fetch by id, compare the
// owner, report models.ErrNotFound otherwise. Non-owners must not be able
// to tell a foreign note from a missing one.
func (s *Service) getOwnedNote(ctx context.Context, userID, noteID string) (*note.Note, error) {
	theNote, found, err := s.db.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("error calling the `s.db.GetNoteByID()`: %w", err)
	}
	if !found || theNote.UserID != userID {
		return nil, models.ErrNotFound
	}

	return theNote, nil
}
