// Package jsondb implements the storage contract on top of a single JSON
// file. The whole dataset lives in memory and is flushed to disk on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

// JSONDB is a file-backed storage. All operations work on an in-memory
// cache guarded by a mutex; Close persists the cache to the file.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the serialized shape of the database file.
type CacheStruct struct {
	Users         map[string]*user.User
	EmailToUserID map[string]string
	Notes         map[string]*note.Note

	// NoteIDs keeps insertion order so listings stay stable for
	// notes sharing a creation timestamp.
	NoteIDs []string
}

func emptyCache() CacheStruct {
	return CacheStruct{
		Users:         map[string]*user.User{},
		EmailToUserID: map[string]string{},
		Notes:         map[string]*note.Note{},
		NoteIDs:       []string{},
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	jsonData, err := json.MarshalIndent(emptyCache(), "", "\t")
	if err != nil {
		return err
	}
	if _, err := dbFile.Write(jsonData); err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New loads the database from fileName, creating an empty file when none exists.
func New(fileName string) (*JSONDB, error) {
	theDB := JSONDB{
		fileName: fileName,
		Cache:    emptyCache(),
	}

	err := parseJSONFile(theDB.fileName, &theDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(theDB.fileName, &theDB.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &theDB, nil
}

// CreateUser persists a new user, rejecting duplicate emails.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.Cache.EmailToUserID[usr.Email]; exists {
		return nil, models.ErrConflict
	}

	stored := *usr
	db.Cache.Users[stored.ID] = &stored
	db.Cache.EmailToUserID[stored.Email] = stored.ID

	result := stored

	return &result, nil
}

// FindUserByEmail returns the user registered under email, if any.
func (db *JSONDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	userID, found := db.Cache.EmailToUserID[email]
	if !found {
		return nil, false, nil
	}

	result := *db.Cache.Users[userID]

	return &result, true, nil
}

// GetUserByID returns the user with the given id, if any.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	result := *usr

	return &result, true, nil
}

// InsertNote stores a new note.
func (db *JSONDB) InsertNote(ctx context.Context, theNote *note.Note) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *theNote
	db.Cache.Notes[stored.ID] = &stored
	db.Cache.NoteIDs = append(db.Cache.NoteIDs, stored.ID)

	return nil
}

// FindNotes returns the notes owned by userID, filtered by an optional
// case-insensitive substring search over title and content and ordered
// by creation time.
func (db *JSONDB) FindNotes(ctx context.Context, userID, search, sortOrder string) ([]note.Note, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	candidates := make([]note.Note, 0, len(db.Cache.NoteIDs))
	for _, noteID := range db.Cache.NoteIDs {
		if theNote, found := db.Cache.Notes[noteID]; found && theNote.UserID == userID {
			candidates = append(candidates, *theNote)
		}
	}

	needle := strings.ToLower(search)
	result := funk.Filter(candidates, func(n note.Note) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle)
	}).([]note.Note)

	sort.SliceStable(result, func(i, j int) bool {
		if sortOrder == models.SortOrderAsc {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// GetNoteByID returns the note with the given id regardless of owner.
// Ownership is checked by the service layer.
func (db *JSONDB) GetNoteByID(ctx context.Context, noteID string) (*note.Note, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	theNote, found := db.Cache.Notes[noteID]
	if !found {
		return nil, false, nil
	}

	result := *theNote

	return &result, true, nil
}

// UpdateNote overwrites the stored note with the given one.
func (db *JSONDB) UpdateNote(ctx context.Context, theNote *note.Note) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Notes[theNote.ID]; !found {
		return models.ErrNotFound
	}

	stored := *theNote
	db.Cache.Notes[stored.ID] = &stored

	return nil
}

// DeleteNote removes the note with the given id.
func (db *JSONDB) DeleteNote(ctx context.Context, noteID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Notes[noteID]; !found {
		return models.ErrNotFound
	}

	delete(db.Cache.Notes, noteID)
	for i, id := range db.Cache.NoteIDs {
		if id == noteID {
			db.Cache.NoteIDs = append(db.Cache.NoteIDs[:i], db.Cache.NoteIDs[i+1:]...)
			break
		}
	}

	return nil
}

// Ping always succeeds for the file-backed storage.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the in-memory cache to the database file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
