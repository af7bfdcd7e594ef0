// Package memorystorage provides a purely in-memory storage backend.
// It reuses the jsondb cache logic without the file persistence.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/ainotes/internal/db/jsondb"
	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:         map[string]*user.User{},
				EmailToUserID: map[string]string{},
				Notes:         map[string]*note.Note{},
				NoteIDs:       []string{},
			},
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
