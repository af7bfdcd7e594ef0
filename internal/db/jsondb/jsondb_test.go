package jsondb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

const (
	testDBFileName = "db_test.json"
)

func Test(t *testing.T) {
	t.Run("The base jsondb package test", func(t *testing.T) {
		theStorage, err := New(testDBFileName)
		require.NoError(t, err)
		require.NotNil(t, theStorage)
		defer func() {
			err := os.Remove(testDBFileName)
			require.NoError(t, err)
		}()

		ctx := context.Background()

		usr, err := theStorage.CreateUser(ctx, &user.User{
			ID:           "10000000-0000-0000-0000-000000000001",
			Email:        "a@x.com",
			PasswordHash: "hash",
			CreatedAt:    time.Now(),
		})
		assert.NoError(t, err, "The `theStorage.CreateUser()` should not return error")

		_, err = theStorage.CreateUser(ctx, &user.User{
			ID:    "10000000-0000-0000-0000-000000000002",
			Email: "a@x.com",
		})
		assert.ErrorIs(t, err, models.ErrConflict, "a duplicate email should be rejected")

		found, ok, err := theStorage.FindUserByEmail(ctx, "a@x.com")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, usr.ID, found.ID)

		_, ok, err = theStorage.FindUserByEmail(ctx, "nobody@x.com")
		assert.NoError(t, err)
		assert.False(t, ok)

		byID, ok, err := theStorage.GetUserByID(ctx, usr.ID)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "a@x.com", byID.Email)

		base := time.Now().Add(-time.Hour)
		notes := []note.Note{
			{ID: "20000000-0000-0000-0000-000000000001", UserID: usr.ID, Title: "First", Content: "alpha", CreatedAt: base, UpdatedAt: base},
			{ID: "20000000-0000-0000-0000-000000000002", UserID: usr.ID, Title: "Second", Content: "Beta ALPHA", CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)},
			{ID: "20000000-0000-0000-0000-000000000003", UserID: "someone-else", Title: "Foreign", Content: "alpha", CreatedAt: base, UpdatedAt: base},
		}
		for i := range notes {
			err = theStorage.InsertNote(ctx, &notes[i])
			assert.NoError(t, err, "The `theStorage.InsertNote()` should not return error")
		}

		listed, err := theStorage.FindNotes(ctx, usr.ID, "", models.SortOrderDesc)
		assert.NoError(t, err)
		require.Len(t, listed, 2, "foreign notes must not leak into the listing")
		assert.Equal(t, "Second", listed[0].Title)
		assert.Equal(t, "First", listed[1].Title)

		listed, err = theStorage.FindNotes(ctx, usr.ID, "", models.SortOrderAsc)
		assert.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "First", listed[0].Title)

		listed, err = theStorage.FindNotes(ctx, usr.ID, "ALPha", models.SortOrderAsc)
		assert.NoError(t, err)
		require.Len(t, listed, 2, "the search should be case-insensitive over title and content")

		listed, err = theStorage.FindNotes(ctx, usr.ID, "second", models.SortOrderAsc)
		assert.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "Second", listed[0].Title)

		theNote, ok, err := theStorage.GetNoteByID(ctx, notes[0].ID)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "First", theNote.Title)

		theNote.IsFavorite = true
		err = theStorage.UpdateNote(ctx, theNote)
		assert.NoError(t, err)

		reread, ok, err := theStorage.GetNoteByID(ctx, theNote.ID)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, reread.IsFavorite)

		err = theStorage.DeleteNote(ctx, theNote.ID)
		assert.NoError(t, err)
		err = theStorage.DeleteNote(ctx, theNote.ID)
		assert.ErrorIs(t, err, models.ErrNotFound, "a repeated delete should report not found")

		err = theStorage.Ping(ctx)
		assert.NoError(t, err, "The jsondb.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The jsondb.Close() should not return error")
	})
}

func TestPersistenceRoundTrip(t *testing.T) {
	theStorage, err := New(testDBFileName)
	require.NoError(t, err)
	defer func() {
		err := os.Remove(testDBFileName)
		require.NoError(t, err)
	}()

	ctx := context.Background()

	_, err = theStorage.CreateUser(ctx, &user.User{
		ID:    "10000000-0000-0000-0000-000000000001",
		Email: "a@x.com",
	})
	require.NoError(t, err)

	now := time.Now()
	err = theStorage.InsertNote(ctx, &note.Note{
		ID:        "20000000-0000-0000-0000-000000000001",
		UserID:    "10000000-0000-0000-0000-000000000001",
		Title:     "T",
		Content:   "C",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, theStorage.Close())

	reopened, err := New(testDBFileName)
	require.NoError(t, err)

	_, ok, err := reopened.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	listed, err := reopened.FindNotes(ctx, "10000000-0000-0000-0000-000000000001", "", models.SortOrderDesc)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "T", listed[0].Title)
	assert.Equal(t, "C", listed[0].Content)
}
