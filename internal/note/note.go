// Package note defines the note model owned by the storage layer.
package note

import "time"

// Note is a single text or voice-transcribed note.
// A note is visible and mutable only to the user referenced by UserID.
type Note struct {
	// ID is the unique identifier of the note, meaning a UUID.
	ID string `json:"id"`

	// UserID is the owner of the note.
	UserID string `json:"userId"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// IsAudio marks notes whose content came from speech-to-text capture.
	IsAudio bool `json:"isAudio"`

	IsFavorite bool `json:"isFavorite"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
