package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Note struct {
	ID        int64
	UserID    int64
	LectureID int64
	Content   string
	Created   time.Time // unix second precision
}

type NoteDB interface {
	InsertNote(ctx context.Context, n *Note) (int64, error)
	// NotesOf returns the notes of a user for a lecture, most recent first.
	NotesOf(ctx context.Context, userID, lectureID int64) ([]*Note, error)
	// CountNotesOf returns lecture id -> number of notes of the user. Lectures without notes are omitted.
	CountNotesOf(ctx context.Context, userID int64) (map[int64]int, error)
}

// CreateNote adds a note of the user to a lecture and returns the id of the note.
// The caller must ensure that the session is authenticated as userID.
func (c *CoreDB) CreateNote(ctx context.Context, userID, lectureID int64, content string) (int64, error) {

	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	if _, err := c.LectureDB.GetLecture(ctx, lectureID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrLectureNotFound
		}
		return 0, err
	}

	return c.NoteDB.InsertNote(ctx, &Note{
		UserID:    userID,
		LectureID: lectureID,
		Content:   content,
		Created:   c.now(),
	})
}

// Notes shadows NoteDB.NotesOf.
func (c *CoreDB) Notes(ctx context.Context, userID, lectureID int64) ([]*Note, error) {
	return c.NoteDB.NotesOf(ctx, userID, lectureID)
}

// NoteCounts shadows NoteDB.CountNotesOf.
func (c *CoreDB) NoteCounts(ctx context.Context, userID int64) (map[int64]int, error) {
	return c.NoteDB.CountNotesOf(ctx, userID)
}
