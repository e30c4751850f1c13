package core

import (
	"context"
)

type Lecture struct {
	ID       int64
	Title    string
	VideoURL string
}

type LectureDB interface {
	AllLectures(ctx context.Context) ([]*Lecture, error) // ordered by id
	CountLectures(ctx context.Context) (int, error)
	// GetLecture returns ErrNotFound if the lecture does not exist.
	GetLecture(ctx context.Context, id int64) (*Lecture, error)
	// InsertLectures inserts all lectures in one transaction and sets their IDs.
	InsertLectures(ctx context.Context, lectures []*Lecture) error
}

// Lectures shadows LectureDB.AllLectures.
func (c *CoreDB) Lectures(ctx context.Context) ([]*Lecture, error) {
	return c.LectureDB.AllLectures(ctx)
}

// Lecture shadows LectureDB.GetLecture.
func (c *CoreDB) Lecture(ctx context.Context, id int64) (*Lecture, error) {
	return c.LectureDB.GetLecture(ctx, id)
}
