package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wansing/coursenotes/core"
)

type NoteDB struct {
	*sql.DB
	count  *sql.Stmt
	insert *insertStmt
	of     *sql.Stmt
}

func NewNoteDB(db *sql.DB, d *Dialect) *NoteDB {
	var noteDB = &NoteDB{}
	noteDB.DB = db
	noteDB.count = mustPrepare(db, d, "SELECT lecture_id, COUNT(*) FROM notes WHERE user_id = ? GROUP BY lecture_id")
	noteDB.insert = mustPrepareInsert(db, d, "INSERT INTO notes (user_id, lecture_id, content, created) VALUES (?, ?, ?, ?)")
	noteDB.of = mustPrepare(db, d, "SELECT id, content, created FROM notes WHERE user_id = ? AND lecture_id = ? ORDER BY created DESC, id DESC")
	return noteDB
}

func (db *NoteDB) InsertNote(ctx context.Context, n *core.Note) (int64, error) {
	id, err := db.insert.exec(ctx, nil, n.UserID, n.LectureID, n.Content, n.Created.Unix())
	if err != nil {
		return 0, fmt.Errorf("inserting note: %w", err)
	}
	n.ID = id
	return id, nil
}

func (db *NoteDB) NotesOf(ctx context.Context, userID, lectureID int64) ([]*core.Note, error) {

	rows, err := db.of.QueryContext(ctx, userID, lectureID)
	if err != nil {
		return nil, fmt.Errorf("getting notes: %w", err)
	}
	defer rows.Close()

	var notes = []*core.Note{}
	for rows.Next() {
		var n = &core.Note{
			UserID:    userID,
			LectureID: lectureID,
		}
		var created int64
		if err := rows.Scan(&n.ID, &n.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		n.Created = time.Unix(created, 0)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (db *NoteDB) CountNotesOf(ctx context.Context, userID int64) (map[int64]int, error) {

	rows, err := db.count.QueryContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting notes: %w", err)
	}
	defer rows.Close()

	var counts = make(map[int64]int)
	for rows.Next() {
		var lectureID int64
		var count int
		if err := rows.Scan(&lectureID, &count); err != nil {
			return nil, fmt.Errorf("scanning note count: %w", err)
		}
		counts[lectureID] = count
	}
	return counts, rows.Err()
}
