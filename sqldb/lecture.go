package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wansing/coursenotes/core"
)

type LectureDB struct {
	*sql.DB
	all    *sql.Stmt
	count  *sql.Stmt
	get    *sql.Stmt
	insert *insertStmt
}

func NewLectureDB(db *sql.DB, d *Dialect) *LectureDB {
	var lectureDB = &LectureDB{}
	lectureDB.DB = db
	lectureDB.all = mustPrepare(db, d, "SELECT id, title, video_url FROM lectures ORDER BY id")
	lectureDB.count = mustPrepare(db, d, "SELECT COUNT(*) FROM lectures")
	lectureDB.get = mustPrepare(db, d, "SELECT title, video_url FROM lectures WHERE id = ?")
	lectureDB.insert = mustPrepareInsert(db, d, "INSERT INTO lectures (title, video_url) VALUES (?, ?)")
	return lectureDB
}

func (db *LectureDB) AllLectures(ctx context.Context) ([]*core.Lecture, error) {

	rows, err := db.all.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting lectures: %w", err)
	}
	defer rows.Close()

	var lectures = []*core.Lecture{}
	for rows.Next() {
		var l = &core.Lecture{}
		if err := rows.Scan(&l.ID, &l.Title, &l.VideoURL); err != nil {
			return nil, fmt.Errorf("scanning lecture: %w", err)
		}
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

func (db *LectureDB) CountLectures(ctx context.Context) (int, error) {
	var count int
	if err := db.count.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting lectures: %w", err)
	}
	return count, nil
}

func (db *LectureDB) GetLecture(ctx context.Context, id int64) (*core.Lecture, error) {
	var l = &core.Lecture{
		ID: id,
	}
	err := db.get.QueryRowContext(ctx, id).Scan(&l.Title, &l.VideoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting lecture %d: %w", id, err)
	}
	return l, nil
}

func (db *LectureDB) InsertLectures(ctx context.Context, lectures []*core.Lecture) error {

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, l := range lectures {
		id, err := db.insert.exec(ctx, tx, l.Title, l.VideoURL)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting lecture %q: %w", l.Title, err)
		}
		l.ID = id
	}

	return tx.Commit()
}
