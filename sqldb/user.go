package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wansing/coursenotes/core"
)

type UserDB struct {
	*sql.DB
	dialect     *Dialect
	get         *sql.Stmt
	insert      *insertStmt
	credentials *sql.Stmt
}

func NewUserDB(db *sql.DB, d *Dialect) *UserDB {
	var userDB = &UserDB{}
	userDB.DB = db
	userDB.dialect = d
	userDB.get = mustPrepare(db, d, "SELECT username FROM users WHERE id = ?")
	userDB.insert = mustPrepareInsert(db, d, "INSERT INTO users (username, password_hash) VALUES (?, ?)")
	userDB.credentials = mustPrepare(db, d, "SELECT id, password_hash FROM users WHERE username = ?")
	return userDB
}

func (db *UserDB) GetUser(ctx context.Context, id int64) (*core.User, error) {
	var u = &core.User{
		ID: id,
	}
	err := db.get.QueryRowContext(ctx, id).Scan(&u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

func (db *UserDB) GetCredentials(ctx context.Context, name string) (*core.User, []byte, error) {
	var u = &core.User{
		Name: name,
	}
	var hash []byte
	err := db.credentials.QueryRowContext(ctx, name).Scan(&u.ID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, core.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("getting credentials: %w", err)
	}
	return u, hash, nil
}

func (db *UserDB) InsertUser(ctx context.Context, name string, hash []byte) (*core.User, error) {
	id, err := db.insert.exec(ctx, nil, name, string(hash))
	if err != nil {
		if db.dialect.IsUniqueViolation(err) {
			return nil, core.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return &core.User{
		ID:   id,
		Name: name,
	}, nil
}
