package sqlite3

import (
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	gosqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/wansing/coursenotes/sqldb"
)

//go:embed migrations/*.sql
var migrations embed.FS

var Dialect = &sqldb.Dialect{
	Name:              "sqlite3",
	Goose:             goose.DialectSQLite3,
	Migrations:        mustSub(migrations, "migrations"),
	IsUniqueViolation: IsUniqueViolation,
	NewSessionStore:   NewSessionStore,
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

func IsUniqueViolation(err error) bool {
	var sqliteErr gosqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == gosqlite3.ErrConstraintUnique
	}
	return false
}

// NewSessionStore requires the sessions table, which is created by the migrations.
func NewSessionStore(db *sql.DB) scs.Store {
	return sqlite3store.New(db)
}
