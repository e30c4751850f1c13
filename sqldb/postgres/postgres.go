package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	"github.com/wansing/coursenotes/sqldb"
)

//go:embed migrations/*.sql
var migrations embed.FS

var Dialect = &sqldb.Dialect{
	Name:              "pgx",
	Goose:             goose.DialectPostgres,
	Migrations:        mustSub(migrations, "migrations"),
	NumberedParams:    true,
	Returning:         true,
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
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

// NewSessionStore requires the sessions table, which is created by the migrations.
func NewSessionStore(db *sql.DB) scs.Store {
	return postgresstore.New(db)
}
