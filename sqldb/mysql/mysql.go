package mysql

import (
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"github.com/wansing/coursenotes/sqldb"
)

const errDupEntry = 1062 // ER_DUP_ENTRY

//go:embed migrations/*.sql
var migrations embed.FS

var Dialect = &sqldb.Dialect{
	Name:              "mysql",
	Goose:             goose.DialectMySQL,
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
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDupEntry
	}
	return false
}

// NewSessionStore requires the sessions table, which is created by the migrations.
func NewSessionStore(db *sql.DB) scs.Store {
	return mysqlstore.New(db)
}
