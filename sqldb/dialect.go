package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Dialect describes the differences between the supported SQL databases.
// The driver packages sqldb/sqlite3, sqldb/mysql and sqldb/postgres each provide one.
type Dialect struct {
	Name              string // driver name for sql.Open
	Goose             goose.Dialect
	Migrations        fs.FS // *.sql files in the root
	NumberedParams    bool  // $1, $2, ... instead of ?
	Returning         bool  // use "RETURNING id" instead of LastInsertId
	IsUniqueViolation func(err error) bool
	NewSessionStore   func(db *sql.DB) scs.Store
}

// Rebind replaces the ? placeholders if the dialect uses numbered params.
// Queries must not contain literal question marks.
func (d *Dialect) Rebind(query string) string {
	if !d.NumberedParams {
		return query
	}
	var b strings.Builder
	var n = 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mustPrepare(db *sql.DB, d *Dialect, query string) *sql.Stmt {
	stmt, err := db.Prepare(d.Rebind(query))
	if err != nil {
		panic(fmt.Errorf("preparing %q: %w", query, err))
	}
	return stmt
}

// insertStmt returns the id of the inserted row, either using RETURNING or LastInsertId.
type insertStmt struct {
	stmt      *sql.Stmt
	returning bool
}

// query must be an INSERT statement without a trailing semicolon.
func mustPrepareInsert(db *sql.DB, d *Dialect, query string) *insertStmt {
	if d.Returning {
		query += " RETURNING id"
	}
	return &insertStmt{
		stmt:      mustPrepare(db, d, query),
		returning: d.Returning,
	}
}

func (s *insertStmt) exec(ctx context.Context, tx *sql.Tx, args ...interface{}) (int64, error) {

	var stmt = s.stmt
	if tx != nil {
		stmt = tx.StmtContext(ctx, s.stmt)
	}

	if s.returning {
		var id int64
		err := stmt.QueryRowContext(ctx, args...).Scan(&id)
		return id, err
	}

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Migrate applies all pending migrations of the dialect.
func Migrate(ctx context.Context, db *sql.DB, d *Dialect) error {

	provider, err := goose.NewProvider(d.Goose, db, d.Migrations)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	for _, result := range results {
		zerolog.Ctx(ctx).Info().
			Int64("version", result.Source.Version).
			Str("file", result.Source.Path).
			Dur("took", result.Duration).
			Msg("applied migration")
	}

	return nil
}
