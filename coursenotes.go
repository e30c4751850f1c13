package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wansing/coursenotes/config"
	"github.com/wansing/coursenotes/core"
	"github.com/wansing/coursenotes/sqldb"
	"github.com/wansing/coursenotes/sqldb/mysql"
	"github.com/wansing/coursenotes/sqldb/postgres"
	"github.com/wansing/coursenotes/sqldb/sqlite3"
	"github.com/wansing/coursenotes/web"
	"github.com/xo/dburl"
	"golang.org/x/term"
)

// key is the driver name which dburl derives from the url scheme
var dialects = map[string]*sqldb.Dialect{
	"mysql":    mysql.Dialect,
	"postgres": postgres.Dialect,
	"sqlite3":  sqlite3.Dialect,
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func run(args []string) error {

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)
	var initInsertUser = initFlags.String("insert-user", "", "create a user with this `name`, the password is read from the terminal")
	var initSeed = initFlags.Bool("seed", false, "insert the lectures if there are none")

	var isInit = len(args) > 0 && args[0] == "init"

	var cfg *config.Config
	var err error
	if isInit {
		cfg, err = config.Load(initFlags, args[1:])
	} else {
		cfg, err = config.Load(flag.CommandLine, args)
	}
	if err != nil {
		return err
	}

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	log.Logger = logger
	var ctx = logger.WithContext(context.Background())

	// database

	sqlDB, dialect, err := openDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info().Msg("closing database")
		sqlDB.Close()
	}()

	if err := sqldb.Migrate(ctx, sqlDB, dialect); err != nil {
		return err
	}

	// assemble stuff

	var db = &core.CoreDB{
		LectureDB:  sqldb.NewLectureDB(sqlDB, dialect),
		NoteDB:     sqldb.NewNoteDB(sqlDB, dialect),
		UserDB:     sqldb.NewUserDB(sqlDB, dialect),
		BcryptCost: cfg.BcryptCost,
	}
	db.Init(dialect.NewSessionStore(sqlDB), core.SessionOptions{
		CookiePath:  cfg.Base,
		Secure:      cfg.CookieSecure,
		IdleTimeout: cfg.IdleTimeout,
		Lifetime:    cfg.Lifetime,
	})

	// init

	if isInit {
		switch {
		case *initInsertUser != "":
			return insertUser(ctx, db, *initInsertUser)
		case *initSeed:
			return seed(ctx, db, cfg.LecturesFile)
		default:
			initFlags.Usage()
			return nil
		}
	}

	if err := seed(ctx, db, cfg.LecturesFile); err != nil {
		return err
	}

	return listen(ctx, db, cfg, logger)
}

func openDB(ctx context.Context, dbArg string) (*sql.DB, *sqldb.Dialect, error) {

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing database url: %w", err)
	}

	dialect, ok := dialects[dbURL.Driver]
	if !ok {
		return nil, nil, fmt.Errorf("unknown database backend: %s", dbURL.Driver)
	}

	sqlDB, err := sql.Open(dialect.Name, dbURL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sql database: %w", err)
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("pinging sql database: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("driver", dbURL.Driver).Str("url", dbURL.Redacted()).Msg("using database")
	return sqlDB, dialect, nil
}

func seed(ctx context.Context, db *core.CoreDB, lecturesFile string) error {

	lectures, err := core.LoadLectures(lecturesFile)
	if err != nil {
		return fmt.Errorf("loading lectures: %w", err)
	}

	n, err := db.SeedLectures(ctx, lectures)
	if err != nil {
		return fmt.Errorf("seeding lectures: %w", err)
	}
	if n > 0 {
		zerolog.Ctx(ctx).Info().Int("count", n).Msg("inserted lectures")
	}
	return nil
}

func insertUser(ctx context.Context, db *core.CoreDB, name string) error {

	fmt.Printf("password for user %s: ", name)
	pass1, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	fmt.Printf("repeat password: ")
	pass2, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	if !bytes.Equal(pass1, pass2) {
		return errors.New("passwords don't match")
	}

	user, err := db.Register(ctx, name, string(pass1))
	if err != nil {
		return fmt.Errorf("creating user %s: %w", name, err)
	}

	zerolog.Ctx(ctx).Info().Int64("id", user.ID).Str("name", user.Name).Msg("created user")
	return nil
}

func listen(ctx context.Context, db *core.CoreDB, cfg *config.Config, logger zerolog.Logger) error {

	// listener and listen

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Listen).Str("base", cfg.Base).Msg("listening")

	httpSrv := &http.Server{
		Handler:      web.Handler(db, cfg.Base, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	var serveErr = make(chan error, 1)
	go func() {
		serveErr <- httpSrv.Serve(listener)
	}()

	// graceful shutdown

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
