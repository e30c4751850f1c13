package core

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
)

type CoreDB struct {
	LectureDB
	NoteDB
	UserDB
	SessionManager *scs.SessionManager

	BcryptCost int              // exported because main sets it, zero means bcrypt.DefaultCost
	Now        func() time.Time // exported for tests, nil means time.Now
}

type SessionOptions struct {
	CookiePath  string // without trailing slash
	Secure      bool
	IdleTimeout time.Duration
	Lifetime    time.Duration
}

func (c *CoreDB) Init(sessionStore scs.Store, opts SessionOptions) {

	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 12 * time.Hour
	}
	if opts.Lifetime == 0 {
		opts.Lifetime = 720 * time.Hour
	}

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Name = "coursenotes_session"
	c.SessionManager.Cookie.HttpOnly = true
	c.SessionManager.Cookie.Path = opts.CookiePath + "/"
	c.SessionManager.Cookie.Persist = false                 // don't store cookie across browser sessions
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = opts.Secure            // false when running on localhost or behind a http proxy
	c.SessionManager.IdleTimeout = opts.IdleTimeout
	c.SessionManager.Lifetime = opts.Lifetime
}

func (c *CoreDB) bcryptCost() int {
	if c.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return c.BcryptCost
}

func (c *CoreDB) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
