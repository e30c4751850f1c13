package web

import (
	gocontext "context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/coursenotes/core"
	"github.com/wansing/coursenotes/sqldb"
	"github.com/wansing/coursenotes/sqldb/sqlite3"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T, prefix string) *httptest.Server {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=1")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, sqldb.Migrate(gocontext.Background(), sqlDB, sqlite3.Dialect))

	var db = &core.CoreDB{
		LectureDB:  sqldb.NewLectureDB(sqlDB, sqlite3.Dialect),
		NoteDB:     sqldb.NewNoteDB(sqlDB, sqlite3.Dialect),
		UserDB:     sqldb.NewUserDB(sqlDB, sqlite3.Dialect),
		BcryptCost: bcrypt.MinCost,
	}
	db.Init(memstore.New(), core.SessionOptions{CookiePath: prefix})

	_, err = db.SeedLectures(gocontext.Background(), core.DefaultLectures)
	require.NoError(t, err)

	var srv = httptest.NewServer(Handler(db, prefix, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

// client keeps cookies and does not follow redirects.
type client struct {
	*http.Client
	t   *testing.T
	url string
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		Client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		t:   t,
		url: srv.URL,
	}
}

func (c *client) get(path string) (int, string, http.Header) {
	c.t.Helper()
	resp, err := c.Get(c.url + path)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(body), resp.Header
}

// post returns the status code and the Location header.
func (c *client) post(path string, form url.Values) (int, string) {
	c.t.Helper()
	resp, err := c.PostForm(c.url+path, form)
	require.NoError(c.t, err)
	resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Location")
}

// sessionToken returns the value of the session cookie, or an empty string.
func (c *client) sessionToken() string {
	c.t.Helper()
	u, err := url.Parse(c.url)
	require.NoError(c.t, err)
	for _, cookie := range c.Jar.Cookies(u) {
		if cookie.Name == "coursenotes_session" {
			return cookie.Value
		}
	}
	return ""
}

func (c *client) register(name, password string) {
	c.t.Helper()
	status, location := c.post("/register", url.Values{"username": {name}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, status)
	require.Equal(c.t, "/login", location)
}

func (c *client) login(name, password string) (int, string) {
	c.t.Helper()
	return c.post("/login", url.Values{"username": {name}, "password": {password}})
}

func TestUnauthenticatedRedirects(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)

	for _, path := range []string{"/", "/dashboard", "/lecture/1", "/logout"} {
		status, _, header := c.get(path)
		assert.Equal(t, http.StatusSeeOther, status, path)
		assert.Equal(t, "/login", header.Get("Location"), path)
	}

	status, _ := c.post("/lecture/1", url.Values{"note_content": {"sneaky"}})
	assert.Equal(t, http.StatusSeeOther, status)

	status, body, header := c.get("/login")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Login or Register to Course Notes")
	assert.NotEmpty(t, header.Get("X-Request-Id"))
}

func TestRegisterAndLogin(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)

	c.register("alice", "pw1")
	_, body, _ := c.get("/login")
	assert.Contains(t, body, "Your account has been created.")

	status, location := c.login("alice", "wrong")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)
	_, body, _ = c.get("/login")
	assert.Contains(t, body, "invalid username or password")

	status, _, _ = c.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, status) // still unauthenticated

	status, location = c.login("alice", "pw1")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/dashboard", location)

	status, body, _ = c.get("/dashboard")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome, alice!")
	assert.Contains(t, body, "Lecture 1: Intro to CI/CD")
	assert.Contains(t, body, "Lecture 2: Docker Basics")

	// logged in users are sent to the dashboard
	status, _, header := c.get("/login")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/dashboard", header.Get("Location"))
}

func TestLogin_RenewsSessionToken(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)

	c.register("alice", "pw1") // the pending notification keeps the session alive
	var before = c.sessionToken()
	require.NotEmpty(t, before)

	_, location := c.login("alice", "pw1")
	require.Equal(t, "/dashboard", location)

	var after = c.sessionToken()
	assert.NotEmpty(t, after)
	assert.NotEqual(t, before, after)

	// the old token does not carry the login
	var fixated = newClient(t, srv)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	fixated.Jar.SetCookies(u, []*http.Cookie{{Name: "coursenotes_session", Value: before, Path: "/"}})
	status, _, header := fixated.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", header.Get("Location"))
}

func TestLogin_UsernameIsExact(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)
	c.register("alice", "pw")

	for _, name := range []string{"alice ", " alice", "Alice"} {
		_, location := c.login(name, "pw")
		assert.Equal(t, "/login", location, "%q", name)
	}

	_, location := c.login("alice", "pw")
	assert.Equal(t, "/dashboard", location)
}

func TestRegisterDuplicate(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)

	c.register("alice", "pw1")
	c.register("alice", "pw2")
	_, body, _ := c.get("/login")
	assert.Contains(t, body, "username already exists")

	// the original password still works
	_, location := c.login("alice", "pw1")
	assert.Equal(t, "/dashboard", location)
}

func TestRegisterInvalidForm(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)

	c.register("  ", "pw")
	_, body, _ := c.get("/login")
	assert.Contains(t, body, "username is required")

	c.register("bob", strings.Repeat("x", 73))
	_, body, _ = c.get("/login")
	assert.Contains(t, body, "password is too long")
}

func TestNotes(t *testing.T) {
	var srv = newTestServer(t, "")

	var alice = newClient(t, srv)
	alice.register("alice", "pw")
	alice.login("alice", "pw")

	status, location := alice.post("/lecture/1", url.Values{"note_content": {"hello"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/lecture/1", location)

	status, body, _ := alice.get("/lecture/1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Your note has been saved.")
	assert.Contains(t, body, "<p>hello</p>")
	assert.Contains(t, body, "https://www.youtube.com/embed/dQw4w9WgXcQ")

	_, body, _ = alice.get("/dashboard")
	assert.Contains(t, body, "(1 note)")

	var bob = newClient(t, srv)
	bob.register("bob", "pw")
	bob.login("bob", "pw")

	status, body, _ = bob.get("/lecture/1")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "<p>hello</p>")
	assert.Contains(t, body, "You have no notes for this lecture yet.")
}

func TestNotes_NewestFirst(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)
	c.register("alice", "pw")
	c.login("alice", "pw")

	c.post("/lecture/2", url.Values{"note_content": {"older note"}})
	c.post("/lecture/2", url.Values{"note_content": {"newer note"}})

	_, body, _ := c.get("/lecture/2")
	var newer = strings.Index(body, "newer note")
	var older = strings.Index(body, "older note")
	require.NotEqual(t, -1, newer)
	require.NotEqual(t, -1, older)
	assert.Less(t, newer, older)
}

func TestNotes_Blank(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)
	c.register("alice", "pw")
	c.login("alice", "pw")

	status, location := c.post("/lecture/1", url.Values{"note_content": {"   \n "}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/lecture/1", location)

	_, body, _ := c.get("/lecture/1")
	assert.Contains(t, body, "be empty")
	assert.Contains(t, body, "You have no notes for this lecture yet.")
}

func TestLecture_NotFound(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)
	c.register("alice", "pw")
	c.login("alice", "pw")

	for _, path := range []string{"/lecture/999", "/lecture/abc", "/lecture/-1"} {
		status, _, _ := c.get(path)
		assert.Equal(t, http.StatusNotFound, status, path)
	}

	status, _ := c.post("/lecture/999", url.Values{"note_content": {"hello"}})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLogout(t *testing.T) {
	var srv = newTestServer(t, "")
	var c = newClient(t, srv)
	c.register("alice", "pw")
	c.login("alice", "pw")

	status, _, header := c.get("/logout")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", header.Get("Location"))

	status, body, _ := c.get("/login")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "You have been logged out.")

	status, _, _ = c.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, status)

	// logging out again is harmless
	status, _, header = c.get("/logout")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", header.Get("Location"))
}

func TestPrefix(t *testing.T) {
	var srv = newTestServer(t, "/notes")
	var c = newClient(t, srv)

	status, _, header := c.get("/notes/dashboard")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/notes/login", header.Get("Location"))

	status, body, _ := c.get("/notes/login")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<base href="/notes/">`)

	status, _, _ = c.get("/login")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRenderNote(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains []string
		excludes []string
	}{
		{
			name:     "paragraph",
			content:  "hello *world*",
			contains: []string{"<p>hello <em>world</em></p>"},
		},
		{
			name:     "link opens in new tab",
			content:  "[docs](https://example.org)",
			contains: []string{`href="https://example.org"`, `target="_blank"`, `rel="noopener noreferrer"`},
		},
		{
			name:     "command line flags are kept",
			content:  "run docker run --rm -it ubuntu",
			contains: []string{"<p>run docker run --rm -it ubuntu</p>"},
		},
		{
			name:     "no typographic replacements",
			content:  `(c) 2024 "quoted" ...`,
			contains: []string{"(c) 2024", "&#34;quoted&#34;", "..."},
			excludes: []string{"©", "“", "…"},
		},
		{
			name:     "single line breaks are kept",
			content:  "line one\nline two",
			contains: []string{"line one<br/>", "line two"},
		},
		{
			name:     "raw html is escaped",
			content:  "<script>alert(1)</script>",
			contains: []string{"&lt;script&gt;"},
			excludes: []string{"<script>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderNote(tt.content)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, string(got), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, string(got), s)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, check(loginForm{Username: "alice", Password: "pw"}))

	err := check(loginForm{Username: "alice"})
	assert.EqualError(t, err, "password is required")
	assert.True(t, isFormError(err))

	err = check(registerForm{Username: strings.Repeat("a", 101), Password: "pw"})
	assert.EqualError(t, err, "username is too long, the maximum is 100 characters")

	assert.NoError(t, check(noteForm{}))
	assert.False(t, isFormError(core.ErrEmptyContent))
}
