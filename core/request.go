package core

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

const sessionUserKey = "uid"

type Notification struct {
	Message string
	Style   string
}

func init() {
	gob.Register([]Notification{}) // required for storing Notifications in a session
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish, // default
	language.German,
})

var monthNamesDe = strings.NewReplacer(
	"January", "Januar",
	"February", "Februar",
	"March", "März",
	"May", "Mai",
	"June", "Juni",
	"July", "Juli",
	"October", "Oktober",
	"December", "Dezember",
)

// A Request is created by CoreDB.NewRequest. It carries the authenticated user, if any.
type Request struct {
	db   *CoreDB // unexported, so it can't be accessed in templates
	User *User   // nil if not logged in

	// http
	writer  http.ResponseWriter
	request *http.Request

	statusWritten bool

	language language.Tag
}

// NewRequest creates a Request with the given http.ResponseWriter and http.Request.
// If a user is logged in, it sets Request.User.
func (c *CoreDB) NewRequest(w http.ResponseWriter, httpreq *http.Request) *Request {

	var req = &Request{
		db:      c,
		writer:  w,
		request: httpreq,
	}

	req.language, _ = language.MatchStrings(langMatcher, httpreq.Header.Get("Accept-Language"))

	if uid := c.SessionManager.GetInt(httpreq.Context(), sessionUserKey); uid != 0 {
		u, err := c.UserDB.GetUser(httpreq.Context(), int64(uid))
		if err == nil {
			req.User = u
		} else {
			zerolog.Ctx(httpreq.Context()).Warn().Err(err).Int("uid", uid).Msg("session user not loaded")
		}
	}

	return req
}

// Danger adds a "danger" notification to the session.
func (req *Request) Danger(err error) {
	req.addNotification(err.Error(), "danger")
}

// Success adds a "success" notification to the session.
func (req *Request) Success(format string, args ...interface{}) {
	req.addNotification(fmt.Sprintf(format, args...), "success")
}

// style should be a bootstrap alert style without the leading "alert-"
func (req *Request) addNotification(message, style string) {
	notifications, _ := req.db.SessionManager.Get(req.request.Context(), "notifications").([]Notification)
	notifications = append(notifications, Notification{message, style})
	req.db.SessionManager.Put(req.request.Context(), "notifications", notifications)
}

// Notifications removes all notifications from the session and returns them.
// If the HTTP status had already been written, it does nothing.
func (req *Request) Notifications() []Notification {
	if req.statusWritten {
		return nil
	}
	notifications, _ := req.db.SessionManager.Pop(req.request.Context(), "notifications").([]Notification)
	return notifications
}

// Cleanup destroys the session (which means re-setting the cookie with zero lifetime) if the session has been modified and is empty now.
func (req *Request) Cleanup() {
	sessMan := req.db.SessionManager
	if sessMan.Status(req.request.Context()) == scs.Modified && len(sessMan.Keys(req.request.Context())) == 0 {
		_ = sessMan.Destroy(req.request.Context())
	}
}

// SeeOther sets the HTTP header to redirect to an URL.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if req.statusWritten {
		return
	}
	var url = fmt.Sprintf(format, args...)
	http.Redirect(req.writer, req.request, url, http.StatusSeeOther)
	req.statusWritten = true
}

// NotFound writes a 404 response.
func (req *Request) NotFound() {
	if req.statusWritten {
		return
	}
	http.NotFound(req.writer, req.request)
	req.statusWritten = true
}

// StatusWritten returns whether a redirect or error status has been written.
func (req *Request) StatusWritten() bool {
	return req.statusWritten
}

// Login authenticates a user. On success, the session token is renewed and the user id is stored in the session.
func (req *Request) Login(name, password string) error {
	if req.LoggedIn() {
		return nil
	}
	u, err := req.db.Authenticate(req.request.Context(), name, password)
	if err != nil {
		return err // is ErrInvalidCredentials if name or password is wrong
	}
	if err := req.db.SessionManager.RenewToken(req.request.Context()); err != nil {
		return err
	}
	req.User = u
	req.db.SessionManager.Put(req.request.Context(), sessionUserKey, int(u.ID))
	return nil
}

func (req *Request) LoggedIn() bool {
	return req.User != nil
}

// Logout renews the session token and removes the user id from the session.
// It does nothing if no user is logged in.
func (req *Request) Logout() error {
	if !req.LoggedIn() {
		return nil
	}
	if err := req.db.SessionManager.RenewToken(req.request.Context()); err != nil {
		return err
	}
	req.db.SessionManager.Remove(req.request.Context(), sessionUserKey)
	req.User = nil
	return nil
}

func (req *Request) FormatDateTime(t time.Time) string {
	b, _ := req.language.Base()
	switch b.String() {
	case "de":
		return monthNamesDe.Replace(t.Format("2. January 2006 15:04 Uhr"))
	default:
		return t.Format("January 2, 2006 3:04 PM")
	}
}
