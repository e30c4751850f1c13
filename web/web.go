package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/wansing/coursenotes/core"
	"github.com/wansing/coursenotes/util"
)

// context is passed to every handler. It carries the authenticated user, if any.
type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

type handle func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error

func middleware(db *core.CoreDB, prefix string, requireLoggedIn bool, f handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			Request: db.NewRequest(w, req),
			Prefix:  prefix + "/",
			db:      db,
		}
		defer ctx.Cleanup()

		if requireLoggedIn && !ctx.LoggedIn() {
			ctx.SeeOther("/login")
			return
		}

		err := f(w, req, ctx, params)
		switch {
		case err == nil:
		case errors.Is(err, core.ErrNotFound):
			ctx.NotFound()
		default:
			hlog.FromRequest(req).Error().Err(err).Msg("handling request")
			if !ctx.StatusWritten() {
				w.WriteHeader(http.StatusInternalServerError)
				errorTmpl.Execute(w, ctx) // probably no template has been executed
			}
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		Internal server error. Please try again later.
	</div>`)

// NewRouter returns the routes without session handling, see Handler.
func NewRouter(db *core.CoreDB, prefix string) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	GETAndPOST("/login", middleware(db, prefix, false, login))
	router.POST("/register", middleware(db, prefix, false, register))

	// private
	router.GET("/", middleware(db, prefix, true, dashboard))
	router.GET("/dashboard", middleware(db, prefix, true, dashboard))
	GETAndPOST("/lecture/:id", middleware(db, prefix, true, lecture))
	router.GET("/logout", middleware(db, prefix, true, logout))

	return router
}

// Handler wraps NewRouter with session loading and saving, prefix stripping, a request id and access logging.
func Handler(db *core.CoreDB, prefix string, logger zerolog.Logger) http.Handler {
	var h = NewRouter(db, prefix)
	h = db.SessionManager.LoadAndSave(h)
	h = util.StripPrefix(prefix, h)
	h = hlog.AccessHandler(accessLog)(h)
	h = requestID(h)
	h = hlog.NewHandler(logger)(h)
	return h
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// requestID requires a logger in the request context, see hlog.NewHandler.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id = uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}

// render executes the template into a buffer first, so a failing template does not produce half a page.
func render(w http.ResponseWriter, t *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

func tmpl(text string) *template.Template {
	t := template.Must(layoutTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
	<head>
		<base href="{{ .Prefix }}">
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<title>Course Notes</title>
		<style>

			body {
				font-family: system-ui, sans-serif;
				margin: 0;
			}

			nav {
				background-color: #f4f5f6;
				padding: 0.5rem 1rem;
			}

			nav a {
				margin-right: 1rem;
			}

			main {
				max-width: 50rem;
				margin: auto;
				padding: 1rem;
			}

			.alert {
				border: 1px solid transparent;
				border-radius: .25rem;
				margin-bottom: 1rem;
				padding: .75rem 1.25rem;
			}

			.alert-danger {
				background-color: #f8d7da;
				color: #721c24;
			}

			.alert-success {
				background-color: #d4edda;
				color: #155724;
			}

			.note {
				border-bottom: 1px solid #dee2e6;
				padding: 0.5rem 0;
			}

			.note time {
				color: #6c757d;
				font-size: small;
			}

			textarea {
				width: 100%;
				min-height: 6rem;
			}

		</style>
	</head>
	<body>

		{{ if .LoggedIn }}
			<nav>
				<a href="dashboard">Lectures</a>
				<span>{{ .User.Name }}</span>
				<a href="logout">Logout</a>
			</nav>
		{{ end }}

		<main>
			{{ range .Notifications }}
				<div class="alert alert-{{ .Style }}" role="alert">{{ .Message }}</div>
			{{ end }}
			{{ template "content" . }}
		</main>

	</body>
</html>`))
