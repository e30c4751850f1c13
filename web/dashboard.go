package web

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/coursenotes/core"
)

var dashboardTmpl = tmpl(`
	<h1>Lectures</h1>
	{{ if .Lectures }}
		<ul>
			{{ range .Lectures }}
				<li>
					<a href="lecture/{{ .ID }}">{{ .Title }}</a>
					{{ with index $.Counts .ID }}({{ . }} {{ if eq . 1 }}note{{ else }}notes{{ end }}){{ end }}
				</li>
			{{ end }}
		</ul>
	{{ else }}
		<p>There are no lectures yet.</p>
	{{ end }}`)

func dashboard(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	lectures, err := ctx.db.Lectures(req.Context())
	if err != nil {
		return err
	}

	counts, err := ctx.db.NoteCounts(req.Context(), ctx.User.ID)
	if err != nil {
		return err
	}

	return render(w, dashboardTmpl, struct {
		*context
		Lectures []*core.Lecture
		Counts   map[int64]int
	}{
		context:  ctx,
		Lectures: lectures,
		Counts:   counts,
	})
}
