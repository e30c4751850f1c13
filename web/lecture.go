package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/coursenotes/core"
)

var lectureTmpl = tmpl(`
	<h1>{{ .Lecture.Title }}</h1>

	<iframe width="560" height="315" src="{{ .Lecture.VideoURL }}" title="{{ .Lecture.Title }}" allowfullscreen></iframe>

	<h2>Add a note</h2>
	<form method="post" action="lecture/{{ .Lecture.ID }}">
		<p>
			<textarea name="note_content" required></textarea>
		</p>
		<button type="submit">Save</button>
	</form>

	<h2>Your notes</h2>
	{{ range .Notes }}
		<div class="note">
			<time datetime="{{ .Created.UTC.Format "2006-01-02T15:04:05Z07:00" }}">{{ $.FormatDateTime .Created }}</time>
			{{ .HTML }}
		</div>
	{{ else }}
		<p>You have no notes for this lecture yet.</p>
	{{ end }}`)

type noteView struct {
	*core.Note
	HTML template.HTML
}

func lecture(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil {
		return core.ErrNotFound
	}

	l, err := ctx.db.Lecture(req.Context(), id)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {
		form, err := parseNoteForm(req)
		if err == nil {
			_, err = ctx.db.CreateNote(req.Context(), ctx.User.ID, l.ID, form.Content)
		}
		switch {
		case err == nil:
			ctx.Success("Your note has been saved.")
		case errors.Is(err, core.ErrEmptyContent), isFormError(err):
			ctx.Danger(err)
		default:
			return err
		}
		ctx.SeeOther("/lecture/%d", l.ID)
		return nil
	}

	notes, err := ctx.db.Notes(req.Context(), ctx.User.ID, l.ID)
	if err != nil {
		return err
	}

	var views = make([]noteView, len(notes))
	for i, n := range notes {
		views[i].Note = n
		views[i].HTML, err = renderNote(n.Content)
		if err != nil {
			return err
		}
	}

	return render(w, lectureTmpl, struct {
		*context
		Lecture *core.Lecture
		Notes   []noteView
	}{
		context: ctx,
		Lecture: l,
		Notes:   views,
	})
}
