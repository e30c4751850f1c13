package web

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/coursenotes/core"
)

func register(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if ctx.LoggedIn() {
		ctx.SeeOther("/dashboard")
		return nil
	}

	form, err := parseRegisterForm(req)
	if err == nil {
		_, err = ctx.db.Register(req.Context(), form.Username, form.Password)
	}
	switch {
	case err == nil:
		ctx.Success("Your account has been created. Please log in.")
	case errors.Is(err, core.ErrDuplicateUsername),
		errors.Is(err, core.ErrEmptyPassword),
		errors.Is(err, core.ErrPasswordTooLong),
		isFormError(err):
		ctx.Danger(err)
	default:
		return err
	}

	ctx.SeeOther("/login")
	return nil
}
