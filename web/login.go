package web

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/coursenotes/core"
)

var loginTmpl = tmpl(`
	<h1>Login or Register to Course Notes</h1>

	<h2>Login</h2>
	<form method="post" action="login">
		<p>
			<label for="login-username">Username</label>
			<input type="text" id="login-username" name="username" autocomplete="username" required autofocus>
		</p>
		<p>
			<label for="login-password">Password</label>
			<input type="password" id="login-password" name="password" autocomplete="current-password" required>
		</p>
		<button type="submit">Login</button>
	</form>

	<h2>Register</h2>
	<form method="post" action="register">
		<p>
			<label for="register-username">Username</label>
			<input type="text" id="register-username" name="username" autocomplete="username" required>
		</p>
		<p>
			<label for="register-password">Password</label>
			<input type="password" id="register-password" name="password" autocomplete="new-password" required>
		</p>
		<button type="submit">Register</button>
	</form>`)

func login(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if ctx.LoggedIn() {
		ctx.SeeOther("/dashboard")
		return nil
	}

	if req.Method == http.MethodPost {
		form, err := parseLoginForm(req)
		if err == nil {
			err = ctx.Login(form.Username, form.Password)
		}
		switch {
		case err == nil:
			ctx.Success("Welcome, %s!", ctx.User.Name)
			ctx.SeeOther("/dashboard")
		case errors.Is(err, core.ErrInvalidCredentials), isFormError(err):
			ctx.Danger(err)
			ctx.SeeOther("/login")
		default:
			return err
		}
		return nil
	}

	return render(w, loginTmpl, ctx)
}
