package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type loginForm struct {
	Username string `validate:"required,notblank,max=100"`
	Password string `validate:"required"`
}

type registerForm struct {
	Username string `validate:"required,notblank,max=100"`
	Password string `validate:"required,max=72"`
}

// Content is checked for blankness by core.CreateNote.
type noteForm struct {
	Content string `validate:"max=10000"`
}

func parseLoginForm(req *http.Request) (loginForm, error) {
	var form = loginForm{
		Username: req.PostFormValue("username"), // exact, not trimmed
		Password: req.PostFormValue("password"),
	}
	return form, check(form)
}

func parseRegisterForm(req *http.Request) (registerForm, error) {
	var form = registerForm{
		Username: req.PostFormValue("username"), // exact, not trimmed
		Password: req.PostFormValue("password"),
	}
	return form, check(form)
}

func parseNoteForm(req *http.Request) (noteForm, error) {
	var form = noteForm{
		Content: req.PostFormValue("note_content"),
	}
	return form, check(form)
}

// formError is shown to the user.
type formError string

func (e formError) Error() string {
	return string(e)
}

func isFormError(err error) bool {
	var fe formError
	return errors.As(err, &fe)
}

// check validates a form and translates the first validation error into a message for the user.
func check(form interface{}) error {

	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	var fe = fieldErrs[0]
	var field = strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return formError(fmt.Sprintf("%s is required", field))
	case "max":
		return formError(fmt.Sprintf("%s is too long, the maximum is %s characters", field, fe.Param()))
	default:
		return formError(fmt.Sprintf("%s is invalid", field))
	}
}
