package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyContent       = errors.New("note content can't be empty")
	ErrEmptyPassword      = errors.New("refusing to set empty password")
	ErrPasswordTooLong    = errors.New("password must not be longer than 72 bytes")
)

// ErrLectureNotFound is returned by CreateNote. errors.Is(ErrLectureNotFound, ErrNotFound) is true.
var ErrLectureNotFound = fmt.Errorf("lecture %w", ErrNotFound)
