package core

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID   int64
	Name string // case-sensitive
}

type UserDB interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	// GetCredentials returns the user and the stored password hash. It returns ErrNotFound if no user has the given name.
	GetCredentials(ctx context.Context, name string) (*User, []byte, error)
	// InsertUser returns ErrDuplicateUsername if the name is taken.
	InsertUser(ctx context.Context, name string, hash []byte) (*User, error)
}

// Register creates a user with a bcrypt hash of the password.
func (c *CoreDB) Register(ctx context.Context, name, password string) (*User, error) {

	if password == "" {
		return nil, ErrEmptyPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong // bcrypt limit
	}

	_, _, err := c.UserDB.GetCredentials(ctx, name)
	switch {
	case err == nil:
		return nil, ErrDuplicateUsername
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.bcryptCost())
	if err != nil {
		return nil, err
	}

	// a concurrent registration of the same name is caught by the unique constraint
	return c.UserDB.InsertUser(ctx, name, hash)
}

// Authenticate returns ErrInvalidCredentials if the user does not exist or the password is wrong.
func (c *CoreDB) Authenticate(ctx context.Context, name, password string) (*User, error) {

	u, hash, err := c.UserDB.GetCredentials(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials // user not found
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials // wrong password
	}

	return u, nil
}
