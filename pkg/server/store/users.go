package store

import "github.com/doodlesbykumbi/seek-in-go/pkg/model"

// UsersStore reads and writes login accounts
type UsersStore interface {
	// UserByID returns ErrNotFound for unknown ids
	UserByID(id uint) (*model.User, error)

	// UserByLogin matches the login or the email address.
	// Returns ErrNotFound when neither matches.
	UserByLogin(login string) (*model.User, error)

	// CreateUser saves an account, and its profile when person is not nil
	CreateUser(user *model.User, person *model.Person) error
}
