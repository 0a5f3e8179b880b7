package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

func (s *UsersStore) UserByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UsersStore) UserByLogin(login string) (*model.User, error) {
	var user model.User
	err := s.db.Where("login = ? OR email = ?", login, login).Order("id").Take(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UsersStore) CreateUser(user *model.User, person *model.Person) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if person != nil {
			if err := tx.Create(person).Error; err != nil {
				return err
			}
			user.PersonID = &person.ID
		}
		return tx.Create(user).Error
	})
}

// notFound maps gorm's missing row error to store.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
