package authz

import (
	"errors"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// ErrItemNotFound is returned when the item being authorized does not exist
var ErrItemNotFound = errors.New("item not found")

// Store abstracts the reads and writes the authorizer needs.
type Store interface {
	// Transaction wraps operations in a database transaction.
	Transaction(fn func(Store) error) error

	// Subject resolves a user and their current groups. Unknown users and
	// user 0 resolve to Anonymous.
	Subject(userID uint) (Subject, error)

	// Target loads an item's contributor, creators and policy.
	// Returns ErrItemNotFound when the row is gone.
	Target(itemType string, itemID uint) (*Target, error)

	// Lookup returns the cached decision, or nil when there is none.
	Lookup(userID uint, itemType string, itemID uint) (*model.AuthLookup, error)

	// SaveLookups inserts or replaces cached decisions.
	SaveLookups(lookups []model.AuthLookup) error

	// DeleteItemLookups drops every cached decision on an item.
	DeleteItemLookups(itemType string, itemID uint) error

	// DeleteUserLookups drops every cached decision of the given users.
	DeleteUserLookups(userIDs []uint) error

	// UserIDs lists every user.
	UserIDs() ([]uint, error)

	// UserIDsForPerson lists the accounts linked to a person.
	UserIDsForPerson(personID uint) ([]uint, error)

	// ItemIDs lists the ids of every item of a type.
	ItemIDs(itemType string) ([]uint, error)

	// NextQueued locks the highest priority queued item whose entry id is
	// not in skip. Returns nil when the queue has nothing left to hand out.
	NextQueued(skip []uint) (*model.AuthLookupUpdateQueue, error)

	// DeleteQueued removes a processed queue entry.
	DeleteQueued(entryID uint) error
}
