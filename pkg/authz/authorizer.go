package authz

import (
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// Authorizer answers permission questions through the auth lookup cache
type Authorizer struct {
	store Store
}

// NewAuthorizer creates an Authorizer backed by store
func NewAuthorizer(store Store) *Authorizer {
	return &Authorizer{store: store}
}

func userID(user *model.User) uint {
	if user == nil {
		return 0
	}
	return user.ID
}

// Authorize reports whether user (nil for anonymous) may perform action on
// the item. A missing cache row is computed and stored.
func (a *Authorizer) Authorize(user *model.User, itemType string, itemID uint, action Action) (bool, error) {
	lookup, err := a.lookup(userID(user), itemType, itemID)
	if err != nil {
		return false, err
	}
	return Allows(lookup, action), nil
}

// Permissions returns the full cached decision row for user on the item
func (a *Authorizer) Permissions(user *model.User, itemType string, itemID uint) (*model.AuthLookup, error) {
	return a.lookup(userID(user), itemType, itemID)
}

func (a *Authorizer) lookup(uid uint, itemType string, itemID uint) (*model.AuthLookup, error) {
	lookup, err := a.store.Lookup(uid, itemType, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth lookup: %w", err)
	}
	if lookup != nil {
		return lookup, nil
	}

	subject, err := a.store.Subject(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", uid, err)
	}
	target, err := a.store.Target(itemType, itemID)
	if err != nil {
		return nil, err
	}
	computed := NewLookup(subject, *target)
	if err := a.store.SaveLookups([]model.AuthLookup{computed}); err != nil {
		// the decision is still valid, only the cache write failed
		logging.Log.WithError(err).WithFields(logging.Fields{
			"user_id": uid, "item_type": itemType, "item_id": itemID,
		}).Warn("failed to store auth lookup")
	}
	return &computed, nil
}

// FilterViewable keeps the items user may view. Items that are not policy
// controlled (people, projects, programmes, ...) are always viewable, items
// whose rows have gone are dropped.
func (a *Authorizer) FilterViewable(user *model.User, items []model.Item) ([]model.Item, error) {
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, ok := item.(model.Authorizable); !ok {
			out = append(out, item)
			continue
		}
		ok, err := a.Authorize(user, item.ItemType(), item.ItemID(), ActionView)
		if errors.Is(err, ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// Invalidate drops the cached decisions on an item so they are recomputed
// on the next read
func (a *Authorizer) Invalidate(itemType string, itemID uint) error {
	return a.store.DeleteItemLookups(itemType, itemID)
}

// RebuildItem recomputes the decisions on one item for anonymous and for
// every user
func (a *Authorizer) RebuildItem(itemType string, itemID uint) error {
	userIDs, err := a.store.UserIDs()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	return a.store.Transaction(func(tx Store) error {
		return rebuildItem(tx, itemType, itemID, userIDs)
	})
}

func rebuildItem(tx Store, itemType string, itemID uint, userIDs []uint) error {
	if err := tx.DeleteItemLookups(itemType, itemID); err != nil {
		return err
	}
	target, err := tx.Target(itemType, itemID)
	if errors.Is(err, ErrItemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	lookups := make([]model.AuthLookup, 0, len(userIDs)+1)
	lookups = append(lookups, NewLookup(Anonymous, *target))
	for _, uid := range userIDs {
		subject, err := tx.Subject(uid)
		if err != nil {
			return err
		}
		lookups = append(lookups, NewLookup(subject, *target))
	}
	return tx.SaveLookups(lookups)
}

// RebuildAll recomputes every decision for the given item types. It
// returns the number of items processed.
func (a *Authorizer) RebuildAll(itemTypes []string) (int, error) {
	userIDs, err := a.store.UserIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	count := 0
	for _, itemType := range itemTypes {
		ids, err := a.store.ItemIDs(itemType)
		if err != nil {
			return count, fmt.Errorf("failed to list %s: %w", itemType, err)
		}
		for _, id := range ids {
			err := a.store.Transaction(func(tx Store) error {
				return rebuildItem(tx, itemType, id, userIDs)
			})
			if err != nil {
				return count, fmt.Errorf("failed to rebuild %s %d: %w", itemType, id, err)
			}
			count++
		}
	}
	return count, nil
}

// ProcessQueue works through up to limit entries of the auth lookup update
// queue. Queued assets are rebuilt eagerly. Queued people have their users'
// rows dropped and rebuilt lazily on read. Each entry is processed and
// removed in its own transaction; an entry that fails stays queued for the
// next run and the rest are still processed. It returns the number of
// entries processed and the joined failures.
func (a *Authorizer) ProcessQueue(limit int) (int, error) {
	var (
		failed    []uint
		errs      []error
		processed int
	)
	for processed+len(failed) < limit {
		var entry *model.AuthLookupUpdateQueue
		err := a.store.Transaction(func(tx Store) error {
			var err error
			entry, err = tx.NextQueued(failed)
			if err != nil || entry == nil {
				return err
			}
			if err := processEntry(tx, *entry); err != nil {
				return err
			}
			return tx.DeleteQueued(entry.ID)
		})
		if entry == nil {
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to read auth lookup queue: %w", err))
			}
			break
		}
		if err != nil {
			failed = append(failed, entry.ID)
			errs = append(errs, fmt.Errorf("failed to process %s %d: %w", entry.ItemType, entry.ItemID, err))
			continue
		}
		processed++
	}
	return processed, errors.Join(errs...)
}

func processEntry(tx Store, entry model.AuthLookupUpdateQueue) error {
	switch entry.ItemType {
	case "Person":
		userIDs, err := tx.UserIDsForPerson(entry.ItemID)
		if err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		return tx.DeleteUserLookups(userIDs)
	case "User":
		return tx.DeleteUserLookups([]uint{entry.ItemID})
	default:
		userIDs, err := tx.UserIDs()
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		return rebuildItem(tx, entry.ItemType, entry.ItemID, userIDs)
	}
}
