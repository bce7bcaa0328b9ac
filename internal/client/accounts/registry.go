package accounts

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
)

// Registry runs each account operation as its own read or
// read-modify-write against the store.
type Registry struct {
	store storage.Store
}

func NewRegistry(store storage.Store) *Registry {
	return &Registry{store: store}
}

func (r *Registry) GetActiveAccountID(ctx context.Context) (id string, ok bool, err error) {
	err = r.store.View(ctx, func(doc *storage.Document) error {
		id, ok, err = ActiveAccountID(doc)
		return err
	})
	return id, ok, err
}

func (r *Registry) SetActiveAccountID(ctx context.Context, id string) error {
	return r.store.Update(ctx, func(doc *storage.Document) error {
		return SetActiveAccountID(doc, id)
	})
}

func (r *Registry) ClearActiveAccount(ctx context.Context) error {
	return r.store.Update(ctx, func(doc *storage.Document) error {
		ClearActiveAccount(doc)
		return nil
	})
}

// RegisterAccount inserts or updates id with email, keeping any other
// fields already on record.
func (r *Registry) RegisterAccount(ctx context.Context, id, email string) error {
	return r.store.Update(ctx, func(doc *storage.Document) error {
		a, err := Get(doc, id)
		if errors.Is(err, common.ErrAccountNotFound) {
			a = Account{ID: id}
		} else if err != nil {
			return err
		}
		a.Email = email
		return Register(doc, a)
	})
}

// Save inserts or replaces the known fields of a.
func (r *Registry) Save(ctx context.Context, a Account) error {
	return r.store.Update(ctx, func(doc *storage.Document) error {
		return Register(doc, a)
	})
}

func (r *Registry) GetAccount(ctx context.Context, id string) (a Account, err error) {
	err = r.store.View(ctx, func(doc *storage.Document) error {
		a, err = Get(doc, id)
		return err
	})
	return a, err
}

func (r *Registry) ListAccounts(ctx context.Context) (list []Account, err error) {
	err = r.store.View(ctx, func(doc *storage.Document) error {
		list, err = List(doc)
		return err
	})
	return list, err
}

func (r *Registry) RemoveAccount(ctx context.Context, id string) (removed bool, err error) {
	err = r.store.Update(ctx, func(doc *storage.Document) error {
		removed, err = Remove(doc, id)
		return err
	})
	return removed, err
}

func (r *Registry) IsLoggedIn(ctx context.Context) (loggedIn bool, err error) {
	err = r.store.View(ctx, func(doc *storage.Document) error {
		loggedIn, err = IsLoggedIn(doc)
		return err
	})
	return loggedIn, err
}
