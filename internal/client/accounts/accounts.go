// Package accounts is the registry of known accounts and the single
// active-account pointer.
//
// The functions taking a *storage.Document let callers compose several
// registry changes with other writes inside one storage Update. Registry
// wraps the same operations, one Update or View per call.
package accounts

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storagekey"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/tokens"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
)

// Account is one identity known to this client.
type Account struct {
	ID            string `json:"-"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Name          string `json:"name,omitempty"`
}

// record is the raw form of one registry entry. Fields written by the peer
// that Account does not know are carried through updates.
type record map[string]json.RawMessage

func loadRegistry(doc *storage.Document) (map[string]record, error) {
	reg := make(map[string]record)
	if _, err := doc.Get(storagekey.Global(storagekey.Accounts), &reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func saveRegistry(doc *storage.Document, reg map[string]record) error {
	return doc.Set(storagekey.Global(storagekey.Accounts), reg)
}

func (r record) decode(id string) (Account, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return Account{}, err
	}
	var a Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return Account{}, fmt.Errorf("decode account %s: %w", id, err)
	}
	a.ID = id
	return a, nil
}

func (r record) merge(a Account) (record, error) {
	known, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}

	out := make(record, len(r)+len(fields))
	for k, v := range r {
		out[k] = v
	}
	if a.Name == "" {
		delete(out, "name")
	}
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

// ActiveAccountID returns the active account id; ok is false when logged out.
func ActiveAccountID(doc *storage.Document) (id string, ok bool, err error) {
	ok, err = doc.Get(storagekey.Global(storagekey.ActiveAccountID), &id)
	if err != nil {
		return "", false, err
	}
	return id, ok && id != "", nil
}

// SetActiveAccountID points the active account at id, which must already be
// registered. Other accounts are not touched.
func SetActiveAccountID(doc *storage.Document, id string) error {
	reg, err := loadRegistry(doc)
	if err != nil {
		return err
	}
	if _, ok := reg[id]; !ok {
		return fmt.Errorf("%w: %s", common.ErrAccountNotFound, id)
	}
	return doc.Set(storagekey.Global(storagekey.ActiveAccountID), id)
}

// ClearActiveAccount sets the active pointer to null. Account records stay.
func ClearActiveAccount(doc *storage.Document) {
	doc.SetNull(storagekey.Global(storagekey.ActiveAccountID))
}

// Register inserts a or updates the existing record with the same id.
func Register(doc *storage.Document, a Account) error {
	if a.ID == "" {
		return fmt.Errorf("register account: empty id")
	}
	reg, err := loadRegistry(doc)
	if err != nil {
		return err
	}
	merged, err := reg[a.ID].merge(a)
	if err != nil {
		return fmt.Errorf("register account %s: %w", a.ID, err)
	}
	reg[a.ID] = merged
	return saveRegistry(doc, reg)
}

// Get returns the account with id or common.ErrAccountNotFound.
func Get(doc *storage.Document, id string) (Account, error) {
	reg, err := loadRegistry(doc)
	if err != nil {
		return Account{}, err
	}
	r, ok := reg[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", common.ErrAccountNotFound, id)
	}
	return r.decode(id)
}

// List returns all registered accounts ordered by id.
func List(doc *storage.Document) ([]Account, error) {
	reg, err := loadRegistry(doc)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(reg))
	for id := range reg {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Account, 0, len(ids))
	for _, id := range ids {
		a, err := reg[id].decode(id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Remove drops the registry record for id and nulls its session-bound
// entries. If id was active the pointer is cleared. It reports whether the
// account existed.
func Remove(doc *storage.Document, id string) (bool, error) {
	reg, err := loadRegistry(doc)
	if err != nil {
		return false, err
	}
	if _, ok := reg[id]; !ok {
		return false, nil
	}
	delete(reg, id)
	if err := saveRegistry(doc, reg); err != nil {
		return false, err
	}

	tokens.Clear(doc, id)
	doc.SetNull(storagekey.ForAccount(storagekey.ProtectedVaultKey, id))

	active, ok, err := ActiveAccountID(doc)
	if err != nil {
		return false, err
	}
	if ok && active == id {
		ClearActiveAccount(doc)
	}
	return true, nil
}

// IsLoggedIn is true iff there is an active account and its access token
// entry is non-null.
func IsLoggedIn(doc *storage.Document) (bool, error) {
	id, ok, err := ActiveAccountID(doc)
	if err != nil || !ok {
		return false, err
	}
	_, ok, err = tokens.AccessToken(doc, id)
	return ok, err
}
