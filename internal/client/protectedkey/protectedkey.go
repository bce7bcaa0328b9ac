// Package protectedkey keeps an account's vault key at rest, wrapped under
// the account's current session key.
//
// The entry is overwritten at every login and unlock and set to null at
// lock and logout. It is never removed from the document: an absent entry
// and a null one are different states for the peer client.
package protectedkey

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/session"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storagekey"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
)

// KeyWrapper is the part of the crypto provider used here.
type KeyWrapper interface {
	EncryptKey(key, wrappingKey cryptox.SymmetricKey) ([]byte, error)
	DecryptKey(ciphertext []byte, wrappingKey cryptox.SymmetricKey) (cryptox.SymmetricKey, error)
}

func entryKey(accountID string) string {
	return storagekey.ForAccount(storagekey.ProtectedVaultKey, accountID)
}

// Put wraps vaultKey under sessionKey and writes it for accountID.
func Put(doc *storage.Document, w KeyWrapper, accountID string, vaultKey cryptox.SymmetricKey, sessionKey session.Key) error {
	if sessionKey.IsZero() {
		return fmt.Errorf("protect vault key: %w", cryptox.ErrInvalidKey)
	}
	ct, err := w.EncryptKey(vaultKey, sessionKey.Symmetric())
	if err != nil {
		return fmt.Errorf("protect vault key: %w", err)
	}
	return doc.Set(entryKey(accountID), base64.StdEncoding.EncodeToString(ct))
}

// Fetch unwraps the vault key of accountID. An absent or null entry yields
// common.ErrNotFound; any decoding or authentication failure yields
// common.ErrDecryptionFailed.
func Fetch(doc *storage.Document, w KeyWrapper, accountID string, sessionKey session.Key) (cryptox.SymmetricKey, error) {
	var encoded string
	found, err := doc.Get(entryKey(accountID), &encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryptionFailed, err)
	}
	if !found || encoded == "" {
		return nil, common.ErrNotFound
	}

	ct, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}

	key, err := w.DecryptKey(ct, sessionKey.Symmetric())
	if err != nil {
		if errors.Is(err, cryptox.ErrDecrypt) || errors.Is(err, cryptox.ErrInvalidKey) {
			return nil, common.ErrDecryptionFailed
		}
		return nil, fmt.Errorf("%w: %w", common.ErrDecryptionFailed, err)
	}
	return key, nil
}

// Clear sets the entry to null.
func Clear(doc *storage.Document, accountID string) {
	doc.SetNull(entryKey(accountID))
}

// Store is the store-bound form of Put, Fetch and Clear.
type Store struct {
	wrapper KeyWrapper
	store   storage.Store
}

func NewStore(wrapper KeyWrapper, store storage.Store) *Store {
	return &Store{wrapper: wrapper, store: store}
}

func (s *Store) Store(ctx context.Context, accountID string, vaultKey cryptox.SymmetricKey, sessionKey session.Key) error {
	return s.store.Update(ctx, func(doc *storage.Document) error {
		return Put(doc, s.wrapper, accountID, vaultKey, sessionKey)
	})
}

func (s *Store) Retrieve(ctx context.Context, accountID string, sessionKey session.Key) (key cryptox.SymmetricKey, err error) {
	err = s.store.View(ctx, func(doc *storage.Document) error {
		key, err = Fetch(doc, s.wrapper, accountID, sessionKey)
		return err
	})
	return key, err
}

func (s *Store) Clear(ctx context.Context, accountID string) error {
	return s.store.Update(ctx, func(doc *storage.Document) error {
		Clear(doc, accountID)
		return nil
	})
}
