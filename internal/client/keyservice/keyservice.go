// Package keyservice reconstructs the active account's vault key from the
// session key string the caller carries between invocations.
package keyservice

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/accounts"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/protectedkey"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/session"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
)

// Service is stateless: every call decodes its input and re-reads the
// document.
type Service struct {
	store    storage.Store
	sessions *session.Manager
	wrapper  protectedkey.KeyWrapper
}

func New(store storage.Store, sessions *session.Manager, wrapper protectedkey.KeyWrapper) *Service {
	return &Service{store: store, sessions: sessions, wrapper: wrapper}
}

// GetVaultKey returns the vault key of the active account.
//
// Errors:
//   - common.ErrInvalidSessionFormat: sessionKey is not a well-formed key
//   - common.ErrNoActiveAccount: nobody is logged in
//   - common.ErrNotUnlocked: the account is locked (no protected key on record)
//   - common.ErrDecryptionFailed: wrong or expired session key
func (s *Service) GetVaultKey(ctx context.Context, sessionKey string) (cryptox.SymmetricKey, error) {
	sk, err := s.sessions.Decode(sessionKey)
	if err != nil {
		return nil, err
	}
	defer sk.Wipe()

	var vaultKey cryptox.SymmetricKey
	err = s.store.View(ctx, func(doc *storage.Document) error {
		id, ok, err := accounts.ActiveAccountID(doc)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrNoActiveAccount
		}

		vaultKey, err = protectedkey.Fetch(doc, s.wrapper, id, sk)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotUnlocked
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return vaultKey, nil
}

// ActiveAccount returns the account the next command operates against.
func (s *Service) ActiveAccount(ctx context.Context) (acct accounts.Account, err error) {
	err = s.store.View(ctx, func(doc *storage.Document) error {
		id, ok, err := accounts.ActiveAccountID(doc)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrNoActiveAccount
		}
		acct, err = accounts.Get(doc, id)
		return err
	})
	return acct, err
}
