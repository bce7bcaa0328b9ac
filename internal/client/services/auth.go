// Package services contains application services for the GophKeeper client.
// This file defines the authentication service: online login, offline
// unlock, lock, logout and switching between known accounts.
package services

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/accounts"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/client"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/keyservice"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/protectedkey"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/session"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storagekey"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/tokens"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
	"github.com/dmitrijs2005/gophkeeper-session/internal/logging"
)

// SessionResult is what login and unlock hand back to the caller.
// SessionKey is the encoded session key; it is a secret.
type SessionResult struct {
	AccountID  string
	SessionKey string
}

// Status describes the local login state.
type Status struct {
	Active   *accounts.Account
	LoggedIn bool
	Unlocked bool
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, cache what offline unlock
//     needs and open a session.
//   - Unlock: open a new session for the active account without the server.
//   - OpenSession: make an account active and wrap its vault key under a
//     fresh session key.
//   - Lock: drop the active account's wrapped vault key.
//   - Logout: Lock, null the tokens and clear the active account. The
//     account stays registered.
//   - Status, Switch, Accounts: inspect and change the active account.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*SessionResult, error)
	Unlock(ctx context.Context, password []byte) (*SessionResult, error)
	OpenSession(ctx context.Context, acct accounts.Account, vaultKey cryptox.SymmetricKey) (*SessionResult, error)
	Lock(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context, sessionKey string) (*Status, error)
	Switch(ctx context.Context, accountID string) error
	Accounts(ctx context.Context) ([]accounts.Account, error)
}

// authService is the concrete AuthService backed by a remote Client
// and the local data file.
type authService struct {
	client   client.Client
	store    storage.Store
	crypto   cryptox.Provider
	sessions *session.Manager
	keys     *keyservice.Service
	log      logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// data file store.
func NewAuthService(c client.Client, store storage.Store, crypto cryptox.Provider, logger logging.Logger) AuthService {
	sessions := session.NewManager(crypto)
	return &authService{
		client:   c,
		store:    store,
		crypto:   crypto,
		sessions: sessions,
		keys:     keyservice.New(store, sessions, crypto),
		log:      logger,
	}
}

// normalizeEmail returns the identity used as the KDF salt.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login derives the master key with the server's KDF parameters,
// authenticates with its verifier and decrypts the vault key the server
// returns. Tokens, the KDF parameters, the verifier and the master-key
// encrypted vault key are cached in the same write that opens the session.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*SessionResult, error) {
	email = normalizeEmail(email)

	kdf, err := a.client.Prelogin(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("prelogin error: %w", err)
	}

	masterKey, err := a.crypto.DeriveMasterKey(password, []byte(email), kdf)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	defer masterKey.Wipe()
	verifier := cryptox.MakeVerifier(masterKey)

	deviceID, err := a.deviceID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Token(ctx, client.TokenRequest{
		Email:              email,
		MasterPasswordHash: verifier,
		DeviceID:           deviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	claims, err := tokens.ParseClaims(resp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	acct := accounts.Account{
		ID:            claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}
	if acct.Email == "" {
		acct.Email = email
	}

	vaultKey, err := a.decryptVaultKey(resp.Key, masterKey)
	if err != nil {
		return nil, err
	}
	defer vaultKey.Wipe()

	result, err := a.openSession(ctx, acct, vaultKey, func(doc *storage.Document) error {
		if err := tokens.Set(doc, acct.ID, tokens.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
			return err
		}
		if err := doc.Set(storagekey.ForAccount(storagekey.KdfConfig, acct.ID), kdf); err != nil {
			return err
		}
		if err := doc.Set(storagekey.ForAccount(storagekey.MasterKeyHash, acct.ID), base64.StdEncoding.EncodeToString(verifier)); err != nil {
			return err
		}
		if err := doc.Set(storagekey.ForAccount(storagekey.MasterKeyEncryptedVaultKey, acct.ID), resp.Key); err != nil {
			return err
		}
		if !doc.Has(storagekey.Global(storagekey.DeviceID)) {
			return doc.Set(storagekey.Global(storagekey.DeviceID), deviceID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info(ctx, "logged in", "account_id", acct.ID)
	return result, nil
}

// deviceID returns the persisted device id, or a new one that Login stores
// once it succeeds.
func (a *authService) deviceID(ctx context.Context) (id string, err error) {
	err = a.store.View(ctx, func(doc *storage.Document) error {
		_, err := doc.Get(storagekey.Global(storagekey.DeviceID), &id)
		return err
	})
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}
	return id, nil
}

// decryptVaultKey unwraps the master-key-encrypted vault key. Failures are
// common.ErrVaultKeyUndecryptable, never the session error
// common.ErrDecryptionFailed.
func (a *authService) decryptVaultKey(encoded string, masterKey cryptox.SymmetricKey) (cryptox.SymmetricKey, error) {
	ct, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", common.ErrVaultKeyUndecryptable)
	}
	vaultKey, err := a.crypto.DecryptKey(ct, masterKey)
	if err != nil {
		return nil, common.ErrVaultKeyUndecryptable
	}
	return vaultKey, nil
}

// offlineData is what Unlock needs from the last login.
type offlineData struct {
	account  accounts.Account
	kdf      cryptox.KdfConfig
	verifier []byte
	vaultKey string
}

func loadOfflineData(doc *storage.Document) (*offlineData, error) {
	id, ok, err := accounts.ActiveAccountID(doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNoActiveAccount
	}

	d := &offlineData{}
	if d.account, err = accounts.Get(doc, id); err != nil {
		return nil, err
	}

	found, err := doc.Get(storagekey.ForAccount(storagekey.KdfConfig, id), &d.kdf)
	if err != nil {
		return nil, fmt.Errorf("kdf config: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("kdf config: %w", common.ErrNotFound)
	}

	var hash string
	if found, err = doc.Get(storagekey.ForAccount(storagekey.MasterKeyHash, id), &hash); err != nil || !found {
		return nil, fmt.Errorf("master password hash: %w", errors.Join(common.ErrNotFound, err))
	}
	if d.verifier, err = base64.StdEncoding.DecodeString(hash); err != nil {
		return nil, fmt.Errorf("master password hash: %w", err)
	}

	if found, err = doc.Get(storagekey.ForAccount(storagekey.MasterKeyEncryptedVaultKey, id), &d.vaultKey); err != nil || !found {
		return nil, fmt.Errorf("encrypted vault key: %w", errors.Join(common.ErrNotFound, err))
	}
	return d, nil
}

// Unlock verifies password against the verifier cached at login and opens
// a new session for the active account. It never contacts the server.
// A wrong password yields common.ErrUnauthorized.
func (a *authService) Unlock(ctx context.Context, password []byte) (*SessionResult, error) {
	var data *offlineData
	err := a.store.View(ctx, func(doc *storage.Document) (err error) {
		data, err = loadOfflineData(doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unlock: %w", err)
	}

	masterKey, err := a.crypto.DeriveMasterKey(password, []byte(normalizeEmail(data.account.Email)), data.kdf)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	defer masterKey.Wipe()

	if subtle.ConstantTimeCompare(data.verifier, cryptox.MakeVerifier(masterKey)) == 0 {
		a.log.Warn(ctx, "unlock rejected", "account_id", data.account.ID)
		return nil, common.ErrUnauthorized
	}

	vaultKey, err := a.decryptVaultKey(data.vaultKey, masterKey)
	if err != nil {
		return nil, err
	}
	defer vaultKey.Wipe()

	result, err := a.OpenSession(ctx, data.account, vaultKey)
	if err != nil {
		return nil, err
	}
	a.log.Info(ctx, "unlocked", "account_id", data.account.ID)
	return result, nil
}

// OpenSession registers acct, makes it active and stores vaultKey wrapped
// under a freshly generated session key, all in one write.
func (a *authService) OpenSession(ctx context.Context, acct accounts.Account, vaultKey cryptox.SymmetricKey) (*SessionResult, error) {
	return a.openSession(ctx, acct, vaultKey, nil)
}

func (a *authService) openSession(ctx context.Context, acct accounts.Account, vaultKey cryptox.SymmetricKey,
	persist func(doc *storage.Document) error) (*SessionResult, error) {
	if acct.ID == "" {
		return nil, fmt.Errorf("open session: %w", common.ErrAccountNotFound)
	}

	sk, err := a.sessions.Generate()
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer sk.Wipe()

	err = a.store.Update(ctx, func(doc *storage.Document) error {
		if err := accounts.Register(doc, acct); err != nil {
			return err
		}
		if err := accounts.SetActiveAccountID(doc, acct.ID); err != nil {
			return err
		}
		if err := protectedkey.Put(doc, a.crypto, acct.ID, vaultKey, sk); err != nil {
			return err
		}
		if persist != nil {
			return persist(doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	a.log.Debug(ctx, "session opened", "account_id", acct.ID)
	return &SessionResult{AccountID: acct.ID, SessionKey: a.sessions.Encode(sk)}, nil
}

// activeUpdate runs fn on the active account inside one Update.
func (a *authService) activeUpdate(ctx context.Context, fn func(doc *storage.Document, id string) error) (id string, err error) {
	err = a.store.Update(ctx, func(doc *storage.Document) error {
		var ok bool
		id, ok, err = accounts.ActiveAccountID(doc)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrNoActiveAccount
		}
		return fn(doc, id)
	})
	return id, err
}

// Lock nulls the active account's protected vault key.
func (a *authService) Lock(ctx context.Context) error {
	id, err := a.activeUpdate(ctx, func(doc *storage.Document, id string) error {
		protectedkey.Clear(doc, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	a.log.Info(ctx, "locked", "account_id", id)
	return nil
}

// Logout locks the active account, nulls its tokens and clears the active
// account pointer. The registry entry and the cached unlock data stay.
func (a *authService) Logout(ctx context.Context) error {
	id, err := a.activeUpdate(ctx, func(doc *storage.Document, id string) error {
		protectedkey.Clear(doc, id)
		tokens.Clear(doc, id)
		accounts.ClearActiveAccount(doc)
		return nil
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.log.Info(ctx, "logged out", "account_id", id)
	return nil
}

// Status reports the active account and whether sessionKey unlocks it.
// An empty sessionKey reports Unlocked as false.
func (a *authService) Status(ctx context.Context, sessionKey string) (*Status, error) {
	st := &Status{}
	err := a.store.View(ctx, func(doc *storage.Document) error {
		id, ok, err := accounts.ActiveAccountID(doc)
		if err != nil || !ok {
			return err
		}
		acct, err := accounts.Get(doc, id)
		if err != nil {
			return err
		}
		st.Active = &acct
		st.LoggedIn, err = accounts.IsLoggedIn(doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	if st.Active == nil || sessionKey == "" {
		return st, nil
	}

	vaultKey, err := a.keys.GetVaultKey(ctx, sessionKey)
	switch {
	case err == nil:
		vaultKey.Wipe()
		st.Unlocked = true
	case errors.Is(err, common.ErrNotUnlocked),
		errors.Is(err, common.ErrDecryptionFailed),
		errors.Is(err, common.ErrInvalidSessionFormat),
		errors.Is(err, common.ErrNoActiveAccount):
	default:
		return nil, fmt.Errorf("status: %w", err)
	}
	return st, nil
}

// Switch makes accountID the active account. Other accounts' entries are
// left untouched.
func (a *authService) Switch(ctx context.Context, accountID string) error {
	err := a.store.Update(ctx, func(doc *storage.Document) error {
		return accounts.SetActiveAccountID(doc, accountID)
	})
	if err != nil {
		return fmt.Errorf("switch: %w", err)
	}
	a.log.Info(ctx, "switched account", "account_id", accountID)
	return nil
}

// Accounts lists every registered account ordered by id.
func (a *authService) Accounts(ctx context.Context) (list []accounts.Account, err error) {
	err = a.store.View(ctx, func(doc *storage.Document) error {
		list, err = accounts.List(doc)
		return err
	})
	return list, err
}
