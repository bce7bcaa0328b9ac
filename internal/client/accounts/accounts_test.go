package accounts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/tokens"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) (*Registry, *storage.FileStore) {
	t.Helper()
	s := storage.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	return NewRegistry(s), s
}

func TestRegisterAccount_InsertAndUpdate(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.RegisterAccount(ctx, "a", "a@example.com"))
	require.NoError(t, r.Save(ctx, Account{ID: "b", Email: "b@example.com", EmailVerified: true, Name: "Bee"}))
	require.NoError(t, r.RegisterAccount(ctx, "b", "b2@example.com"))

	list, err := r.ListAccounts(ctx)
	require.NoError(t, err)

	want := []Account{
		{ID: "a", Email: "a@example.com"},
		{ID: "b", Email: "b2@example.com", EmailVerified: true, Name: "Bee"},
	}
	assert.Empty(t, cmp.Diff(want, list))
}

func TestActiveAccountExclusivity(t *testing.T) {
	r, s := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.RegisterAccount(ctx, "A", "a@example.com"))
	require.NoError(t, r.RegisterAccount(ctx, "B", "b@example.com"))
	require.NoError(t, s.Update(ctx, func(doc *storage.Document) error {
		return doc.Set("account_A_vaultKey_protected", "wrapped-a")
	}))

	require.NoError(t, r.SetActiveAccountID(ctx, "A"))
	require.NoError(t, r.SetActiveAccountID(ctx, "B"))

	id, ok, err := r.GetActiveAccountID(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B", id)

	a, err := r.GetAccount(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", a.Email)

	require.NoError(t, s.View(ctx, func(doc *storage.Document) error {
		var v string
		found, err := doc.Get("account_A_vaultKey_protected", &v)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "wrapped-a", v)
		return nil
	}))
}

func TestSetActiveAccountID_Unregistered(t *testing.T) {
	r, _ := newRegistry(t)
	err := r.SetActiveAccountID(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrAccountNotFound)
}

func TestGetAccount_OtherAccountUnchangedWhenActiveSwitches(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.RegisterAccount(ctx, "a", "a@example.com"))
	require.NoError(t, r.RegisterAccount(ctx, "b", "b@example.com"))
	require.NoError(t, r.SetActiveAccountID(ctx, "a"))

	b, err := r.GetAccount(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", b.Email)

	_, err = r.GetAccount(ctx, "c")
	require.ErrorIs(t, err, common.ErrAccountNotFound)
}

func TestClearActiveAccount_KeepsRecord(t *testing.T) {
	r, s := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.RegisterAccount(ctx, "a", "a@example.com"))
	require.NoError(t, r.SetActiveAccountID(ctx, "a"))
	require.NoError(t, r.ClearActiveAccount(ctx))

	_, ok, err := r.GetActiveAccountID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.View(ctx, func(doc *storage.Document) error {
		assert.True(t, doc.IsNull("global_account_activeAccountId"))
		return nil
	}))

	_, err = r.GetAccount(ctx, "a")
	require.NoError(t, err)
}

func TestRemoveAccount(t *testing.T) {
	r, s := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.RegisterAccount(ctx, "a", "a@example.com"))
	require.NoError(t, r.RegisterAccount(ctx, "b", "b@example.com"))
	require.NoError(t, r.SetActiveAccountID(ctx, "a"))

	removed, err := r.RemoveAccount(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.RemoveAccount(ctx, "a")
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok, err := r.GetActiveAccountID(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "removing the active account clears the pointer")

	list, err := r.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)

	require.NoError(t, s.View(ctx, func(doc *storage.Document) error {
		assert.True(t, doc.IsNull("account_a_vaultKey_protected"))
		assert.True(t, doc.IsNull("account_a_token_accessToken"))
		return nil
	}))
}

func TestIsLoggedIn(t *testing.T) {
	r, s := newRegistry(t)
	ctx := context.Background()

	loggedIn, err := r.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn, "no active account")

	require.NoError(t, r.RegisterAccount(ctx, "a", "a@example.com"))
	require.NoError(t, r.SetActiveAccountID(ctx, "a"))

	loggedIn, err = r.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn, "no access token")

	require.NoError(t, s.Update(ctx, func(doc *storage.Document) error {
		return tokens.Set(doc, "a", tokens.Tokens{AccessToken: "at", RefreshToken: "rt"})
	}))
	loggedIn, err = r.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)

	require.NoError(t, s.Update(ctx, func(doc *storage.Document) error {
		tokens.Clear(doc, "a")
		return nil
	}))
	loggedIn, err = r.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	require.NoError(t, s.Update(ctx, func(doc *storage.Document) error {
		return doc.Set("account_a_token_accessToken", "")
	}))
	loggedIn, err = r.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn, "empty access token is non-null")
}

func TestRegister_PreservesPeerFields(t *testing.T) {
	r, s := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{
		"global_account_accounts": {
			"a": {"email": "old@example.com", "emailVerified": false, "avatarColor": "#fff"},
			"peer": {"email": "peer@example.com", "emailVerified": true, "extra": [1]}
		}
	}`), 0o600))

	require.NoError(t, r.Save(ctx, Account{ID: "a", Email: "new@example.com", EmailVerified: true}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"global_account_accounts": {
			"a": {"email": "new@example.com", "emailVerified": true, "avatarColor": "#fff"},
			"peer": {"email": "peer@example.com", "emailVerified": true, "extra": [1]}
		}
	}`, string(data))
}
