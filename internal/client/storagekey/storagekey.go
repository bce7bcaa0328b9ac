// Package storagekey maps semantic entries of the data file to the literal
// top-level keys shared with the peer client.
//
// Keys follow the peer's convention:
//
//	global_<category>_<name>
//	account_<accountId>_<category>_<name>
//
// with formatVersion as the single un-prefixed root entry. The mapping is
// part of the on-disk contract; changing a category or name silently
// desynchronizes from the peer.
package storagekey

import (
	"fmt"
	"strings"
)

// MinFormatVersion is the oldest document format this client understands.
// Fresh documents are stamped with it.
const MinFormatVersion = 2

// Scope tells whether a descriptor needs an account id.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeAccount
)

func (s Scope) String() string {
	if s == ScopeAccount {
		return "account"
	}
	return "global"
}

// Descriptor identifies one kind of entry. The set is closed: only the
// values declared below exist.
type Descriptor struct {
	scope    Scope
	category string
	name     string
}

func (d Descriptor) Scope() Scope     { return d.scope }
func (d Descriptor) Category() string { return d.category }
func (d Descriptor) Name() string     { return d.name }

func (d Descriptor) String() string {
	return d.scope.String() + "/" + d.category + "/" + d.name
}

// Global entries.
var (
	FormatVersion   = Descriptor{ScopeGlobal, "", "formatVersion"}
	Accounts        = Descriptor{ScopeGlobal, "account", "accounts"}
	ActiveAccountID = Descriptor{ScopeGlobal, "account", "activeAccountId"}
	DeviceID        = Descriptor{ScopeGlobal, "appId", "appId"}
	ServerURL       = Descriptor{ScopeGlobal, "environment", "serverUrl"}
)

// Account-scoped entries.
var (
	AccessToken                = Descriptor{ScopeAccount, "token", "accessToken"}
	RefreshToken               = Descriptor{ScopeAccount, "token", "refreshToken"}
	ProtectedVaultKey          = Descriptor{ScopeAccount, "vaultKey", "protected"}
	MasterKeyEncryptedVaultKey = Descriptor{ScopeAccount, "vaultKey", "masterKeyEncrypted"}
	KdfConfig                  = Descriptor{ScopeAccount, "kdf", "config"}
	MasterKeyHash              = Descriptor{ScopeAccount, "masterPassword", "hash"}
)

var all = []Descriptor{
	FormatVersion, Accounts, ActiveAccountID, DeviceID, ServerURL,
	AccessToken, RefreshToken, ProtectedVaultKey, MasterKeyEncryptedVaultKey, KdfConfig, MasterKeyHash,
}

// Descriptors returns every known descriptor.
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), all...)
}

const (
	globalPrefix  = "global_"
	accountPrefix = "account_"
)

// Format returns the on-disk key for d. accountID must be empty for global
// descriptors and non-empty for account descriptors; anything else is a
// programming error and panics.
func Format(d Descriptor, accountID string) string {
	if !known(d) {
		panic(fmt.Sprintf("storagekey: unknown descriptor %v", d))
	}

	switch d.scope {
	case ScopeAccount:
		if accountID == "" {
			panic(fmt.Sprintf("storagekey: %v requires an account id", d))
		}
		return accountPrefix + accountID + "_" + d.category + "_" + d.name
	default:
		if accountID != "" {
			panic(fmt.Sprintf("storagekey: %v is global but got account id", d))
		}
		if d == FormatVersion {
			return d.name
		}
		return globalPrefix + d.category + "_" + d.name
	}
}

// Global is Format for global descriptors.
func Global(d Descriptor) string { return Format(d, "") }

// ForAccount is Format for account descriptors.
func ForAccount(d Descriptor, accountID string) string { return Format(d, accountID) }

// AccountKeys returns the on-disk keys of every account-scoped descriptor
// for accountID.
func AccountKeys(accountID string) []string {
	var keys []string
	for _, d := range all {
		if d.scope == ScopeAccount {
			keys = append(keys, Format(d, accountID))
		}
	}
	return keys
}

// Parse is the inverse of Format. ok is false for keys this client does
// not own.
func Parse(key string) (d Descriptor, accountID string, ok bool) {
	for _, c := range all {
		switch {
		case c.scope == ScopeGlobal:
			if Format(c, "") == key {
				return c, "", true
			}
		case strings.HasPrefix(key, accountPrefix):
			suffix := "_" + c.category + "_" + c.name
			id, found := strings.CutSuffix(strings.TrimPrefix(key, accountPrefix), suffix)
			if found && id != "" {
				return c, id, true
			}
		}
	}
	return Descriptor{}, "", false
}

func known(d Descriptor) bool {
	for _, c := range all {
		if c == d {
			return true
		}
	}
	return false
}
