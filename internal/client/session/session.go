// Package session mints and encodes the ephemeral session key handed to the
// user after login or unlock.
//
// The session key is the only secret that leaves this process. It is never
// written to the data file; only the ciphertext it produced is.
package session

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
)

// Key is a validated session key. The zero value is not usable; keys come
// from Manager.Generate or Manager.Decode only.
type Key struct {
	k cryptox.SymmetricKey
}

// Symmetric exposes the key material for wrapping and unwrapping.
func (k Key) Symmetric() cryptox.SymmetricKey { return k.k }

// IsZero reports whether k was never initialised.
func (k Key) IsZero() bool { return len(k.k) == 0 }

// Wipe zeroes the key material.
func (k Key) Wipe() { k.k.Wipe() }

func (k Key) String() string { return "[REDACTED]" }

func (k Key) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }

// KeyGenerator is the part of the crypto provider the manager uses.
type KeyGenerator interface {
	GenerateSymmetricKey() (cryptox.SymmetricKey, error)
}

// Manager generates, encodes and decodes session keys.
type Manager struct {
	gen KeyGenerator
}

func NewManager(gen KeyGenerator) *Manager {
	return &Manager{gen: gen}
}

// Generate returns a fresh session key from the provider's key generator.
func (m *Manager) Generate() (Key, error) {
	k, err := m.gen.GenerateSymmetricKey()
	if err != nil {
		return Key{}, fmt.Errorf("generate session key: %w", err)
	}
	if !k.Valid() {
		return Key{}, fmt.Errorf("generate session key: %w", cryptox.ErrInvalidKey)
	}
	return Key{k: k}, nil
}

// Encode renders k as standard base64, suitable for an environment variable.
func (m *Manager) Encode(k Key) string {
	return base64.StdEncoding.EncodeToString(k.k)
}

// Decode parses the textual form produced by Encode. Malformed input is
// reported as common.ErrInvalidSessionFormat; a well-formed key that does not
// match the stored ciphertext is only detected later, when unwrapping.
func (m *Manager) Decode(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("%w: empty", common.ErrInvalidSessionFormat)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: not base64", common.ErrInvalidSessionFormat)
	}
	k := cryptox.SymmetricKey(raw)
	if !k.Valid() {
		k.Wipe()
		return Key{}, fmt.Errorf("%w: expected %d bytes, got %d", common.ErrInvalidSessionFormat, cryptox.KeySize, len(raw))
	}
	return Key{k: k}, nil
}
