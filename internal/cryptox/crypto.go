// Package cryptox is the crypto provider consumed by the session cache:
// master key derivation, AES-256-GCM wrapping of symmetric keys and data,
// and symmetric key generation.
//
// Callers depend on the Provider interface; AESGCMProvider is the default
// implementation.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
)

// KeySize is the length in bytes of every SymmetricKey (AES-256).
const KeySize = 32

const nonceSize = 12

var (
	ErrInvalidKey = errors.New("invalid symmetric key")
	// ErrDecrypt covers every authentication or integrity failure.
	ErrDecrypt = errors.New("decryption failed")
)

// SymmetricKey is raw AES-256 key material.
type SymmetricKey []byte

// String keeps key material out of fmt output.
func (k SymmetricKey) String() string { return "[REDACTED]" }

// LogValue keeps key material out of slog records.
func (k SymmetricKey) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }

// Valid reports whether k has the length the provider expects.
func (k SymmetricKey) Valid() bool { return len(k) == KeySize }

// Wipe zeroes the key in place.
func (k SymmetricKey) Wipe() { common.WipeByteArray(k) }

// Provider is the set of primitives the session cache relies on. The
// implementation is treated as already correct; nothing above this package
// touches cipher internals.
type Provider interface {
	DeriveMasterKey(password, salt []byte, kdf KdfConfig) (SymmetricKey, error)
	EncryptWithKey(plaintext []byte, key SymmetricKey) ([]byte, error)
	DecryptWithKey(ciphertext []byte, key SymmetricKey) ([]byte, error)
	EncryptKey(key, wrappingKey SymmetricKey) ([]byte, error)
	DecryptKey(ciphertext []byte, wrappingKey SymmetricKey) (SymmetricKey, error)
	GenerateSymmetricKey() (SymmetricKey, error)
}

// AESGCMProvider implements Provider with AES-256-GCM. Ciphertexts are
// laid out as nonce || sealed box.
type AESGCMProvider struct{}

// NewProvider returns the default Provider.
func NewProvider() *AESGCMProvider {
	return &AESGCMProvider{}
}

var _ Provider = (*AESGCMProvider)(nil)

func newGCM(key SymmetricKey) (cipher.AEAD, error) {
	if !key.Valid() {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// DeriveMasterKey stretches password with salt according to kdf.
func (p *AESGCMProvider) DeriveMasterKey(password, salt []byte, kdf KdfConfig) (SymmetricKey, error) {
	return deriveKey(password, salt, kdf)
}

// EncryptWithKey seals plaintext under key with a fresh random nonce.
func (p *AESGCMProvider) EncryptWithKey(plaintext []byte, key SymmetricKey) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(nonceSize)

	out := make([]byte, 0, nonceSize+len(plaintext)+aesgcm.Overhead())
	out = append(out, nonce...)
	return aesgcm.Seal(out, nonce, plaintext, nil), nil
}

// DecryptWithKey opens a ciphertext produced by EncryptWithKey. Any
// tampering, truncation or wrong key yields ErrDecrypt.
func (p *AESGCMProvider) DecryptWithKey(ciphertext []byte, key SymmetricKey) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < nonceSize+aesgcm.Overhead() {
		return nil, ErrDecrypt
	}

	plaintext, err := aesgcm.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// EncryptKey wraps key under wrappingKey.
func (p *AESGCMProvider) EncryptKey(key, wrappingKey SymmetricKey) ([]byte, error) {
	if !key.Valid() {
		return nil, ErrInvalidKey
	}
	return p.EncryptWithKey(key, wrappingKey)
}

// DecryptKey unwraps a key produced by EncryptKey.
func (p *AESGCMProvider) DecryptKey(ciphertext []byte, wrappingKey SymmetricKey) (SymmetricKey, error) {
	plaintext, err := p.DecryptWithKey(ciphertext, wrappingKey)
	if err != nil {
		return nil, err
	}
	key := SymmetricKey(plaintext)
	if !key.Valid() {
		key.Wipe()
		return nil, fmt.Errorf("%w: unwrapped key has length %d", ErrDecrypt, len(plaintext))
	}
	return key, nil
}

// GenerateSymmetricKey returns a fresh random AES-256 key.
func (p *AESGCMProvider) GenerateSymmetricKey() (SymmetricKey, error) {
	return SymmetricKey(common.GenerateRandByteArray(KeySize)), nil
}

// MakeVerifier derives the value sent to the server (and cached locally) to
// prove knowledge of the master key without revealing it.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}
