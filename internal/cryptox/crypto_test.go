package cryptox

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	// snapshot of argon2id t=1 m=64MiB p=4
	expectedHex := "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveMasterKey(password, []byte("salt-1"))
	key2 := DeriveMasterKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestProvider_DeriveMasterKey_ByType(t *testing.T) {
	p := NewProvider()
	password := []byte("pw")
	salt := []byte("user@example.com")

	def, err := p.DeriveMasterKey(password, salt, DefaultKdfConfig())
	require.NoError(t, err)
	require.Len(t, def, KeySize)
	require.NotEqual(t, SymmetricKey(DeriveMasterKey(password, salt)), def)

	pb, err := p.DeriveMasterKey(password, salt, KdfConfig{Type: KdfPBKDF2, Iterations: PBKDF2MinIterations})
	require.NoError(t, err)
	require.Len(t, pb, KeySize)
	require.NotEqual(t, def, pb)
}

func TestProvider_DeriveMasterKey_PBKDF2Snapshot(t *testing.T) {
	key, err := NewProvider().DeriveMasterKey([]byte("secret-password"), []byte("fixed-salt"),
		KdfConfig{Type: KdfPBKDF2, Iterations: 5000})
	require.NoError(t, err)
	assert.Equal(t, "438d011fead5c3969f33ee88725e15629c47ca4300f678ce685c3ff3e168f55a", hex.EncodeToString(key))
}

func TestProvider_DeriveMasterKey_RejectsOutOfBounds(t *testing.T) {
	p := NewProvider()

	_, err := p.DeriveMasterKey([]byte("pw"), []byte("salt"),
		KdfConfig{Type: KdfArgon2id, Iterations: 1, Memory: 4194304, Parallelism: 1})
	require.Error(t, err)

	_, err = p.DeriveMasterKey([]byte("pw"), []byte("salt"), KdfConfig{Type: KdfPBKDF2, Iterations: 1})
	require.Error(t, err)
}

func TestKdfConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     KdfConfig
		wantErr bool
	}{
		{"default", DefaultKdfConfig(), false},
		{"pbkdf2 ok", KdfConfig{Type: KdfPBKDF2, Iterations: 600000}, false},
		{"pbkdf2 minimum", KdfConfig{Type: KdfPBKDF2, Iterations: 5000}, false},
		{"pbkdf2 zero iterations", KdfConfig{Type: KdfPBKDF2}, true},
		{"pbkdf2 one iteration", KdfConfig{Type: KdfPBKDF2, Iterations: 1}, true},
		{"pbkdf2 below minimum", KdfConfig{Type: KdfPBKDF2, Iterations: 4999}, true},
		{"argon2 bounds inclusive low", KdfConfig{Type: KdfArgon2id, Iterations: 2, Memory: 15, Parallelism: 1}, false},
		{"argon2 bounds inclusive high", KdfConfig{Type: KdfArgon2id, Iterations: 10, Memory: 1024, Parallelism: 16}, false},
		{"argon2 no memory", KdfConfig{Type: KdfArgon2id, Iterations: 3, Parallelism: 4}, true},
		{"argon2 memory below minimum", KdfConfig{Type: KdfArgon2id, Iterations: 3, Memory: 14, Parallelism: 4}, true},
		{"argon2 memory above maximum", KdfConfig{Type: KdfArgon2id, Iterations: 3, Memory: 1025, Parallelism: 4}, true},
		{"argon2 memory that would wrap", KdfConfig{Type: KdfArgon2id, Iterations: 3, Memory: 4194304, Parallelism: 4}, true},
		{"argon2 one iteration", KdfConfig{Type: KdfArgon2id, Iterations: 1, Memory: 64, Parallelism: 4}, true},
		{"argon2 negative iterations", KdfConfig{Type: KdfArgon2id, Iterations: -1, Memory: 64, Parallelism: 4}, true},
		{"argon2 zero parallelism", KdfConfig{Type: KdfArgon2id, Iterations: 3, Memory: 64}, true},
		{"argon2 parallelism above maximum", KdfConfig{Type: KdfArgon2id, Iterations: 3, Memory: 64, Parallelism: 17}, true},
		{"argon2 parallelism overflow", KdfConfig{Type: KdfArgon2id, Iterations: 3, Memory: 64, Parallelism: 256}, true},
		{"unknown type", KdfConfig{Type: 7, Iterations: 5000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEncryptDecryptWithKey_RoundTrip(t *testing.T) {
	p := NewProvider()
	key, err := p.GenerateSymmetricKey()
	require.NoError(t, err)

	ct, err := p.EncryptWithKey([]byte("hello"), key)
	require.NoError(t, err)

	pt, err := p.DecryptWithKey(ct, key)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), pt)
}

func TestDecryptWithKey_Failures(t *testing.T) {
	p := NewProvider()
	key, _ := p.GenerateSymmetricKey()
	other, _ := p.GenerateSymmetricKey()

	ct, err := p.EncryptWithKey([]byte("payload"), key)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := p.DecryptWithKey(ct, other)
		require.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("tampered", func(t *testing.T) {
		bad := append([]byte(nil), ct...)
		bad[len(bad)-1] ^= 0x01
		_, err := p.DecryptWithKey(bad, key)
		require.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := p.DecryptWithKey(ct[:nonceSize+3], key)
		require.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("invalid key length", func(t *testing.T) {
		_, err := p.DecryptWithKey(ct, SymmetricKey{1, 2, 3})
		require.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestEncryptKey_RoundTripAndWrongKey(t *testing.T) {
	p := NewProvider()
	vaultKey, _ := p.GenerateSymmetricKey()
	wrap1, _ := p.GenerateSymmetricKey()
	wrap2, _ := p.GenerateSymmetricKey()

	ct, err := p.EncryptKey(vaultKey, wrap1)
	require.NoError(t, err)

	got, err := p.DecryptKey(ct, wrap1)
	require.NoError(t, err)
	require.Equal(t, vaultKey, got)

	_, err = p.DecryptKey(ct, wrap2)
	require.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptKey_RejectsNonKeyPlaintext(t *testing.T) {
	p := NewProvider()
	wrap, _ := p.GenerateSymmetricKey()

	ct, err := p.EncryptWithKey([]byte("short"), wrap)
	require.NoError(t, err)

	_, err = p.DecryptKey(ct, wrap)
	require.ErrorIs(t, err, ErrDecrypt)
}

func TestSymmetricKey_Redacted(t *testing.T) {
	key := SymmetricKey(bytes.Repeat([]byte{0xAB}, KeySize))

	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", key))
	assert.Equal(t, "[REDACTED]", key.LogValue().String())

	key.Wipe()
	assert.Equal(t, make([]byte, KeySize), []byte(key))
}

func TestMakeVerifier_Deterministic(t *testing.T) {
	mk := DeriveMasterKey([]byte("p"), []byte("s"))
	assert.Equal(t, MakeVerifier(mk), MakeVerifier(mk))
	assert.Len(t, MakeVerifier(mk), 32)
}
