package cryptox

import (
	"crypto/sha256"
	"fmt"
	"math"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KdfType identifies a password-based key derivation function. The numeric
// values are shared with the peer client and the server.
type KdfType int

const (
	KdfPBKDF2   KdfType = 0
	KdfArgon2id KdfType = 1
)

func (t KdfType) String() string {
	switch t {
	case KdfPBKDF2:
		return "pbkdf2-sha256"
	case KdfArgon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("kdf(%d)", int(t))
	}
}

// KdfConfig holds the per-account derivation parameters. Memory is in MiB
// and only meaningful for Argon2id.
type KdfConfig struct {
	Type        KdfType `json:"kdfType"`
	Iterations  int     `json:"iterations"`
	Memory      int     `json:"memory,omitempty"`
	Parallelism int     `json:"parallelism,omitempty"`
}

// Bounds accepted for derivation parameters. Parameters arrive from the
// server and from the shared data file, so both are checked.
const (
	PBKDF2MinIterations  = 5000
	Argon2MinIterations  = 2
	Argon2MinMemory      = 15
	Argon2MaxMemory      = 1024
	Argon2MinParallelism = 1
	Argon2MaxParallelism = 16
	argon2MaxIterations  = math.MaxUint32
)

// DefaultKdfConfig is Argon2id with t=3, m=64MiB, p=4.
func DefaultKdfConfig() KdfConfig {
	return KdfConfig{Type: KdfArgon2id, Iterations: 3, Memory: 64, Parallelism: 4}
}

// Validate rejects parameters that are out of bounds for their KDF.
func (c KdfConfig) Validate() error {
	switch c.Type {
	case KdfPBKDF2:
		if c.Iterations < PBKDF2MinIterations {
			return fmt.Errorf("pbkdf2: iterations must be at least %d, got %d", PBKDF2MinIterations, c.Iterations)
		}
	case KdfArgon2id:
		if c.Iterations < Argon2MinIterations || int64(c.Iterations) > argon2MaxIterations {
			return fmt.Errorf("argon2id: iterations must be in %d..%d, got %d", Argon2MinIterations, uint32(argon2MaxIterations), c.Iterations)
		}
		if c.Memory < Argon2MinMemory || c.Memory > Argon2MaxMemory {
			return fmt.Errorf("argon2id: memory must be in %d..%d MiB, got %d", Argon2MinMemory, Argon2MaxMemory, c.Memory)
		}
		if c.Parallelism < Argon2MinParallelism || c.Parallelism > Argon2MaxParallelism {
			return fmt.Errorf("argon2id: parallelism must be in %d..%d, got %d", Argon2MinParallelism, Argon2MaxParallelism, c.Parallelism)
		}
	default:
		return fmt.Errorf("unsupported kdf type %d", int(c.Type))
	}
	return nil
}

func deriveKey(password, salt []byte, kdf KdfConfig) (SymmetricKey, error) {
	if err := kdf.Validate(); err != nil {
		return nil, err
	}

	switch kdf.Type {
	case KdfPBKDF2:
		return SymmetricKey(pbkdf2.Key(password, salt, kdf.Iterations, KeySize, sha256.New)), nil
	default:
		return argon2Key(password, salt, uint32(kdf.Iterations), uint32(kdf.Memory), uint8(kdf.Parallelism)), nil
	}
}

// argon2Key takes memory in MiB. Callers pass bounded values.
func argon2Key(password, salt []byte, iterations, memoryMiB uint32, parallelism uint8) SymmetricKey {
	return SymmetricKey(argon2.IDKey(password, salt, iterations, memoryMiB*1024, parallelism, KeySize))
}

// DeriveMasterKey derives a master key with the historical fixed
// parameters: Argon2id t=1, m=64MiB, p=4.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2Key(password, salt, 1, 64, 4)
}
