// Package common defines shared constants and sentinel errors used across
// the session cache layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Storage-level errors.
	ErrStorage  = errors.New("storage i/o failure")
	ErrNotFound = errors.New("not found")

	// Document compatibility.
	ErrFormatVersionUnsupported = errors.New("unsupported format version")

	// Account registry errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrNoActiveAccount = errors.New("no active account")

	// Session errors.
	ErrInvalidSessionFormat = errors.New("invalid session key format")
	ErrNotUnlocked          = errors.New("vault is locked")

	// ErrDecryptionFailed is deliberately vague: callers show it as
	// "wrong or expired session" regardless of the underlying cause.
	ErrDecryptionFailed = errors.New("decryption failed")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrVaultKeyUndecryptable is a vault key that the master key derived at
	// login or unlock cannot decrypt. No session key is involved.
	ErrVaultKeyUndecryptable = errors.New("vault key cannot be decrypted with the master key")
)

// FormatVersionError reports a document whose format version is older than
// the minimum this client understands.
type FormatVersionError struct {
	Found   int
	Minimum int
}

func (e *FormatVersionError) Error() string {
	return fmt.Sprintf("data file format version %d is older than the minimum supported version %d; "+
		"upgrade the data file with a newer client or remove it and log in again", e.Found, e.Minimum)
}

// Is makes errors.Is(err, ErrFormatVersionUnsupported) match.
func (e *FormatVersionError) Is(target error) bool {
	return target == ErrFormatVersionUnsupported
}
