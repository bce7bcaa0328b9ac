package cli

import (
	"errors"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/client"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
)

// describe turns an error into the line shown to the user. Decryption
// failures are reported as a wrong or expired session whatever the cause.
func describe(err error) string {
	var fv *common.FormatVersionError
	switch {
	case errors.As(err, &fv):
		return fv.Error()
	case errors.Is(err, common.ErrVaultKeyUndecryptable):
		return "Vault key could not be decrypted with this master password. Run 'gophkeeper login' again."
	case errors.Is(err, common.ErrDecryptionFailed):
		return "Session key is wrong or expired. Run 'gophkeeper unlock' to get a new one."
	case errors.Is(err, common.ErrInvalidSessionFormat):
		return "Session key is not valid. Check --session or " + EnvSession + "."
	case errors.Is(err, common.ErrNoActiveAccount):
		return "You are not logged in. Run 'gophkeeper login'."
	case errors.Is(err, common.ErrNotUnlocked):
		return "Vault is locked. Run 'gophkeeper unlock'."
	case errors.Is(err, common.ErrUnauthorized):
		return "Invalid email or master password."
	case errors.Is(err, common.ErrAccountNotFound):
		return "Account not found. Run 'gophkeeper accounts' to list known accounts."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable. Try again later."
	case errors.Is(err, common.ErrStorage):
		return "Could not access the data file: " + err.Error()
	default:
		return err.Error()
	}
}
