package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/client"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("status: %w", common.ErrDecryptionFailed), "wrong or expired"},
		{common.ErrInvalidSessionFormat, "not valid"},
		{common.ErrNoActiveAccount, "not logged in"},
		{common.ErrNotUnlocked, "locked"},
		{fmt.Errorf("login error: %w", client.ErrUnauthorized), "Invalid email or master password"},
		{fmt.Errorf("prelogin error: %w", client.ErrUnavailable), "Server unavailable"},
		{&common.FormatVersionError{Found: 1, Minimum: 2}, "minimum supported version 2"},
		{fmt.Errorf("login: %w", common.ErrVaultKeyUndecryptable), "could not be decrypted with this master password"},
		{errors.New("something else"), "something else"},
	}

	for _, tt := range tests {
		assert.Contains(t, describe(tt.err), tt.want)
	}

	assert.NotContains(t, describe(common.ErrVaultKeyUndecryptable), "Session")

}
