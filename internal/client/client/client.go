package client

import (
	"context"

	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
)

// TokenRequest is a password grant. MasterPasswordHash is the verifier
// derived from the master key, never the password itself.
type TokenRequest struct {
	Email              string
	MasterPasswordHash []byte
	DeviceID           string
}

// TokenResponse is what the identity server returns on a successful grant.
// Key is the vault key encrypted under the master key, base64 encoded.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Key          string `json:"Key"`
}

type Client interface {
	Prelogin(ctx context.Context, email string) (cryptox.KdfConfig, error)
	Token(ctx context.Context, req TokenRequest) (*TokenResponse, error)
}
