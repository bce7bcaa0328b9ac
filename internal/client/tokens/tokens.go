// Package tokens owns every read and write of an account's access and
// refresh tokens.
//
// Tokens currently live in the data file under the account-scoped token
// entries. Where the peer client keeps them at rest is not settled, so no
// other package touches those entries directly; moving them elsewhere only
// changes this package.
package tokens

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storagekey"
	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the pair issued by the identity server.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Set writes both tokens for accountID.
func Set(doc *storage.Document, accountID string, t Tokens) error {
	if err := doc.Set(storagekey.ForAccount(storagekey.AccessToken, accountID), t.AccessToken); err != nil {
		return err
	}
	if t.RefreshToken == "" {
		doc.SetNull(storagekey.ForAccount(storagekey.RefreshToken, accountID))
		return nil
	}
	return doc.Set(storagekey.ForAccount(storagekey.RefreshToken, accountID), t.RefreshToken)
}

// Clear nulls both token entries. The keys stay in the document.
func Clear(doc *storage.Document, accountID string) {
	doc.SetNull(storagekey.ForAccount(storagekey.AccessToken, accountID))
	doc.SetNull(storagekey.ForAccount(storagekey.RefreshToken, accountID))
}

// AccessToken returns the stored access token; ok is false only when the
// entry is absent or null. An empty string is a present token.
func AccessToken(doc *storage.Document, accountID string) (token string, ok bool, err error) {
	ok, err = doc.Get(storagekey.ForAccount(storagekey.AccessToken, accountID), &token)
	return token, ok, err
}

// RefreshToken returns the stored refresh token, with the same ok rule as
// AccessToken.
func RefreshToken(doc *storage.Document, accountID string) (token string, ok bool, err error) {
	ok, err = doc.Get(storagekey.ForAccount(storagekey.RefreshToken, accountID), &token)
	return token, ok, err
}

var ErrMalformedToken = errors.New("malformed access token")

// Claims are the identity fields the client reads out of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
}

// ParseClaims decodes the access token payload without verifying its
// signature; the server is the party that verifies it. It is used only to
// learn which account the token belongs to.
func ParseClaims(accessToken string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims, nil
}
