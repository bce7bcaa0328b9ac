package client

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
)

const testBaseURL = "https://vault.example.com"

func newMockedClient(t *testing.T) *HTTPClient {
	t.Helper()
	c := NewHTTPClient(testBaseURL+"/", time.Second)
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestPrelogin_OK(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+preloginPath,
		func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "gophkeeper-cli", r.Header.Get("User-Agent"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"kdf": 1, "kdfIterations": 3, "kdfMemory": 64, "kdfParallelism": 4,
			})
		})

	kdf, err := c.Prelogin(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, cryptox.KdfConfig{Type: cryptox.KdfArgon2id, Iterations: 3, Memory: 64, Parallelism: 4}, kdf)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestPrelogin_InvalidParams(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+preloginPath,
		httpmock.NewStringResponder(http.StatusOK, `{"kdf":1,"kdfIterations":0}`))

	_, err := c.Prelogin(context.Background(), "a@x.io")
	require.Error(t, err)
}

func TestToken_OK(t *testing.T) {
	c := newMockedClient(t)
	hash := []byte{1, 2, 3, 4}

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+tokenPath,
		func(r *http.Request) (*http.Response, error) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			assert.Equal(t, "a@x.io", r.PostForm.Get("username"))
			assert.Equal(t, base64.StdEncoding.EncodeToString(hash), r.PostForm.Get("password"))
			assert.Equal(t, "dev-1", r.PostForm.Get("deviceIdentifier"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"access_token":  "at",
				"refresh_token": "rt",
				"expires_in":    3600,
				"token_type":    "Bearer",
				"Key":           "a2V5",
			})
		})

	resp, err := c.Token(context.Background(), TokenRequest{Email: "a@x.io", MasterPasswordHash: hash, DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, "at", resp.AccessToken)
	assert.Equal(t, "rt", resp.RefreshToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "a2V5", resp.Key)
}

func TestToken_IncompleteResponse(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+tokenPath,
		httpmock.NewStringResponder(http.StatusOK, `{"access_token":"at"}`))

	_, err := c.Token(context.Background(), TokenRequest{Email: "a@x.io"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestToken_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"bad request", http.StatusBadRequest, ErrUnauthorized},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"server error", http.StatusBadGateway, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMockedClient(t)
			httpmock.RegisterResponder(http.MethodPost, testBaseURL+tokenPath,
				httpmock.NewStringResponder(tt.status, `{"error":"invalid_grant"}`))

			_, err := c.Token(context.Background(), TokenRequest{Email: "a@x.io"})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestToken_TransportError(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+tokenPath,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := c.Token(context.Background(), TokenRequest{Email: "a@x.io"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestToken_UnexpectedStatus(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+tokenPath,
		httpmock.NewStringResponder(http.StatusTeapot, ``))

	_, err := c.Token(context.Background(), TokenRequest{Email: "a@x.io"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
