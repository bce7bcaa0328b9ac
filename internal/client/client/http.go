package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
)

// MaxResponseLength caps how much of a response body is read.
const MaxResponseLength = 1 << 20

const (
	preloginPath = "/identity/accounts/prelogin"
	tokenPath    = "/identity/connect/token"
)

// HTTPClient talks to the identity API over HTTPS.
type HTTPClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the server at baseURL
// (e.g. "https://vault.example.com").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  common.AppName + "-cli",
		httpClient: &http.Client{Timeout: timeout},
	}
}

type preloginRequest struct {
	Email string `json:"email"`
}

type preloginResponse struct {
	Kdf            cryptox.KdfType `json:"kdf"`
	KdfIterations  int             `json:"kdfIterations"`
	KdfMemory      int             `json:"kdfMemory"`
	KdfParallelism int             `json:"kdfParallelism"`
}

// Prelogin fetches the KDF parameters registered for email.
func (c *HTTPClient) Prelogin(ctx context.Context, email string) (cryptox.KdfConfig, error) {
	body, err := json.Marshal(preloginRequest{Email: email})
	if err != nil {
		return cryptox.KdfConfig{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+preloginPath, bytes.NewReader(body))
	if err != nil {
		return cryptox.KdfConfig{}, fmt.Errorf("error constructing prelogin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp preloginResponse
	if err := c.do(req, &resp); err != nil {
		return cryptox.KdfConfig{}, fmt.Errorf("prelogin: %w", err)
	}

	kdf := cryptox.KdfConfig{
		Type:        resp.Kdf,
		Iterations:  resp.KdfIterations,
		Memory:      resp.KdfMemory,
		Parallelism: resp.KdfParallelism,
	}
	if err := kdf.Validate(); err != nil {
		return cryptox.KdfConfig{}, fmt.Errorf("prelogin: server sent %w", err)
	}
	return kdf, nil
}

// Token performs the password grant.
func (c *HTTPClient) Token(ctx context.Context, tr TokenRequest) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("scope", "api offline_access")
	form.Set("client_id", "cli")
	form.Set("username", tr.Email)
	form.Set("password", base64.StdEncoding.EncodeToString(tr.MasterPasswordHash))
	form.Set("deviceIdentifier", tr.DeviceID)
	form.Set("deviceName", c.userAgent)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error constructing token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp TokenResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	if resp.AccessToken == "" || resp.Key == "" {
		return nil, errors.New("token: incomplete response from server")
	}
	return &resp, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer response.Body.Close()

	reader := io.LimitedReader{R: response.Body, N: MaxResponseLength}
	body, err := io.ReadAll(&reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch {
	case response.StatusCode == http.StatusOK:
	case response.StatusCode == http.StatusBadRequest, response.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case response.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUnavailable, response.Status)
	default:
		return fmt.Errorf("unexpected response status %s", response.Status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
