package ledger

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenEndpoint = "https://oauth2.googleapis.com/token"
	tokenScopes   = "https://www.googleapis.com/auth/spreadsheets https://www.googleapis.com/auth/drive.file"
)

// tokenSource exchanges a signed service-account assertion for a bearer
// token and caches it until shortly before expiry. Safe for concurrent
// use.
type tokenSource struct {
	clientEmail string
	key         *rsa.PrivateKey
	httpc       *http.Client
	now         func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(clientEmail, privateKeyPEM string, httpc *http.Client) (*tokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	return &tokenSource{
		clientEmail: clientEmail,
		key:         key,
		httpc:       httpc,
		now:         time.Now,
	}, nil
}

func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Add(time.Minute).Before(ts.expiry) {
		return ts.token, nil
	}

	now := ts.now()
	claims := jwt.MapClaims{
		"iss":   ts.clientEmail,
		"scope": tokenScopes,
		"aud":   tokenEndpoint,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token exchange: %s: %s", resp.Status, string(body))
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned empty token")
	}

	ts.token = tr.AccessToken
	ts.expiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	return ts.token, nil
}
