package mcpclient

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/browser"
)

// atlassianAudience selects the Atlassian cloud APIs in the 3LO consent screen.
const atlassianAudience = "api.atlassian.com"

// OAuthToken is the Atlassian 3LO grant cached by `atlas jira login`. The
// client id and token endpoint are kept with it so Refresh needs no flags.
type OAuthToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	ClientID     string    `json:"client_id,omitempty"`
	TokenURL     string    `json:"token_url,omitempty"`
}

// IsExpired reports whether the access token is past its expiry.
func (t *OAuthToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// CanRefresh reports whether the token carries what Refresh needs.
func (t *OAuthToken) CanRefresh() bool {
	return t.RefreshToken != "" && t.ClientID != "" && t.TokenURL != ""
}

// TokenPath returns where the Atlassian token is cached: jira_oauth.json in
// the atlas config directory.
func TokenPath() (string, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jira_oauth.json"), nil
}

// SaveToken writes tok to path, readable by the owner only.
func SaveToken(path string, tok *OAuthToken) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*OAuthToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok OAuthToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &tok, nil
}

// GeneratePKCE returns a code verifier and its S256 challenge per RFC 7636.
func GeneratePKCE() (verifier, challenge string) {
	verifier = randomString()
	h := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(h[:])
	return
}

func randomString() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// OAuthConfig names the Atlassian OAuth 2.0 (3LO) app atlas logs in with.
type OAuthConfig struct {
	AuthURL  string // https://auth.atlassian.com/authorize
	TokenURL string // https://auth.atlassian.com/oauth/token
	ClientID string
	Scopes   []string // offline_access is needed for a refresh token
}

// OAuthFlow sends the user through Atlassian's consent screen and returns
// the granted token. The browser redirects back to a loopback listener at
// /callback; the state parameter must round-trip unchanged. openBrowser
// defaults to the system browser.
func OAuthFlow(ctx context.Context, cfg OAuthConfig, openBrowser func(string) error) (*OAuthToken, error) {
	verifier, challenge := GeneratePKCE()
	state := randomString()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	fail := func(w http.ResponseWriter, err error) {
		select {
		case errCh <- err:
		default:
		}
		http.Error(w, "atlas could not sign in to Jira: "+err.Error(), http.StatusBadRequest)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			fail(w, fmt.Errorf("authorization denied: %s %s", e, q.Get("error_description")))
			return
		}
		if q.Get("state") != state {
			fail(w, errors.New("authorization state mismatch"))
			return
		}
		code := q.Get("code")
		if code == "" {
			fail(w, errors.New("no authorization code in callback"))
			return
		}
		select {
		case codeCh <- code:
		default:
		}
		fmt.Fprint(w, "atlas is signed in to Jira. You can close this tab.")
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	params := url.Values{
		"audience":              {atlassianAudience},
		"client_id":             {cfg.ClientID},
		"redirect_uri":          {redirectURI},
		"response_type":         {"code"},
		"prompt":                {"consent"},
		"state":                 {state},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}
	if len(cfg.Scopes) > 0 {
		params.Set("scope", strings.Join(cfg.Scopes, " "))
	}

	if openBrowser == nil {
		openBrowser = browser.Open
	}
	if err := openBrowser(cfg.AuthURL + "?" + params.Encode()); err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return requestToken(ctx, cfg, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {cfg.ClientID},
		"code":          {code},
		"code_verifier": {verifier},
		"redirect_uri":  {redirectURI},
	})
}

// Refresh trades tok's refresh token for a new grant. Atlassian rotates
// refresh tokens, so the returned token replaces tok on disk; when the
// response omits one the old refresh token is kept.
func Refresh(ctx context.Context, tok *OAuthToken) (*OAuthToken, error) {
	if !tok.CanRefresh() {
		return nil, errors.New("token cannot be refreshed, run atlas jira login")
	}
	cfg := OAuthConfig{ClientID: tok.ClientID, TokenURL: tok.TokenURL}
	next, err := requestToken(ctx, cfg, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {tok.ClientID},
		"refresh_token": {tok.RefreshToken},
	})
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = tok.RefreshToken
	}
	return next, nil
}

// requestToken posts a grant to the token endpoint.
func requestToken(ctx context.Context, cfg OAuthConfig, form url.Values) (*OAuthToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if result.AccessToken == "" {
		return nil, errors.New("empty access token in response")
	}
	return &OAuthToken{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
		ClientID:     cfg.ClientID,
		TokenURL:     cfg.TokenURL,
	}, nil
}
