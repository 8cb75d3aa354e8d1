package mcpclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastheco/atlas/internal/mcpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthToken_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")

	tok := &mcpclient.OAuthToken{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, mcpclient.SaveToken(path, tok))

	loaded, err := mcpclient.LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access-123", loaded.AccessToken)
	assert.Equal(t, "refresh-456", loaded.RefreshToken)
	assert.WithinDuration(t, tok.ExpiresAt, loaded.ExpiresAt, time.Second)
}

func TestOAuthToken_SaveCreatesDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "token.json")

	tok := &mcpclient.OAuthToken{AccessToken: "tok"}
	require.NoError(t, mcpclient.SaveToken(path, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestOAuthToken_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		offset  time.Duration
		expired bool
	}{
		{"expired", -time.Minute, true},
		{"valid", time.Hour, false},
		{"just expired", -time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &mcpclient.OAuthToken{ExpiresAt: time.Now().Add(tt.offset)}
			assert.Equal(t, tt.expired, tok.IsExpired())
		})
	}
}

func TestOAuthToken_LoadMissing(t *testing.T) {
	_, err := mcpclient.LoadToken("/nonexistent/path/token.json")
	assert.Error(t, err)
}

func TestPKCEChallenge(t *testing.T) {
	verifier, challenge := mcpclient.GeneratePKCE()
	assert.NotEmpty(t, verifier)
	assert.NotEmpty(t, challenge)
	assert.NotEqual(t, verifier, challenge)
	// Verifier should be 43-128 chars per RFC 7636
	assert.GreaterOrEqual(t, len(verifier), 43)
	assert.LessOrEqual(t, len(verifier), 128)
}

func TestPKCEChallenge_Unique(t *testing.T) {
	v1, c1 := mcpclient.GeneratePKCE()
	v2, c2 := mcpclient.GeneratePKCE()
	assert.NotEqual(t, v1, v2, "verifiers should be unique")
	assert.NotEqual(t, c1, c2, "challenges should be unique")
}

func TestOAuthFlow_ExchangesCode(t *testing.T) {
	// Mock token endpoint
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.FormValue("code"))
		assert.NotEmpty(t, r.FormValue("code_verifier"))
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "test-access-token",
			"refresh_token": "test-refresh-token",
			"expires_in":    3600,
		})
	}))
	defer tokenSrv.Close()

	cfg := mcpclient.OAuthConfig{
		AuthURL:  "http://localhost/auth",
		TokenURL: tokenSrv.URL,
		Scopes:   []string{"read:jira-work", "offline_access"},
		ClientID: "test-client",
	}

	// openBrowser simulates the OAuth callback by parsing the redirect_uri
	// from the auth URL and hitting it with a code parameter.
	openBrowser := func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		assert.Equal(t, "read:jira-work offline_access", u.Query().Get("scope"))
		assert.Equal(t, "S256", u.Query().Get("code_challenge_method"))
		assert.Equal(t, "api.atlassian.com", u.Query().Get("audience"))
		assert.Equal(t, "consent", u.Query().Get("prompt"))
		require.NotEmpty(t, u.Query().Get("state"))
		resp, err := http.Get(callbackURL(u, "test-auth-code", u.Query().Get("state")))
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tok, err := mcpclient.OAuthFlow(ctx, cfg, openBrowser)
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", tok.AccessToken)
	assert.Equal(t, "test-refresh-token", tok.RefreshToken)
	assert.False(t, tok.IsExpired())
	assert.Equal(t, "test-client", tok.ClientID)
	assert.Equal(t, tokenSrv.URL, tok.TokenURL)
	assert.True(t, tok.CanRefresh())
}

// callbackURL builds the redirect Atlassian sends the browser back with.
func callbackURL(authURL *url.URL, code, state string) string {
	q := url.Values{"code": {code}, "state": {state}}
	return authURL.Query().Get("redirect_uri") + "?" + q.Encode()
}

func TestOAuthFlow_RejectedCallbacks(t *testing.T) {
	tests := []struct {
		name    string
		query   func(state string) url.Values
		wantErr string
	}{
		{
			name:    "state mismatch",
			query:   func(string) url.Values { return url.Values{"code": {"abc"}, "state": {"forged"}} },
			wantErr: "state mismatch",
		},
		{
			name: "user denied consent",
			query: func(state string) url.Values {
				return url.Values{"error": {"access_denied"}, "error_description": {"User did not authorize"}, "state": {state}}
			},
			wantErr: "access_denied",
		},
		{
			name:    "missing code",
			query:   func(state string) url.Values { return url.Values{"state": {state}} },
			wantErr: "no authorization code",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mcpclient.OAuthConfig{AuthURL: "http://localhost/auth", TokenURL: "http://localhost/token", ClientID: "c"}
			openBrowser := func(authURL string) error {
				u, err := url.Parse(authURL)
				if err != nil {
					return err
				}
				resp, err := http.Get(u.Query().Get("redirect_uri") + "?" + tt.query(u.Query().Get("state")).Encode())
				if err != nil {
					return err
				}
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				return resp.Body.Close()
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := mcpclient.OAuthFlow(ctx, cfg, openBrowser)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name        string
		reply       map[string]any
		wantRefresh string
	}{
		{"rotated", map[string]any{"access_token": "a2", "refresh_token": "r2", "expires_in": 3600}, "r2"},
		{"not rotated", map[string]any{"access_token": "a2", "expires_in": 3600}, "r1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
				assert.Equal(t, "r1", r.FormValue("refresh_token"))
				assert.Equal(t, "app", r.FormValue("client_id"))
				_ = json.NewEncoder(w).Encode(tt.reply)
			}))
			defer tokenSrv.Close()

			old := &mcpclient.OAuthToken{AccessToken: "a1", RefreshToken: "r1", ClientID: "app", TokenURL: tokenSrv.URL}
			tok, err := mcpclient.Refresh(context.Background(), old)
			require.NoError(t, err)
			assert.Equal(t, "a2", tok.AccessToken)
			assert.Equal(t, tt.wantRefresh, tok.RefreshToken)
			assert.Equal(t, "app", tok.ClientID)
			assert.False(t, tok.IsExpired())
		})
	}
}

func TestRefresh_NeedsLoginMetadata(t *testing.T) {
	_, err := mcpclient.Refresh(context.Background(), &mcpclient.OAuthToken{RefreshToken: "r1"})
	assert.ErrorContains(t, err, "atlas jira login")
}

func TestOAuthFlow_Timeout(t *testing.T) {
	cfg := mcpclient.OAuthConfig{
		AuthURL:  "http://localhost/auth",
		TokenURL: "http://localhost/token",
		ClientID: "test-client",
	}

	// The user never completes authorization.
	openBrowser := func(authURL string) error { return nil }

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := mcpclient.OAuthFlow(ctx, cfg, openBrowser)
	assert.Error(t, err)
}

func TestOAuthFlow_TokenEndpointRejects(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	cfg := mcpclient.OAuthConfig{AuthURL: "http://localhost/auth", TokenURL: tokenSrv.URL, ClientID: "c"}
	openBrowser := func(authURL string) error {
		u, _ := url.Parse(authURL)
		resp, err := http.Get(callbackURL(u, "abc", u.Query().Get("state")))
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := mcpclient.OAuthFlow(ctx, cfg, openBrowser)
	var statusErr *mcpclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestTokenPath_UsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ATLAS_CONFIG_DIR", dir)
	path, err := mcpclient.TokenPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jira_oauth.json"), path)
}
