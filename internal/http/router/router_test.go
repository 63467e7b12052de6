package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	"github.com/dropDatabas3/idcore/internal/http/controllers"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	"github.com/dropDatabas3/idcore/internal/http/router"
	"github.com/dropDatabas3/idcore/internal/http/services"
	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
	"github.com/dropDatabas3/idcore/internal/oauth2/pkce"
	"github.com/dropDatabas3/idcore/internal/store/memory"
)

const adminKey = "test-admin-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dal := memory.New()
	dal.SeedUser(repository.User{
		ID:            "user-1",
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		EmailVerified: true,
	})

	c := cache.NewMemory("test")
	svcs := services.New(services.Deps{
		DAL:        dal,
		Cache:      c,
		Issuer:     jwtx.NewIssuer("https://id.test", []byte("test-signing-secret")),
		Clock:      clock.System(),
		BaseIssuer: "https://id.test",
	})
	ctrls := controllers.New(svcs, dal, c)

	srv := httptest.NewServer(router.New(router.Deps{
		Controllers: ctrls,
		AdminAPIKey: adminKey,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func adminPost(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-API-Key", adminKey)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func registerPublicClient(t *testing.T, srv *httptest.Server) dto.RegisterClientResponse {
	t.Helper()
	resp := adminPost(t, srv, "/admin/clients", dto.RegisterClientRequest{
		Name:         "SPA",
		Type:         "public",
		RedirectURIs: []string{"https://spa.test/cb"},
		Scopes:       []string{"openid", "profile", "email"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeJSON[dto.RegisterClientResponse](t, resp)
}

func issueCode(t *testing.T, srv *httptest.Server, clientID, scope, challenge string) dto.GrantResponse {
	t.Helper()
	resp := adminPost(t, srv, "/admin/grants", dto.GrantRequest{
		UserID:              "user-1",
		ClientID:            clientID,
		RedirectURI:         "https://spa.test/cb",
		Scope:               scope,
		Nonce:               "n-1",
		CodeChallenge:       challenge,
		CodeChallengeMethod: pkce.MethodS256,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeJSON[dto.GrantResponse](t, resp)
}

func TestFullAuthorizationCodeFlow(t *testing.T) {
	srv := newTestServer(t)
	client := registerPublicClient(t, srv)
	require.Empty(t, client.ClientSecret)
	require.True(t, client.RequirePKCE)

	const verifier = "e2e-verifier-0123456789abcdef0123456789abcdef"
	grant := issueCode(t, srv, client.ClientID, "openid profile", pkce.Challenge(verifier))
	require.NotEmpty(t, grant.Code)

	// ── code → tokens ──
	resp := postForm(t, srv, "/oauth2/token", url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {client.ClientID},
		"code":          {grant.Code},
		"redirect_uri":  {"https://spa.test/cb"},
		"code_verifier": {verifier},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	tk := decodeJSON[dto.TokenResponse](t, resp)
	require.NotEmpty(t, tk.AccessToken)
	require.NotEmpty(t, tk.RefreshToken)
	require.NotEmpty(t, tk.IDToken)
	require.Equal(t, "Bearer", tk.TokenType)

	// ── userinfo con el access token ──
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/userinfo", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tk.AccessToken)
	uiResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, uiResp.StatusCode)
	ui := decodeJSON[map[string]any](t, uiResp)
	require.Equal(t, "user-1", ui["sub"])
	require.Equal(t, "Ada Lovelace", ui["name"])

	// ── introspect: activo ──
	resp = postForm(t, srv, "/oauth2/introspect", url.Values{
		"client_id": {client.ClientID},
		"token":     {tk.AccessToken},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	intro := decodeJSON[map[string]any](t, resp)
	require.Equal(t, true, intro["active"])
	require.Equal(t, "user-1", intro["sub"])

	// ── rotación del refresh token ──
	resp = postForm(t, srv, "/oauth2/token", url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {client.ClientID},
		"refresh_token": {tk.RefreshToken},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decodeJSON[dto.TokenResponse](t, resp)
	require.NotEqual(t, tk.RefreshToken, rotated.RefreshToken)

	// ── replay del refresh viejo: invalid_grant y familia revocada ──
	resp = postForm(t, srv, "/oauth2/token", url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {client.ClientID},
		"refresh_token": {tk.RefreshToken},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	oauthErr := decodeJSON[dto.ErrorResponse](t, resp)
	require.Equal(t, "invalid_grant", oauthErr.Error)

	resp = postForm(t, srv, "/oauth2/token", url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {client.ClientID},
		"refresh_token": {rotated.RefreshToken},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	oauthErr = decodeJSON[dto.ErrorResponse](t, resp)
	require.Equal(t, "invalid_grant", oauthErr.Error)
}

func TestCodeReplayIsRejected(t *testing.T) {
	srv := newTestServer(t)
	client := registerPublicClient(t, srv)

	const verifier = "replay-verifier-0123456789abcdef01234567"
	grant := issueCode(t, srv, client.ClientID, "openid", pkce.Challenge(verifier))

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {client.ClientID},
		"code":          {grant.Code},
		"redirect_uri":  {"https://spa.test/cb"},
		"code_verifier": {verifier},
	}
	resp := postForm(t, srv, "/oauth2/token", form)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postForm(t, srv, "/oauth2/token", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	oauthErr := decodeJSON[dto.ErrorResponse](t, resp)
	require.Equal(t, "invalid_grant", oauthErr.Error)
}

func TestRevokeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	client := registerPublicClient(t, srv)

	const verifier = "revoke-verifier-0123456789abcdef01234567"
	grant := issueCode(t, srv, client.ClientID, "openid", pkce.Challenge(verifier))

	resp := postForm(t, srv, "/oauth2/token", url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {client.ClientID},
		"code":          {grant.Code},
		"redirect_uri":  {"https://spa.test/cb"},
		"code_verifier": {verifier},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tk := decodeJSON[dto.TokenResponse](t, resp)

	resp = postForm(t, srv, "/oauth2/revoke", url.Values{
		"client_id": {client.ClientID},
		"token":     {tk.AccessToken},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Tras revocar, introspección inactiva y userinfo 401.
	resp = postForm(t, srv, "/oauth2/introspect", url.Values{
		"client_id": {client.ClientID},
		"token":     {tk.AccessToken},
	})
	intro := decodeJSON[map[string]any](t, resp)
	require.Equal(t, false, intro["active"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/userinfo", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tk.AccessToken)
	uiResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, uiResp.StatusCode)
	require.Contains(t, uiResp.Header.Get("WWW-Authenticate"), "invalid_token")
	uiResp.Body.Close()
}

func TestDiscoveryAndOps(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/.well-known/openid-configuration")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decodeJSON[map[string]any](t, resp)
	require.Equal(t, "https://id.test", doc["issuer"])
	require.Equal(t, "https://id.test/oauth2/token", doc["token_endpoint"])

	resp, err = srv.Client().Get(srv.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	jwks := decodeJSON[map[string]any](t, resp)
	require.Contains(t, jwks, "keys")

	resp, err = srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = srv.Client().Get(srv.URL + "/readyz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminSurfaceRequiresKey(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/admin/clients")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotContains(t, string(body), "client_id", "no registry data without the key")
}

func TestTokenEndpoint_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	client := registerPublicClient(t, srv)

	t.Run("unknown client", func(t *testing.T) {
		resp := postForm(t, srv, "/oauth2/token", url.Values{
			"grant_type": {"authorization_code"},
			"client_id":  {"ghost"},
			"code":       {"whatever"},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		oauthErr := decodeJSON[dto.ErrorResponse](t, resp)
		require.Equal(t, "invalid_client", oauthErr.Error)
	})

	t.Run("unsupported grant type", func(t *testing.T) {
		resp := postForm(t, srv, "/oauth2/token", url.Values{
			"grant_type": {"password"},
			"client_id":  {client.ClientID},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		oauthErr := decodeJSON[dto.ErrorResponse](t, resp)
		require.Equal(t, "unsupported_grant_type", oauthErr.Error)
	})

	t.Run("GET not allowed", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/oauth2/token")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
