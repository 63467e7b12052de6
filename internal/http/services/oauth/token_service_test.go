package oauth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	"github.com/dropDatabas3/idcore/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
)

// issueCode corre el flujo admin de emisión y devuelve el code listo para canjear.
func issueCode(t *testing.T, e *env, clientID, scope, nonce string) string {
	t.Helper()
	resp, err := e.svc.Grants.Issue(testCtx(), dto.GrantRequest{
		UserID:      "user-1",
		ClientID:    clientID,
		RedirectURI: redirectURI,
		Scope:       scope,
		Nonce:       nonce,
	})
	require.NoError(t, err)
	return resp.Code
}

func TestExchange_AuthorizationCode(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)

	code := issueCode(t, e, "c1", "openid profile", "nonce-1")

	resp, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType:   "authorization_code",
		ClientID:    "c1",
		Code:        code,
		RedirectURI: redirectURI,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, int64(3600), resp.ExpiresIn)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "openid profile", resp.Scope)

	// El scope openid produce un ID token verificable, con nonce y auth_time.
	require.NotEmpty(t, resp.IDToken)
	issuer := jwtx.NewIssuer("https://id.test", []byte("test-signing-secret"))
	claims, err := issuer.Parse(resp.IDToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "c1", claims["aud"])
	require.Equal(t, "nonce-1", claims["nonce"])
	require.Contains(t, claims, "auth_time")
	require.Equal(t, "Ada Lovelace", claims["name"])
	_, hasEmail := claims["email"]
	require.False(t, hasEmail, "email claims require the email scope")

	// El access token se persiste por hash, nunca en claro.
	at, err := e.store.AccessTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(resp.AccessToken))
	require.NoError(t, err)
	require.Equal(t, "user-1", at.UserID)
	require.Equal(t, []string{"openid", "profile"}, at.Scopes)
}

func TestExchange_WithoutOpenIDScope(t *testing.T) {
	e := newEnv(t)
	e.seedClient(t, repository.Client{
		ClientID:     "api-client",
		RedirectURIs: []string{redirectURI},
		Scopes:       []string{"profile"},
	})

	code := issueCode(t, e, "api-client", "profile", "")
	resp, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType:   "authorization_code",
		ClientID:    "api-client",
		Code:        code,
		RedirectURI: redirectURI,
	})
	require.NoError(t, err)
	require.Empty(t, resp.IDToken, "no openid scope, no ID token")
}

func TestExchange_GrantTypeGating(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	e.seedClient(t, repository.Client{
		ClientID:     "code-only",
		RedirectURIs: []string{redirectURI},
		GrantTypes:   []string{"authorization_code"},
	})

	_, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{ClientID: "c1"})
	require.ErrorIs(t, err, oauth.ErrTokenInvalidRequest)

	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "client_credentials", ClientID: "c1",
	})
	require.ErrorIs(t, err, oauth.ErrTokenUnsupportedGrantType)

	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "code-only", RefreshToken: "x",
	})
	require.ErrorIs(t, err, oauth.ErrTokenUnauthorizedClient)

	// Un client sin refresh_token no recibe refresh token en el exchange.
	code := issueCode(t, e, "code-only", "", "")
	resp, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType:   "authorization_code",
		ClientID:    "code-only",
		Code:        code,
		RedirectURI: redirectURI,
	})
	require.NoError(t, err)
	require.Empty(t, resp.RefreshToken)
}

func TestExchange_PerClientTTLOverride(t *testing.T) {
	e := newEnv(t)
	e.seedClient(t, repository.Client{
		ClientID:       "short",
		RedirectURIs:   []string{redirectURI},
		AccessTokenTTL: 120,
	})

	code := issueCode(t, e, "short", "", "")
	resp, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType:   "authorization_code",
		ClientID:    "short",
		Code:        code,
		RedirectURI: redirectURI,
	})
	require.NoError(t, err)
	require.Equal(t, int64(120), resp.ExpiresIn)
}

func TestRotate_HappyPath(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)

	code := issueCode(t, e, "c1", "openid profile", "")
	first, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "authorization_code", ClientID: "c1", Code: code, RedirectURI: redirectURI,
	})
	require.NoError(t, err)

	second, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, second.AccessToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEmpty(t, second.RefreshToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, "openid profile", second.Scope)

	// La rotación preserva la familia y enlaza el linaje.
	oldRT, err := e.store.RefreshTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(first.RefreshToken))
	require.NoError(t, err)
	newRT, err := e.store.RefreshTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(second.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, oldRT.FamilyID, newRT.FamilyID)
	require.NotNil(t, newRT.RotatedFrom)
	require.Equal(t, oldRT.ID, *newRT.RotatedFrom)
	require.True(t, oldRT.Revoked(), "consumed token must be revoked")
	require.False(t, newRT.Revoked())
}

func TestRotate_ReplayRevokesFamily(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)

	code := issueCode(t, e, "c1", "openid", "")
	first, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "authorization_code", ClientID: "c1", Code: code, RedirectURI: redirectURI,
	})
	require.NoError(t, err)

	second, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)

	// Replay del token ya rotado: invalid_grant y familia entera revocada.
	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken,
	})
	require.ErrorIs(t, err, oauth.ErrTokenInvalidGrant)

	// El token "bueno" de la rotación también queda muerto.
	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: second.RefreshToken,
	})
	require.ErrorIs(t, err, oauth.ErrTokenInvalidGrant)
}

func TestRotate_Expired(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)

	code := issueCode(t, e, "c1", "openid", "")
	first, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "authorization_code", ClientID: "c1", Code: code, RedirectURI: redirectURI,
	})
	require.NoError(t, err)

	e.clock.Advance(31 * 24 * time.Hour)

	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken,
	})
	require.ErrorIs(t, err, oauth.ErrTokenInvalidGrant)

	// Presentar un token expirado se trata como replay: la familia queda revocada.
	rt, err := e.store.RefreshTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(first.RefreshToken))
	require.NoError(t, err)
	require.True(t, rt.Revoked())
}

func TestRotate_ForeignClient(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	e.seedClient(t, repository.Client{ClientID: "c2", RedirectURIs: []string{redirectURI}})

	code := issueCode(t, e, "c1", "openid", "")
	first, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "authorization_code", ClientID: "c1", Code: code, RedirectURI: redirectURI,
	})
	require.NoError(t, err)

	// Otro client presenta el refresh token: misma respuesta que inexistente,
	// y el token del dueño sigue vivo.
	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c2", RefreshToken: first.RefreshToken,
	})
	require.ErrorIs(t, err, oauth.ErrTokenInvalidGrant)

	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
}

func TestRotate_ScopeNarrowing(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)

	code := issueCode(t, e, "c1", "openid profile email", "")
	first, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "authorization_code", ClientID: "c1", Code: code, RedirectURI: redirectURI,
	})
	require.NoError(t, err)

	// Pedir un scope fuera del set otorgado es invalid_scope y NO consume
	// el token: el retry con scope válido funciona.
	_, err = e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken, Scope: "profile admin",
	})
	require.ErrorIs(t, err, oauth.ErrTokenInvalidScope)

	second, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken, Scope: "profile",
	})
	require.NoError(t, err)
	require.Equal(t, "profile", second.Scope)

	// El refresh nuevo hereda el set achicado: no hay vuelta atrás.
	newRT, err := e.store.RefreshTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(second.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, []string{"profile"}, newRT.Scopes)
}

func TestExchange_IDTokenEmailClaims(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)

	code := issueCode(t, e, "c1", "openid email", "")
	resp, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "authorization_code", ClientID: "c1", Code: code, RedirectURI: redirectURI,
	})
	require.NoError(t, err)

	issuer := jwtx.NewIssuer("https://id.test", []byte("test-signing-secret"))
	claims, err := issuer.Parse(resp.IDToken)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", claims["email"])
	require.Equal(t, true, claims["email_verified"])
	_, hasName := claims["name"]
	require.False(t, hasName, "profile claims require the profile scope")
}
