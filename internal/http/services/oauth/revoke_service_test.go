package oauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
)

// exchange corre el flujo completo code → tokens para armar fixtures.
func exchange(t *testing.T, e *env, clientID, scope string) dto.TokenResponse {
	t.Helper()
	code := issueCode(t, e, clientID, scope, "")
	resp, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType:   "authorization_code",
		ClientID:    clientID,
		Code:        code,
		RedirectURI: redirectURI,
	})
	require.NoError(t, err)
	return resp
}

func TestRevoke_AccessToken(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	tk := exchange(t, e, "c1", "openid")

	err := e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{Token: tk.AccessToken})
	require.NoError(t, err)

	at, err := e.store.AccessTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(tk.AccessToken))
	require.NoError(t, err)
	require.True(t, at.Revoked())

	// El refresh token sigue vivo: solo se revocó lo presentado.
	rt, err := e.store.RefreshTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(tk.RefreshToken))
	require.NoError(t, err)
	require.False(t, rt.Revoked())

	// Revocar de nuevo es idempotente.
	require.NoError(t, e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{Token: tk.AccessToken}))
}

func TestRevoke_RefreshTokenKillsFamily(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	first := exchange(t, e, "c1", "openid")

	// Rotar una vez para que la familia tenga dos miembros.
	second, err := e.svc.Tokens.Exchange(testCtx(), dto.TokenRequest{
		GrantType: "refresh_token", ClientID: "c1", RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)

	err = e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{
		Token:         second.RefreshToken,
		TokenTypeHint: "refresh_token",
	})
	require.NoError(t, err)

	rt, err := e.store.RefreshTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(second.RefreshToken))
	require.NoError(t, err)
	require.True(t, rt.Revoked())
}

func TestRevoke_UnknownAndEmptyTokens(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)

	// RFC 7009: tokens desconocidos y vacíos responden éxito.
	require.NoError(t, e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{Token: "never-issued"}))
	require.NoError(t, e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{}))
	require.NoError(t, e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{
		Token: "never-issued", TokenTypeHint: "refresh_token",
	}))
}

func TestRevoke_ForeignClientIsSilentNoop(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	e.seedClient(t, repository.Client{ClientID: "c2", RedirectURIs: []string{redirectURI}})
	tk := exchange(t, e, "c1", "openid")

	// Otro client "revoca" el token: éxito, pero el token no se toca.
	require.NoError(t, e.svc.Revoke.Revoke(testCtx(), "c2", dto.RevokeRequest{Token: tk.AccessToken}))

	at, err := e.store.AccessTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(tk.AccessToken))
	require.NoError(t, err)
	require.False(t, at.Revoked())

	require.NoError(t, e.svc.Revoke.Revoke(testCtx(), "c2", dto.RevokeRequest{Token: tk.RefreshToken}))
	rt, err := e.store.RefreshTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(tk.RefreshToken))
	require.NoError(t, err)
	require.False(t, rt.Revoked())
}

func TestRevoke_WrongHintStillFinds(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	tk := exchange(t, e, "c1", "openid")

	// Hint equivocado: la búsqueda cae a la otra tabla.
	err := e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{
		Token:         tk.AccessToken,
		TokenTypeHint: "refresh_token",
	})
	require.NoError(t, err)

	at, err := e.store.AccessTokens().GetByHash(testCtx(), tokens.SHA256Base64URL(tk.AccessToken))
	require.NoError(t, err)
	require.True(t, at.Revoked())
}
