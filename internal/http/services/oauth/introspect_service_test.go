package oauth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
)

func TestIntrospect_ActiveAccessToken(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	tk := exchange(t, e, "c1", "openid profile")

	resp, err := e.svc.Introspect.Introspect(testCtx(), "c1", dto.IntrospectRequest{Token: tk.AccessToken})
	require.NoError(t, err)
	require.True(t, resp.Active)
	require.Equal(t, "openid profile", resp.Scope)
	require.Equal(t, "c1", resp.ClientID)
	require.Equal(t, "user-1", resp.Sub)
	require.Equal(t, "c1", resp.Aud)
	require.Equal(t, "https://id.test", resp.Iss)
	require.Equal(t, "access_token", resp.TokenType)
	require.Greater(t, resp.Exp, resp.Iat)
}

func TestIntrospect_ActiveRefreshToken(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	tk := exchange(t, e, "c1", "openid")

	resp, err := e.svc.Introspect.Introspect(testCtx(), "c1", dto.IntrospectRequest{
		Token:         tk.RefreshToken,
		TokenTypeHint: "refresh_token",
	})
	require.NoError(t, err)
	require.True(t, resp.Active)
	require.Equal(t, "refresh_token", resp.TokenType)
	require.Equal(t, "c1", resp.Aud)
	require.Equal(t, "https://id.test", resp.Iss)

	// Sin hint también se encuentra: la búsqueda cae a la segunda tabla.
	resp, err = e.svc.Introspect.Introspect(testCtx(), "c1", dto.IntrospectRequest{Token: tk.RefreshToken})
	require.NoError(t, err)
	require.True(t, resp.Active)
}

func TestIntrospect_InactiveShapes(t *testing.T) {
	e := newEnv(t)
	seedGrantClient(t, e)
	e.seedClient(t, repository.Client{ClientID: "c2", RedirectURIs: []string{redirectURI}})
	tk := exchange(t, e, "c1", "openid")

	assertInactive := func(t *testing.T, resp dto.IntrospectionResponse) {
		t.Helper()
		// La respuesta inactiva es siempre la misma: nada de metadata.
		require.False(t, resp.Active)
		require.Empty(t, resp.Scope)
		require.Empty(t, resp.ClientID)
		require.Empty(t, resp.Sub)
		require.Empty(t, resp.Aud)
		require.Empty(t, resp.Iss)
		require.Zero(t, resp.Exp)
	}

	t.Run("unknown token", func(t *testing.T) {
		resp, err := e.svc.Introspect.Introspect(testCtx(), "c1", dto.IntrospectRequest{Token: "never-issued"})
		require.NoError(t, err)
		assertInactive(t, resp)
	})

	t.Run("empty token", func(t *testing.T) {
		resp, err := e.svc.Introspect.Introspect(testCtx(), "c1", dto.IntrospectRequest{})
		require.NoError(t, err)
		assertInactive(t, resp)
	})

	t.Run("foreign client", func(t *testing.T) {
		resp, err := e.svc.Introspect.Introspect(testCtx(), "c2", dto.IntrospectRequest{Token: tk.AccessToken})
		require.NoError(t, err)
		assertInactive(t, resp)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, e.svc.Revoke.Revoke(testCtx(), "c1", dto.RevokeRequest{Token: tk.AccessToken}))
		resp, err := e.svc.Introspect.Introspect(testCtx(), "c1", dto.IntrospectRequest{Token: tk.AccessToken})
		require.NoError(t, err)
		assertInactive(t, resp)
	})

	t.Run("expired", func(t *testing.T) {
		fresh := exchange(t, e, "c1", "openid")
		e.clock.Advance(2 * time.Hour)
		resp, err := e.svc.Introspect.Introspect(testCtx(), "c1", dto.IntrospectRequest{Token: fresh.AccessToken})
		require.NoError(t, err)
		assertInactive(t, resp)
	})
}
