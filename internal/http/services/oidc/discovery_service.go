// Package oidc contains services for the OIDC endpoints.
package oidc

import (
	"context"
	"strings"

	dto "github.com/dropDatabas3/idcore/internal/http/dto/oidc"
)

// DiscoveryService serves the static OIDC discovery document. Everything
// in it derives from configuration at construction time; requests never
// touch the store.
type DiscoveryService interface {
	Document(ctx context.Context) dto.Document
}

type discoveryService struct {
	doc dto.Document
}

// NewDiscoveryService builds the document once from the issuer base URL.
func NewDiscoveryService(issuer string) DiscoveryService {
	base := strings.TrimRight(issuer, "/")
	return &discoveryService{
		doc: dto.Document{
			Issuer: base,
			// El authorization endpoint lo sirve la plataforma que embebe
			// el provider (login/consent); acá solo se publica la URL.
			AuthorizationEndpoint: base + "/oauth2/authorize",
			TokenEndpoint:         base + "/oauth2/token",
			RevocationEndpoint:    base + "/oauth2/revoke",
			IntrospectionEndpoint: base + "/oauth2/introspect",
			UserinfoEndpoint:      base + "/userinfo",
			JWKSURI:               base + "/.well-known/jwks.json",
			EndSessionEndpoint:    base + "/oauth2/logout",
			GrantTypesSupported:   []string{"authorization_code", "refresh_token"},
			ResponseTypesSupported: []string{
				"code",
			},
			ScopesSupported: []string{"openid", "profile", "email", "offline_access"},
			TokenEndpointAuthMethodsSupported: []string{
				"client_secret_basic", "client_secret_post", "none",
			},
			CodeChallengeMethodsSupported:    []string{"S256", "plain"},
			IDTokenSigningAlgValuesSupported: []string{"HS256"},
			SubjectTypesSupported:            []string{"public"},
			ClaimsSupported: []string{
				"iss", "sub", "aud", "iat", "exp", "auth_time", "nonce",
				"name", "given_name", "family_name", "picture",
				"email", "email_verified",
			},
		},
	}
}

func (s *discoveryService) Document(_ context.Context) dto.Document {
	return s.doc
}
