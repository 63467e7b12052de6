package oauth

import (
	"context"

	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
)

// TokenService handles POST /oauth2/token for both supported grants.
//
// authorization_code: redeems a single-use code and mints the initial
// access/refresh pair (plus ID token when the grant includes openid).
//
// refresh_token: rotates the presented token. A presented token that is
// already revoked, or that loses the atomic consume race, is treated as a
// replay: the whole family is revoked and the caller gets invalid_grant
// with no further detail.
type TokenService interface {
	Exchange(ctx context.Context, req dto.TokenRequest) (dto.TokenResponse, error)
}
