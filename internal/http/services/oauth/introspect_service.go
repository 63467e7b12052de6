package oauth

import (
	"context"
	"strings"

	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
	"github.com/dropDatabas3/idcore/internal/store"
)

// IntrospectService implements RFC 7662. The response shape is always the
// same: unknown, expired, revoked and foreign-client tokens all come back
// as {"active": false} so the endpoint leaks nothing.
type IntrospectService interface {
	Introspect(ctx context.Context, clientID string, req dto.IntrospectRequest) (dto.IntrospectionResponse, error)
}

// IntrospectDeps contains dependencies for IntrospectService.
type IntrospectDeps struct {
	DAL   store.DataAccessLayer
	Clock clock.Clock

	// Issuer is the provider's issuer base URL, reported as "iss".
	Issuer string
}

type introspectService struct {
	dal    store.DataAccessLayer
	clock  clock.Clock
	issuer string
}

// NewIntrospectService creates a new IntrospectService.
func NewIntrospectService(d IntrospectDeps) IntrospectService {
	c := d.Clock
	if c == nil {
		c = clock.System()
	}
	return &introspectService{dal: d.DAL, clock: c, issuer: d.Issuer}
}

var inactive = dto.IntrospectionResponse{Active: false}

func (s *introspectService) Introspect(ctx context.Context, clientID string, req dto.IntrospectRequest) (dto.IntrospectionResponse, error) {
	if req.Token == "" {
		return inactive, nil
	}

	hash := tokens.SHA256Base64URL(req.Token)

	// El hint solo ordena la búsqueda.
	if req.TokenTypeHint == "refresh_token" {
		if resp, found, err := s.introspectRefresh(ctx, hash, clientID); found || err != nil {
			return resp, err
		}
		resp, _, err := s.introspectAccess(ctx, hash, clientID)
		return resp, err
	}

	if resp, found, err := s.introspectAccess(ctx, hash, clientID); found || err != nil {
		return resp, err
	}
	resp, _, err := s.introspectRefresh(ctx, hash, clientID)
	return resp, err
}

func (s *introspectService) introspectAccess(ctx context.Context, hash, clientID string) (dto.IntrospectionResponse, bool, error) {
	at, err := s.dal.AccessTokens().GetByHash(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return inactive, false, nil
		}
		logger.From(ctx).Error("access token introspection failed", logger.Err(err))
		return inactive, false, ErrTokenServerError
	}

	if at.ClientID != clientID || at.Revoked() || s.clock.Now().After(at.ExpiresAt) {
		return inactive, true, nil
	}

	return dto.IntrospectionResponse{
		Active:    true,
		Scope:     strings.Join(at.Scopes, " "),
		ClientID:  at.ClientID,
		Sub:       at.UserID,
		Aud:       at.ClientID,
		Iss:       s.issuer,
		TokenType: "access_token",
		Exp:       at.ExpiresAt.Unix(),
		Iat:       at.IssuedAt.Unix(),
	}, true, nil
}

func (s *introspectService) introspectRefresh(ctx context.Context, hash, clientID string) (dto.IntrospectionResponse, bool, error) {
	rt, err := s.dal.RefreshTokens().GetByHash(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return inactive, false, nil
		}
		logger.From(ctx).Error("refresh token introspection failed", logger.Err(err))
		return inactive, false, ErrTokenServerError
	}

	if rt.ClientID != clientID || rt.Revoked() || s.clock.Now().After(rt.ExpiresAt) {
		return inactive, true, nil
	}

	return dto.IntrospectionResponse{
		Active:    true,
		Scope:     strings.Join(rt.Scopes, " "),
		ClientID:  rt.ClientID,
		Sub:       rt.UserID,
		Aud:       rt.ClientID,
		Iss:       s.issuer,
		TokenType: "refresh_token",
		Exp:       rt.ExpiresAt.Unix(),
		Iat:       rt.IssuedAt.Unix(),
	}, true, nil
}
