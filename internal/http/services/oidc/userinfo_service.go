package oidc

import (
	"context"
	"errors"

	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oidc"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
	"github.com/dropDatabas3/idcore/internal/store"
)

// Errors for the userinfo endpoint.
var (
	// ErrInvalidToken covers unknown, expired and revoked access tokens.
	ErrInvalidToken = errors.New("invalid_token")
	// ErrServerError signals a store failure, never a bad token.
	ErrServerError = errors.New("server_error")
)

// UserInfoService resolves a bearer access token to the profile claims its
// scopes allow. "sub" is always present; profile and email claims require
// their respective scopes on the token.
type UserInfoService interface {
	UserInfo(ctx context.Context, rawToken string) (dto.UserInfoResponse, error)
}

// UserInfoDeps contains dependencies for UserInfoService.
type UserInfoDeps struct {
	DAL   store.DataAccessLayer
	Clock clock.Clock
}

type userInfoService struct {
	dal   store.DataAccessLayer
	clock clock.Clock
}

// NewUserInfoService creates a new UserInfoService.
func NewUserInfoService(d UserInfoDeps) UserInfoService {
	c := d.Clock
	if c == nil {
		c = clock.System()
	}
	return &userInfoService{dal: d.DAL, clock: c}
}

func (s *userInfoService) UserInfo(ctx context.Context, rawToken string) (dto.UserInfoResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("UserInfoService.UserInfo"))

	if rawToken == "" {
		return dto.UserInfoResponse{}, ErrInvalidToken
	}

	at, err := s.dal.AccessTokens().GetByHash(ctx, tokens.SHA256Base64URL(rawToken))
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.UserInfoResponse{}, ErrInvalidToken
		}
		log.Error("access token lookup failed", logger.Err(err))
		return dto.UserInfoResponse{}, ErrServerError
	}
	if at.Revoked() || s.clock.Now().After(at.ExpiresAt) {
		return dto.UserInfoResponse{}, ErrInvalidToken
	}

	user, err := s.dal.Users().GetByID(ctx, at.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.UserInfoResponse{}, ErrInvalidToken
		}
		log.Error("user lookup failed", logger.Err(err), logger.UserID(at.UserID))
		return dto.UserInfoResponse{}, ErrServerError
	}

	resp := dto.UserInfoResponse{Sub: user.ID}
	if hasScope(at.Scopes, "profile") {
		resp.Name = user.Name
		resp.GivenName = user.GivenName
		resp.FamilyName = user.FamilyName
		resp.Picture = user.Picture
	}
	if hasScope(at.Scopes, "email") && user.Email != "" {
		resp.Email = user.Email
		verified := user.EmailVerified
		resp.EmailVerified = &verified
	}
	return resp, nil
}

func hasScope(scopes []string, want string) bool {
	for _, sc := range scopes {
		if sc == want {
			return true
		}
	}
	return false
}
