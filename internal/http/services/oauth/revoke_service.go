package oauth

import (
	"context"
	"time"

	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
	"github.com/dropDatabas3/idcore/internal/store"
)

// RevokeService implements RFC 7009. Revocation of an unknown token, an
// already-revoked token, or a token owned by another client all succeed
// silently: the endpoint never confirms token existence.
type RevokeService interface {
	Revoke(ctx context.Context, clientID string, req dto.RevokeRequest) error
}

// RevokeDeps contains dependencies for RevokeService.
type RevokeDeps struct {
	DAL   store.DataAccessLayer
	Clock clock.Clock
}

type revokeService struct {
	dal   store.DataAccessLayer
	clock clock.Clock
}

// NewRevokeService creates a new RevokeService.
func NewRevokeService(d RevokeDeps) RevokeService {
	c := d.Clock
	if c == nil {
		c = clock.System()
	}
	return &revokeService{dal: d.DAL, clock: c}
}

func (s *revokeService) Revoke(ctx context.Context, clientID string, req dto.RevokeRequest) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("RevokeService.Revoke"),
		logger.ClientID(clientID),
	)

	if req.Token == "" {
		// Nada que revocar; éxito igual.
		return nil
	}

	hash := tokens.SHA256Base64URL(req.Token)
	now := s.clock.Now()

	// El hint solo ordena la búsqueda; si falla se prueba la otra tabla.
	if req.TokenTypeHint == "refresh_token" {
		if done, err := s.revokeRefresh(ctx, hash, clientID, now); done || err != nil {
			return err
		}
		_, err := s.revokeAccess(ctx, hash, clientID, now)
		return err
	}

	if done, err := s.revokeAccess(ctx, hash, clientID, now); done || err != nil {
		return err
	}
	done, err := s.revokeRefresh(ctx, hash, clientID, now)
	if err != nil {
		return err
	}
	if !done {
		log.Debug("revocation for unknown token, no-op")
	}
	return nil
}

func (s *revokeService) revokeAccess(ctx context.Context, hash, clientID string, now time.Time) (bool, error) {
	at, err := s.dal.AccessTokens().GetByHash(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, ErrTokenServerError
	}
	if at.ClientID != clientID {
		// Token de otro client: se responde éxito sin tocarlo.
		return true, nil
	}
	if err := s.dal.AccessTokens().Revoke(ctx, at.ID, now); err != nil {
		logger.From(ctx).Error("access token revocation failed", logger.Err(err))
		return false, ErrTokenServerError
	}
	return true, nil
}

// revokeRefresh revokes the whole family: a surrendered refresh token
// invalidates its entire lineage.
func (s *revokeService) revokeRefresh(ctx context.Context, hash, clientID string, now time.Time) (bool, error) {
	rt, err := s.dal.RefreshTokens().GetByHash(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, ErrTokenServerError
	}
	if rt.ClientID != clientID {
		return true, nil
	}
	n, err := s.dal.RefreshTokens().RevokeFamily(ctx, rt.FamilyID, now)
	if err != nil {
		logger.From(ctx).Error("family revocation failed", logger.Err(err), logger.FamilyID(rt.FamilyID))
		return false, ErrTokenServerError
	}
	logger.From(ctx).Info("refresh token family revoked",
		logger.FamilyID(rt.FamilyID),
		logger.ClientID(clientID),
		logger.Count(n),
	)
	return true, nil
}
