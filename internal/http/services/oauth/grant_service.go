package oauth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	"github.com/dropDatabas3/idcore/internal/oauth2/pkce"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
	"github.com/dropDatabas3/idcore/internal/store"
)

// authCodeTTL is fixed and not client-configurable.
const authCodeTTL = 10 * time.Minute

// GrantService issues and redeems single-use authorization codes.
type GrantService interface {
	// Issue mints an authorization code for an already-authenticated user.
	// Called by the platform's login/consent layer through the admin API.
	Issue(ctx context.Context, req dto.GrantRequest) (dto.GrantResponse, error)

	// Redeem atomically consumes a code for the given client and runs the
	// expiry, redirect_uri and PKCE checks. Every failure is invalid_grant:
	// a replayed code is indistinguishable from an expired one by design.
	Redeem(ctx context.Context, clientID, code, redirectURI, codeVerifier string) (*repository.AuthorizationCode, error)
}

// GrantDeps contains dependencies for GrantService.
type GrantDeps struct {
	DAL     store.DataAccessLayer
	Clients ClientService
	Clock   clock.Clock
}

type grantService struct {
	dal     store.DataAccessLayer
	clients ClientService
	clock   clock.Clock
}

// NewGrantService creates a new GrantService.
func NewGrantService(d GrantDeps) GrantService {
	c := d.Clock
	if c == nil {
		c = clock.System()
	}
	return &grantService{dal: d.DAL, clients: d.Clients, clock: c}
}

func (s *grantService) Issue(ctx context.Context, req dto.GrantRequest) (dto.GrantResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("GrantService.Issue"))

	if req.UserID == "" || req.ClientID == "" || req.RedirectURI == "" {
		return dto.GrantResponse{}, ErrTokenInvalidRequest
	}

	client, err := s.clients.Lookup(ctx, req.ClientID)
	if err != nil {
		return dto.GrantResponse{}, err
	}
	if !hasGrantType(client, "authorization_code") {
		return dto.GrantResponse{}, ErrTokenUnauthorizedClient
	}
	if !s.clients.ValidateRedirectURI(client, req.RedirectURI) {
		return dto.GrantResponse{}, ErrTokenInvalidRequest
	}

	scopes, err := s.clients.NegotiateScopes(client, req.Scope)
	if err != nil {
		return dto.GrantResponse{}, err
	}

	// PKCE en emisión: si el client lo exige, el challenge es obligatorio.
	method := req.CodeChallengeMethod
	if req.CodeChallenge != "" && method == "" {
		method = pkce.MethodPlain
	}
	if req.CodeChallenge != "" && method != pkce.MethodPlain && method != pkce.MethodS256 {
		return dto.GrantResponse{}, ErrTokenInvalidRequest
	}
	if client.RequirePKCE && req.CodeChallenge == "" {
		return dto.GrantResponse{}, ErrTokenInvalidRequest
	}

	// El user directory tiene que conocer al usuario antes de emitir.
	if _, err := s.dal.Users().GetByID(ctx, req.UserID); err != nil {
		if repository.IsNotFound(err) {
			return dto.GrantResponse{}, ErrTokenInvalidRequest
		}
		log.Error("user lookup failed", logger.Err(err), logger.UserID(req.UserID))
		return dto.GrantResponse{}, ErrTokenServerError
	}

	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("code generation failed", logger.Err(err))
		return dto.GrantResponse{}, ErrTokenServerError
	}

	now := s.clock.Now()
	ac := &repository.AuthorizationCode{
		ID:                  uuid.NewString(),
		CodeHash:            tokens.SHA256Base64URL(code),
		ClientID:            client.ClientID,
		UserID:              req.UserID,
		RedirectURI:         req.RedirectURI,
		Scopes:              scopes,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: method,
		Nonce:               req.Nonce,
		ExpiresAt:           now.Add(authCodeTTL),
		CreatedAt:           now,
	}
	if err := s.dal.Codes().Create(ctx, ac); err != nil {
		log.Error("code persist failed", logger.Err(err))
		return dto.GrantResponse{}, ErrTokenServerError
	}

	// Reaping oportunista de códigos vencidos; best effort.
	if n, err := s.dal.Codes().DeleteExpired(ctx, now); err != nil {
		log.Warn("expired code reaping failed", logger.Err(err))
	} else if n > 0 {
		log.Debug("expired codes reaped", logger.Count(n))
	}

	log.Info("authorization code issued",
		logger.ClientID(client.ClientID),
		logger.UserID(req.UserID),
		logger.Scope(strings.Join(scopes, " ")),
	)

	return dto.GrantResponse{
		Code:      code,
		ExpiresIn: int64(authCodeTTL.Seconds()),
		Scope:     strings.Join(scopes, " "),
	}, nil
}

func (s *grantService) Redeem(ctx context.Context, clientID, code, redirectURI, codeVerifier string) (*repository.AuthorizationCode, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("GrantService.Redeem"))

	if code == "" {
		return nil, ErrTokenInvalidRequest
	}

	codeHash := tokens.SHA256Base64URL(code)

	// Flip atómico: bajo dos redenciones concurrentes solo una gana.
	ac, err := s.dal.Codes().Consume(ctx, codeHash, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			// Inexistente, de otro client, o ya usado: misma respuesta.
			return nil, ErrTokenInvalidGrant
		}
		log.Error("code consume failed", logger.Err(err), logger.ClientID(clientID))
		return nil, ErrTokenServerError
	}

	now := s.clock.Now()
	if now.After(ac.ExpiresAt) {
		log.Debug("expired code presented", logger.ClientID(clientID))
		return nil, ErrTokenInvalidGrant
	}

	// redirect_uri debe repetirse y coincidir byte a byte con el de emisión.
	if redirectURI != ac.RedirectURI {
		log.Debug("redirect_uri mismatch on redemption", logger.ClientID(clientID))
		return nil, ErrTokenInvalidGrant
	}

	// PKCE fail-closed: challenge sin verifier, verifier sin challenge, o
	// verificación fallida, todos caen igual.
	if ac.CodeChallenge != "" {
		if codeVerifier == "" || !pkce.Validate(codeVerifier, ac.CodeChallenge, ac.CodeChallengeMethod) {
			log.Debug("PKCE verification failed", logger.ClientID(clientID))
			return nil, ErrTokenInvalidGrant
		}
	} else if codeVerifier != "" {
		return nil, ErrTokenInvalidGrant
	}

	return ac, nil
}

// hasGrantType reports whether the client is allowed the given grant type.
func hasGrantType(c *repository.Client, gt string) bool {
	for _, g := range c.GrantTypes {
		if g == gt {
			return true
		}
	}
	return false
}
