package oauth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	httpmetrics "github.com/dropDatabas3/idcore/internal/http"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
	"github.com/dropDatabas3/idcore/internal/store"
)

// TokenDeps contains dependencies for TokenService.
type TokenDeps struct {
	DAL     store.DataAccessLayer
	Clients ClientService
	Grants  GrantService
	Issuer  *jwtx.Issuer
	Clock   clock.Clock

	// Defaults; per-client TTLs (seconds) override them when set.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	IDTokenTTL time.Duration
}

type tokenService struct {
	dal     store.DataAccessLayer
	clients ClientService
	grants  GrantService
	issuer  *jwtx.Issuer
	clock   clock.Clock

	accessTTL  time.Duration
	refreshTTL time.Duration
	idTokenTTL time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(d TokenDeps) TokenService {
	c := d.Clock
	if c == nil {
		c = clock.System()
	}
	s := &tokenService{
		dal:        d.DAL,
		clients:    d.Clients,
		grants:     d.Grants,
		issuer:     d.Issuer,
		clock:      c,
		accessTTL:  d.AccessTTL,
		refreshTTL: d.RefreshTTL,
		idTokenTTL: d.IDTokenTTL,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = time.Hour
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 30 * 24 * time.Hour
	}
	if s.idTokenTTL <= 0 {
		s.idTokenTTL = time.Hour
	}
	return s
}

func (s *tokenService) Exchange(ctx context.Context, req dto.TokenRequest) (dto.TokenResponse, error) {
	if req.GrantType == "" {
		return dto.TokenResponse{}, ErrTokenInvalidRequest
	}

	// Client auth first: a bad client never learns anything about grants.
	client, err := s.clients.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	switch req.GrantType {
	case "authorization_code":
		if !hasGrantType(client, "authorization_code") {
			return dto.TokenResponse{}, ErrTokenUnauthorizedClient
		}
		return s.exchangeCode(ctx, client, req)
	case "refresh_token":
		if !hasGrantType(client, "refresh_token") {
			return dto.TokenResponse{}, ErrTokenUnauthorizedClient
		}
		return s.rotate(ctx, client, req)
	default:
		return dto.TokenResponse{}, ErrTokenUnsupportedGrantType
	}
}

// ───────────────────── authorization_code ─────────────────────

func (s *tokenService) exchangeCode(ctx context.Context, client *repository.Client, req dto.TokenRequest) (dto.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("TokenService.Exchange"),
		logger.GrantType("authorization_code"),
		logger.ClientID(client.ClientID),
	)

	if req.Code == "" {
		return dto.TokenResponse{}, ErrTokenInvalidRequest
	}

	ac, err := s.grants.Redeem(ctx, client.ClientID, req.Code, req.RedirectURI, req.CodeVerifier)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	resp, err := s.issueTokens(ctx, client, ac.UserID, ac.Scopes, ac.Nonce, ac.CreatedAt, "")
	if err != nil {
		return dto.TokenResponse{}, err
	}

	log.Info("tokens issued", logger.UserID(ac.UserID), logger.Scope(resp.Scope))
	return resp, nil
}

// ───────────────────── refresh_token ─────────────────────

func (s *tokenService) rotate(ctx context.Context, client *repository.Client, req dto.TokenRequest) (dto.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("TokenService.Rotate"),
		logger.GrantType("refresh_token"),
		logger.ClientID(client.ClientID),
	)

	if req.RefreshToken == "" {
		return dto.TokenResponse{}, ErrTokenInvalidRequest
	}

	rt, err := s.dal.RefreshTokens().GetByHash(ctx, tokens.SHA256Base64URL(req.RefreshToken))
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.TokenResponse{}, ErrTokenInvalidGrant
		}
		log.Error("refresh token lookup failed", logger.Err(err))
		return dto.TokenResponse{}, ErrTokenServerError
	}

	// Token de otro client: misma respuesta que un token inexistente.
	if rt.ClientID != client.ClientID {
		return dto.TokenResponse{}, ErrTokenInvalidGrant
	}

	now := s.clock.Now()

	// Un token revocado o expirado que vuelve a presentarse es un replay:
	// se revoca la familia completa.
	if rt.Revoked() || now.After(rt.ExpiresAt) {
		return dto.TokenResponse{}, s.handleReplay(ctx, log, rt, now)
	}

	// Scope narrowing permitido, escalación no. Se chequea ANTES del
	// consume: un request con scope inválido no muta estado.
	scopes, err := narrowScopes(rt.Scopes, req.Scope)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	won, err := s.dal.RefreshTokens().Consume(ctx, rt.ID, now)
	if err != nil {
		log.Error("refresh token consume failed", logger.Err(err))
		return dto.TokenResponse{}, ErrTokenServerError
	}
	if !won {
		// Perder la carrera del flip equivale a presentar un token revocado.
		return dto.TokenResponse{}, s.handleReplay(ctx, log, rt, now)
	}

	resp, err := s.issueTokens(ctx, client, rt.UserID, scopes, "", time.Time{}, rt.FamilyID)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	resp.RefreshToken, err = s.mintRefresh(ctx, client, rt.UserID, scopes, rt.FamilyID, &rt.ID)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	log.Info("refresh token rotated",
		logger.UserID(rt.UserID),
		logger.FamilyID(rt.FamilyID),
		logger.Scope(resp.Scope),
	)
	return resp, nil
}

// handleReplay revokes the whole family and returns invalid_grant. The
// response never distinguishes replay from expiry: no oracle for attackers.
func (s *tokenService) handleReplay(ctx context.Context, log *zap.Logger, rt *repository.RefreshToken, now time.Time) error {
	n, err := s.dal.RefreshTokens().RevokeFamily(ctx, rt.FamilyID, now)
	if err != nil {
		logger.From(ctx).Error("family revocation failed",
			logger.Err(err),
			logger.FamilyID(rt.FamilyID),
		)
		return ErrTokenServerError
	}

	httpmetrics.RecordTokenReplay("refresh_token")
	log.Warn("refresh token replay detected, family revoked",
		logger.FamilyID(rt.FamilyID),
		logger.UserID(rt.UserID),
		logger.Count(n),
	)
	return ErrTokenInvalidGrant
}

// ───────────────────── issuance helpers ─────────────────────

// issueTokens mints the access token (and ID token when scopes include
// openid). authorization_code grants also get a refresh token here; refresh
// rotations mint theirs separately to carry the family forward.
func (s *tokenService) issueTokens(ctx context.Context, client *repository.Client, userID string, scopes []string, nonce string, authTime time.Time, familyID string) (dto.TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.issueTokens"))
	now := s.clock.Now()

	accessTTL := s.effectiveTTL(client.AccessTokenTTL, s.accessTTL)

	access, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("access token generation failed", logger.Err(err))
		return dto.TokenResponse{}, ErrTokenServerError
	}
	at := &repository.AccessToken{
		ID:        uuid.NewString(),
		TokenHash: tokens.SHA256Base64URL(access),
		ClientID:  client.ClientID,
		UserID:    userID,
		Scopes:    scopes,
		IssuedAt:  now,
		ExpiresAt: now.Add(accessTTL),
	}
	if err := s.dal.AccessTokens().Create(ctx, at); err != nil {
		log.Error("access token persist failed", logger.Err(err))
		return dto.TokenResponse{}, ErrTokenServerError
	}

	resp := dto.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTTL.Seconds()),
		Scope:       strings.Join(scopes, " "),
	}

	// Grant inicial: refresh token con familia nueva.
	if familyID == "" && hasGrantType(client, "refresh_token") {
		resp.RefreshToken, err = s.mintRefresh(ctx, client, userID, scopes, uuid.NewString(), nil)
		if err != nil {
			return dto.TokenResponse{}, err
		}
	}

	if containsScope(scopes, "openid") {
		idToken, err := s.mintIDToken(ctx, client, userID, scopes, nonce, authTime, now)
		if err != nil {
			return dto.TokenResponse{}, err
		}
		resp.IDToken = idToken
	}

	return resp, nil
}

func (s *tokenService) mintRefresh(ctx context.Context, client *repository.Client, userID string, scopes []string, familyID string, rotatedFrom *string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.mintRefresh"))
	now := s.clock.Now()
	refreshTTL := s.effectiveTTL(client.RefreshTokenTTL, s.refreshTTL)

	refresh, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("refresh token generation failed", logger.Err(err))
		return "", ErrTokenServerError
	}
	rt := &repository.RefreshToken{
		ID:          uuid.NewString(),
		TokenHash:   tokens.SHA256Base64URL(refresh),
		ClientID:    client.ClientID,
		UserID:      userID,
		Scopes:      scopes,
		FamilyID:    familyID,
		RotatedFrom: rotatedFrom,
		IssuedAt:    now,
		ExpiresAt:   now.Add(refreshTTL),
	}
	if err := s.dal.RefreshTokens().Create(ctx, rt); err != nil {
		log.Error("refresh token persist failed", logger.Err(err))
		return "", ErrTokenServerError
	}
	return refresh, nil
}

func (s *tokenService) mintIDToken(ctx context.Context, client *repository.Client, userID string, scopes []string, nonce string, authTime, now time.Time) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.mintIDToken"))

	user, err := s.dal.Users().GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			// El usuario desapareció entre el grant y el exchange.
			return "", ErrTokenInvalidGrant
		}
		log.Error("user lookup failed", logger.Err(err), logger.UserID(userID))
		return "", ErrTokenServerError
	}

	extra := map[string]any{}
	if nonce != "" {
		extra["nonce"] = nonce
	}
	if !authTime.IsZero() {
		extra["auth_time"] = authTime.Unix()
	}
	if containsScope(scopes, "profile") {
		if user.Name != "" {
			extra["name"] = user.Name
		}
		if user.GivenName != "" {
			extra["given_name"] = user.GivenName
		}
		if user.FamilyName != "" {
			extra["family_name"] = user.FamilyName
		}
		if user.Picture != "" {
			extra["picture"] = user.Picture
		}
	}
	if containsScope(scopes, "email") {
		if user.Email != "" {
			extra["email"] = user.Email
			extra["email_verified"] = user.EmailVerified
		}
	}

	idTTL := s.effectiveTTL(client.IDTokenTTL, s.idTokenTTL)
	signed, _, err := s.issuer.IssueIDToken(userID, client.ClientID, now, idTTL, extra)
	if err != nil {
		log.Error("id token signing failed", logger.Err(err))
		return "", ErrTokenServerError
	}
	return signed, nil
}

func (s *tokenService) effectiveTTL(clientSeconds int, def time.Duration) time.Duration {
	if clientSeconds > 0 {
		return time.Duration(clientSeconds) * time.Second
	}
	return def
}

// narrowScopes returns the requested subset of the granted scopes.
// Empty request inherits the full granted set; any scope outside it is
// invalid_scope.
func narrowScopes(granted []string, requested string) ([]string, error) {
	fields := strings.Fields(requested)
	if len(fields) == 0 {
		return append([]string(nil), granted...), nil
	}
	allowed := make(map[string]struct{}, len(granted))
	for _, sc := range granted {
		allowed[sc] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{}, len(fields))
	for _, sc := range fields {
		if _, dup := seen[sc]; dup {
			continue
		}
		seen[sc] = struct{}{}
		if _, ok := allowed[sc]; !ok {
			return nil, ErrTokenInvalidScope
		}
		out = append(out, sc)
	}
	return out, nil
}

func containsScope(scopes []string, want string) bool {
	for _, sc := range scopes {
		if sc == want {
			return true
		}
	}
	return false
}
