package oauth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	"github.com/dropDatabas3/idcore/internal/security/secret"
	tokens "github.com/dropDatabas3/idcore/internal/security/token"
	"github.com/dropDatabas3/idcore/internal/store"
	"github.com/dropDatabas3/idcore/internal/validation"
)

const cacheKeyPrefixClient = "client:"

// defaultGrantTypes applies when a registration omits grant_types.
var defaultGrantTypes = []string{"authorization_code", "refresh_token"}

// ClientService owns the client registry: registration, lookup with a
// read-mostly cache, secret and redirect validation, scope negotiation.
type ClientService interface {
	Register(ctx context.Context, req dto.RegisterClientRequest) (dto.RegisterClientResponse, error)

	// Lookup resolves an active client by public client_id.
	// Inactive or unknown clients return ErrTokenInvalidClient.
	Lookup(ctx context.Context, clientID string) (*repository.Client, error)

	// Authenticate resolves the client and validates its credentials.
	// Public clients must present no secret; confidential clients must
	// present the right one. Constant-time comparison underneath.
	Authenticate(ctx context.Context, clientID, clientSecret string) (*repository.Client, error)

	// Get returns a client including inactive ones (admin read).
	Get(ctx context.Context, clientID string) (*repository.Client, error)
	List(ctx context.Context) ([]repository.Client, error)
	SetActive(ctx context.Context, clientID string, active bool) error

	// ValidateRedirectURI checks exact string match against the registered set.
	ValidateRedirectURI(client *repository.Client, uri string) bool

	// NegotiateScopes intersects the requested scopes with the client's
	// allowed set. Empty request grants the full allowed set. A non-empty
	// request whose intersection is empty is invalid_scope.
	NegotiateScopes(client *repository.Client, requested string) ([]string, error)
}

// ClientDeps contains dependencies for ClientService.
type ClientDeps struct {
	DAL      store.DataAccessLayer
	Cache    cache.Client
	CacheTTL time.Duration
}

type clientService struct {
	dal      store.DataAccessLayer
	cache    cache.Client
	cacheTTL time.Duration
}

// NewClientService creates a new ClientService.
func NewClientService(d ClientDeps) ClientService {
	ttl := d.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &clientService{dal: d.DAL, cache: d.Cache, cacheTTL: ttl}
}

func (s *clientService) Register(ctx context.Context, req dto.RegisterClientRequest) (dto.RegisterClientResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ClientService.Register"))

	if strings.TrimSpace(req.Name) == "" {
		return dto.RegisterClientResponse{}, ErrTokenInvalidRequest
	}
	clientType := req.Type
	if clientType == "" {
		clientType = repository.ClientTypeConfidential
	}
	if clientType != repository.ClientTypePublic && clientType != repository.ClientTypeConfidential {
		return dto.RegisterClientResponse{}, ErrTokenInvalidRequest
	}
	if len(req.RedirectURIs) == 0 {
		return dto.RegisterClientResponse{}, ErrTokenInvalidRequest
	}
	for _, uri := range req.RedirectURIs {
		if !validation.ValidRedirectURI(uri) {
			return dto.RegisterClientResponse{}, ErrTokenInvalidRequest
		}
	}
	for _, sc := range req.Scopes {
		if !validation.ValidScopeName(sc) {
			return dto.RegisterClientResponse{}, ErrTokenInvalidRequest
		}
	}
	grantTypes := req.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = append([]string(nil), defaultGrantTypes...)
	}
	for _, gt := range grantTypes {
		if gt != "authorization_code" && gt != "refresh_token" {
			return dto.RegisterClientResponse{}, ErrTokenInvalidRequest
		}
	}

	clientID, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		log.Error("client_id generation failed", logger.Err(err))
		return dto.RegisterClientResponse{}, ErrTokenServerError
	}

	var plainSecret, secretHash string
	if clientType == repository.ClientTypeConfidential {
		plainSecret, err = tokens.GenerateOpaqueToken(32)
		if err != nil {
			log.Error("secret generation failed", logger.Err(err))
			return dto.RegisterClientResponse{}, ErrTokenServerError
		}
		secretHash, err = secret.Hash(secret.Default, plainSecret)
		if err != nil {
			log.Error("secret hashing failed", logger.Err(err))
			return dto.RegisterClientResponse{}, ErrTokenServerError
		}
	}

	// PKCE siempre obligatorio para clients public
	requirePKCE := req.RequirePKCE || clientType == repository.ClientTypePublic

	now := time.Now().UTC()
	c := &repository.Client{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		Name:         strings.TrimSpace(req.Name),
		Type:         clientType,
		SecretHash:   secretHash,
		RedirectURIs: append([]string(nil), req.RedirectURIs...),
		GrantTypes:   grantTypes,
		Scopes:       append([]string(nil), req.Scopes...),
		RequirePKCE:  requirePKCE,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.dal.Clients().Create(ctx, c); err != nil {
		log.Error("client create failed", logger.Err(err))
		return dto.RegisterClientResponse{}, ErrTokenServerError
	}

	log.Info("client registered",
		logger.ClientID(c.ClientID),
		logger.String("type", c.Type),
		logger.Bool("require_pkce", c.RequirePKCE),
	)

	return dto.RegisterClientResponse{
		ClientID:     c.ClientID,
		ClientSecret: plainSecret,
		Name:         c.Name,
		Type:         c.Type,
		RedirectURIs: c.RedirectURIs,
		GrantTypes:   c.GrantTypes,
		Scopes:       c.Scopes,
		RequirePKCE:  c.RequirePKCE,
	}, nil
}

func (s *clientService) Lookup(ctx context.Context, clientID string) (*repository.Client, error) {
	if clientID == "" {
		return nil, ErrTokenInvalidClient
	}

	if c := s.fromCache(ctx, clientID); c != nil {
		if !c.Active {
			return nil, ErrTokenInvalidClient
		}
		return c, nil
	}

	c, err := s.dal.Clients().GetByClientID(ctx, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTokenInvalidClient
		}
		logger.From(ctx).Error("client lookup failed", logger.Err(err), logger.ClientID(clientID))
		return nil, ErrTokenServerError
	}

	s.toCache(ctx, c)

	if !c.Active {
		return nil, ErrTokenInvalidClient
	}
	return c, nil
}

func (s *clientService) Authenticate(ctx context.Context, clientID, clientSecret string) (*repository.Client, error) {
	c, err := s.Lookup(ctx, clientID)
	if err != nil {
		return nil, err
	}

	switch c.Type {
	case repository.ClientTypePublic:
		if clientSecret != "" {
			return nil, ErrTokenInvalidClient
		}
	case repository.ClientTypeConfidential:
		if clientSecret == "" || !secret.Verify(clientSecret, c.SecretHash) {
			return nil, ErrTokenInvalidClient
		}
	default:
		return nil, ErrTokenInvalidClient
	}
	return c, nil
}

func (s *clientService) Get(ctx context.Context, clientID string) (*repository.Client, error) {
	c, err := s.dal.Clients().GetByClientID(ctx, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, err
		}
		return nil, ErrTokenServerError
	}
	return c, nil
}

func (s *clientService) List(ctx context.Context) ([]repository.Client, error) {
	return s.dal.Clients().List(ctx)
}

func (s *clientService) SetActive(ctx context.Context, clientID string, active bool) error {
	if err := s.dal.Clients().SetActive(ctx, clientID, active); err != nil {
		return err
	}
	s.invalidate(ctx, clientID)
	return nil
}

func (s *clientService) ValidateRedirectURI(client *repository.Client, uri string) bool {
	if client == nil || uri == "" {
		return false
	}
	// Match exacto, sin normalización: es la defensa contra open redirects.
	for _, allowed := range client.RedirectURIs {
		if allowed == uri {
			return true
		}
	}
	return false
}

func (s *clientService) NegotiateScopes(client *repository.Client, requested string) ([]string, error) {
	if client == nil {
		return nil, ErrTokenInvalidClient
	}

	fields := strings.Fields(requested)
	if len(fields) == 0 {
		return append([]string(nil), client.Scopes...), nil
	}

	allowed := make(map[string]struct{}, len(client.Scopes))
	for _, sc := range client.Scopes {
		allowed[sc] = struct{}{}
	}

	var out []string
	seen := make(map[string]struct{}, len(fields))
	for _, sc := range fields {
		if _, dup := seen[sc]; dup {
			continue
		}
		seen[sc] = struct{}{}
		if _, ok := allowed[sc]; ok {
			out = append(out, sc)
		}
	}
	if len(out) == 0 {
		return nil, ErrTokenInvalidScope
	}
	return out, nil
}

// ───────────────────── cache helpers ─────────────────────

func (s *clientService) fromCache(ctx context.Context, clientID string) *repository.Client {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cacheKeyPrefixClient+clientID)
	if err != nil {
		return nil
	}
	var c repository.Client
	if json.Unmarshal([]byte(raw), &c) != nil {
		return nil
	}
	return &c
}

func (s *clientService) toCache(ctx context.Context, c *repository.Client) {
	if s.cache == nil || c == nil {
		return
	}
	if b, err := json.Marshal(c); err == nil {
		_ = s.cache.Set(ctx, cacheKeyPrefixClient+c.ClientID, string(b), s.cacheTTL)
	}
}

func (s *clientService) invalidate(ctx context.Context, clientID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cacheKeyPrefixClient+clientID)
}
