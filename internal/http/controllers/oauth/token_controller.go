package oauth

import (
	"net/http"
	"strings"

	httpmetrics "github.com/dropDatabas3/idcore/internal/http"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	svc "github.com/dropDatabas3/idcore/internal/http/services/oauth"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
)

// TokenController handles POST /oauth2/token.
type TokenController struct {
	tokens svc.TokenService
}

// NewTokenController creates the controller.
func NewTokenController(tokens svc.TokenService) *TokenController {
	return &TokenController{tokens: tokens}
}

// Token handles the token endpoint for both supported grants.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Token"))

	if !requirePost(w, r) {
		return
	}

	clientID, clientSecret, usedBasic, err := clientCredentials(r)
	if err != nil {
		writeOAuthError(w, err, usedBasic)
		return
	}

	req := dto.TokenRequest{
		GrantType:    strings.TrimSpace(r.PostFormValue("grant_type")),
		Code:         strings.TrimSpace(r.PostFormValue("code")),
		RedirectURI:  strings.TrimSpace(r.PostFormValue("redirect_uri")),
		CodeVerifier: strings.TrimSpace(r.PostFormValue("code_verifier")),
		RefreshToken: strings.TrimSpace(r.PostFormValue("refresh_token")),
		Scope:        strings.TrimSpace(r.PostFormValue("scope")),
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}

	resp, err := c.tokens.Exchange(ctx, req)
	if err != nil {
		log.Debug("token exchange rejected",
			logger.GrantType(req.GrantType),
			logger.ClientID(req.ClientID),
			logger.Err(err),
		)
		writeOAuthError(w, err, usedBasic)
		return
	}

	httpmetrics.RecordTokenIssued(req.GrantType)
	writeJSON(w, http.StatusOK, resp)
}
