package oauth

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	httpmetrics "github.com/dropDatabas3/idcore/internal/http"
	svc "github.com/dropDatabas3/idcore/internal/http/services/oauth"
)

// RevokeController handles POST /oauth2/revoke (RFC 7009).
type RevokeController struct {
	clients svc.ClientService
	revoke  svc.RevokeService
}

// NewRevokeController creates the controller.
func NewRevokeController(clients svc.ClientService, revoke svc.RevokeService) *RevokeController {
	return &RevokeController{clients: clients, revoke: revoke}
}

// Revoke always answers 200 for authenticated clients, including unknown
// or foreign tokens; only infra failures surface as errors.
func (c *RevokeController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !requirePost(w, r) {
		return
	}

	clientID, clientSecret, usedBasic, err := clientCredentials(r)
	if err != nil {
		writeOAuthError(w, err, usedBasic)
		return
	}
	client, err := c.clients.Authenticate(ctx, clientID, clientSecret)
	if err != nil {
		writeOAuthError(w, err, usedBasic)
		return
	}

	req := dto.RevokeRequest{
		Token:         r.PostFormValue("token"),
		TokenTypeHint: strings.TrimSpace(r.PostFormValue("token_type_hint")),
	}
	if err := c.revoke.Revoke(ctx, client.ClientID, req); err != nil {
		writeOAuthError(w, err, usedBasic)
		return
	}

	httpmetrics.RecordTokenRevoked(hintOrDefault(req.TokenTypeHint))
	w.WriteHeader(http.StatusOK)
}

func hintOrDefault(hint string) string {
	if hint == "refresh_token" {
		return "refresh_token"
	}
	return "access_token"
}
