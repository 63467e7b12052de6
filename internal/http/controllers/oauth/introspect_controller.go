package oauth

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	svc "github.com/dropDatabas3/idcore/internal/http/services/oauth"
)

// IntrospectController handles POST /oauth2/introspect (RFC 7662).
type IntrospectController struct {
	clients    svc.ClientService
	introspect svc.IntrospectService
}

// NewIntrospectController creates the controller.
func NewIntrospectController(clients svc.ClientService, introspect svc.IntrospectService) *IntrospectController {
	return &IntrospectController{clients: clients, introspect: introspect}
}

// Introspect answers the single RFC 7662 shape; a token the caller does
// not own is just inactive.
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
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

	req := dto.IntrospectRequest{
		Token:         r.PostFormValue("token"),
		TokenTypeHint: strings.TrimSpace(r.PostFormValue("token_type_hint")),
	}
	resp, err := c.introspect.Introspect(ctx, client.ClientID, req)
	if err != nil {
		writeOAuthError(w, err, usedBasic)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
