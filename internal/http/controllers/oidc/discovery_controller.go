// Package oidc contains controllers for the OIDC endpoints.
package oidc

import (
	"encoding/json"
	"net/http"

	svc "github.com/dropDatabas3/idcore/internal/http/services/oidc"
)

// DiscoveryController handles GET /.well-known/openid-configuration and
// the (deliberately empty) JWKS document.
type DiscoveryController struct {
	discovery svc.DiscoveryService
}

// NewDiscoveryController creates the controller.
func NewDiscoveryController(discovery svc.DiscoveryService) *DiscoveryController {
	return &DiscoveryController{discovery: discovery}
}

// Discovery serves the static provider metadata.
func (c *DiscoveryController) Discovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(c.discovery.Document(r.Context()))
}

// JWKS serves an empty keyset: ID tokens are HS256-signed with a shared
// secret, so there is no public key to publish. The endpoint exists so the
// jwks_uri in discovery resolves.
func (c *DiscoveryController) JWKS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"keys":[]}` + "\n"))
}
