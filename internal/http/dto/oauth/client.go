package oauth

import "time"

// RegisterClientRequest is the JSON body of POST /admin/clients.
type RegisterClientRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"` // "public" | "confidential"
	RedirectURIs []string `json:"redirect_uris"`
	GrantTypes   []string `json:"grant_types,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
	RequirePKCE  bool     `json:"require_pkce"`
}

// RegisterClientResponse returns the generated credentials.
// ClientSecret is returned exactly once; only its hash is stored.
type RegisterClientResponse struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret,omitempty"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	RedirectURIs []string `json:"redirect_uris"`
	GrantTypes   []string `json:"grant_types"`
	Scopes       []string `json:"scopes"`
	RequirePKCE  bool     `json:"require_pkce"`
}

// ClientSummary is the admin read model (never exposes the secret hash).
type ClientSummary struct {
	ClientID     string    `json:"client_id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	RedirectURIs []string  `json:"redirect_uris"`
	GrantTypes   []string  `json:"grant_types"`
	Scopes       []string  `json:"scopes"`
	RequirePKCE  bool      `json:"require_pkce"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
