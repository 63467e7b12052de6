package oauth

// IntrospectRequest is the parsed form body of POST /oauth2/introspect.
type IntrospectRequest struct {
	Token         string
	TokenTypeHint string
}

// IntrospectionResponse follows RFC 7662 §2.2. Inactive tokens serialize
// as {"active": false} with every other field omitted.
type IntrospectionResponse struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Aud       string `json:"aud,omitempty"`
	Iss       string `json:"iss,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
}
