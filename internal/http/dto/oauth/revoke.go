package oauth

// RevokeRequest is the parsed form body of POST /oauth2/revoke (RFC 7009).
type RevokeRequest struct {
	Token         string
	TokenTypeHint string
}
