// Package oauth contains services for the OAuth2 endpoints.
package oauth

import "errors"

// Sentinel errors for the token endpoint, one per RFC 6749 §5.2 error code.
// Controllers map them to the wire format; services never write HTTP.
var (
	ErrTokenInvalidRequest       = errors.New("invalid_request")
	ErrTokenInvalidClient        = errors.New("invalid_client")
	ErrTokenInvalidGrant         = errors.New("invalid_grant")
	ErrTokenUnauthorizedClient   = errors.New("unauthorized_client")
	ErrTokenUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrTokenInvalidScope         = errors.New("invalid_scope")
	ErrTokenServerError          = errors.New("server_error")
)
