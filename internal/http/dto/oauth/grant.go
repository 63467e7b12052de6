package oauth

// GrantRequest is the JSON body of POST /admin/grants. The platform's
// login/consent layer calls this after authenticating the end user.
type GrantRequest struct {
	UserID              string `json:"user_id"`
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri"`
	Scope               string `json:"scope,omitempty"`
	Nonce               string `json:"nonce,omitempty"`
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
}

// GrantResponse carries the issued authorization code.
type GrantResponse struct {
	Code      string `json:"code"`
	ExpiresIn int64  `json:"expires_in"`
	Scope     string `json:"scope"`
}
