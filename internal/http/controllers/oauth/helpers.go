// Package oauth contains controllers for the OAuth2 endpoints.
package oauth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	svc "github.com/dropDatabas3/idcore/internal/http/services/oauth"
)

// maxFormBody bounds form bodies on the OAuth endpoints.
const maxFormBody = 1 << 20 // 1 MiB

// clientCredentials extracts client authentication from Basic auth or the
// form body (client_secret_basic / client_secret_post). Presenting both at
// once is invalid_request per RFC 6749 §2.3.
func clientCredentials(r *http.Request) (id, secret string, usedBasic bool, err error) {
	formID := strings.TrimSpace(r.PostFormValue("client_id"))
	formSecret := r.PostFormValue("client_secret")

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "basic ") {
		raw, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(auth[len("Basic "):]))
		if decErr != nil {
			return "", "", true, svc.ErrTokenInvalidRequest
		}
		parts := strings.SplitN(string(raw), ":", 2)
		if len(parts) != 2 {
			return "", "", true, svc.ErrTokenInvalidRequest
		}
		// RFC 6749 §2.3.1: credenciales van form-urlencoded dentro del Basic.
		id, err = url.QueryUnescape(parts[0])
		if err != nil {
			return "", "", true, svc.ErrTokenInvalidRequest
		}
		secret, err = url.QueryUnescape(parts[1])
		if err != nil {
			return "", "", true, svc.ErrTokenInvalidRequest
		}
		if formSecret != "" || (formID != "" && formID != id) {
			return "", "", true, svc.ErrTokenInvalidRequest
		}
		return id, secret, true, nil
	}

	return formID, formSecret, false, nil
}

// writeJSON writes a 200 JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOAuthError maps service sentinels to the RFC 6749 §5.2 wire format.
func writeOAuthError(w http.ResponseWriter, err error, usedBasic bool) {
	code := "server_error"
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, svc.ErrTokenInvalidRequest):
		code, status = "invalid_request", http.StatusBadRequest
	case errors.Is(err, svc.ErrTokenInvalidClient):
		code, status = "invalid_client", http.StatusUnauthorized
	case errors.Is(err, svc.ErrTokenInvalidGrant):
		code, status = "invalid_grant", http.StatusBadRequest
	case errors.Is(err, svc.ErrTokenUnauthorizedClient):
		code, status = "unauthorized_client", http.StatusBadRequest
	case errors.Is(err, svc.ErrTokenUnsupportedGrantType):
		code, status = "unsupported_grant_type", http.StatusBadRequest
	case errors.Is(err, svc.ErrTokenInvalidScope):
		code, status = "invalid_scope", http.StatusBadRequest
	}

	if code == "invalid_client" && usedBasic {
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth2", error="invalid_client"`)
	}

	writeJSON(w, status, dto.ErrorResponse{Error: code})
}

// requirePost rejects everything but POST with form content.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "invalid_request", ErrorDescription: "only POST is allowed"})
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request"})
		return false
	}
	return true
}
