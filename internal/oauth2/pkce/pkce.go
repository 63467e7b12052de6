// Package pkce valida code verifiers PKCE (RFC 7636).
package pkce

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

const (
	MethodPlain = "plain"
	MethodS256  = "S256"
)

// Challenge computa el code_challenge S256 de un verifier:
// base64url sin padding de SHA256(verifier).
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Validate verifica un code_verifier contra el challenge almacenado.
// Métodos desconocidos fallan cerrado.
func Validate(verifier, challenge, method string) bool {
	if verifier == "" || challenge == "" {
		return false
	}
	switch method {
	case MethodPlain:
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	case MethodS256:
		computed := Challenge(verifier)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
	default:
		return false
	}
}
