// Package jwt firma y verifica ID tokens OIDC.
//
// El provider firma con un único secret simétrico (HS256). Firma asimétrica
// con rotación de claves vía jwks_uri queda como mejora futura documentada.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Issuer firma ID tokens con el signing secret del servidor.
type Issuer struct {
	Iss    string // "iss"
	Secret []byte // HS256 signing secret
}

func NewIssuer(iss string, secret []byte) *Issuer {
	return &Issuer{Iss: iss, Secret: secret}
}

var ErrNoSecret = errors.New("jwt: signing secret not configured")

// SignRaw firma un MapClaims arbitrario y devuelve el JWT firmado.
func (i *Issuer) SignRaw(claims jwtv5.MapClaims) (string, error) {
	if len(i.Secret) == 0 {
		return "", ErrNoSecret
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.Secret)
}

// IssueIDToken emite un ID Token OIDC con claims estándar y extras.
// extra nunca pisa los claims estándar.
func (i *Issuer) IssueIDToken(sub, aud string, now time.Time, ttl time.Duration, extra map[string]any) (string, time.Time, error) {
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	for k, v := range extra {
		if _, reserved := claims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	signed, err := i.SignRaw(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Keyfunc devuelve un jwt.Keyfunc para verificar tokens firmados por este issuer.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(*jwtv5.Token) (any, error) {
		if len(i.Secret) == 0 {
			return nil, ErrNoSecret
		}
		return i.Secret, nil
	}
}

// Parse verifica firma y validez temporal de un token emitido por este issuer.
func (i *Issuer) Parse(token string) (jwtv5.MapClaims, error) {
	parsed, err := jwtv5.Parse(token, i.Keyfunc(), jwtv5.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("jwt: invalid token")
	}
	return claims, nil
}
