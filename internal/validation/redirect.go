package validation

import "net/url"

// ValidRedirectURI verifica que la URI sea absoluta (scheme + host) y sin fragment.
// El matching contra las URIs registradas del client es SIEMPRE por igualdad
// exacta de strings; esta función solo valida el formato al registrar.
func ValidRedirectURI(uri string) bool {
	if uri == "" {
		return false
	}
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	if u.Scheme == "" || u.Host == "" {
		return false
	}
	// RFC 6749 §3.1.2: el redirect URI no debe incluir fragment
	if u.Fragment != "" {
		return false
	}
	return true
}
