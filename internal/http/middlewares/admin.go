package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dropDatabas3/idcore/internal/http/errors"
)

// RequireAdminKey valida el header X-Admin-API-Key contra la key configurada.
// Si no hay key configurada, los endpoints admin quedan cerrados (fail closed).
// La comparación es de tiempo constante.
func RequireAdminKey(apiKey string) Middleware {
	key := []byte(strings.TrimSpace(apiKey))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("admin API disabled"))
				return
			}

			got := []byte(strings.TrimSpace(r.Header.Get("X-Admin-API-Key")))
			if len(got) == 0 {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("missing X-Admin-API-Key"))
				return
			}
			if subtle.ConstantTimeCompare(got, key) != 1 {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("invalid admin key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
