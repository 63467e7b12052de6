package middlewares

import "net/http"

// WithNoStore agrega Cache-Control: no-store a la respuesta.
// Obligatorio en endpoints que devuelven tokens o credenciales.
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Pragma", "no-cache")
			next.ServeHTTP(w, r)
		})
	}
}

// WithCacheControl agrega Cache-Control con TTL configurable.
// Útil para discovery, que puede cachearse unos minutos.
func WithCacheControl(directive string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", directive)
			next.ServeHTTP(w, r)
		})
	}
}
