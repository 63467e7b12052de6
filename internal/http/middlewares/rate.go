package middlewares

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/idcore/internal/http/errors"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	"github.com/dropDatabas3/idcore/internal/rate"
)

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// extractFormField lee hasta max bytes del body (si es form-encoded) para
// extraer un campo y repone el body para el handler.
func extractFormField(r *http.Request, field string, max int64) string {
	if r.Method != http.MethodPost ||
		!strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/x-www-form-urlencoded") {
		return ""
	}
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r.Body, max)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))

	if vals, err := url.ParseQuery(buf.String()); err == nil {
		return vals.Get(field)
	}
	return ""
}

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// DefaultRateKey genera una clave basada en IP, path y client_id (si viene en el form).
// Separa límites por client en el token endpoint sin consumir el body completo.
func DefaultRateKey(r *http.Request) string {
	ip := clientIP(r)
	path := r.URL.Path

	clientID := extractFormField(r, "client_id", 4096)
	if clientID == "" {
		clientID = "-"
	}
	return ip + "|" + path + "|" + clientID
}

// IPOnlyRateKey genera una clave basada solo en IP.
func IPOnlyRateKey(r *http.Request) string {
	return clientIP(r)
}

// RateLimitConfig configura el comportamiento del middleware de rate limiting.
type RateLimitConfig struct {
	Limiter   rate.Limiter
	KeyFunc   RateKeyFunc
	Whitelist []string // Paths que se excluyen del rate limiting (ej: /healthz)
}

// WithRateLimit crea un middleware de rate limiting.
// En caso de error del limiter, el request pasa (fail-open: no tiramos el
// token endpoint porque Redis esté caído).
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = DefaultRateKey
	}

	whitelistSet := make(map[string]struct{})
	for _, p := range cfg.Whitelist {
		whitelistSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelistSet[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyFunc(r)
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				if res.WindowTTL > 0 {
					resetAt := time.Now().Add(res.WindowTTL).Unix()
					w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}

			// Headers informativos
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))
			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}

			next.ServeHTTP(w, r)
		})
	}
}
