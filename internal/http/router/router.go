// Package router arma el http.Handler completo del provider.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/idcore/internal/http"
	"github.com/dropDatabas3/idcore/internal/http/controllers"
	mw "github.com/dropDatabas3/idcore/internal/http/middlewares"
	"github.com/dropDatabas3/idcore/internal/rate"
)

// Deps contains everything the router needs.
type Deps struct {
	Controllers *controllers.Controllers

	// AdminAPIKey guards /admin; empty means the admin surface is closed.
	AdminAPIKey string

	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter rate.Limiter

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
}

// New builds the root handler with the shared middleware chain applied.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	c := d.Controllers

	noStore := mw.WithNoStore()

	// ── OAuth2 core ──
	mux.Handle("/oauth2/token", mw.Chain(http.HandlerFunc(c.OAuth.Token.Token), noStore))
	mux.Handle("/oauth2/revoke", mw.Chain(http.HandlerFunc(c.OAuth.Revoke.Revoke), noStore))
	mux.Handle("/oauth2/introspect", mw.Chain(http.HandlerFunc(c.OAuth.Introspect.Introspect), noStore))

	// ── OIDC ──
	mux.Handle("/.well-known/openid-configuration",
		mw.Chain(http.HandlerFunc(c.OIDC.Discovery.Discovery), mw.WithCacheControl("public, max-age=300")))
	mux.Handle("/.well-known/jwks.json",
		mw.Chain(http.HandlerFunc(c.OIDC.Discovery.JWKS), mw.WithCacheControl("public, max-age=300")))
	mux.Handle("/userinfo", mw.Chain(http.HandlerFunc(c.OIDC.UserInfo.UserInfo), noStore))

	// ── Admin (chi, API-key guarded) ──
	mux.Handle("/admin/", mw.Chain(adminRouter(d), mw.RequireAdminKey(d.AdminAPIKey)))

	// ── Ops ──
	mux.HandleFunc("/healthz", c.Health.Healthz)
	mux.HandleFunc("/readyz", c.Health.Readyz)
	if d.MetricsHandler != nil {
		mux.Handle("/metrics", d.MetricsHandler)
	}

	// Cadena global: recover por fuera, métricas por dentro.
	return mw.Chain(httpx.WithMetrics(mux),
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithRateLimit(mw.RateLimitConfig{
			Limiter:   d.RateLimiter,
			Whitelist: []string{"/healthz", "/readyz", "/metrics"},
		}),
		mw.WithLogging(),
	)
}

// adminRouter rutea la superficie de administración con chi.
func adminRouter(d Deps) http.Handler {
	c := d.Controllers
	r := chi.NewRouter()

	r.Route("/admin", func(r chi.Router) {
		r.Post("/clients", c.OAuth.Clients.Register)
		r.Get("/clients", c.OAuth.Clients.List)
		r.Get("/clients/{client_id}", c.OAuth.Clients.Get)
		r.Patch("/clients/{client_id}", c.OAuth.Clients.SetActive)
		r.Post("/grants", c.OAuth.Grants.Issue)
	})

	return r
}
