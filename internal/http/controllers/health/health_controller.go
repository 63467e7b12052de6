// Package health contains liveness/readiness controllers.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
	"github.com/dropDatabas3/idcore/internal/store"
)

// Controller expone /healthz y /readyz.
type Controller struct {
	dal   store.DataAccessLayer
	cache cache.Client
}

// NewController creates the controller.
func NewController(dal store.DataAccessLayer, c cache.Client) *Controller {
	return &Controller{dal: dal, cache: c}
}

// Healthz es liveness puro: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Readyz verifica las dependencias (store y cache) con timeout corto.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := c.dal.Ping(ctx); err != nil {
		logger.From(ctx).Warn("store ping failed", logger.Err(err))
		checks["store"] = "down"
		healthy = false
	} else {
		checks["store"] = "ok"
	}

	if c.cache != nil {
		if err := c.cache.Ping(ctx); err != nil {
			logger.From(ctx).Warn("cache ping failed", logger.Err(err))
			checks["cache"] = "down"
			healthy = false
		} else {
			checks["cache"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(checks)
}
