package oidc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	svc "github.com/dropDatabas3/idcore/internal/http/services/oidc"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
)

// UserInfoController handles GET/POST /userinfo.
type UserInfoController struct {
	userinfo svc.UserInfoService
}

// NewUserInfoController creates the controller.
func NewUserInfoController(userinfo svc.UserInfoService) *UserInfoController {
	return &UserInfoController{userinfo: userinfo}
}

// UserInfo resolves the bearer access token to scope-gated claims.
func (c *UserInfoController) UserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UserInfoController.UserInfo"))

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := bearerToken(r)
	if raw == "" {
		w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo"`)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	resp, err := c.userinfo.UserInfo(ctx, raw)
	if err != nil {
		if errors.Is(err, svc.ErrInvalidToken) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo", error="invalid_token"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		log.Error("userinfo failed", logger.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(resp)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) > 7 && strings.EqualFold(ah[:7], "Bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ""
}
