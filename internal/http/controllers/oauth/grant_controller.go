package oauth

import (
	"encoding/json"
	"errors"
	"net/http"

	httpmetrics "github.com/dropDatabas3/idcore/internal/http"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/idcore/internal/http/errors"
	svc "github.com/dropDatabas3/idcore/internal/http/services/oauth"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
)

// GrantController handles POST /admin/grants: the entry point the
// platform's login/consent layer uses to mint authorization codes for
// users it already authenticated.
type GrantController struct {
	grants svc.GrantService
}

// NewGrantController creates the controller.
func NewGrantController(grants svc.GrantService) *GrantController {
	return &GrantController{grants: grants}
}

// Issue handles POST /admin/grants.
func (c *GrantController) Issue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("GrantController.Issue"))

	var req dto.GrantRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBody)).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	resp, err := c.grants.Issue(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrTokenInvalidRequest):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid grant request"))
		case errors.Is(err, svc.ErrTokenInvalidClient):
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown client"))
		case errors.Is(err, svc.ErrTokenUnauthorizedClient):
			httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("client not allowed authorization_code"))
		case errors.Is(err, svc.ErrTokenInvalidScope):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("scope not allowed"))
		default:
			log.Error("grant issuance failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	httpmetrics.RecordCodeIssued()
	writeJSON(w, http.StatusCreated, resp)
}
