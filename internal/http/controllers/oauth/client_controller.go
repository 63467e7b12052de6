package oauth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
	dto "github.com/dropDatabas3/idcore/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/idcore/internal/http/errors"
	svc "github.com/dropDatabas3/idcore/internal/http/services/oauth"
	"github.com/dropDatabas3/idcore/internal/observability/logger"
)

// ClientController handles the admin client-registry endpoints.
// These speak the admin AppError JSON, not the OAuth wire format.
type ClientController struct {
	clients svc.ClientService
}

// NewClientController creates the controller.
func NewClientController(clients svc.ClientService) *ClientController {
	return &ClientController{clients: clients}
}

// Register handles POST /admin/clients.
func (c *ClientController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ClientController.Register"))

	var req dto.RegisterClientRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBody)).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	resp, err := c.clients.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrTokenInvalidRequest):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid client registration"))
		default:
			log.Error("client registration failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /admin/clients.
func (c *ClientController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := c.clients.List(ctx)
	if err != nil {
		logger.From(ctx).Error("client list failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	out := make([]dto.ClientSummary, 0, len(clients))
	for i := range clients {
		out = append(out, summary(&clients[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /admin/clients/{client_id}.
func (c *ClientController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := chi.URLParam(r, "client_id")

	client, err := c.clients.Get(ctx, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		logger.From(ctx).Error("client get failed", logger.Err(err), logger.ClientID(clientID))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary(client))
}

// SetActive handles PATCH /admin/clients/{client_id}.
func (c *ClientController) SetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := chi.URLParam(r, "client_id")

	var body struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBody)).Decode(&body); err != nil || body.Active == nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("active is required"))
		return
	}

	if err := c.clients.SetActive(ctx, clientID, *body.Active); err != nil {
		if repository.IsNotFound(err) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		logger.From(ctx).Error("client set active failed", logger.Err(err), logger.ClientID(clientID))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func summary(c *repository.Client) dto.ClientSummary {
	return dto.ClientSummary{
		ClientID:     c.ClientID,
		Name:         c.Name,
		Type:         c.Type,
		RedirectURIs: c.RedirectURIs,
		GrantTypes:   c.GrantTypes,
		Scopes:       c.Scopes,
		RequirePKCE:  c.RequirePKCE,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
	}
}
