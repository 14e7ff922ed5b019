// Package handler wires the link CRUD endpoints to the link service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qrius/internal/links/models"
	"qrius/internal/links/service"
	orgmodels "qrius/internal/orgs/models"
	"qrius/internal/platform/middleware"
	dErrors "qrius/pkg/domain-errors"
	"qrius/pkg/platform/httputil"
)

// LinkService defines the link operations this handler exposes.
type LinkService interface {
	Create(ctx context.Context, orgID uuid.UUID, req service.CreateRequest) (*models.Link, error)
	Get(ctx context.Context, orgID, linkID uuid.UUID) (*models.Link, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Link, error)
	Update(ctx context.Context, orgID, linkID uuid.UUID, req service.UpdateRequest) (*models.Link, error)
	Delete(ctx context.Context, orgID, linkID uuid.UUID) error
}

// OrgResolver resolves the caller's organization context.
type OrgResolver interface {
	GetUserOrganization(ctx context.Context, userID string, orgID uuid.UUID) (*orgmodels.Membership, error)
}

// Handler exposes the /links endpoints. Unlike domains, link management is
// open to every member of the organization.
type Handler struct {
	service LinkService
	orgs    OrgResolver
	logger  *slog.Logger
}

// New constructs a links handler with its dependencies.
func New(svc LinkService, orgs OrgResolver, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		orgs:    orgs,
		logger:  logger,
	}
}

// Register mounts the link endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/links", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{linkID}", h.HandleGet)
		r.Patch("/{linkID}", h.HandleUpdate)
		r.Delete("/{linkID}", h.HandleDelete)
	})
}

type createRequest struct {
	DestinationURL string `json:"destination_url"`
	Alias          string `json:"alias,omitempty"`
	Password       string `json:"password,omitempty"`
}

type updateRequest struct {
	DestinationURL *string `json:"destination_url,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// HandleCreate handles POST /links requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.membership(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	l, err := h.service.Create(ctx, m.OrganizationID, service.CreateRequest{
		DestinationURL: req.DestinationURL,
		Alias:          req.Alias,
		Password:       req.Password,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "link creation failed",
			"request_id", middleware.GetRequestID(ctx),
			"org_id", m.OrganizationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "link created",
		"request_id", middleware.GetRequestID(ctx),
		"org_id", m.OrganizationID,
		"short_code", l.ShortCode,
	)
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"link": l})
}

// HandleList handles GET /links requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.membership(w, r)
	if !ok {
		return
	}

	links, err := h.service.List(ctx, m.OrganizationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if links == nil {
		links = []*models.Link{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"links": links})
}

// HandleGet handles GET /links/{linkID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.membership(w, r)
	if !ok {
		return
	}
	linkID, ok := h.linkID(w, r)
	if !ok {
		return
	}

	l, err := h.service.Get(ctx, m.OrganizationID, linkID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"link": l})
}

// HandleUpdate handles PATCH /links/{linkID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.membership(w, r)
	if !ok {
		return
	}
	linkID, ok := h.linkID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	l, err := h.service.Update(ctx, m.OrganizationID, linkID, service.UpdateRequest{
		DestinationURL: req.DestinationURL,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "link update failed",
			"request_id", middleware.GetRequestID(ctx),
			"org_id", m.OrganizationID,
			"link_id", linkID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"link": l})
}

// HandleDelete handles DELETE /links/{linkID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.membership(w, r)
	if !ok {
		return
	}
	linkID, ok := h.linkID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, m.OrganizationID, linkID); err != nil {
		h.logger.ErrorContext(ctx, "link deletion failed",
			"request_id", middleware.GetRequestID(ctx),
			"org_id", m.OrganizationID,
			"link_id", linkID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) membership(w http.ResponseWriter, r *http.Request) (*orgmodels.Membership, bool) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}

	orgID := uuid.Nil
	if raw := r.URL.Query().Get("org_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid org_id"))
			return nil, false
		}
		orgID = parsed
	}

	m, err := h.orgs.GetUserOrganization(ctx, userID, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return m, true
}

func (h *Handler) linkID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "linkID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid link id"))
		return uuid.Nil, false
	}
	return id, true
}
