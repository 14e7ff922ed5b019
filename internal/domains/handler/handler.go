// Package handler wires the domain lifecycle endpoints to the domain service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qrius/internal/domains/models"
	"qrius/internal/domains/service"
	orgmodels "qrius/internal/orgs/models"
	"qrius/internal/platform/middleware"
	dErrors "qrius/pkg/domain-errors"
	"qrius/pkg/platform/httputil"
)

// DomainService defines the domain operations this handler exposes.
type DomainService interface {
	Get(ctx context.Context, orgID uuid.UUID) (*models.CustomDomain, error)
	CreateSubdomain(ctx context.Context, orgID uuid.UUID, label string) (*service.CreateResult, error)
	CreateCustom(ctx context.Context, orgID uuid.UUID, hostname string) (*service.CreateResult, error)
	Verify(ctx context.Context, orgID uuid.UUID) (*service.VerifyResult, error)
	Delete(ctx context.Context, orgID uuid.UUID) error
}

// OrgResolver resolves the caller's organization context and role.
type OrgResolver interface {
	GetUserOrganization(ctx context.Context, userID string, orgID uuid.UUID) (*orgmodels.Membership, error)
	RequireRole(ctx context.Context, userID string, orgID uuid.UUID, roles ...orgmodels.Role) error
}

// Handler exposes the /domains endpoints.
type Handler struct {
	service DomainService
	orgs    OrgResolver
	logger  *slog.Logger
}

// New constructs a domains handler with its dependencies.
func New(svc DomainService, orgs OrgResolver, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		orgs:    orgs,
		logger:  logger,
	}
}

// Register mounts the domain endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/domains", h.HandleGet)
	r.Post("/domains", h.HandlePost)
	r.Delete("/domains", h.HandleDelete)
}

type createRequest struct {
	Type      string `json:"type"`
	Subdomain string `json:"subdomain"`
	Domain    string `json:"domain"`
}

type domainResponse struct {
	Domain       *models.CustomDomain       `json:"domain"`
	Instructions *service.CNAMEInstructions `json:"instructions,omitempty"`
}

type verifyResponse struct {
	Domain          *models.CustomDomain `json:"domain"`
	AlreadyVerified bool                 `json:"alreadyVerified,omitempty"`
}

// HandleGet handles GET /domains requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.membership(w, r)
	if !ok {
		return
	}

	d, err := h.service.Get(ctx, m.OrganizationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "domain lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"org_id", m.OrganizationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domainResponse{Domain: d})
}

// HandlePost handles POST /domains. With ?action=verify it advances the
// verification state machine; otherwise it creates a domain.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("action") == "verify" {
		h.handleVerify(w, r)
		return
	}
	h.handleCreate(w, r)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	m, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var (
		result *service.CreateResult
		err    error
	)
	switch req.Type {
	case "subdomain":
		result, err = h.service.CreateSubdomain(ctx, m.OrganizationID, req.Subdomain)
	case "custom", "":
		result, err = h.service.CreateCustom(ctx, m.OrganizationID, req.Domain)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "type must be \"subdomain\" or \"custom\""))
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "domain creation failed",
			"request_id", requestID,
			"org_id", m.OrganizationID,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain created",
		"request_id", requestID,
		"org_id", m.OrganizationID,
		"domain", result.Domain.Domain,
		"type", string(result.Domain.Type),
	)
	httputil.WriteJSON(w, http.StatusCreated, domainResponse{
		Domain:       result.Domain,
		Instructions: result.Instructions,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, m.OrganizationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "domain verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"org_id", m.OrganizationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verifyResponse{
		Domain:          result.Domain,
		AlreadyVerified: result.AlreadyVerified,
	})
}

// HandleDelete handles DELETE /domains requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, m.OrganizationID); err != nil {
		h.logger.ErrorContext(ctx, "domain deletion failed",
			"request_id", middleware.GetRequestID(ctx),
			"org_id", m.OrganizationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// membership resolves the caller's organization context. The optional org_id
// query parameter selects among multiple memberships; absent, the primary
// membership is used.
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

// requireManager is membership plus the owner/admin role check all mutating
// endpoints share.
func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) (*orgmodels.Membership, bool) {
	m, ok := h.membership(w, r)
	if !ok {
		return nil, false
	}
	if err := h.orgs.RequireRole(r.Context(), middleware.GetUserID(r.Context()), m.OrganizationID, orgmodels.RoleOwner, orgmodels.RoleAdmin); err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return m, true
}
