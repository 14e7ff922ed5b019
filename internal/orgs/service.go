// Package orgs implements the organization membership and plan-limit
// contracts the domain/link core consumes. Authentication itself lives in
// internal/identity; this package answers "which organization, which role,
// which capabilities".
package orgs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"qrius/internal/orgs/models"
	"qrius/internal/orgs/store"
	dErrors "qrius/pkg/domain-errors"
)

// Store is the read surface the service needs.
type Store interface {
	FindOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	FindPlanLimits(ctx context.Context, plan models.Plan) (*models.PlanLimits, error)
	FindMembership(ctx context.Context, userID string, orgID uuid.UUID) (*models.Membership, error)
	FindPrimaryMembership(ctx context.Context, userID string) (*models.Membership, error)
}

// WhiteLabelPlan is the lowest plan that carries the white-label capability.
// Surfaced in plan-gate errors as the upgrade hint.
const WhiteLabelPlan = models.PlanBusiness

// Service answers membership and capability questions.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New constructs the orgs service.
func New(s Store, logger *slog.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// GetUserOrganization resolves the organization context for a user. When
// orgID is uuid.Nil the user's primary membership is used.
func (s *Service) GetUserOrganization(ctx context.Context, userID string, orgID uuid.UUID) (*models.Membership, error) {
	var (
		m   *models.Membership
		err error
	)
	if orgID == uuid.Nil {
		m, err = s.store.FindPrimaryMembership(ctx, userID)
	} else {
		m, err = s.store.FindMembership(ctx, userID, orgID)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "no organization membership")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve membership")
	}
	return m, nil
}

// RequireRole verifies the user holds one of the given roles in the
// organization.
func (s *Service) RequireRole(ctx context.Context, userID string, orgID uuid.UUID, roles ...models.Role) error {
	m, err := s.GetUserOrganization(ctx, userID, orgID)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if m.Role == role {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "insufficient role for this operation")
}

// WhiteLabel reports whether the organization's plan carries the white-label
// capability that gates custom domain creation.
func (s *Service) WhiteLabel(ctx context.Context, orgID uuid.UUID) (bool, error) {
	org, err := s.store.FindOrganization(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}

	limits, err := s.store.FindPlanLimits(ctx, org.Plan)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A plan without a limits row grants nothing.
			s.logger.WarnContext(ctx, "no plan limits row for plan", "plan", org.Plan)
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load plan limits")
	}
	return limits.WhiteLabel, nil
}
