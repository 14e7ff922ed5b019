package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"qrius/internal/orgs/models"
)

// Postgres reads the organization, plan_limits, and org_members tables.
//
// Expected schema:
//
//	CREATE TABLE organizations (
//	    id         UUID PRIMARY KEY,
//	    name       TEXT NOT NULL,
//	    plan       TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE plan_limits (
//	    plan        TEXT PRIMARY KEY,
//	    white_label BOOLEAN NOT NULL
//	);
//	CREATE TABLE org_members (
//	    user_id         TEXT NOT NULL,
//	    organization_id UUID NOT NULL REFERENCES organizations(id),
//	    role            TEXT NOT NULL,
//	    PRIMARY KEY (user_id, organization_id)
//	);
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed org store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	var plan string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, plan, created_at FROM organizations WHERE id = $1`, id,
	).Scan(&org.ID, &org.Name, &plan, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find organization: %w", err)
	}
	org.Plan = models.Plan(plan)
	return &org, nil
}

func (s *Postgres) FindPlanLimits(ctx context.Context, plan models.Plan) (*models.PlanLimits, error) {
	var limits models.PlanLimits
	var planName string
	err := s.db.QueryRowContext(ctx,
		`SELECT plan, white_label FROM plan_limits WHERE plan = $1`, string(plan),
	).Scan(&planName, &limits.WhiteLabel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find plan limits: %w", err)
	}
	limits.Plan = models.Plan(planName)
	return &limits, nil
}

func (s *Postgres) FindMembership(ctx context.Context, userID string, orgID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, organization_id, role FROM org_members WHERE user_id = $1 AND organization_id = $2`,
		userID, orgID,
	).Scan(&m.UserID, &m.OrganizationID, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	m.Role = models.Role(role)
	return &m, nil
}

func (s *Postgres) FindPrimaryMembership(ctx context.Context, userID string) (*models.Membership, error) {
	var m models.Membership
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, organization_id, role FROM org_members WHERE user_id = $1 ORDER BY organization_id LIMIT 1`,
		userID,
	).Scan(&m.UserID, &m.OrganizationID, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find primary membership: %w", err)
	}
	m.Role = models.Role(role)
	return &m, nil
}
