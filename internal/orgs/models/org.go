package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan is the subscription tier of an organization.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// Organization is owned by the billing subsystem; this core only reads it to
// resolve the plan behind a capability gate.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanLimits is the per-plan capability row. WhiteLabel gates custom
// (non-subdomain) domain creation; the remaining quota fields are owned by
// other subsystems and read-only here.
type PlanLimits struct {
	Plan       Plan `json:"plan"`
	WhiteLabel bool `json:"white_label"`
}

// Role is a member's role within an organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Membership links a user to an organization with a role.
type Membership struct {
	UserID         string    `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           Role      `json:"role"`
}
