package models

import "time"

type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

func AllPlans() []Plan {
	return []Plan{PlanFree, PlanPro, PlanEnterprise}
}

type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleSupervisor     Role = "SUPERVISOR"
	RoleSubcontractor  Role = "SUBCONTRACTOR"
	RoleViewer         Role = "VIEWER"
)

func AllRoles() []Role {
	return []Role{RoleAdmin, RoleProjectManager, RoleSupervisor, RoleSubcontractor, RoleViewer}
}

func (r Role) Valid() bool {
	for _, role := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

type Organization struct {
	ID            string
	Name          string
	Slug          string
	Plan          Plan
	PlanExpiresAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Membership struct {
	ID             string
	OrganizationID string
	UserID         string
	Role           Role
	CreatedAt      time.Time
}

// ActiveMembership is the organization context attached to a session.
type ActiveMembership struct {
	OrganizationID string
	Role           Role
	Plan           Plan
	OrgName        string
	OrgSlug        string
}

// Member is a membership joined with the identity it belongs to.
type Member struct {
	Membership
	Email string
	Name  string
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

type Invitation struct {
	ID             string
	OrganizationID string
	Email          string
	Role           Role
	InviterID      string
	Token          string
	Status         InvitationStatus
	ExpiresAt      time.Time
	AcceptedBy     *string
	CreatedAt      time.Time
}
