package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
)

// MembershipResolver finds the organization context of an identity.
type MembershipResolver struct {
	memberships   MembershipFinder
	organizations OrganizationReader
}

func NewMembershipResolver(memberships MembershipFinder, organizations OrganizationReader) *MembershipResolver {
	return &MembershipResolver{memberships: memberships, organizations: organizations}
}

// ResolveMembership returns the identity's first membership (earliest
// created, then lowest id) with its organization's plan and names, or nil
// when the identity belongs to no organization.
func (r *MembershipResolver) ResolveMembership(ctx context.Context, identityID string) (*models.ActiveMembership, error) {
	membership, err := r.memberships.FindFirstByUser(ctx, identityID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve membership: %w", err)
	}

	org, err := r.organizations.GetByID(ctx, membership.OrganizationID)
	if err != nil {
		// A membership pointing at a missing organization is a broken
		// invariant, not an absent membership.
		return nil, fmt.Errorf("load organization %s of membership %s: %w", membership.OrganizationID, membership.ID, err)
	}

	return &models.ActiveMembership{
		OrganizationID: org.ID,
		Role:           membership.Role,
		Plan:           org.Plan,
		OrgName:        org.Name,
		OrgSlug:        org.Slug,
	}, nil
}

// currentMembership re-reads the caller's membership for a decision that
// must not trust the token. A session whose organization no longer matches
// storage is stale.
func currentMembership(ctx context.Context, resolver *MembershipResolver, session models.Session) (*models.ActiveMembership, error) {
	fresh, err := resolver.ResolveMembership(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		if session.HasOrganization() {
			return nil, ErrStaleSession
		}
		return nil, ErrNoOrganization
	}
	if fresh.OrganizationID != session.OrganizationID() {
		return nil, ErrStaleSession
	}
	return fresh, nil
}

func hasRole(m *models.ActiveMembership, roles ...models.Role) bool {
	for _, role := range roles {
		if m.Role == role {
			return true
		}
	}
	return false
}
