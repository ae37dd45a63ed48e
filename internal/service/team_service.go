package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/billing"
	"github.com/gperojohn83-art/Construction/internal/ids"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/security"
)

type TeamService struct {
	members       MemberStore
	invitations   InvitationStore
	users         IdentityStore
	resolver      *MembershipResolver
	tasks         TaskEnqueuer
	invitationTTL time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

func NewTeamService(
	members MemberStore,
	invitations InvitationStore,
	users IdentityStore,
	resolver *MembershipResolver,
	tasks TaskEnqueuer,
	invitationTTL time.Duration,
	log zerolog.Logger,
) *TeamService {
	return &TeamService{
		members:       members,
		invitations:   invitations,
		users:         users,
		resolver:      resolver,
		tasks:         tasks,
		invitationTTL: invitationTTL,
		log:           log,
		now:           time.Now,
	}
}

func (s *TeamService) ListMembers(ctx context.Context, session models.Session) ([]models.Member, error) {
	if !session.HasOrganization() {
		return nil, ErrNoOrganization
	}
	return s.members.ListMembers(ctx, session.OrganizationID())
}

type inviteInput struct {
	Email string      `json:"email" validate:"required,email"`
	Role  models.Role `json:"role" validate:"required"`
}

// Invite lets an admin invite someone while the plan still has a free seat.
func (s *TeamService) Invite(ctx context.Context, session models.Session, email string, role models.Role) (models.Invitation, error) {
	input := inviteInput{Email: normalizeEmail(email), Role: role}
	if err := validateStruct(input); err != nil {
		return models.Invitation{}, err
	}
	if !input.Role.Valid() {
		return models.Invitation{}, invalid("role", "unknown role %q", input.Role)
	}

	membership, err := currentMembership(ctx, s.resolver, session)
	if err != nil {
		return models.Invitation{}, err
	}
	if !hasRole(membership, models.RoleAdmin) {
		return models.Invitation{}, ErrForbidden
	}

	current, err := s.members.CountByOrganization(ctx, membership.OrganizationID)
	if err != nil {
		return models.Invitation{}, err
	}
	if !billing.WithinLimit(membership.Plan, billing.ResourceUsers, current) {
		return models.Invitation{}, ErrPlanLimitReached
	}

	token, err := security.GenerateURLToken(32)
	if err != nil {
		return models.Invitation{}, err
	}

	invitation := models.Invitation{
		ID:             ids.New(),
		OrganizationID: membership.OrganizationID,
		Email:          input.Email,
		Role:           input.Role,
		InviterID:      session.UserID,
		Token:          token,
		Status:         models.InvitationPending,
		ExpiresAt:      s.now().Add(s.invitationTTL),
		CreatedAt:      s.now(),
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return models.Invitation{}, err
	}
	return invitation, nil
}

// Accept joins the caller to the inviting organization. The invitation must
// be addressed to the caller's email, still pending and unexpired, and the
// seat count is re-checked under the organization lock.
func (s *TeamService) Accept(ctx context.Context, session models.Session, token string) (models.Membership, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return models.Membership{}, err
	}
	if invitation.Status != models.InvitationPending || !invitation.ExpiresAt.After(s.now()) {
		return models.Membership{}, ErrInvitationInvalid
	}

	identity, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return models.Membership{}, err
	}
	if normalizeEmail(identity.Email) != normalizeEmail(invitation.Email) {
		return models.Membership{}, ErrForbidden
	}

	// The session follows the first membership only, so a second one would
	// never become visible.
	existing, err := s.resolver.ResolveMembership(ctx, identity.ID)
	if err != nil {
		return models.Membership{}, err
	}
	if existing != nil {
		return models.Membership{}, ErrAlreadyInOrganization
	}

	membership := models.Membership{
		ID:             ids.New(),
		OrganizationID: invitation.OrganizationID,
		UserID:         identity.ID,
		Role:           invitation.Role,
		CreatedAt:      s.now(),
	}
	err = s.invitations.Accept(ctx, invitation, membership, func(org models.Organization, current int) error {
		if !billing.WithinLimit(org.Plan, billing.ResourceUsers, current) {
			return ErrPlanLimitReached
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrInvitationNotPending):
		return models.Membership{}, ErrInvitationInvalid
	case errors.Is(err, repository.ErrAlreadyMember):
		return models.Membership{}, ErrAlreadyInOrganization
	default:
		return models.Membership{}, err
	}

	notifyAdmins(ctx, s.tasks, s.log, membership.OrganizationID, "member.joined", "New team member", identity.Name)
	return membership, nil
}

// UpdateRole changes another member's role. Admins cannot demote themselves,
// which keeps every organization with at least one admin.
func (s *TeamService) UpdateRole(ctx context.Context, session models.Session, userID string, role models.Role) error {
	if !role.Valid() {
		return invalid("role", "unknown role %q", role)
	}

	membership, err := currentMembership(ctx, s.resolver, session)
	if err != nil {
		return err
	}
	if !hasRole(membership, models.RoleAdmin) {
		return ErrForbidden
	}
	if userID == session.UserID {
		return invalid("userId", "cannot change your own role")
	}

	return s.members.UpdateRole(ctx, membership.OrganizationID, userID, role)
}
