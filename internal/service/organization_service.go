package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gperojohn83-art/Construction/internal/format"
	"github.com/gperojohn83-art/Construction/internal/ids"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
)

const maxSlugAttempts = 50

type OrganizationService struct {
	organizations OrganizationStore
	resolver      *MembershipResolver
}

func NewOrganizationService(organizations OrganizationStore, resolver *MembershipResolver) *OrganizationService {
	return &OrganizationService{organizations: organizations, resolver: resolver}
}

type createOrganizationInput struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// CreateOrganization onboards the caller: a FREE organization with the
// caller as ADMIN. The caller's token only carries it after a refresh.
func (s *OrganizationService) CreateOrganization(ctx context.Context, session models.Session, name string) (models.Organization, error) {
	input := createOrganizationInput{Name: name}
	if err := validateStruct(input); err != nil {
		return models.Organization{}, err
	}

	existing, err := s.resolver.ResolveMembership(ctx, session.UserID)
	if err != nil {
		return models.Organization{}, err
	}
	if existing != nil {
		return models.Organization{}, ErrAlreadyInOrganization
	}

	base := format.Slugify(input.Name)
	if base == "" {
		base = "organization"
	}

	org := models.Organization{
		ID:   ids.New(),
		Name: input.Name,
		Plan: models.PlanFree,
	}
	owner := models.Membership{
		ID:             ids.New(),
		OrganizationID: org.ID,
		UserID:         session.UserID,
		Role:           models.RoleAdmin,
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug := slugCandidate(base, attempt)
		taken, err := s.organizations.SlugExists(ctx, slug)
		if err != nil {
			return models.Organization{}, fmt.Errorf("check slug: %w", err)
		}
		if taken {
			continue
		}

		org.Slug = slug
		err = s.organizations.CreateWithOwner(ctx, org, owner)
		if errors.Is(err, repository.ErrSlugTaken) {
			continue
		}
		if errors.Is(err, repository.ErrAlreadyMember) {
			return models.Organization{}, ErrAlreadyInOrganization
		}
		if err != nil {
			return models.Organization{}, err
		}
		return org, nil
	}

	return models.Organization{}, invalid("name", "could not derive a unique slug")
}

// slugCandidate returns base for the first attempt and base-N after that.
func slugCandidate(base string, attempt int) string {
	if attempt == 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}
