package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gperojohn83-art/Construction/internal/billing"
	"github.com/gperojohn83-art/Construction/internal/ids"
	"github.com/gperojohn83-art/Construction/internal/models"
)

const defaultProjectColor = "#3b82f6"

type ProjectService struct {
	projects ProjectStore
	resolver *MembershipResolver
	tasks    TaskEnqueuer
	log      zerolog.Logger
}

func NewProjectService(projects ProjectStore, resolver *MembershipResolver, tasks TaskEnqueuer, log zerolog.Logger) *ProjectService {
	return &ProjectService{projects: projects, resolver: resolver, tasks: tasks, log: log}
}

func (s *ProjectService) List(ctx context.Context, session models.Session) ([]models.Project, error) {
	if !session.HasOrganization() {
		return nil, ErrNoOrganization
	}
	return s.projects.ListByOrganization(ctx, session.OrganizationID())
}

func (s *ProjectService) Get(ctx context.Context, session models.Session, id string) (models.Project, error) {
	if !session.HasOrganization() {
		return models.Project{}, ErrNoOrganization
	}
	return s.projects.GetByID(ctx, session.OrganizationID(), id)
}

type CreateProjectInput struct {
	Name        string               `json:"name" validate:"required,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	Client      *string              `json:"client" validate:"omitempty,max=200"`
	Address     *string              `json:"address" validate:"omitempty,max=300"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
	Budget      *decimal.Decimal     `json:"budget"`
	Color       string               `json:"color" validate:"omitempty,hexcolor"`
}

func (in CreateProjectInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.Status != "" && !validProjectStatus(in.Status) {
		return invalid("status", "unknown status %q", in.Status)
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		return invalid("budget", "must not be negative")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return invalid("endDate", "must not be before startDate")
	}
	return nil
}

func validProjectStatus(status models.ProjectStatus) bool {
	for _, s := range models.AllProjectStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// Create adds a project if the caller may manage projects and the plan has
// room. Role and organization are read from storage, and the quota is
// counted under a lock on the organization row.
func (s *ProjectService) Create(ctx context.Context, session models.Session, input CreateProjectInput) (models.Project, error) {
	if err := input.validate(); err != nil {
		return models.Project{}, err
	}

	membership, err := currentMembership(ctx, s.resolver, session)
	if err != nil {
		return models.Project{}, err
	}
	if !hasRole(membership, models.RoleAdmin, models.RoleProjectManager) {
		return models.Project{}, ErrForbidden
	}

	project := models.Project{
		ID:             ids.New(),
		OrganizationID: membership.OrganizationID,
		Name:           input.Name,
		Description:    input.Description,
		Client:         input.Client,
		Address:        input.Address,
		Status:         input.Status,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Color:          input.Color,
	}
	if project.Status == "" {
		project.Status = models.ProjectActive
	}
	if project.Color == "" {
		project.Color = defaultProjectColor
	}
	if input.Budget != nil {
		project.Budget = decimal.NewNullDecimal(*input.Budget)
	}

	err = s.projects.CreateWithinQuota(ctx, project, func(org models.Organization, current int) error {
		if !billing.WithinLimit(org.Plan, billing.ResourceProjects, current) {
			return ErrPlanLimitReached
		}
		return nil
	})
	if err != nil {
		return models.Project{}, err
	}

	notifyAdmins(ctx, s.tasks, s.log, project.OrganizationID, "project.created", "New project", project.Name)

	return project, nil
}
