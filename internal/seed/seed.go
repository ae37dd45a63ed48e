// Package seed loads the demo workspace used for local development and
// product demos. Running it twice leaves the database unchanged.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gperojohn83-art/Construction/internal/ids"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/security"
)

const (
	DemoEmail    = "admin@buildflow.demo"
	DemoPassword = "demo1234"
	DemoSlug     = "demo-company"
)

type Users interface {
	FindByEmail(ctx context.Context, email string) (models.Identity, error)
	Create(ctx context.Context, identity models.Identity) error
}

type Organizations interface {
	GetBySlug(ctx context.Context, slug string) (models.Organization, error)
	CreateWithOwner(ctx context.Context, org models.Organization, owner models.Membership) error
	UpdatePlan(ctx context.Context, id string, plan models.Plan, expiresAt *time.Time) error
}

type Memberships interface {
	FindByOrgAndUser(ctx context.Context, organizationID, userID string) (models.Membership, error)
}

type Projects interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Project, error)
	Create(ctx context.Context, p models.Project) error
}

type Finance interface {
	CreatePayment(ctx context.Context, p models.Payment) error
	CreateInvoice(ctx context.Context, inv models.Invoice) error
	CreateChange(ctx context.Context, c models.Change) error
}

type Notifications interface {
	Create(ctx context.Context, n models.Notification) error
}

type Seeder struct {
	Users         Users
	Organizations Organizations
	Memberships   Memberships
	Projects      Projects
	Finance       Finance
	Notifications Notifications
	Log           zerolog.Logger
	Now           func() time.Time
}

type Result struct {
	UserID          string
	OrganizationID  string
	ProjectsCreated int
}

func (s *Seeder) Run(ctx context.Context) (Result, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	admin, err := s.ensureAdmin(ctx)
	if err != nil {
		return Result{}, err
	}
	org, err := s.ensureOrganization(ctx, admin)
	if err != nil {
		return Result{}, err
	}
	result := Result{UserID: admin.ID, OrganizationID: org.ID}

	existing, err := s.Projects.ListByOrganization(ctx, org.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list projects: %w", err)
	}
	if len(existing) == 0 {
		created, err := s.seedProjects(ctx, org.ID, now())
		if err != nil {
			return Result{}, err
		}
		result.ProjectsCreated = created
	} else {
		s.Log.Info().Int("projects", len(existing)).Msg("demo projects already present")
	}

	if err := s.seedInvoices(ctx, org.ID, now()); err != nil {
		return Result{}, err
	}
	if err := s.seedNotifications(ctx, admin.ID); err != nil {
		return Result{}, err
	}

	return result, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context) (models.Identity, error) {
	identity, err := s.Users.FindByEmail(ctx, DemoEmail)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return models.Identity{}, fmt.Errorf("find demo admin: %w", err)
	}

	hash, err := security.HashPassword(DemoPassword)
	if err != nil {
		return models.Identity{}, err
	}
	identity = models.Identity{
		ID:           ids.New(),
		Email:        DemoEmail,
		Name:         "Demo Admin",
		PasswordHash: hash,
		Locale:       models.LocaleGreek,
	}
	if err := s.Users.Create(ctx, identity); err != nil {
		return models.Identity{}, fmt.Errorf("create demo admin: %w", err)
	}
	s.Log.Info().Str("email", DemoEmail).Msg("demo admin created")
	return identity, nil
}

func (s *Seeder) ensureOrganization(ctx context.Context, admin models.Identity) (models.Organization, error) {
	org, err := s.Organizations.GetBySlug(ctx, DemoSlug)
	switch {
	case err == nil:
		if _, err := s.Memberships.FindByOrgAndUser(ctx, org.ID, admin.ID); err != nil {
			return models.Organization{}, fmt.Errorf("organization %s exists without the demo admin: %w", DemoSlug, err)
		}
		if org.Plan != models.PlanPro || org.PlanExpiresAt != nil {
			if err := s.Organizations.UpdatePlan(ctx, org.ID, models.PlanPro, nil); err != nil {
				return models.Organization{}, fmt.Errorf("restore demo plan: %w", err)
			}
		}
		return org, nil
	case !errors.Is(err, repository.ErrOrganizationNotFound):
		return models.Organization{}, fmt.Errorf("find demo organization: %w", err)
	}

	org = models.Organization{ID: ids.New(), Name: "Demo Construction Co.", Slug: DemoSlug, Plan: models.PlanPro}
	owner := models.Membership{ID: ids.New(), OrganizationID: org.ID, UserID: admin.ID, Role: models.RoleAdmin}
	if err := s.Organizations.CreateWithOwner(ctx, org, owner); err != nil {
		return models.Organization{}, fmt.Errorf("create demo organization: %w", err)
	}
	s.Log.Info().Str("slug", DemoSlug).Msg("demo organization created")
	return org, nil
}

type demoProject struct {
	name, client, address, color string
	status                       models.ProjectStatus
	budget                       string
	monthsAgo                    int
}

var demoProjects = []demoProject{
	{"Villa Kifisia", "Papadopoulos Family", "Kifisia, Athens", "#3b82f6", models.ProjectActive, "820000", 6},
	{"Office Renovation Syntagma", "Hellenic Insurance", "Syntagma, Athens", "#10b981", models.ProjectActive, "240000", 3},
	{"Seaside Apartments Glyfada", "Glyfada Estates", "Glyfada, Athens", "#f59e0b", models.ProjectDelayed, "1450000", 12},
	{"Warehouse Aspropyrgos", "Attica Logistics", "Aspropyrgos", "#6b7280", models.ProjectCompleted, "380000", 18},
}

func (s *Seeder) seedProjects(ctx context.Context, orgID string, now time.Time) (int, error) {
	var first, second string
	for i, p := range demoProjects {
		start := now.AddDate(0, -p.monthsAgo, 0)
		client, address := p.client, p.address
		project := models.Project{
			ID:             ids.New(),
			OrganizationID: orgID,
			Name:           p.name,
			Client:         &client,
			Address:        &address,
			Status:         p.status,
			StartDate:      &start,
			Budget:         decimal.NewNullDecimal(decimal.RequireFromString(p.budget)),
			Color:          p.color,
		}
		if err := s.Projects.Create(ctx, project); err != nil {
			return i, fmt.Errorf("create project %q: %w", p.name, err)
		}
		switch i {
		case 0:
			first = project.ID
		case 1:
			second = project.ID
		}
	}

	paidAt := now.AddDate(0, 0, -3)
	payments := []models.Payment{
		{ID: ids.New(), ProjectID: first, Title: "Second instalment", Amount: decimal.RequireFromString("45000"), Type: models.PaymentReceived, PaidAt: &paidAt},
		{ID: ids.New(), ProjectID: first, Title: "Concrete supply", Amount: decimal.RequireFromString("12800.40"), Type: models.PaymentExpense, PaidAt: &paidAt},
		{ID: ids.New(), ProjectID: second, Title: "Advance payment", Amount: decimal.RequireFromString("30000"), Type: models.PaymentReceived, PaidAt: &paidAt},
	}
	for _, p := range payments {
		if err := s.Finance.CreatePayment(ctx, p); err != nil {
			return len(demoProjects), fmt.Errorf("create payment: %w", err)
		}
	}

	amount := decimal.NewNullDecimal(decimal.RequireFromString("8500"))
	change := models.Change{ID: ids.New(), ProjectID: first, Title: "Extra balcony railing", Amount: amount, Status: models.ChangePending, RequestedAt: now}
	if err := s.Finance.CreateChange(ctx, change); err != nil {
		return len(demoProjects), fmt.Errorf("create change: %w", err)
	}

	s.Log.Info().Int("projects", len(demoProjects)).Msg("demo projects created")
	return len(demoProjects), nil
}

func (s *Seeder) seedInvoices(ctx context.Context, orgID string, now time.Time) error {
	vat := decimal.RequireFromString("24")
	invoices := []struct {
		number, client, subtotal string
		status                   models.InvoiceStatus
		dueIn                    int
	}{
		{"INV-0001", "Papadopoulos Family", "50000", models.InvoicePaid, -10},
		{"INV-0002", "Hellenic Insurance", "18000", models.InvoiceSent, 20},
	}

	for _, inv := range invoices {
		subtotal := decimal.RequireFromString(inv.subtotal)
		vatAmount := subtotal.Mul(vat).Div(decimal.NewFromInt(100)).Round(2)
		due := now.AddDate(0, 0, inv.dueIn)
		err := s.Finance.CreateInvoice(ctx, models.Invoice{
			ID:             ids.New(),
			OrganizationID: orgID,
			Number:         inv.number,
			Client:         inv.client,
			IssueDate:      now.AddDate(0, 0, -30),
			DueDate:        &due,
			Subtotal:       subtotal,
			VATRate:        vat,
			VATAmount:      vatAmount,
			Total:          subtotal.Add(vatAmount),
			Status:         inv.status,
		})
		if err != nil {
			return fmt.Errorf("create invoice %s: %w", inv.number, err)
		}
	}
	return nil
}

func (s *Seeder) seedNotifications(ctx context.Context, userID string) error {
	notes := []models.Notification{
		{ID: "ntf_demo_welcome_" + userID, UserID: userID, Title: "Welcome to BuildFlow", Body: "Your demo workspace is ready.", Type: "info"},
		{ID: "ntf_demo_change_" + userID, UserID: userID, Title: "Change order pending", Body: "Extra balcony railing awaits approval.", Type: "change.requested"},
	}
	for _, n := range notes {
		if err := s.Notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
	}
	return nil
}
