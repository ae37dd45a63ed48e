package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gperojohn83-art/Construction/internal/billing"
	"github.com/gperojohn83-art/Construction/internal/kpi"
	"github.com/gperojohn83-art/Construction/internal/models"
)

const (
	dashboardRecentProjects = 5
	dashboardRecentInvoices = 5
	dashboardNotifications  = 5
)

type DashboardService struct {
	projects      ProjectStore
	finance       FinanceReader
	members       MemberStore
	documents     DocumentStore
	notifications NotificationStore
	location      *time.Location
	now           func() time.Time
}

func NewDashboardService(
	projects ProjectStore,
	finance FinanceReader,
	members MemberStore,
	documents DocumentStore,
	notifications NotificationStore,
	location *time.Location,
) *DashboardService {
	if location == nil {
		location = time.UTC
	}
	return &DashboardService{
		projects:      projects,
		finance:       finance,
		members:       members,
		documents:     documents,
		notifications: notifications,
		location:      location,
		now:           time.Now,
	}
}

type PlanUsage struct {
	Plan          models.Plan `json:"plan"`
	Projects      int         `json:"projects"`
	ProjectLimit  int         `json:"projectLimit"`
	Members       int         `json:"members"`
	MemberLimit   int         `json:"memberLimit"`
	StorageUsed   int64       `json:"storageUsed"`
	StorageQuota  int64       `json:"storageQuota"`
	DocumentCount int         `json:"documentCount"`
}

type Dashboard struct {
	// Onboarding is set when the caller has no organization yet; nothing
	// else is filled in that case.
	Onboarding     bool
	Organization   *models.ActiveMembership
	Summary        kpi.Summary
	BudgetShares   []kpi.BudgetShare
	RecentProjects []models.Project
	RecentInvoices []models.Invoice
	Notifications  []models.Notification
	Usage          PlanUsage
	// MonthStart is the first instant of the month the payments cover.
	MonthStart     time.Time
	MonthPayments  []models.Payment
	PendingChanges []models.Change
}

// Get loads every dashboard input concurrently and aggregates the KPIs. The
// first failing read cancels the others.
func (s *DashboardService) Get(ctx context.Context, session models.Session) (Dashboard, error) {
	if !session.HasOrganization() {
		return Dashboard{Onboarding: true}, nil
	}
	orgID := session.OrganizationID()
	from, to := kpi.MonthWindow(s.now(), s.location)

	var (
		projects      []models.Project
		payments      []models.Payment
		invoices      []models.Invoice
		changes       []models.Change
		notifications []models.Notification
		memberCount   int
		documentCount int
		storageUsed   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = s.projects.ListByOrganization(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.finance.PaymentsBetween(gctx, orgID, from, to)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = s.finance.ListInvoices(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		changes, err = s.finance.PendingChanges(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		memberCount, err = s.members.CountByOrganization(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		documentCount, storageUsed, err = s.documents.Usage(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		notifications, err = s.notifications.ListLatest(gctx, session.UserID, dashboardNotifications)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	plan := session.Membership.Plan
	return Dashboard{
		Organization:   session.Membership,
		Summary:        kpi.Compute(projects, payments, invoices, changes),
		BudgetShares:   kpi.BudgetShares(projects),
		RecentProjects: head(projects, dashboardRecentProjects),
		RecentInvoices: head(invoices, dashboardRecentInvoices),
		Notifications:  notifications,
		MonthStart:     from,
		MonthPayments:  payments,
		PendingChanges: changes,
		Usage: PlanUsage{
			Plan:          plan,
			Projects:      len(projects),
			ProjectLimit:  billing.Limit(plan, billing.ResourceProjects),
			Members:       memberCount,
			MemberLimit:   billing.Limit(plan, billing.ResourceUsers),
			StorageUsed:   storageUsed,
			StorageQuota:  billing.StorageQuota(plan),
			DocumentCount: documentCount,
		},
	}, nil
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
