package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/queue"
)

type InvoiceMaintainer interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type PlanMaintainer interface {
	DowngradeExpired(ctx context.Context, now time.Time) ([]models.Organization, error)
}

type SessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type InvitationExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// MaintenanceService holds the periodic jobs run by the worker. Each job is
// idempotent, so a redelivered task is harmless.
type MaintenanceService struct {
	invoices      InvoiceMaintainer
	plans         PlanMaintainer
	sessions      SessionPurger
	invitations   InvitationExpirer
	notifications *NotificationService
	log           zerolog.Logger
	now           func() time.Time
}

func NewMaintenanceService(
	invoices InvoiceMaintainer,
	plans PlanMaintainer,
	sessions SessionPurger,
	invitations InvitationExpirer,
	notifications *NotificationService,
	log zerolog.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		invoices:      invoices,
		plans:         plans,
		sessions:      sessions,
		invitations:   invitations,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

func (s *MaintenanceService) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	n, err := s.invoices.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	return n, nil
}

// ExpirePlans downgrades lapsed paid plans and tells each organization's
// admins. Sessions keep the old plan until their next refresh.
func (s *MaintenanceService) ExpirePlans(ctx context.Context, taskID string) (int, error) {
	orgs, err := s.plans.DowngradeExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("downgrade expired plans: %w", err)
	}

	for _, org := range orgs {
		_, err := s.notifications.Deliver(ctx, queue.Task{
			ID:             taskID + "/" + org.ID,
			Type:           queue.TaskNotify,
			OrganizationID: org.ID,
			Kind:           "plan.expired",
			Title:          "Plan expired",
			Body:           fmt.Sprintf("%s is now on the FREE plan", org.Name),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("organization_id", org.ID).Msg("plan expiry notification failed")
		}
	}
	return len(orgs), nil
}

func (s *MaintenanceService) PurgeSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

func (s *MaintenanceService) ExpireInvitations(ctx context.Context) (int64, error) {
	n, err := s.invitations.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}
	return n, nil
}
