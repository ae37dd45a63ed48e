package service

import (
	"context"
	"time"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/queue"
	"github.com/gperojohn83-art/Construction/internal/repository"
)

// The interfaces below are the slices of the repositories each service
// needs. The repository package implements them against Postgres.

type IdentityFinder interface {
	FindByEmail(ctx context.Context, email string) (models.Identity, error)
}

type IdentityStore interface {
	IdentityFinder
	GetByID(ctx context.Context, id string) (models.Identity, error)
	Create(ctx context.Context, identity models.Identity) error
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}

type MembershipFinder interface {
	FindFirstByUser(ctx context.Context, userID string) (models.Membership, error)
}

type OrganizationReader interface {
	GetByID(ctx context.Context, id string) (models.Organization, error)
}

type DeviceSessionStore interface {
	Upsert(ctx context.Context, session models.DeviceSession) error
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error
	FindByDevice(ctx context.Context, userID, deviceID string) (models.DeviceSession, error)
	DeleteByDevice(ctx context.Context, userID, deviceID string) error
	ListByUser(ctx context.Context, userID string) ([]models.DeviceSession, error)
	Rotate(ctx context.Context, sessionID string, currentHash, nextHash []byte, expiresAt time.Time, ip, userAgent string) error
}

type OrganizationStore interface {
	OrganizationReader
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateWithOwner(ctx context.Context, org models.Organization, owner models.Membership) error
}

type ProjectStore interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Project, error)
	GetByID(ctx context.Context, organizationID, id string) (models.Project, error)
	CreateWithinQuota(ctx context.Context, p models.Project, check repository.QuotaCheck) error
}

type MemberStore interface {
	CountByOrganization(ctx context.Context, organizationID string) (int, error)
	ListMembers(ctx context.Context, organizationID string) ([]models.Member, error)
	UpdateRole(ctx context.Context, organizationID, userID string, role models.Role) error
	AdminIDs(ctx context.Context, organizationID string) ([]string, error)
}

type InvitationStore interface {
	Create(ctx context.Context, inv models.Invitation) error
	GetByToken(ctx context.Context, token string) (models.Invitation, error)
	Accept(ctx context.Context, inv models.Invitation, membership models.Membership, check repository.QuotaCheck) error
}

type FinanceReader interface {
	PaymentsBetween(ctx context.Context, organizationID string, from, to time.Time) ([]models.Payment, error)
	ListInvoices(ctx context.Context, organizationID string) ([]models.Invoice, error)
	PendingChanges(ctx context.Context, organizationID string) ([]models.Change, error)
}

type DocumentStore interface {
	Create(ctx context.Context, d models.Document) error
	GetByID(ctx context.Context, organizationID, id string) (models.Document, error)
	ListByProject(ctx context.Context, organizationID, projectID string) ([]models.Document, error)
	Usage(ctx context.Context, organizationID string) (int, int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) error
	ListLatest(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// TaskEnqueuer hands background work to the worker.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}
