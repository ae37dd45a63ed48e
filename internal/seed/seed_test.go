package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/security"
)

type memStore struct {
	users         map[string]models.Identity
	orgs          map[string]models.Organization
	memberships   []models.Membership
	projects      []models.Project
	payments      []models.Payment
	invoices      map[string]models.Invoice
	changes       []models.Change
	notifications map[string]models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]models.Identity{},
		orgs:          map[string]models.Organization{},
		invoices:      map[string]models.Invoice{},
		notifications: map[string]models.Notification{},
	}
}

func (m *memStore) FindByEmail(_ context.Context, email string) (models.Identity, error) {
	u, ok := m.users[email]
	if !ok {
		return models.Identity{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) Create(_ context.Context, identity models.Identity) error {
	m.users[identity.Email] = identity
	return nil
}

type orgStore struct{ *memStore }

func (o orgStore) GetBySlug(_ context.Context, slug string) (models.Organization, error) {
	org, ok := o.orgs[slug]
	if !ok {
		return models.Organization{}, repository.ErrOrganizationNotFound
	}
	return org, nil
}

func (o orgStore) CreateWithOwner(_ context.Context, org models.Organization, owner models.Membership) error {
	o.orgs[org.Slug] = org
	o.memberships = append(o.memberships, owner)
	return nil
}

func (o orgStore) UpdatePlan(_ context.Context, id string, plan models.Plan, expiresAt *time.Time) error {
	for slug, org := range o.orgs {
		if org.ID == id {
			org.Plan, org.PlanExpiresAt = plan, expiresAt
			o.orgs[slug] = org
		}
	}
	return nil
}

func (o orgStore) FindByOrgAndUser(_ context.Context, organizationID, userID string) (models.Membership, error) {
	for _, m := range o.memberships {
		if m.OrganizationID == organizationID && m.UserID == userID {
			return m, nil
		}
	}
	return models.Membership{}, repository.ErrMembershipNotFound
}

type projectStore struct{ *memStore }

func (p projectStore) ListByOrganization(_ context.Context, orgID string) ([]models.Project, error) {
	var out []models.Project
	for _, pr := range p.projects {
		if pr.OrganizationID == orgID {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (p projectStore) Create(_ context.Context, pr models.Project) error {
	p.projects = append(p.projects, pr)
	return nil
}

type financeStore struct{ *memStore }

func (f financeStore) CreatePayment(_ context.Context, p models.Payment) error {
	f.payments = append(f.payments, p)
	return nil
}

func (f financeStore) CreateInvoice(_ context.Context, inv models.Invoice) error {
	key := inv.OrganizationID + "/" + inv.Number
	if _, ok := f.invoices[key]; !ok {
		f.invoices[key] = inv
	}
	return nil
}

func (f financeStore) CreateChange(_ context.Context, c models.Change) error {
	f.changes = append(f.changes, c)
	return nil
}

type notificationStore struct{ *memStore }

func (n notificationStore) Create(_ context.Context, note models.Notification) error {
	if _, ok := n.notifications[note.ID]; !ok {
		n.notifications[note.ID] = note
	}
	return nil
}

func newSeeder(m *memStore) *Seeder {
	return &Seeder{
		Users:         m,
		Organizations: orgStore{m},
		Memberships:   orgStore{m},
		Projects:      projectStore{m},
		Finance:       financeStore{m},
		Notifications: notificationStore{m},
		Log:           zerolog.Nop(),
		Now:           func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) },
	}
}

func TestSeed_Idempotent(t *testing.T) {
	m := newMemStore()
	s := newSeeder(m)
	ctx := context.Background()

	first, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(demoProjects), first.ProjectsCreated)

	second, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.ProjectsCreated)
	assert.Equal(t, first.OrganizationID, second.OrganizationID)
	assert.Equal(t, first.UserID, second.UserID)

	assert.Len(t, m.users, 1)
	assert.Len(t, m.orgs, 1)
	assert.Len(t, m.memberships, 1)
	assert.Len(t, m.projects, 4)
	assert.Len(t, m.payments, 3)
	assert.Len(t, m.changes, 1)
	assert.Len(t, m.invoices, 2)
	assert.Len(t, m.notifications, 2)

	org := m.orgs[DemoSlug]
	assert.Equal(t, models.PlanPro, org.Plan)
	assert.Equal(t, models.RoleAdmin, m.memberships[0].Role)

	ok, err := security.VerifyPassword(DemoPassword, m.users[DemoEmail].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	inv := m.invoices[org.ID+"/INV-0002"]
	assert.Equal(t, "22320", inv.Total.String())
}

func TestSeed_RestoresPlan(t *testing.T) {
	m := newMemStore()
	s := newSeeder(m)
	ctx := context.Background()

	_, err := s.Run(ctx)
	require.NoError(t, err)

	org := m.orgs[DemoSlug]
	org.Plan = models.PlanFree
	m.orgs[DemoSlug] = org

	_, err = s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, m.orgs[DemoSlug].Plan)
}
