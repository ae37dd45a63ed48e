package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gperojohn83-art/Construction/internal/config"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/queue"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/security"
)

var errTest = errors.New("test error")

const testSecret = "test-access-secret"

var cheapArgon = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func hashFor(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := security.HashPasswordWithParams(password, cheapArgon)
	require.NoError(t, err)
	return hash
}

// mockUsers implements IdentityStore.
type mockUsers struct {
	mu        sync.Mutex
	byID      map[string]models.Identity
	FindErr   error
	Passwords map[string][]byte
}

func newMockUsers() *mockUsers {
	return &mockUsers{byID: map[string]models.Identity{}, Passwords: map[string][]byte{}}
}

func (m *mockUsers) add(identity models.Identity) models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[identity.ID] = identity
	return identity
}

func (m *mockUsers) FindByEmail(_ context.Context, email string) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return models.Identity{}, m.FindErr
	}
	for _, identity := range m.byID {
		if identity.Email == email {
			return identity, nil
		}
	}
	return models.Identity{}, repository.ErrUserNotFound
}

func (m *mockUsers) GetByID(_ context.Context, id string) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return models.Identity{}, repository.ErrUserNotFound
	}
	return identity, nil
}

func (m *mockUsers) Create(_ context.Context, identity models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == identity.Email {
			return repository.ErrEmailTaken
		}
	}
	m.byID[identity.ID] = identity
	return nil
}

func (m *mockUsers) UpdatePassword(_ context.Context, id string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	identity.PasswordHash = hash
	m.byID[id] = identity
	m.Passwords[id] = hash
	return nil
}

// mockOrgs implements OrganizationStore and PlanMaintainer.
type mockOrgs struct {
	mu          sync.Mutex
	byID        map[string]models.Organization
	memberships *mockMemberships
}

func (m *mockOrgs) add(org models.Organization) models.Organization {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[org.ID] = org
	return org
}

func (m *mockOrgs) setPlan(id string, plan models.Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org := m.byID[id]
	org.Plan = plan
	m.byID[id] = org
}

func (m *mockOrgs) GetByID(_ context.Context, id string) (models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.byID[id]
	if !ok {
		return models.Organization{}, repository.ErrOrganizationNotFound
	}
	return org, nil
}

func (m *mockOrgs) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, org := range m.byID {
		if org.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// CreateWithOwner is atomic like the transactional repository: nothing is
// stored when the slug is taken or the owner already has a membership.
func (m *mockOrgs) CreateWithOwner(_ context.Context, org models.Organization, owner models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Slug == org.Slug {
			return repository.ErrSlugTaken
		}
	}
	if err := m.memberships.insertSole(owner); err != nil {
		return err
	}
	m.byID[org.ID] = org
	return nil
}

func (m *mockOrgs) DowngradeExpired(_ context.Context, now time.Time) ([]models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed []models.Organization
	for id, org := range m.byID {
		if org.Plan != models.PlanFree && org.PlanExpiresAt != nil && org.PlanExpiresAt.Before(now) {
			org.Plan = models.PlanFree
			org.PlanExpiresAt = nil
			m.byID[id] = org
			changed = append(changed, org)
		}
	}
	return changed, nil
}

// mockMemberships implements MembershipFinder and MemberStore.
type mockMemberships struct {
	mu      sync.Mutex
	rows    []models.Membership
	users   *mockUsers
	FindErr error
}

func (m *mockMemberships) insert(membership models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.OrganizationID == membership.OrganizationID && row.UserID == membership.UserID {
			return repository.ErrAlreadyMember
		}
	}
	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, membership)
	return nil
}

// insertSole inserts the membership only when the user has none yet.
func (m *mockMemberships) insertSole(membership models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.UserID == membership.UserID {
			return repository.ErrAlreadyMember
		}
	}
	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, membership)
	return nil
}

func (m *mockMemberships) remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, row := range m.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	m.rows = kept
}

func (m *mockMemberships) FindFirstByUser(_ context.Context, userID string) (models.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return models.Membership{}, m.FindErr
	}
	var matches []models.Membership
	for _, row := range m.rows {
		if row.UserID == userID {
			matches = append(matches, row)
		}
	}
	if len(matches) == 0 {
		return models.Membership{}, repository.ErrMembershipNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches[0], nil
}

func (m *mockMemberships) count(organizationID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.OrganizationID == organizationID {
			n++
		}
	}
	return n
}

func (m *mockMemberships) CountByOrganization(_ context.Context, organizationID string) (int, error) {
	return m.count(organizationID), nil
}

func (m *mockMemberships) ListMembers(ctx context.Context, organizationID string) ([]models.Member, error) {
	m.mu.Lock()
	rows := append([]models.Membership(nil), m.rows...)
	m.mu.Unlock()

	var members []models.Member
	for _, row := range rows {
		if row.OrganizationID != organizationID {
			continue
		}
		identity, _ := m.users.GetByID(ctx, row.UserID)
		members = append(members, models.Member{Membership: row, Email: identity.Email, Name: identity.Name})
	}
	return members, nil
}

func (m *mockMemberships) UpdateRole(_ context.Context, organizationID, userID string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.OrganizationID == organizationID && row.UserID == userID {
			m.rows[i].Role = role
			return nil
		}
	}
	return repository.ErrMembershipNotFound
}

func (m *mockMemberships) AdminIDs(_ context.Context, organizationID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, row := range m.rows {
		if row.OrganizationID == organizationID && row.Role == models.RoleAdmin {
			ids = append(ids, row.UserID)
		}
	}
	return ids, nil
}

// mockSessions implements DeviceSessionStore and SessionPurger.
type mockSessions struct {
	mu   sync.Mutex
	rows map[string]models.DeviceSession
}

func sessionKey(userID, deviceID string) string { return userID + "|" + deviceID }

func (m *mockSessions) Upsert(_ context.Context, s models.DeviceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.LastSeenAt = time.Now()
	m.rows[sessionKey(s.UserID, s.DeviceID)] = s
	return nil
}

func (m *mockSessions) CountByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.rows {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockSessions) DeleteOldestSessions(_ context.Context, userID string, keepLatest int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []models.DeviceSession
	for _, s := range m.rows {
		if s.UserID == userID {
			mine = append(mine, s)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].LastSeenAt.After(mine[j].LastSeenAt) })
	for i := keepLatest; i < len(mine); i++ {
		delete(m.rows, sessionKey(mine[i].UserID, mine[i].DeviceID))
	}
	return nil
}

func (m *mockSessions) FindByDevice(_ context.Context, userID, deviceID string) (models.DeviceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[sessionKey(userID, deviceID)]
	if !ok {
		return models.DeviceSession{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessions) DeleteByDevice(_ context.Context, userID, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey(userID, deviceID)
	if _, ok := m.rows[key]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(m.rows, key)
	return nil
}

func (m *mockSessions) ListByUser(_ context.Context, userID string) ([]models.DeviceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DeviceSession
	for _, s := range m.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessions) Rotate(_ context.Context, sessionID string, currentHash, nextHash []byte, expiresAt time.Time, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, s := range m.rows {
		if s.ID == sessionID && string(s.RefreshTokenHash) == string(currentHash) {
			s.RefreshTokenHash = nextHash
			s.ExpiresAt = expiresAt
			m.rows[key] = s
			return nil
		}
	}
	return repository.ErrSessionNotFound
}

func (m *mockSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, s := range m.rows {
		if s.ExpiresAt.Before(now) {
			delete(m.rows, key)
			n++
		}
	}
	return n, nil
}

// mockProjects implements ProjectStore with the same lock-then-count
// semantics as the repository.
type mockProjects struct {
	mu   sync.Mutex
	rows []models.Project
	orgs *mockOrgs
}

func (m *mockProjects) ListByOrganization(_ context.Context, organizationID string) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.rows {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjects) GetByID(_ context.Context, organizationID, id string) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.OrganizationID == organizationID && p.ID == id {
			return p, nil
		}
	}
	return models.Project{}, repository.ErrProjectNotFound
}

func (m *mockProjects) CreateWithinQuota(ctx context.Context, p models.Project, check repository.QuotaCheck) error {
	org, err := m.orgs.GetByID(ctx, p.OrganizationID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current := 0
	for _, row := range m.rows {
		if row.OrganizationID == p.OrganizationID {
			current++
		}
	}
	if err := check(org, current); err != nil {
		return err
	}
	m.rows = append(m.rows, p)
	return nil
}

// mockInvitations implements InvitationStore and InvitationExpirer.
type mockInvitations struct {
	mu          sync.Mutex
	byToken     map[string]models.Invitation
	orgs        *mockOrgs
	memberships *mockMemberships
}

func (m *mockInvitations) Create(_ context.Context, inv models.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[inv.Token] = inv
	return nil
}

func (m *mockInvitations) GetByToken(_ context.Context, token string) (models.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byToken[token]
	if !ok {
		return models.Invitation{}, repository.ErrInvitationNotFound
	}
	return inv, nil
}

func (m *mockInvitations) Accept(ctx context.Context, inv models.Invitation, membership models.Membership, check repository.QuotaCheck) error {
	org, err := m.orgs.GetByID(ctx, inv.OrganizationID)
	if err != nil {
		return err
	}
	if err := check(org, m.memberships.count(org.ID)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.byToken[inv.Token]
	if stored.Status != models.InvitationPending {
		return repository.ErrInvitationNotPending
	}
	if err := m.memberships.insertSole(membership); err != nil {
		return err
	}
	stored.Status = models.InvitationAccepted
	stored.AcceptedBy = &membership.UserID
	m.byToken[inv.Token] = stored
	return nil
}

func (m *mockInvitations) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, inv := range m.byToken {
		if inv.Status == models.InvitationPending && inv.ExpiresAt.Before(now) {
			inv.Status = models.InvitationExpired
			m.byToken[token] = inv
			n++
		}
	}
	return n, nil
}

// mockFinance implements FinanceReader and InvoiceMaintainer.
type mockFinance struct {
	Payments        []models.Payment
	Invoices        []models.Invoice
	Changes         []models.Change
	PaymentsErr     error
	LastWindowStart time.Time
	LastWindowEnd   time.Time
}

func (m *mockFinance) PaymentsBetween(_ context.Context, _ string, from, to time.Time) ([]models.Payment, error) {
	m.LastWindowStart, m.LastWindowEnd = from, to
	return m.Payments, m.PaymentsErr
}

func (m *mockFinance) ListInvoices(context.Context, string) ([]models.Invoice, error) {
	return m.Invoices, nil
}

func (m *mockFinance) PendingChanges(context.Context, string) ([]models.Change, error) {
	return m.Changes, nil
}

func (m *mockFinance) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for i, inv := range m.Invoices {
		if inv.Status == models.InvoiceSent && inv.DueDate != nil && inv.DueDate.Before(now) {
			m.Invoices[i].Status = models.InvoiceOverdue
			n++
		}
	}
	return n, nil
}

// mockDocuments implements DocumentStore.
type mockDocuments struct {
	mu         sync.Mutex
	rows       map[string]models.Document
	ExtraBytes int64
}

func (m *mockDocuments) Create(_ context.Context, d models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[d.ID] = d
	return nil
}

func (m *mockDocuments) GetByID(_ context.Context, organizationID, id string) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok || d.OrganizationID != organizationID {
		return models.Document{}, repository.ErrDocumentNotFound
	}
	return d, nil
}

func (m *mockDocuments) ListByProject(_ context.Context, organizationID, projectID string) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Document
	for _, d := range m.rows {
		if d.OrganizationID == organizationID && d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocuments) Usage(_ context.Context, organizationID string) (int, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, total := 0, m.ExtraBytes
	for _, d := range m.rows {
		if d.OrganizationID == organizationID {
			count++
			total += d.SizeBytes
		}
	}
	return count, total, nil
}

// mockNotifications implements NotificationStore.
type mockNotifications struct {
	mu   sync.Mutex
	rows map[string]models.Notification
}

func (m *mockNotifications) Create(_ context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[n.ID]; !ok {
		m.rows[n.ID] = n
	}
	return nil
}

func (m *mockNotifications) ListLatest(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.rows {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotifications) MarkRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotificationNotFound
	}
	n.IsRead = true
	m.rows[id] = n
	return nil
}

// mockObjects implements ObjectStore.
type mockObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *mockObjects) Bucket() string { return "test-documents" }

func (m *mockObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *mockObjects) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *mockObjects) PresignGet(_ context.Context, key, _ string) (string, time.Time, error) {
	return "https://storage.test/" + key + "?sig=1", time.Now().Add(time.Minute), nil
}

// mockTasks implements TaskEnqueuer.
type mockTasks struct {
	mu    sync.Mutex
	Tasks []queue.Task
}

func (m *mockTasks) Enqueue(_ context.Context, task queue.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks = append(m.Tasks, task)
	return nil
}

// world wires every service over shared in-memory fakes.
type world struct {
	users         *mockUsers
	orgs          *mockOrgs
	memberships   *mockMemberships
	sessions      *mockSessions
	projects      *mockProjects
	invitations   *mockInvitations
	finance       *mockFinance
	documents     *mockDocuments
	notifications *mockNotifications
	objects       *mockObjects
	tasks         *mockTasks

	resolver *MembershipResolver
	enricher *SessionEnricher
	auth     *AuthService
	orgSvc   *OrganizationService
	projSvc  *ProjectService
	team     *TeamService
	docs     *DocumentService
	notify   *NotificationService
}

func newWorld(t *testing.T) *world {
	t.Helper()

	w := &world{users: newMockUsers()}
	w.memberships = &mockMemberships{users: w.users}
	w.orgs = &mockOrgs{byID: map[string]models.Organization{}, memberships: w.memberships}
	w.sessions = &mockSessions{rows: map[string]models.DeviceSession{}}
	w.projects = &mockProjects{orgs: w.orgs}
	w.invitations = &mockInvitations{byToken: map[string]models.Invitation{}, orgs: w.orgs, memberships: w.memberships}
	w.finance = &mockFinance{}
	w.documents = &mockDocuments{rows: map[string]models.Document{}}
	w.notifications = &mockNotifications{rows: map[string]models.Notification{}}
	w.objects = &mockObjects{objects: map[string][]byte{}}
	w.tasks = &mockTasks{}

	log := zerolog.Nop()
	w.resolver = NewMembershipResolver(w.memberships, w.orgs)
	w.enricher = NewSessionEnricher(testSecret, 15*time.Minute)
	w.auth = NewAuthService(
		w.users,
		w.sessions,
		NewCredentialVerifier(w.users),
		w.resolver,
		w.enricher,
		config.SecurityConfig{JWTAccessSecret: testSecret, JWTAccessTTL: 15 * time.Minute, JWTRefreshTTL: time.Hour, MaxSessions: 3},
		log,
	)
	w.orgSvc = NewOrganizationService(w.orgs, w.resolver)
	w.projSvc = NewProjectService(w.projects, w.resolver, w.tasks, log)
	w.team = NewTeamService(w.memberships, w.invitations, w.users, w.resolver, w.tasks, 24*time.Hour, log)
	w.docs = NewDocumentService(w.documents, w.projects, w.objects, w.resolver, w.tasks, "doc-secret", 1<<20, log)
	w.notify = NewNotificationService(w.notifications, w.memberships)
	return w
}

// seedMember creates an identity that belongs to a fresh organization.
func (w *world) seedMember(t *testing.T, email string, plan models.Plan, role models.Role) (models.Identity, models.Organization) {
	t.Helper()
	identity := w.users.add(models.Identity{ID: "u-" + email, Email: email, Name: email, PasswordHash: hashFor(t, "secret1")})
	org := w.orgs.add(models.Organization{ID: "o-" + email, Name: "Org " + email, Slug: "org-" + email, Plan: plan})
	require.NoError(t, w.memberships.insert(models.Membership{ID: "m-" + email, OrganizationID: org.ID, UserID: identity.ID, Role: role}))
	return identity, org
}

// sessionFor builds the session a fresh token would carry.
func (w *world) sessionFor(t *testing.T, identity models.Identity) models.Session {
	t.Helper()
	membership, err := w.resolver.ResolveMembership(context.Background(), identity.ID)
	require.NoError(t, err)
	token, err := w.enricher.BuildSession(identity, membership, Device{SessionID: "s-" + identity.ID, DeviceID: "d-" + identity.ID})
	require.NoError(t, err)
	return token.Session
}
