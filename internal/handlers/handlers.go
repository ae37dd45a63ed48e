package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/text/currency"

	"github.com/gperojohn83-art/Construction/internal/middleware"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/service"
)

type AuthAPI interface {
	Register(ctx context.Context, input service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (service.AuthResult, error)
	Refresh(ctx context.Context, input service.RefreshInput) (service.AuthResult, error)
	Logout(ctx context.Context, userID, deviceID string) error
	ListSessions(ctx context.Context, userID string) ([]models.DeviceSession, error)
	RevokeSession(ctx context.Context, session models.Session, deviceID string) error
	Profile(ctx context.Context, session models.Session) (service.Profile, error)
}

type FederatedAPI interface {
	Enabled() bool
	Start(ctx context.Context, device service.DeviceInfo) (string, error)
	Callback(ctx context.Context, state, code string, device service.DeviceInfo) (service.AuthResult, error)
}

type OrganizationAPI interface {
	CreateOrganization(ctx context.Context, session models.Session, name string) (models.Organization, error)
}

type ProjectAPI interface {
	List(ctx context.Context, session models.Session) ([]models.Project, error)
	Create(ctx context.Context, session models.Session, input service.CreateProjectInput) (models.Project, error)
}

type DocumentAPI interface {
	Upload(ctx context.Context, session models.Session, input service.UploadInput) (models.Document, error)
	List(ctx context.Context, session models.Session, projectID string) ([]models.Document, error)
	DownloadURL(ctx context.Context, session models.Session, documentID string) (service.DownloadLink, error)
}

type TeamAPI interface {
	ListMembers(ctx context.Context, session models.Session) ([]models.Member, error)
	Invite(ctx context.Context, session models.Session, email string, role models.Role) (models.Invitation, error)
	Accept(ctx context.Context, session models.Session, token string) (models.Membership, error)
	UpdateRole(ctx context.Context, session models.Session, userID string, role models.Role) error
}

type DashboardAPI interface {
	Get(ctx context.Context, session models.Session) (service.Dashboard, error)
}

type InvoiceAPI interface {
	List(ctx context.Context, session models.Session) ([]models.Invoice, error)
}

type NotificationAPI interface {
	List(ctx context.Context, session models.Session, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, session models.Session, id string) error
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Log           zerolog.Logger
	Environment   string
	Locale        models.Locale
	Currency      currency.Unit
	Auth          AuthAPI
	Federated     FederatedAPI
	Organizations OrganizationAPI
	Projects      ProjectAPI
	Documents     DocumentAPI
	Team          TeamAPI
	Dashboard     DashboardAPI
	Invoices      InvoiceAPI
	Notifications NotificationAPI
	Health        map[string]HealthCheck

	// Authenticate resolves the bearer token. Signature, when set, guards
	// session revocation and role changes. RateLimit guards credential
	// endpoints.
	Authenticate gin.HandlerFunc
	Signature    gin.HandlerFunc
	RateLimit    gin.HandlerFunc

	MaxUploadBytes int64
}

type HandlerSet struct {
	Deps
	now func() time.Time
}

func NewHandlerSet(deps Deps) HandlerSet {
	if deps.Locale == "" {
		deps.Locale = models.LocaleEnglish
	}
	if deps.Currency == (currency.Unit{}) {
		deps.Currency = currency.EUR
	}
	return HandlerSet{Deps: deps, now: time.Now}
}

func passThrough(c *gin.Context) { c.Next() }

func orPass(h gin.HandlerFunc) gin.HandlerFunc {
	if h == nil {
		return passThrough
	}
	return h
}

func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.HealthCheck)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	{
		limited := auth.Group("", orPass(h.RateLimit))
		limited.POST("/register", h.Register)
		limited.POST("/login", h.Login)
		limited.POST("/refresh", h.Refresh)
		limited.POST("/logout", h.Logout)
		limited.GET("/google/start", h.GoogleStart)
		limited.GET("/google/callback", h.GoogleCallback)

		protected := auth.Group("", h.Authenticate)
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:deviceId", orPass(h.Signature), h.RevokeSession)
	}

	api := v1.Group("", h.Authenticate)
	api.POST("/organizations", h.CreateOrganization)
	api.GET("/dashboard", h.GetDashboard)
	api.POST("/invitations/:token/accept", h.AcceptInvitation)
	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)

	org := api.Group("", middleware.RequireOrganization())
	org.GET("/projects", h.ListProjects)
	org.POST("/projects", middleware.RequireOrgRoles(models.RoleAdmin, models.RoleProjectManager), h.CreateProject)
	org.GET("/projects/:id/documents", h.ListDocuments)
	org.POST("/projects/:id/documents", h.limitBody(), h.UploadDocument)
	org.GET("/documents/:id/url", h.DocumentURL)
	org.GET("/invoices", h.ListInvoices)
	org.GET("/team", h.ListTeam)
	org.POST("/team/invitations", middleware.RequireOrgRoles(models.RoleAdmin), h.InviteMember)
	org.PATCH("/team/:userId", middleware.RequireOrgRoles(models.RoleAdmin), orPass(h.Signature), h.UpdateMemberRole)
}

// limitBody caps multipart uploads slightly above the file limit to leave
// room for form framing.
func (h HandlerSet) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) models.Session {
	session, _ := middleware.SessionFrom(c)
	return session
}
