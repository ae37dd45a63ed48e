package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gperojohn83-art/Construction/internal/billing"
	"github.com/gperojohn83-art/Construction/internal/format"
	"github.com/gperojohn83-art/Construction/internal/kpi"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/service"
)

type paymentResponse struct {
	ID          string             `json:"id"`
	ProjectID   string             `json:"projectId"`
	Title       string             `json:"title"`
	Amount      decimal.Decimal    `json:"amount"`
	AmountLabel string             `json:"amountLabel"`
	Type        models.PaymentType `json:"type"`
	TypeLabel   string             `json:"typeLabel"`
	TypeTone    format.Tone        `json:"typeTone"`
	PaidAt      *time.Time         `json:"paidAt"`
	PaidLabel   string             `json:"paidLabel,omitempty"`
}

type changeResponse struct {
	ID             string              `json:"id"`
	ProjectID      string              `json:"projectId"`
	Title          string              `json:"title"`
	Amount         decimal.NullDecimal `json:"amount"`
	AmountLabel    string              `json:"amountLabel,omitempty"`
	Status         models.ChangeStatus `json:"status"`
	StatusLabel    string              `json:"statusLabel"`
	StatusTone     format.Tone         `json:"statusTone"`
	RequestedAt    time.Time           `json:"requestedAt"`
	RequestedLabel string              `json:"requestedLabel"`
}

func (h HandlerSet) toPayments(payments []models.Payment, locale models.Locale) []paymentResponse {
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		label, tone := format.PaymentType(p.Type, locale)
		resp := paymentResponse{
			ID:          p.ID,
			ProjectID:   p.ProjectID,
			Title:       p.Title,
			Amount:      p.Amount,
			AmountLabel: format.Currency(p.Amount, locale, h.Currency),
			Type:        p.Type,
			TypeLabel:   label,
			TypeTone:    tone,
			PaidAt:      p.PaidAt,
		}
		if p.PaidAt != nil {
			resp.PaidLabel = format.Date(*p.PaidAt, format.DateShort, locale)
		}
		out = append(out, resp)
	}
	return out
}

func (h HandlerSet) toChanges(changes []models.Change, locale models.Locale) []changeResponse {
	out := make([]changeResponse, 0, len(changes))
	for _, ch := range changes {
		label, tone := format.ChangeStatus(ch.Status, locale)
		resp := changeResponse{
			ID:             ch.ID,
			ProjectID:      ch.ProjectID,
			Title:          ch.Title,
			Amount:         ch.Amount,
			Status:         ch.Status,
			StatusLabel:    label,
			StatusTone:     tone,
			RequestedAt:    ch.RequestedAt,
			RequestedLabel: format.Date(ch.RequestedAt, format.DateShort, locale),
		}
		if ch.Amount.Valid {
			resp.AmountLabel = format.Currency(ch.Amount.Decimal, locale, h.Currency)
		}
		out = append(out, resp)
	}
	return out
}

type summaryLabels struct {
	TotalBudget     string `json:"totalBudget"`
	MonthlyPayments string `json:"monthlyPayments"`
}

type usageResponse struct {
	service.PlanUsage
	PlanInfo     billing.PlanInfo `json:"planInfo"`
	StorageLabel string           `json:"storageLabel"`
	QuotaLabel   string           `json:"quotaLabel"`
}

type dashboardResponse struct {
	Onboarding     bool                   `json:"onboarding"`
	Organization   *membershipResponse    `json:"organization"`
	Summary        *kpi.Summary           `json:"summary,omitempty"`
	SummaryLabels  *summaryLabels         `json:"summaryLabels,omitempty"`
	BudgetShares   []kpi.BudgetShare      `json:"budgetShares"`
	RecentProjects []projectResponse      `json:"recentProjects"`
	RecentInvoices []invoiceResponse      `json:"recentInvoices"`
	Notifications  []notificationResponse `json:"notifications"`
	Usage          *usageResponse         `json:"usage,omitempty"`
	MonthLabel     string                 `json:"monthLabel,omitempty"`
	MonthPayments  []paymentResponse      `json:"monthPayments"`
	PendingChanges []changeResponse       `json:"pendingChanges"`
}

func (h HandlerSet) GetDashboard(c *gin.Context) {
	d, err := h.Dashboard.Get(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if d.Onboarding {
		c.JSON(http.StatusOK, dashboardResponse{
			Onboarding:     true,
			BudgetShares:   []kpi.BudgetShare{},
			RecentProjects: []projectResponse{},
			RecentInvoices: []invoiceResponse{},
			Notifications:  toNotifications(d.Notifications),
			MonthPayments:  []paymentResponse{},
			PendingChanges: []changeResponse{},
		})
		return
	}

	locale := h.requestLocale(c)
	info, _ := billing.Describe(d.Usage.Plan)
	shares := d.BudgetShares
	if shares == nil {
		shares = []kpi.BudgetShare{}
	}

	c.JSON(http.StatusOK, dashboardResponse{
		Organization: toMembership(d.Organization),
		Summary:      &d.Summary,
		SummaryLabels: &summaryLabels{
			TotalBudget:     format.Currency(d.Summary.TotalBudget, locale, h.Currency),
			MonthlyPayments: format.Currency(d.Summary.MonthlyPayments, locale, h.Currency),
		},
		BudgetShares:   shares,
		RecentProjects: h.toProjects(d.RecentProjects, locale),
		RecentInvoices: h.toInvoices(d.RecentInvoices, locale),
		Notifications:  toNotifications(d.Notifications),
		MonthLabel:     format.Date(d.MonthStart, format.DateMonthYear, locale),
		MonthPayments:  h.toPayments(d.MonthPayments, locale),
		PendingChanges: h.toChanges(d.PendingChanges, locale),
		Usage: &usageResponse{
			PlanUsage:    d.Usage,
			PlanInfo:     info,
			StorageLabel: format.Bytes(d.Usage.StorageUsed),
			QuotaLabel:   format.Bytes(d.Usage.StorageQuota),
		},
	})
}
