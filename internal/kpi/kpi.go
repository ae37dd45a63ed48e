// Package kpi reduces an organization's snapshot into dashboard counters.
package kpi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gperojohn83-art/Construction/internal/models"
)

type Summary struct {
	ActiveProjects    int             `json:"activeProjects"`
	DelayedProjects   int             `json:"delayedProjects"`
	CompletedProjects int             `json:"completedProjects"`
	TotalBudget       decimal.Decimal `json:"totalBudget"`
	MonthlyPayments   decimal.Decimal `json:"monthlyPayments"`
	PendingChanges    int             `json:"pendingChanges"`
	TotalInvoices     int             `json:"totalInvoices"`
}

// Compute aggregates a snapshot already scoped to one organization, with
// payments restricted to the current month. The result does not depend on
// the order of any input and the inputs are only read.
func Compute(projects []models.Project, payments []models.Payment, invoices []models.Invoice, changes []models.Change) Summary {
	summary := Summary{
		TotalBudget:     decimal.Zero,
		MonthlyPayments: decimal.Zero,
		TotalInvoices:   len(invoices),
	}

	for _, p := range projects {
		switch p.Status {
		case models.ProjectActive:
			summary.ActiveProjects++
		case models.ProjectDelayed:
			summary.DelayedProjects++
		case models.ProjectCompleted:
			summary.CompletedProjects++
		}
		if p.Budget.Valid {
			summary.TotalBudget = summary.TotalBudget.Add(p.Budget.Decimal)
		}
	}

	for _, p := range payments {
		if p.Type == models.PaymentReceived {
			summary.MonthlyPayments = summary.MonthlyPayments.Add(p.Amount)
		}
	}

	for _, c := range changes {
		if c.Status == models.ChangePending {
			summary.PendingChanges++
		}
	}

	return summary
}

// MonthWindow returns the half-open range [start, end) of the calendar month
// containing now, evaluated in loc.
func MonthWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

type BudgetShare struct {
	ProjectID string          `json:"projectId"`
	Name      string          `json:"name"`
	Budget    decimal.Decimal `json:"budget"`
	Percent   decimal.Decimal `json:"percent"`
}

// BudgetShares splits the total budget across projects with a positive
// budget, largest first. Percentages are rounded to one decimal place.
func BudgetShares(projects []models.Project) []BudgetShare {
	total := decimal.Zero
	shares := make([]BudgetShare, 0, len(projects))
	for _, p := range projects {
		if !p.Budget.Valid || !p.Budget.Decimal.IsPositive() {
			continue
		}
		total = total.Add(p.Budget.Decimal)
		shares = append(shares, BudgetShare{ProjectID: p.ID, Name: p.Name, Budget: p.Budget.Decimal})
	}
	if total.IsZero() {
		return shares
	}

	hundred := decimal.NewFromInt(100)
	for i := range shares {
		shares[i].Percent = shares[i].Budget.Mul(hundred).DivRound(total, 1)
	}
	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].Budget.Cmp(shares[j].Budget); c != 0 {
			return c > 0
		}
		return shares[i].ProjectID < shares[j].ProjectID
	})
	return shares
}
