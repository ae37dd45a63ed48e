package kpi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gperojohn83-art/Construction/internal/models"
)

func budget(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func fixture() ([]models.Project, []models.Payment, []models.Invoice, []models.Change) {
	projects := []models.Project{
		{ID: "p1", Name: "Vari housing", Status: models.ProjectActive, Budget: budget("820000")},
		{ID: "p2", Name: "Aspropyrgos warehouse", Status: models.ProjectActive, Budget: budget("560000.10")},
		{ID: "p3", Name: "Marousi offices", Status: models.ProjectDelayed, Budget: budget("180000")},
		{ID: "p4", Name: "Mykonos hotel", Status: models.ProjectCompleted},
		{ID: "p5", Name: "Paused", Status: models.ProjectOnHold, Budget: budget("0.20")},
	}
	payments := []models.Payment{
		{ID: "pay1", Type: models.PaymentReceived, Amount: decimal.RequireFromString("24500")},
		{ID: "pay2", Type: models.PaymentExpense, Amount: decimal.RequireFromString("5000")},
		{ID: "pay3", Type: models.PaymentReceived, Amount: decimal.RequireFromString("0.10")},
	}
	invoices := []models.Invoice{{ID: "i1"}, {ID: "i2"}}
	changes := []models.Change{
		{ID: "c1", Status: models.ChangePending},
		{ID: "c2", Status: models.ChangeApproved},
		{ID: "c3", Status: models.ChangePending},
		{ID: "c4", Status: models.ChangeRejected},
	}
	return projects, payments, invoices, changes
}

func TestCompute(t *testing.T) {
	projects, payments, invoices, changes := fixture()

	got := Compute(projects, payments, invoices, changes)

	assert.Equal(t, 2, got.ActiveProjects)
	assert.Equal(t, 1, got.DelayedProjects)
	assert.Equal(t, 1, got.CompletedProjects)
	assert.Equal(t, "1560000.3", got.TotalBudget.String())
	assert.Equal(t, "24500.1", got.MonthlyPayments.String())
	assert.Equal(t, 2, got.PendingChanges)
	assert.Equal(t, 2, got.TotalInvoices)
}

func TestCompute_MissingBudgetCountsAsZero(t *testing.T) {
	projects := []models.Project{
		{Budget: budget("800000")},
		{},
		{Budget: budget("560000")},
	}

	got := Compute(projects, nil, nil, nil)

	assert.True(t, got.TotalBudget.Equal(decimal.NewFromInt(1360000)))
}

func TestCompute_ExpensesExcluded(t *testing.T) {
	payments := []models.Payment{
		{Type: models.PaymentReceived, Amount: decimal.NewFromInt(24500)},
		{Type: models.PaymentExpense, Amount: decimal.NewFromInt(5000)},
	}

	got := Compute(nil, payments, nil, nil)

	assert.True(t, got.MonthlyPayments.Equal(decimal.NewFromInt(24500)))
}

func TestCompute_NoFloatDrift(t *testing.T) {
	payments := make([]models.Payment, 0, 10)
	for i := 0; i < 10; i++ {
		payments = append(payments, models.Payment{Type: models.PaymentReceived, Amount: decimal.RequireFromString("0.1")})
	}

	got := Compute(nil, payments, nil, nil)

	assert.Equal(t, "1", got.MonthlyPayments.String())
}

func TestCompute_EmptyInputs(t *testing.T) {
	got := Compute(nil, nil, nil, nil)

	assert.Zero(t, got.ActiveProjects)
	assert.Zero(t, got.DelayedProjects)
	assert.Zero(t, got.CompletedProjects)
	assert.Zero(t, got.PendingChanges)
	assert.Zero(t, got.TotalInvoices)
	assert.True(t, got.TotalBudget.IsZero())
	assert.True(t, got.MonthlyPayments.IsZero())

	projects, payments, invoices, changes := fixture()
	full := Compute(projects, payments, invoices, changes)
	noChanges := Compute(projects, payments, invoices, []models.Change{})
	assert.Zero(t, noChanges.PendingChanges)
	assert.Equal(t, full.ActiveProjects, noChanges.ActiveProjects)
	assert.True(t, full.TotalBudget.Equal(noChanges.TotalBudget))
}

func TestCompute_OrderIndependent(t *testing.T) {
	projects, payments, invoices, changes := fixture()
	want := Compute(projects, payments, invoices, changes)

	reverse := func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}
	reverse(len(projects), func(i, j int) { projects[i], projects[j] = projects[j], projects[i] })
	reverse(len(payments), func(i, j int) { payments[i], payments[j] = payments[j], payments[i] })
	reverse(len(invoices), func(i, j int) { invoices[i], invoices[j] = invoices[j], invoices[i] })
	reverse(len(changes), func(i, j int) { changes[i], changes[j] = changes[j], changes[i] })

	got := Compute(projects, payments, invoices, changes)

	assert.Equal(t, want.ActiveProjects, got.ActiveProjects)
	assert.Equal(t, want.DelayedProjects, got.DelayedProjects)
	assert.Equal(t, want.CompletedProjects, got.CompletedProjects)
	assert.Equal(t, want.PendingChanges, got.PendingChanges)
	assert.Equal(t, want.TotalInvoices, got.TotalInvoices)
	assert.True(t, want.TotalBudget.Equal(got.TotalBudget))
	assert.True(t, want.MonthlyPayments.Equal(got.MonthlyPayments))
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	projects, payments, invoices, changes := fixture()
	before := append([]models.Project(nil), projects...)

	Compute(projects, payments, invoices, changes)

	require.Len(t, projects, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, projects[i].ID)
		assert.Equal(t, before[i].Budget, projects[i].Budget)
	}
}

func TestMonthWindow(t *testing.T) {
	athens, err := time.LoadLocation("Europe/Athens")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 22:30 UTC on the last day of February is already March in Athens.
	now := time.Date(2025, time.February, 28, 22, 30, 0, 0, time.UTC)

	start, end := MonthWindow(now, athens)

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, athens), start)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, athens), end)

	start, end = MonthWindow(now, nil)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestBudgetShares(t *testing.T) {
	projects := []models.Project{
		{ID: "b", Name: "Small", Budget: budget("250")},
		{ID: "a", Name: "Large", Budget: budget("750")},
		{ID: "c", Name: "No budget"},
		{ID: "d", Name: "Zero", Budget: budget("0")},
	}

	shares := BudgetShares(projects)

	require.Len(t, shares, 2)
	assert.Equal(t, "a", shares[0].ProjectID)
	assert.Equal(t, "75", shares[0].Percent.String())
	assert.Equal(t, "b", shares[1].ProjectID)
	assert.Equal(t, "25", shares[1].Percent.String())

	assert.Empty(t, BudgetShares(nil))
}
