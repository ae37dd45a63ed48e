package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"

	"github.com/gperojohn83-art/Construction/internal/models"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		locale models.Locale
		unit   currency.Unit
		want   string
	}{
		{"english euro", "820000", models.LocaleEnglish, currency.EUR, "€820,000"},
		{"greek euro", "820000", models.LocaleGreek, currency.EUR, "820.000 €"},
		{"rounds half up", "24499.5", models.LocaleEnglish, currency.EUR, "€24,500"},
		{"small amount", "12", models.LocaleEnglish, currency.USD, "$12"},
		{"negative", "-1500000", models.LocaleEnglish, currency.GBP, "-£1,500,000"},
		{"zero", "0", models.LocaleGreek, currency.EUR, "0 €"},
		{"yen", "3000", models.LocaleEnglish, currency.JPY, "¥3,000"},
		{"greek dollar", "1250", models.LocaleGreek, currency.USD, "1.250 $"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Currency(decimal.RequireFromString(tt.amount), tt.locale, tt.unit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate(t *testing.T) {
	d := time.Date(2025, time.March, 7, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "07/03/2025", Date(d, DateShort, models.LocaleEnglish))
	assert.Equal(t, "07/03/2025", Date(d, DateShort, models.LocaleGreek))
	assert.Equal(t, "Mar '25", Date(d, DateMonthYear, models.LocaleEnglish))
	assert.Equal(t, "Μαρ '25", Date(d, DateMonthYear, models.LocaleGreek))
	assert.Equal(t, "Mar '25", Date(d, DateMonthYear, models.Locale("fr")))
}

func TestBytes(t *testing.T) {
	tests := map[int64]string{
		0:                 "0 B",
		512:               "512 B",
		1024:              "1 KB",
		1536:              "1.5 KB",
		5 * 1024 * 1024:   "5 MB",
		3 * (1 << 30) / 2: "1.5 GB",
	}
	for in, want := range tests {
		assert.Equal(t, want, Bytes(in), in)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Demo Company":                   "demo-company",
		"  Acme -- Builders  ":           "acme-builders",
		"Βάρη Αττική":                    "vari-attiki",
		"Ξενοδοχείο Μύκονος Phase 2":     "xenodocheio-mykonos-phase-2",
		"Café Crème & Co.":               "cafe-creme-co",
		"Demo Κατασκευαστική ΑΕ":         "demo-kataskeyastiki-ae",
		"!!!":                            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestStatusLabelsAreExhaustive(t *testing.T) {
	locales := []models.Locale{models.LocaleGreek, models.LocaleEnglish}

	for _, locale := range locales {
		for _, s := range models.AllProjectStatuses() {
			_, _, ok := projectStatusLabel(s)
			assert.True(t, ok, "project status %s", s)
			got, tone := ProjectStatus(s, locale)
			assert.NotEmpty(t, got)
			assert.NotEqual(t, string(s), got, "project status %s is not translated", s)
			assert.NotEmpty(t, tone)
		}
		for _, s := range models.AllInvoiceStatuses() {
			_, _, ok := invoiceStatusLabel(s)
			assert.True(t, ok, "invoice status %s", s)
			got, _ := InvoiceStatus(s, locale)
			assert.NotEqual(t, string(s), got)
		}
		for _, s := range models.AllChangeStatuses() {
			_, _, ok := changeStatusLabel(s)
			assert.True(t, ok, "change status %s", s)
			got, _ := ChangeStatus(s, locale)
			assert.NotEqual(t, string(s), got)
		}
		for _, p := range models.AllPaymentTypes() {
			_, _, ok := paymentTypeLabel(p)
			assert.True(t, ok, "payment type %s", p)
			got, _ := PaymentType(p, locale)
			assert.NotEqual(t, string(p), got)
		}
	}
}

func TestStatusLabels(t *testing.T) {
	label, tone := ProjectStatus(models.ProjectDelayed, models.LocaleGreek)
	assert.Equal(t, "Καθυστέρηση", label)
	assert.Equal(t, ToneDelayed, tone)

	label, tone = InvoiceStatus(models.InvoicePaid, models.LocaleEnglish)
	assert.Equal(t, "Paid", label)
	assert.Equal(t, ToneActive, tone)

	label, tone = ProjectStatus(models.ProjectStatus("ARCHIVED"), models.LocaleEnglish)
	assert.Equal(t, "ARCHIVED", label)
	assert.Equal(t, TonePending, tone)
}
