package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gperojohn83-art/Construction/internal/format"
	"github.com/gperojohn83-art/Construction/internal/models"
)

type invoiceResponse struct {
	ID          string               `json:"id"`
	ProjectID   *string              `json:"projectId"`
	Number      string               `json:"number"`
	Client      string               `json:"client"`
	IssueDate   time.Time            `json:"issueDate"`
	IssueLabel  string               `json:"issueLabel"`
	DueDate     *time.Time           `json:"dueDate"`
	DueLabel    string               `json:"dueLabel,omitempty"`
	Subtotal    decimal.Decimal      `json:"subtotal"`
	VATRate     decimal.Decimal      `json:"vatRate"`
	VATAmount   decimal.Decimal      `json:"vatAmount"`
	Total       decimal.Decimal      `json:"total"`
	TotalLabel  string               `json:"totalLabel"`
	Status      models.InvoiceStatus `json:"status"`
	StatusLabel string               `json:"statusLabel"`
	StatusTone  format.Tone          `json:"statusTone"`
}

func (h HandlerSet) toInvoice(inv models.Invoice, locale models.Locale) invoiceResponse {
	label, tone := format.InvoiceStatus(inv.Status, locale)
	resp := invoiceResponse{
		ID:          inv.ID,
		ProjectID:   inv.ProjectID,
		Number:      inv.Number,
		Client:      inv.Client,
		IssueDate:   inv.IssueDate,
		IssueLabel:  format.Date(inv.IssueDate, format.DateShort, locale),
		DueDate:     inv.DueDate,
		Subtotal:    inv.Subtotal,
		VATRate:     inv.VATRate,
		VATAmount:   inv.VATAmount,
		Total:       inv.Total,
		TotalLabel:  format.Currency(inv.Total, locale, h.Currency),
		Status:      inv.Status,
		StatusLabel: label,
		StatusTone:  tone,
	}
	if inv.DueDate != nil {
		resp.DueLabel = format.Date(*inv.DueDate, format.DateShort, locale)
	}
	return resp
}

func (h HandlerSet) toInvoices(invoices []models.Invoice, locale models.Locale) []invoiceResponse {
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, h.toInvoice(inv, locale))
	}
	return out
}

func (h HandlerSet) ListInvoices(c *gin.Context) {
	invoices, err := h.Invoices.List(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": h.toInvoices(invoices, h.requestLocale(c))})
}
