package service

import (
	"context"

	"github.com/gperojohn83-art/Construction/internal/models"
)

type InvoiceService struct {
	finance FinanceReader
}

func NewInvoiceService(finance FinanceReader) *InvoiceService {
	return &InvoiceService{finance: finance}
}

func (s *InvoiceService) List(ctx context.Context, session models.Session) ([]models.Invoice, error) {
	if !session.HasOrganization() {
		return nil, ErrNoOrganization
	}
	return s.finance.ListInvoices(ctx, session.OrganizationID())
}
