package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectDelayed   ProjectStatus = "DELAYED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectActive, ProjectCompleted, ProjectOnHold, ProjectDelayed, ProjectCancelled}
}

type Project struct {
	ID             string
	OrganizationID string
	Name           string
	Description    *string
	Client         *string
	Address        *string
	Status         ProjectStatus
	StartDate      *time.Time
	EndDate        *time.Time
	Budget         decimal.NullDecimal
	Color          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PaymentType string

const (
	PaymentReceived PaymentType = "RECEIVED"
	PaymentExpense  PaymentType = "EXPENSE"
)

func AllPaymentTypes() []PaymentType {
	return []PaymentType{PaymentReceived, PaymentExpense}
}

type Payment struct {
	ID        string
	ProjectID string
	Title     string
	Amount    decimal.Decimal
	Type      PaymentType
	PaidAt    *time.Time
	CreatedAt time.Time
}

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled}
}

type Invoice struct {
	ID             string
	OrganizationID string
	ProjectID      *string
	Number         string
	Client         string
	IssueDate      time.Time
	DueDate        *time.Time
	Subtotal       decimal.Decimal
	VATRate        decimal.Decimal
	VATAmount      decimal.Decimal
	Total          decimal.Decimal
	Status         InvoiceStatus
	CreatedAt      time.Time
}

type ChangeStatus string

const (
	ChangePending  ChangeStatus = "PENDING"
	ChangeApproved ChangeStatus = "APPROVED"
	ChangeRejected ChangeStatus = "REJECTED"
)

func AllChangeStatuses() []ChangeStatus {
	return []ChangeStatus{ChangePending, ChangeApproved, ChangeRejected}
}

type Change struct {
	ID          string
	ProjectID   string
	Title       string
	Amount      decimal.NullDecimal
	Status      ChangeStatus
	RequestedAt time.Time
}
