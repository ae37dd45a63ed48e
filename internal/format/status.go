package format

import "github.com/gperojohn83-art/Construction/internal/models"

// Tone is the visual category a status badge is rendered with.
type Tone string

const (
	ToneActive    Tone = "status-active"
	ToneCompleted Tone = "status-completed"
	TonePending   Tone = "status-pending"
	ToneDelayed   Tone = "status-delayed"
	ToneCancelled Tone = "status-cancelled"
)

type label struct {
	el, en string
}

func (l label) in(locale models.Locale) string {
	if locale == models.LocaleGreek {
		return l.el
	}
	return l.en
}

func projectStatusLabel(s models.ProjectStatus) (label, Tone, bool) {
	switch s {
	case models.ProjectActive:
		return label{"Ενεργό", "Active"}, ToneActive, true
	case models.ProjectCompleted:
		return label{"Ολοκληρωμένο", "Completed"}, ToneCompleted, true
	case models.ProjectOnHold:
		return label{"Σε Αναμονή", "On Hold"}, TonePending, true
	case models.ProjectDelayed:
		return label{"Καθυστέρηση", "Delayed"}, ToneDelayed, true
	case models.ProjectCancelled:
		return label{"Ακυρωμένο", "Cancelled"}, ToneCancelled, true
	}
	return label{}, TonePending, false
}

func invoiceStatusLabel(s models.InvoiceStatus) (label, Tone, bool) {
	switch s {
	case models.InvoiceDraft:
		return label{"Πρόχειρο", "Draft"}, TonePending, true
	case models.InvoiceSent:
		return label{"Απεστάλη", "Sent"}, TonePending, true
	case models.InvoicePaid:
		return label{"Πληρώθηκε", "Paid"}, ToneActive, true
	case models.InvoiceOverdue:
		return label{"Ληξιπρόθεσμο", "Overdue"}, ToneDelayed, true
	case models.InvoiceCancelled:
		return label{"Ακυρωμένο", "Cancelled"}, ToneCancelled, true
	}
	return label{}, TonePending, false
}

func changeStatusLabel(s models.ChangeStatus) (label, Tone, bool) {
	switch s {
	case models.ChangePending:
		return label{"Εκκρεμές", "Pending"}, TonePending, true
	case models.ChangeApproved:
		return label{"Εγκρίθηκε", "Approved"}, ToneActive, true
	case models.ChangeRejected:
		return label{"Απορρίφθηκε", "Rejected"}, ToneDelayed, true
	}
	return label{}, TonePending, false
}

func paymentTypeLabel(t models.PaymentType) (label, Tone, bool) {
	switch t {
	case models.PaymentReceived:
		return label{"Είσπραξη", "Received"}, ToneActive, true
	case models.PaymentExpense:
		return label{"Έξοδο", "Expense"}, ToneDelayed, true
	}
	return label{}, TonePending, false
}

// ProjectStatus returns the localized label and tone of s. Unknown values
// render as their raw code.
func ProjectStatus(s models.ProjectStatus, locale models.Locale) (string, Tone) {
	l, tone, ok := projectStatusLabel(s)
	if !ok {
		return string(s), tone
	}
	return l.in(locale), tone
}

func InvoiceStatus(s models.InvoiceStatus, locale models.Locale) (string, Tone) {
	l, tone, ok := invoiceStatusLabel(s)
	if !ok {
		return string(s), tone
	}
	return l.in(locale), tone
}

func ChangeStatus(s models.ChangeStatus, locale models.Locale) (string, Tone) {
	l, tone, ok := changeStatusLabel(s)
	if !ok {
		return string(s), tone
	}
	return l.in(locale), tone
}

func PaymentType(t models.PaymentType, locale models.Locale) (string, Tone) {
	l, tone, ok := paymentTypeLabel(t)
	if !ok {
		return string(t), tone
	}
	return l.in(locale), tone
}
