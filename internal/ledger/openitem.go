package ledger

import (
	"time"
)

// ItemKind distinguishes accounts receivable from accounts payable. Both
// share the same lifecycle.
type ItemKind string

const (
	Receivable ItemKind = "receivable"
	Payable    ItemKind = "payable"
)

func (k ItemKind) Valid() bool {
	return k == Receivable || k == Payable
}

type ItemStatus string

const (
	ItemPending       ItemStatus = "Pending"
	ItemPartiallyPaid ItemStatus = "PartiallyPaid"
	ItemOverdue       ItemStatus = "Overdue"
	ItemPaid          ItemStatus = "Paid"
	ItemCancelled     ItemStatus = "Cancelled"
)

// Payment is immutable once recorded.
type Payment struct {
	ID             string    `json:"id"`
	Date           Date      `json:"date"`
	Amount         Amount    `json:"amount"`
	Notes          string    `json:"notes,omitempty"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// OpenItem is an account receivable (party is a client) or an account
// payable (party is a supplier).
type OpenItem struct {
	ID          string     `json:"id"`
	Kind        ItemKind   `json:"kind"`
	PartyID     string     `json:"party_id"`
	InvoiceID   string     `json:"invoice_id,omitempty"`
	Reference   string     `json:"reference,omitempty"`
	IssueDate   Date       `json:"issue_date"`
	DueDate     Date       `json:"due_date"`
	TotalAmount Amount     `json:"total_amount"`
	PaidAmount  Amount     `json:"paid_amount"`
	Outstanding Amount     `json:"outstanding_balance"`
	Status      ItemStatus `json:"status"`
	Cancelled   bool       `json:"cancelled,omitempty"`
	Payments    []Payment  `json:"payment_history"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DeriveStatus computes an item's status from its stored facts. It is the
// only place status is decided.
func DeriveStatus(item *OpenItem, today Date) ItemStatus {
	outstanding := item.TotalAmount - item.PaidAmount
	switch {
	case item.Cancelled && item.Kind == Receivable:
		return ItemCancelled
	case outstanding <= 0:
		return ItemPaid
	case today.After(item.DueDate):
		return ItemOverdue
	case item.PaidAmount > 0 && item.PaidAmount < item.TotalAmount:
		return ItemPartiallyPaid
	default:
		return ItemPending
	}
}

// Refresh recomputes the derived fields for the given day.
func (item *OpenItem) Refresh(today Date) {
	item.Outstanding = item.TotalAmount - item.PaidAmount
	if item.Outstanding < 0 {
		item.Outstanding = 0
	}
	item.Status = DeriveStatus(item, today)
}

// Validate checks a new item before it is stored.
func (item *OpenItem) Validate() error {
	var verrs ValidationErrors
	if !item.Kind.Valid() {
		verrs.Add("kind", ErrInvalidField, "unknown kind %q", item.Kind)
	}
	if item.PartyID == "" {
		verrs.Add("party_id", ErrMissingField, "")
	}
	if item.IssueDate.IsZero() {
		verrs.Add("issue_date", ErrMissingField, "")
	}
	if item.DueDate.IsZero() {
		verrs.Add("due_date", ErrMissingField, "")
	} else if !item.IssueDate.IsZero() && item.DueDate.Before(item.IssueDate) {
		verrs.Add("due_date", ErrInvalidDate, "due %s is before issue %s", item.DueDate, item.IssueDate)
	}
	if !item.TotalAmount.IsPositive() {
		verrs.Add("total_amount", ErrInvalidAmount, "must be positive")
	}
	if item.PaidAmount < 0 || item.PaidAmount > item.TotalAmount {
		verrs.Add("paid_amount", ErrInvalidAmount, "must be within 0 and the total")
	}
	return verrs.Err()
}

// ApplyPayment records a payment against the item. The applied amount is
// clamped to the outstanding balance so the balance never goes negative.
// It returns the amount actually applied.
func (item *OpenItem) ApplyPayment(p Payment, today Date) (Amount, error) {
	if !p.Amount.IsPositive() {
		return 0, FieldError{Field: "amount", Err: ErrNonPositivePayment, Detail: p.Amount.String()}
	}
	if p.Date.IsZero() {
		return 0, FieldError{Field: "date", Err: ErrMissingField}
	}
	if item.Cancelled {
		return 0, ErrItemCancelled
	}
	outstanding := item.TotalAmount - item.PaidAmount
	if outstanding <= 0 {
		return 0, ErrNothingOutstanding
	}

	applied := MinAmount(p.Amount, outstanding)
	p.Amount = applied
	item.Payments = append(item.Payments, p)
	item.PaidAmount += applied
	item.Refresh(today)
	return applied, nil
}

// MarkAsPaid settles the item without a payment record. Calling it on an
// item that is already paid leaves it unchanged. It returns the amount that
// was outstanding before settling.
func (item *OpenItem) MarkAsPaid(today Date) (Amount, error) {
	if item.Cancelled {
		return 0, ErrItemCancelled
	}
	settled := item.TotalAmount - item.PaidAmount
	if settled < 0 {
		settled = 0
	}
	item.PaidAmount = item.TotalAmount
	item.Refresh(today)
	return settled, nil
}

// AgingBucket classifies an item by how close its due date is.
type AgingBucket string

const (
	BucketOverdue AgingBucket = "Overdue"
	BucketDueSoon AgingBucket = "DueSoon"
	BucketPending AgingBucket = "Pending"
	BucketClosed  AgingBucket = "Closed"
)

// Bucket returns the aging bucket for the item on today. thresholdDays is
// the due-soon window, inclusive.
func Bucket(item *OpenItem, today Date, thresholdDays int) AgingBucket {
	if item.Cancelled || item.TotalAmount-item.PaidAmount <= 0 {
		return BucketClosed
	}
	days := today.DaysUntil(item.DueDate)
	switch {
	case days < 0:
		return BucketOverdue
	case days <= thresholdDays:
		return BucketDueSoon
	default:
		return BucketPending
	}
}

// DueDateFor returns issue + creditDays, with defaultDays used when the
// party has no credit days.
func DueDateFor(issue Date, creditDays, defaultDays int) Date {
	if creditDays <= 0 {
		creditDays = defaultDays
	}
	return issue.AddDays(creditDays)
}
