package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = MustParseDate("2025-06-15")

func receivable(total Amount, due Date) *OpenItem {
	item := &OpenItem{
		ID:          "ar-1",
		Kind:        Receivable,
		PartyID:     "client-1",
		IssueDate:   due.AddDays(-30),
		DueDate:     due,
		TotalAmount: total,
	}
	item.Refresh(today)
	return item
}

func pay(amount Amount) Payment {
	return Payment{ID: "p", Date: today, Amount: amount}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		paid      Amount
		due       Date
		cancelled bool
		want      ItemStatus
	}{
		{"pending", 0, today.AddDays(10), false, ItemPending},
		{"partially paid", Pesos(400), today.AddDays(10), false, ItemPartiallyPaid},
		{"overdue beats partial", Pesos(400), today.AddDays(-1), false, ItemOverdue},
		{"due today is not overdue", 0, today, false, ItemPending},
		{"paid", Pesos(1000), today.AddDays(-30), false, ItemPaid},
		{"cancelled", 0, today.AddDays(-30), true, ItemCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := receivable(Pesos(1000), tt.due)
			item.PaidAmount = tt.paid
			item.Cancelled = tt.cancelled
			assert.Equal(t, tt.want, DeriveStatus(item, today))
		})
	}
}

func TestDeriveStatus_PayableIgnoresCancelledFlag(t *testing.T) {
	item := receivable(Pesos(1000), today.AddDays(3))
	item.Kind = Payable
	item.Cancelled = true
	assert.Equal(t, ItemPending, DeriveStatus(item, today))
}

func TestOverdueFiveDays(t *testing.T) {
	item := receivable(Pesos(1000), today.AddDays(-5))
	assert.Equal(t, ItemOverdue, DeriveStatus(item, today))
	assert.Equal(t, BucketOverdue, Bucket(item, today, 5))
}

func TestApplyPayment_ClampsToOutstanding(t *testing.T) {
	item := receivable(Pesos(1000), today.AddDays(10))

	applied, err := item.ApplyPayment(pay(Pesos(1500)), today)
	require.NoError(t, err)
	assert.Equal(t, Pesos(1000), applied)
	assert.Equal(t, Amount(0), item.Outstanding)
	assert.Equal(t, ItemPaid, item.Status)
	require.Len(t, item.Payments, 1)
	assert.Equal(t, Pesos(1000), item.Payments[0].Amount)

	_, err = item.ApplyPayment(pay(Pesos(1)), today)
	assert.ErrorIs(t, err, ErrNothingOutstanding)
	assert.Equal(t, KindConflict, ErrorKind(err))
}

func TestApplyPayment_Partial(t *testing.T) {
	item := receivable(Pesos(1000), today.AddDays(10))

	applied, err := item.ApplyPayment(pay(Pesos(300)), today)
	require.NoError(t, err)
	assert.Equal(t, Pesos(300), applied)
	assert.Equal(t, Pesos(700), item.Outstanding)
	assert.Equal(t, ItemPartiallyPaid, item.Status)

	applied, err = item.ApplyPayment(pay(NewAmount(699, 99)), today)
	require.NoError(t, err)
	assert.Equal(t, NewAmount(699, 99), applied)
	assert.Equal(t, Amount(1), item.Outstanding)
	assert.Equal(t, ItemPartiallyPaid, item.Status)
	assert.Len(t, item.Payments, 2)
}

func TestApplyPayment_Rejects(t *testing.T) {
	item := receivable(Pesos(1000), today.AddDays(10))

	_, err := item.ApplyPayment(pay(0), today)
	assert.ErrorIs(t, err, ErrNonPositivePayment)
	assert.Equal(t, KindValidation, ErrorKind(err))

	_, err = item.ApplyPayment(pay(-5), today)
	assert.ErrorIs(t, err, ErrNonPositivePayment)

	_, err = item.ApplyPayment(Payment{Amount: Pesos(5)}, today)
	assert.ErrorIs(t, err, ErrMissingField)

	item.Cancelled = true
	_, err = item.ApplyPayment(pay(Pesos(5)), today)
	assert.ErrorIs(t, err, ErrItemCancelled)

	assert.Equal(t, Amount(0), item.PaidAmount)
	assert.Empty(t, item.Payments)
}

func TestMarkAsPaid_Idempotent(t *testing.T) {
	item := receivable(Pesos(1000), today.AddDays(-3))
	_, err := item.ApplyPayment(pay(Pesos(250)), today)
	require.NoError(t, err)

	settled, err := item.MarkAsPaid(today)
	require.NoError(t, err)
	assert.Equal(t, Pesos(750), settled)
	assert.Equal(t, ItemPaid, item.Status)
	assert.Equal(t, Amount(0), item.Outstanding)
	assert.Len(t, item.Payments, 1, "mark as paid records no payment")

	first := *item
	settled, err = item.MarkAsPaid(today)
	require.NoError(t, err)
	assert.Equal(t, Amount(0), settled)
	assert.Equal(t, first, *item)
}

// Outstanding never goes negative and Paid holds exactly when nothing is
// outstanding, whatever sequence of payments is applied.
func TestOpenItemInvariants(t *testing.T) {
	sequences := [][]Amount{
		{Pesos(100)},
		{Pesos(400), Pesos(400), Pesos(400)},
		{1, 2, 3, Pesos(2000)},
		{Pesos(999), 99, 1},
	}
	for _, seq := range sequences {
		item := receivable(Pesos(1000), today.AddDays(20))
		for _, amt := range seq {
			_, err := item.ApplyPayment(pay(amt), today)
			if err != nil {
				require.ErrorIs(t, err, ErrNothingOutstanding)
			}
			assert.Equal(t, item.TotalAmount-item.PaidAmount, item.Outstanding)
			assert.GreaterOrEqual(t, int64(item.Outstanding), int64(0))
			assert.Equal(t, item.Outstanding == 0, item.Status == ItemPaid)
		}
	}
}

func TestBucket(t *testing.T) {
	tests := []struct {
		name      string
		due       Date
		threshold int
		want      AgingBucket
	}{
		{"overdue", today.AddDays(-1), 5, BucketOverdue},
		{"due today", today, 5, BucketDueSoon},
		{"edge of window", today.AddDays(5), 5, BucketDueSoon},
		{"outside window", today.AddDays(6), 5, BucketPending},
		{"payable window", today.AddDays(4), 3, BucketPending},
		{"payable window edge", today.AddDays(3), 3, BucketDueSoon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bucket(receivable(Pesos(10), tt.due), today, tt.threshold))
		})
	}

	paid := receivable(Pesos(10), today.AddDays(-10))
	_, err := paid.MarkAsPaid(today)
	require.NoError(t, err)
	assert.Equal(t, BucketClosed, Bucket(paid, today, 5))
}

func TestDueDateFor(t *testing.T) {
	issue := MustParseDate("2025-01-31")
	assert.Equal(t, "2025-03-02", DueDateFor(issue, 0, 30).String())
	assert.Equal(t, "2025-02-15", DueDateFor(issue, 15, 30).String())
}

func TestOpenItem_Validate(t *testing.T) {
	item := &OpenItem{Kind: "loan", TotalAmount: 0}
	err := item.Validate()
	require.Error(t, err)
	assert.Len(t, Fields(err), 5)

	item = receivable(Pesos(10), today)
	item.IssueDate = today.AddDays(1)
	assert.ErrorIs(t, item.Validate(), ErrInvalidDate)
}
