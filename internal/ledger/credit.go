package ledger

// CreditExposure is a client's open receivable total measured against its
// credit limit.
type CreditExposure struct {
	ClientID    string `json:"client_id"`
	Exposure    Amount `json:"exposure"`
	CreditLimit Amount `json:"credit_limit"`
	Available   Amount `json:"available"`
	Exceeded    bool   `json:"exceeded"`
}

// ComputeExposure sums the outstanding balance of the client's receivables
// that are neither paid nor cancelled. The limit is only enforced when it
// is positive.
func ComputeExposure(client *Client, receivables []OpenItem) CreditExposure {
	var exposure Amount
	for i := range receivables {
		r := &receivables[i]
		if r.Kind != Receivable || r.PartyID != client.ID || r.Cancelled {
			continue
		}
		outstanding := r.TotalAmount - r.PaidAmount
		if outstanding <= 0 {
			continue
		}
		exposure += outstanding
	}

	ce := CreditExposure{
		ClientID:    client.ID,
		Exposure:    exposure,
		CreditLimit: client.CreditLimit,
	}
	if client.CreditLimit > 0 {
		ce.Available = client.CreditLimit - exposure
		ce.Exceeded = exposure > client.CreditLimit
	}
	return ce
}

// Delinquency reports whether a client has gone too long without paying.
type Delinquency struct {
	ClientID         string `json:"client_id"`
	LastPaymentDate  Date   `json:"last_payment_date"`
	LastPaymentEntry string `json:"last_payment_entry,omitempty"`

	// DaysSincePayment is -1 when the client has never paid.
	DaysSincePayment int    `json:"days_since_payment"`
	CreditDays       int    `json:"credit_days"`
	Balance          Amount `json:"balance"`
	Delinquent       bool   `json:"delinquent"`
}

// ComputeDelinquency finds the client's most recent Expense-type entry (the
// payment record) and flags the client when that is older than its credit
// days while a balance is still owed. A client who never paid counts as
// infinitely late.
func ComputeDelinquency(client *Client, entries []JournalEntry, today Date) Delinquency {
	d := Delinquency{
		ClientID:         client.ID,
		DaysSincePayment: -1,
		CreditDays:       client.CreditDays,
		Balance:          client.Balance,
	}

	var last *JournalEntry
	for i := range entries {
		e := &entries[i]
		if e.ClientID != client.ID || e.Type != EntryExpense || !e.Posted() {
			continue
		}
		if last == nil || e.Date.After(last.Date) {
			last = e
		}
	}

	late := true
	if last != nil {
		d.LastPaymentDate = last.Date
		d.LastPaymentEntry = last.Number
		d.DaysSincePayment = last.Date.DaysUntil(today)
		late = d.DaysSincePayment > client.CreditDays
	}
	d.Delinquent = client.CreditDays > 0 && late && client.Balance > 0
	return d
}
