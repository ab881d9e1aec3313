package ledger

import (
	"cmp"
	"slices"
	"time"
)

// TrialBalanceLine represents a single line in the trial balance.
type TrialBalanceLine struct {
	AccountID   string      `json:"account_id"`
	Code        string      `json:"code"`
	AccountName string      `json:"account_name"`
	Type        AccountType `json:"type"`
	Debit       Amount      `json:"debit"`
	Credit      Amount      `json:"credit"`
}

type TrialBalance struct {
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  Amount             `json:"total_debit"`
	TotalCredit Amount             `json:"total_credit"`
	Balanced    bool               `json:"balanced"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// BuildTrialBalance places each account's balance in the column of its
// nature. A balance that has gone against its nature lands in the opposite
// column. Zero balances are omitted.
func BuildTrialBalance(accounts []Account, now time.Time) TrialBalance {
	tb := TrialBalance{Lines: []TrialBalanceLine{}, GeneratedAt: now}
	for _, a := range accounts {
		if a.Balance == 0 {
			continue
		}
		line := TrialBalanceLine{
			AccountID:   a.ID,
			Code:        a.Code,
			AccountName: a.Name,
			Type:        a.Type,
		}
		debitSide := (a.Nature == NatureDebit) == (a.Balance > 0)
		if debitSide {
			line.Debit = a.Balance.Abs()
		} else {
			line.Credit = a.Balance.Abs()
		}
		tb.TotalDebit += line.Debit
		tb.TotalCredit += line.Credit
		tb.Lines = append(tb.Lines, line)
	}
	slices.SortFunc(tb.Lines, func(x, y TrialBalanceLine) int { return CompareCodes(x.Code, y.Code) })
	tb.Balanced = tb.TotalDebit == tb.TotalCredit
	return tb
}

// BalanceSheetLine is an account balance expressed in its natural sign.
type BalanceSheetLine struct {
	AccountID   string `json:"account_id"`
	Code        string `json:"code"`
	AccountName string `json:"account_name"`
	Balance     Amount `json:"balance"`
}

type BalanceSheet struct {
	Assets           []BalanceSheetLine `json:"assets"`
	Liabilities      []BalanceSheetLine `json:"liabilities"`
	Equity           []BalanceSheetLine `json:"equity"`
	TotalAssets      Amount             `json:"total_assets"`
	TotalLiabilities Amount             `json:"total_liabilities"`
	TotalEquity      Amount             `json:"total_equity"`

	// NetIncome is income minus expenses not yet closed into equity.
	NetIncome   Amount    `json:"net_income"`
	Balanced    bool      `json:"balanced"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BuildBalanceSheet groups balances by type. The sheet balances when
// assets equal liabilities plus equity plus the period's net income.
func BuildBalanceSheet(accounts []Account, now time.Time) BalanceSheet {
	bs := BalanceSheet{
		Assets:      []BalanceSheetLine{},
		Liabilities: []BalanceSheetLine{},
		Equity:      []BalanceSheetLine{},
		GeneratedAt: now,
	}
	sorted := slices.Clone(accounts)
	slices.SortFunc(sorted, func(x, y Account) int { return CompareCodes(x.Code, y.Code) })

	for _, a := range sorted {
		line := BalanceSheetLine{AccountID: a.ID, Code: a.Code, AccountName: a.Name, Balance: a.Balance}
		switch a.Type {
		case AccountAsset:
			bs.Assets = append(bs.Assets, line)
			bs.TotalAssets += a.Balance
		case AccountLiability:
			bs.Liabilities = append(bs.Liabilities, line)
			bs.TotalLiabilities += a.Balance
		case AccountEquity:
			bs.Equity = append(bs.Equity, line)
			bs.TotalEquity += a.Balance
		case AccountIncome:
			bs.NetIncome += a.Balance
		case AccountExpense:
			bs.NetIncome -= a.Balance
		}
	}
	bs.Balanced = bs.TotalAssets == bs.TotalLiabilities+bs.TotalEquity+bs.NetIncome
	return bs
}

// AgingRow is one open item as seen on a given day.
type AgingRow struct {
	OpenItem
	Bucket       AgingBucket `json:"bucket"`
	DaysUntilDue int         `json:"days_until_due"`
}

// AgingFilter narrows an aging report. Zero values match everything; the
// date bounds apply to the due date and are inclusive.
type AgingFilter struct {
	Kind    ItemKind
	PartyID string
	From    Date
	To      Date
}

func (f AgingFilter) Match(item *OpenItem) bool {
	if f.Kind != "" && item.Kind != f.Kind {
		return false
	}
	if f.PartyID != "" && item.PartyID != f.PartyID {
		return false
	}
	return item.DueDate.InRange(f.From, f.To)
}

type AgingReport struct {
	Kind             ItemKind               `json:"kind,omitempty"`
	AsOf             Date                   `json:"as_of"`
	ThresholdDays    int                    `json:"threshold_days"`
	Rows             []AgingRow             `json:"rows"`
	Totals           map[AgingBucket]Amount `json:"totals"`
	TotalOutstanding Amount                 `json:"total_outstanding"`
}

// BuildAgingReport is a pure projection: it refreshes a copy of every
// matching item for today and buckets it. Rows are ordered by due date.
func BuildAgingReport(items []OpenItem, f AgingFilter, today Date, thresholdDays int) AgingReport {
	rep := AgingReport{
		Kind:          f.Kind,
		AsOf:          today,
		ThresholdDays: thresholdDays,
		Rows:          []AgingRow{},
		Totals: map[AgingBucket]Amount{
			BucketOverdue: 0,
			BucketDueSoon: 0,
			BucketPending: 0,
			BucketClosed:  0,
		},
	}
	for _, item := range items {
		if !f.Match(&item) {
			continue
		}
		item.Refresh(today)
		row := AgingRow{
			OpenItem:     item,
			Bucket:       Bucket(&item, today, thresholdDays),
			DaysUntilDue: today.DaysUntil(item.DueDate),
		}
		rep.Rows = append(rep.Rows, row)
		if row.Bucket == BucketClosed {
			rep.Totals[BucketClosed] += item.TotalAmount
			continue
		}
		rep.Totals[row.Bucket] += item.Outstanding
		rep.TotalOutstanding += item.Outstanding
	}
	slices.SortStableFunc(rep.Rows, func(x, y AgingRow) int {
		if c := x.DueDate.Compare(y.DueDate); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return rep
}
