package ledger

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type AccountType string

const (
	AccountAsset     AccountType = "Asset"
	AccountLiability AccountType = "Liability"
	AccountEquity    AccountType = "Equity"
	AccountIncome    AccountType = "Income"
	AccountExpense   AccountType = "Expense"
)

var AllAccountTypes = []AccountType{
	AccountAsset,
	AccountLiability,
	AccountEquity,
	AccountIncome,
	AccountExpense,
}

// Nature is the side of a posting that increases an account's balance.
type Nature string

const (
	NatureDebit  Nature = "Debit"
	NatureCredit Nature = "Credit"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "Active"
	AccountInactive AccountStatus = "Inactive"
)

type Account struct {
	ID        string        `json:"id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Type      AccountType   `json:"type"`
	Nature    Nature        `json:"nature"`
	Level     int           `json:"level"`
	ParentID  string        `json:"parent_id,omitempty"`
	Balance   Amount        `json:"balance"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

var accountCodePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// ValidAccountCode reports whether code is numeric, optionally dotted.
func ValidAccountCode(code string) bool {
	return accountCodePattern.MatchString(code)
}

// ValidAccountType checks if an account type string is valid.
func ValidAccountType(t AccountType) bool {
	for _, at := range AllAccountTypes {
		if at == t {
			return true
		}
	}
	return false
}

// NormalNature returns the nature an account type usually carries.
// Assets and Expenses are debit-natured; Liabilities, Equity and Income are credit-natured.
func NormalNature(t AccountType) Nature {
	switch t {
	case AccountAsset, AccountExpense:
		return NatureDebit
	default:
		return NatureCredit
	}
}

// ApplyDefaults fills in the values a draft may leave out.
func (a *Account) ApplyDefaults() {
	a.Code = strings.TrimSpace(a.Code)
	if a.Nature == "" {
		a.Nature = NormalNature(a.Type)
	}
	if a.Level == 0 {
		a.Level = 1
	}
	if a.Status == "" {
		a.Status = AccountActive
	}
}

// Validate checks the account's own invariants. Parent level and code
// uniqueness need the catalog and are checked by CheckParent and the store.
func (a *Account) Validate() error {
	var verrs ValidationErrors
	if !ValidAccountCode(a.Code) {
		verrs.Add("code", ErrInvalidAccountCode, "%q must be numeric, optionally dotted", a.Code)
	}
	if strings.TrimSpace(a.Name) == "" {
		verrs.Add("name", ErrMissingField, "")
	}
	if !ValidAccountType(a.Type) {
		verrs.Add("type", ErrInvalidField, "unknown account type %q", a.Type)
	}
	if a.Nature != NatureDebit && a.Nature != NatureCredit {
		verrs.Add("nature", ErrInvalidField, "unknown nature %q", a.Nature)
	}
	if a.Status != AccountActive && a.Status != AccountInactive {
		verrs.Add("status", ErrInvalidField, "unknown status %q", a.Status)
	}
	if a.Level < 1 {
		verrs.Add("level", ErrInvalidField, "level must be at least 1, got %d", a.Level)
	}
	if a.Level > 1 && a.ParentID == "" {
		verrs.Add("parent_id", ErrMissingParent, "level %d", a.Level)
	}
	return verrs.Err()
}

// CheckParent verifies that parent sits exactly one level above a.
func (a *Account) CheckParent(parent *Account) error {
	if parent.Level != a.Level-1 {
		return FieldError{
			Field:  "parent_id",
			Err:    ErrParentLevel,
			Detail: fmt.Sprintf("parent %s is level %d, account is level %d", parent.Code, parent.Level, a.Level),
		}
	}
	return nil
}

// BalanceDelta returns how a debit/credit pair moves an account of the
// given nature.
func BalanceDelta(n Nature, debit, credit Amount) Amount {
	if n == NatureDebit {
		return debit - credit
	}
	return credit - debit
}

// CompareCodes orders dotted codes segment by segment numerically, so
// "105.2" sorts before "105.10" and a group precedes its children.
func CompareCodes(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		x, errX := strconv.Atoi(as[i])
		y, errY := strconv.Atoi(bs[i])
		if errX != nil || errY != nil {
			if c := cmp.Compare(as[i], bs[i]); c != 0 {
				return c
			}
			continue
		}
		if c := cmp.Compare(x, y); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(as), len(bs))
}
