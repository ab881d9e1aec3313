package books

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/ledger"
)

// AddAccount validates a draft account and stores it. The draft's balance
// is taken as the opening balance.
func (s *Service) AddAccount(ctx context.Context, acct *ledger.Account) (*ledger.Account, error) {
	acct.ApplyDefaults()
	if err := acct.Validate(); err != nil {
		return nil, err
	}

	if acct.ParentID != "" {
		parent, err := s.repo.GetAccount(ctx, acct.ParentID)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, ledger.FieldError{Field: "parent_id", Err: ledger.ErrAccountNotFound, Detail: acct.ParentID}
		}
		if err != nil {
			return nil, err
		}
		if err := acct.CheckParent(parent); err != nil {
			return nil, err
		}
	}

	acct.ID = newID()
	acct.CreatedAt = s.now().UTC()
	if err := s.repo.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}
	s.log.Info("account created", zap.String("id", acct.ID), zap.String("code", acct.Code))
	return acct, nil
}

func (s *Service) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) ListAccounts(ctx context.Context, f ledger.AccountFilter) ([]ledger.Account, error) {
	return s.repo.ListAccounts(ctx, f)
}

// PostBalance moves an account's balance outside of a journal entry.
func (s *Service) PostBalance(ctx context.Context, id string, delta ledger.Amount) error {
	return s.repo.PostBalance(ctx, id, delta)
}

// SetAccountStatus activates or deactivates an account. Inactive accounts
// keep their balance but cannot receive new lines.
func (s *Service) SetAccountStatus(ctx context.Context, id string, status ledger.AccountStatus) (*ledger.Account, error) {
	if status != ledger.AccountActive && status != ledger.AccountInactive {
		return nil, ledger.FieldError{Field: "status", Err: ledger.ErrInvalidField, Detail: string(status)}
	}
	if err := s.repo.SetAccountStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.log.Info("account status changed", zap.String("id", id), zap.String("status", string(status)))
	return s.repo.GetAccount(ctx, id)
}

// SeedChart creates the default chart when the catalog is empty. It
// returns how many accounts were created.
func (s *Service) SeedChart(ctx context.Context) (int, error) {
	existing, err := s.repo.ListAccounts(ctx, ledger.AccountFilter{})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	err = s.repo.Atomic(ctx, func(r ledger.Repository) error {
		idByCode := make(map[string]string, len(ledger.DefaultChart))
		for _, ce := range ledger.DefaultChart {
			acct := &ledger.Account{
				ID:        newID(),
				Code:      ce.Code,
				Name:      ce.Name,
				Type:      ce.Type,
				Level:     ce.Level,
				ParentID:  idByCode[ce.ParentCode],
				CreatedAt: s.now().UTC(),
			}
			acct.ApplyDefaults()
			if err := r.CreateAccount(ctx, acct); err != nil {
				return fmt.Errorf("seed %s: %w", ce.Code, err)
			}
			idByCode[ce.Code] = acct.ID
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("chart seeded", zap.Int("accounts", created))
	return created, nil
}

func (s *Service) TrialBalance(ctx context.Context) (ledger.TrialBalance, error) {
	accounts, err := s.repo.ListAccounts(ctx, ledger.AccountFilter{})
	if err != nil {
		return ledger.TrialBalance{}, err
	}
	return ledger.BuildTrialBalance(accounts, s.now().UTC()), nil
}

func (s *Service) BalanceSheet(ctx context.Context) (ledger.BalanceSheet, error) {
	accounts, err := s.repo.ListAccounts(ctx, ledger.AccountFilter{})
	if err != nil {
		return ledger.BalanceSheet{}, err
	}
	return ledger.BuildBalanceSheet(accounts, s.now().UTC()), nil
}

// BalanceDrift is an account whose stored balance disagrees with its
// opening balance plus posted activity.
type BalanceDrift struct {
	AccountID string        `json:"account_id"`
	Code      string        `json:"code"`
	Stored    ledger.Amount `json:"stored"`
	Expected  ledger.Amount `json:"expected"`
}

type BalanceCheck struct {
	Consistent bool           `json:"consistent"`
	Checked    int            `json:"checked"`
	Drift      []BalanceDrift `json:"drift"`
}

// VerifyBalances recomputes every balance from the posted entries and
// reports accounts that drifted. Direct PostBalance calls show up here.
func (s *Service) VerifyBalances(ctx context.Context) (BalanceCheck, error) {
	accounts, err := s.repo.ListAccounts(ctx, ledger.AccountFilter{})
	if err != nil {
		return BalanceCheck{}, err
	}
	opening, err := s.repo.OpeningBalances(ctx)
	if err != nil {
		return BalanceCheck{}, err
	}
	activity, err := s.repo.PostedActivity(ctx)
	if err != nil {
		return BalanceCheck{}, err
	}
	byAccount := make(map[string]ledger.AccountActivity, len(activity))
	for _, a := range activity {
		byAccount[a.AccountID] = a
	}

	check := BalanceCheck{Consistent: true, Checked: len(accounts), Drift: []BalanceDrift{}}
	for _, acct := range accounts {
		act := byAccount[acct.ID]
		expected := opening[acct.ID] + ledger.BalanceDelta(acct.Nature, act.Debit, act.Credit)
		if expected != acct.Balance {
			check.Consistent = false
			check.Drift = append(check.Drift, BalanceDrift{
				AccountID: acct.ID,
				Code:      acct.Code,
				Stored:    acct.Balance,
				Expected:  expected,
			})
		}
	}
	return check, nil
}
