package books

import (
	"context"

	"github.com/simonvc/libromayor/internal/ledger"
)

// Statement builds the client's account statement for [from, to]. Zero
// bounds are open.
func (s *Service) Statement(ctx context.Context, clientID string, from, to ledger.Date) (ledger.Statement, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return ledger.Statement{}, ledger.FieldError{Field: "to", Err: ledger.ErrInvalidDate, Detail: "to is before from"}
	}
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return ledger.Statement{}, err
	}
	// Earlier entries are needed for the opening balance, so only the
	// upper bound narrows the query.
	entries, err := s.repo.ListEntries(ctx, ledger.EntryFilter{ClientID: clientID, Status: ledger.EntryReviewed, To: to})
	if err != nil {
		return ledger.Statement{}, err
	}
	return ledger.BuildStatement(clientID, entries, from, to), nil
}
