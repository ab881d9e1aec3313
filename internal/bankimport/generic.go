package bankimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/simonvc/libromayor/internal/ledger"
)

// GenericParser reads the neutral layout
//
//	date,description,amount,reference
//
// with ISO dates and signed amounts: deposits are positive, withdrawals
// negative. The reference column is optional; rows without one get a
// derived reference.
type GenericParser struct{}

const (
	genericColDate   = 0
	genericColDesc   = 1
	genericColAmount = 2
	genericColRef    = 3
)

func (p *GenericParser) Format() string { return "generic" }

func (p *GenericParser) Parse(r io.Reader) ([]ledger.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	refs := refCounter{}
	var txns []ledger.BankTransaction
	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		txn, err := parseGenericRow(rec, refs)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseGenericRow(rec []string, refs refCounter) (ledger.BankTransaction, error) {
	if len(rec) < 3 {
		return ledger.BankTransaction{}, fmt.Errorf("%w: expected at least 3 columns, got %d", ledger.ErrInvalidField, len(rec))
	}
	date, err := ledger.ParseDate(strings.TrimSpace(rec[genericColDate]))
	if err != nil {
		return ledger.BankTransaction{}, err
	}
	amount, err := ledger.ParseAmount(rec[genericColAmount])
	if err != nil {
		return ledger.BankTransaction{}, err
	}
	if amount.IsZero() {
		return ledger.BankTransaction{}, fmt.Errorf("%w: zero amount", ledger.ErrInvalidAmount)
	}

	dir := ledger.DirectionCredit
	if amount < 0 {
		dir = ledger.DirectionDebit
	}
	desc := strings.TrimSpace(rec[genericColDesc])

	var ref string
	if len(rec) > genericColRef {
		ref = strings.TrimSpace(rec[genericColRef])
	}
	if ref == "" {
		ref = refs.next(makeRef("generic", date, desc, amount.Abs(), dir))
	}

	return ledger.BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount.Abs(),
		Direction:   dir,
		Reference:   ref,
	}, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
