package bankimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/simonvc/libromayor/internal/ledger"
)

// BBVAParser parses BBVA México account statement exports:
//
//	Fecha,Concepto / Referencia,Cargo,Abono,Saldo
//
// Dates are DD/MM/YYYY. A row fills exactly one of Cargo (withdrawal) or
// Abono (deposit); amounts use thousands separators.
type BBVAParser struct{}

const (
	bbvaDateFormat = "02/01/2006"
	bbvaNumFields  = 5
	bbvaColDate    = 0
	bbvaColDesc    = 1
	bbvaColCargo   = 2
	bbvaColAbono   = 3
)

func (p *BBVAParser) Format() string { return "bbva" }

func (p *BBVAParser) Parse(r io.Reader) ([]ledger.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = bbvaNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bbva CSV: %w", err)
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
		txn, err := parseBBVARow(rec, refs)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseBBVARow(rec []string, refs refCounter) (ledger.BankTransaction, error) {
	t, err := time.Parse(bbvaDateFormat, strings.TrimSpace(rec[bbvaColDate]))
	if err != nil {
		return ledger.BankTransaction{}, fmt.Errorf("%w: %q", ledger.ErrInvalidDate, rec[bbvaColDate])
	}
	date := ledger.DateOf(t)

	cargo, err := optionalAmount(rec[bbvaColCargo])
	if err != nil {
		return ledger.BankTransaction{}, err
	}
	abono, err := optionalAmount(rec[bbvaColAbono])
	if err != nil {
		return ledger.BankTransaction{}, err
	}

	var amount ledger.Amount
	var dir ledger.Direction
	switch {
	case cargo.IsPositive() && abono.IsZero():
		amount, dir = cargo, ledger.DirectionDebit
	case abono.IsPositive() && cargo.IsZero():
		amount, dir = abono, ledger.DirectionCredit
	default:
		return ledger.BankTransaction{}, fmt.Errorf("%w: exactly one of cargo or abono must be positive", ledger.ErrInvalidAmount)
	}

	desc := strings.TrimSpace(rec[bbvaColDesc])
	return ledger.BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Direction:   dir,
		Reference:   refs.next(makeRef("bbva", date, desc, amount, dir)),
	}, nil
}

func optionalAmount(s string) (ledger.Amount, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ledger.ParseAmount(s)
}
