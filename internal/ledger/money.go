package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value in centavos. All ledger arithmetic happens on
// Amount; decimal text only appears at the JSON, CLI and CSV boundaries.
type Amount int64

const minorExponent = 2

var hundred = decimal.NewFromInt(100)

// NewAmount builds an Amount from whole pesos and centavos.
func NewAmount(pesos, centavos int64) Amount {
	if pesos < 0 {
		return Amount(pesos*100 - centavos)
	}
	return Amount(pesos*100 + centavos)
}

// Pesos builds an Amount from a whole number of pesos.
func Pesos(p int64) Amount {
	return Amount(p * 100)
}

// ParseAmount converts decimal text like "1,500.50" or "$1500" to centavos.
// More than two decimal places is an error, never a silent rounding.
func ParseAmount(s string) (Amount, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimPrefix(clean, "+")
	if clean == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return fromDecimal(d, s)
}

// MaxAmount bounds a single amount and an entry's debit or credit total.
// Sums of values in [0, MaxAmount] checked against it cannot overflow.
const MaxAmount Amount = 1 << 53

func fromDecimal(d decimal.Decimal, orig string) (Amount, error) {
	scaled := d.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, orig, minorExponent)
	}
	if scaled.Abs().GreaterThan(decimal.NewFromInt(int64(MaxAmount))) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, orig)
	}
	return Amount(scaled.IntPart()), nil
}

// Decimal returns the amount in pesos as a decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorExponent)
}

// String returns the plain two-decimal representation, e.g. "-1500.50".
func (a Amount) String() string {
	return a.Decimal().StringFixed(minorExponent)
}

// Format returns the amount with thousands separators, e.g. "1,500.50".
func (a Amount) Format() string {
	neg := a < 0
	s := a.Abs().String()
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatMXN returns the amount with a peso sign, e.g. "$1,500.50".
func (a Amount) FormatMXN() string {
	if a < 0 {
		return "-$" + a.Abs().Format()
	}
	return "$" + a.Format()
}

func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

func (a Amount) Neg() Amount { return -a }

func (a Amount) IsPositive() bool { return a > 0 }

func (a Amount) IsZero() bool { return a == 0 }

// MinAmount returns the smaller of a and b.
func MinAmount(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// SumAmounts adds up a list of amounts.
func SumAmounts(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*a = v
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	v, err := fromDecimal(d, string(data))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
