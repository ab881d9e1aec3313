// Package bankimport turns bank statement exports into bank transactions
// ready for reconciliation.
package bankimport

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/simonvc/libromayor/internal/ledger"
)

// Parser converts a bank CSV export into BankTransactions. Parsed
// transactions carry date, description, amount, direction and a reference
// that is stable across re-imports of the same file.
type Parser interface {
	Parse(r io.Reader) ([]ledger.BankTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(strings.TrimSpace(format))]
}

// Formats lists the registered format names in order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	r.Register(&BBVAParser{})
	return r
}

// refCounter makes references unique within one file: the second identical
// movement on a day gets a "-2" suffix, and so on.
type refCounter map[string]int

func (c refCounter) next(base string) string {
	c[base]++
	if n := c[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

// refSlug keeps the first ten alphanumerics of a description.
func refSlug(desc string) string {
	slug := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(slug) > 10 {
		slug = slug[:10]
	}
	return strings.ToUpper(slug)
}

func makeRef(format string, date ledger.Date, desc string, amount ledger.Amount, dir ledger.Direction) string {
	sign := "C"
	if dir == ledger.DirectionDebit {
		sign = "D"
	}
	return fmt.Sprintf("%s_%s_%s_%s%d", format, strings.ReplaceAll(date.String(), "-", ""), refSlug(desc), sign, int64(amount))
}
