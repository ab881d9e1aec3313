// Package books is the bookkeeping service: it applies the ledger rules to
// the repository, one atomic unit of work per mutation.
package books

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/bankimport"
	"github.com/simonvc/libromayor/internal/config"
	"github.com/simonvc/libromayor/internal/fiscal"
	"github.com/simonvc/libromayor/internal/ledger"
)

// Service provides the bookkeeping operations.
type Service struct {
	repo    ledger.Repository
	cfg     config.Config
	cal     *ledger.Calendar
	loc     *time.Location
	fiscal  fiscal.Validator
	parsers *bankimport.Registry
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for committed mutations.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now, which fixes "today" in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFiscal overrides the validator chosen by fiscal.mode.
func WithFiscal(v fiscal.Validator) Option {
	return func(s *Service) { s.fiscal = v }
}

// WithParsers overrides the bank statement parsers.
func WithParsers(r *bankimport.Registry) Option {
	return func(s *Service) { s.parsers = r }
}

// New creates a Service over repo. cfg supplies the posting accounts,
// aging thresholds, calendar and fiscal mode.
func New(repo ledger.Repository, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default("", "")
	}
	cal, err := cfg.BusinessCalendar()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Service{
		repo:    repo,
		cfg:     *cfg,
		cal:     cal,
		loc:     loc,
		fiscal:  fiscal.ForMode(string(cfg.Fiscal.Mode)),
		parsers: bankimport.DefaultRegistry(),
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Calendar returns the business-day calendar in use.
func (s *Service) Calendar() *ledger.Calendar { return s.cal }

// Today is the current civil day in the configured timezone.
func (s *Service) Today() ledger.Date {
	return ledger.DateOf(s.now().In(s.loc))
}

// Fiscal exposes the fiscal validator for direct lookups.
func (s *Service) Fiscal() fiscal.Validator { return s.fiscal }

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// accountIndex loads the catalog keyed by id.
type accountIndex map[string]*ledger.Account

func (idx accountIndex) lookup(id string) (*ledger.Account, bool) {
	a, ok := idx[id]
	return a, ok
}

func (idx accountIndex) byCode(code string) (string, bool) {
	for id, a := range idx {
		if a.Code == code {
			return id, true
		}
	}
	return "", false
}
