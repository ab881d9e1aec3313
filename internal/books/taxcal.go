package books

import (
	"context"

	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/ledger"
)

// GenerateTaxYear stores the year's filing deadlines. Events that already
// exist keep their status.
func (s *Service) GenerateTaxYear(ctx context.Context, year int) ([]ledger.TaxEvent, error) {
	if year < 2000 || year > 2999 {
		return nil, ledger.FieldError{Field: "year", Err: ledger.ErrInvalidField, Detail: "out of range"}
	}
	events := ledger.GenerateYear(year, s.cfg.Business.EntityType, s.cal)
	if err := s.repo.SaveTaxEvents(ctx, events); err != nil {
		return nil, err
	}
	return s.repo.ListTaxEvents(ctx, year)
}

// TaxEvents lists a year's events, generating them on first use.
func (s *Service) TaxEvents(ctx context.Context, year int) ([]ledger.TaxEvent, error) {
	if year == 0 {
		year = s.Today().Year()
	}
	events, err := s.repo.ListTaxEvents(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		return events, nil
	}
	return s.GenerateTaxYear(ctx, year)
}

// UpcomingTaxEvents returns pending events due within the given number of
// business days, overdue ones included. The window can cross into the
// next year, so both years are loaded.
func (s *Service) UpcomingTaxEvents(ctx context.Context, within int) ([]ledger.TaxEvent, error) {
	if within < 0 {
		return nil, ledger.FieldError{Field: "days", Err: ledger.ErrInvalidField, Detail: "must not be negative"}
	}
	today := s.Today()
	var all []ledger.TaxEvent
	// The previous year's annual return falls due in this year.
	for _, y := range []int{today.Year() - 1, today.Year(), today.Year() + 1} {
		events, err := s.TaxEvents(ctx, y)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return ledger.Upcoming(all, today, within, s.cal), nil
}

// MarkTaxEventFiled moves a pending event to Filed.
func (s *Service) MarkTaxEventFiled(ctx context.Context, id string) (*ledger.TaxEvent, error) {
	var ev *ledger.TaxEvent
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		var err error
		ev, err = r.GetTaxEvent(ctx, id)
		if err != nil {
			return err
		}
		if err := ev.MarkFiled(s.now().UTC()); err != nil {
			return err
		}
		return r.UpdateTaxEvent(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tax event filed", zap.String("id", id))
	return ev, nil
}
