package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

type Obligation string

const (
	ObligationISR    Obligation = "ISR"
	ObligationIVA    Obligation = "IVA"
	ObligationDIOT   Obligation = "DIOT"
	ObligationAnnual Obligation = "ANUAL"
)

type TaxEventStatus string

const (
	TaxPending TaxEventStatus = "Pending"
	TaxFiled   TaxEventStatus = "Filed"
)

// TaxEvent is a filing deadline. IDs are derived from obligation and
// period so regenerating a year never duplicates events.
type TaxEvent struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Obligation Obligation     `json:"obligation"`
	Period     string         `json:"period"`
	DueDate    Date           `json:"due_date"`
	Status     TaxEventStatus `json:"status"`
	FiledAt    *time.Time     `json:"filed_at,omitempty"`
}

// Overdue reports whether a pending event's due date has passed.
func (e *TaxEvent) Overdue(today Date) bool {
	return e.Status == TaxPending && today.After(e.DueDate)
}

// MarkFiled moves a pending event to Filed.
func (e *TaxEvent) MarkFiled(at time.Time) error {
	if e.Status == TaxFiled {
		return ErrTaxEventFiled
	}
	e.Status = TaxFiled
	e.FiledAt = &at
	return nil
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Monthly provisional payments are due on this day of the following month.
const monthlyDueDay = 17

// GenerateYear lists the filing deadlines for the periods of year: monthly
// ISR and IVA on the 17th of the next month, DIOT on the last day of the
// next month, and the annual return on March 31 for legal entities or April
// 30 for individuals. Dates falling on a non-business day roll forward.
func GenerateYear(year int, entity ClientType, cal *Calendar) []TaxEvent {
	events := make([]TaxEvent, 0, 12*3+1)
	for m := time.January; m <= time.December; m++ {
		period := fmt.Sprintf("%04d-%02d", year, int(m))
		label := fmt.Sprintf("%s %d", monthNames[m-1], year)
		next := NewDate(year, m, 1).Time().AddDate(0, 1, 0)
		provisional := cal.NextBusinessDay(NewDate(next.Year(), next.Month(), monthlyDueDay))
		monthEnd := cal.NextBusinessDay(DateOf(next.AddDate(0, 1, -1)))

		events = append(events,
			TaxEvent{
				ID:         period + "-" + string(ObligationISR),
				Name:       "Pago provisional de ISR " + label,
				Obligation: ObligationISR,
				Period:     period,
				DueDate:    provisional,
				Status:     TaxPending,
			},
			TaxEvent{
				ID:         period + "-" + string(ObligationIVA),
				Name:       "Declaración mensual de IVA " + label,
				Obligation: ObligationIVA,
				Period:     period,
				DueDate:    provisional,
				Status:     TaxPending,
			},
			TaxEvent{
				ID:         period + "-" + string(ObligationDIOT),
				Name:       "DIOT " + label,
				Obligation: ObligationDIOT,
				Period:     period,
				DueDate:    monthEnd,
				Status:     TaxPending,
			},
		)
	}

	annualDue := NewDate(year+1, time.April, 30)
	if entity == ClientLegalEntity {
		annualDue = NewDate(year+1, time.March, 31)
	}
	events = append(events, TaxEvent{
		ID:         fmt.Sprintf("%04d-%s", year, ObligationAnnual),
		Name:       fmt.Sprintf("Declaración anual %d", year),
		Obligation: ObligationAnnual,
		Period:     fmt.Sprintf("%04d", year),
		DueDate:    cal.NextBusinessDay(annualDue),
		Status:     TaxPending,
	})
	SortTaxEvents(events)
	return events
}

// SortTaxEvents orders events by due date, then id.
func SortTaxEvents(events []TaxEvent) {
	slices.SortStableFunc(events, func(a, b TaxEvent) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Upcoming returns the pending events due no later than within business
// days from today. Overdue pending events are included.
func Upcoming(events []TaxEvent, today Date, within int, cal *Calendar) []TaxEvent {
	horizon := cal.AddBusinessDays(today, within)
	out := make([]TaxEvent, 0)
	for _, e := range events {
		if e.Status != TaxPending || e.DueDate.After(horizon) {
			continue
		}
		out = append(out, e)
	}
	SortTaxEvents(out)
	return out
}
