package ledger

import (
	"sync"
	"time"
)

// Calendar knows which days are business days: weekdays that are not
// statutory holidays. Holidays are computed per year on demand.
// It is safe for concurrent use.
type Calendar struct {
	mu       sync.Mutex
	extra    map[string]bool
	byYear   map[int]map[string]bool
	holidays func(year int) []Date
}

// NewCalendar returns a calendar using the Mexican statutory rest days plus
// any extra holidays.
func NewCalendar(extra ...Date) *Calendar {
	c := &Calendar{
		extra:    make(map[string]bool, len(extra)),
		byYear:   make(map[int]map[string]bool),
		holidays: MexicanHolidays,
	}
	for _, d := range extra {
		c.extra[d.String()] = true
	}
	return c
}

// IsHoliday reports whether d is a statutory or configured holiday.
func (c *Calendar) IsHoliday(d Date) bool {
	key := d.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.extra[key] {
		return true
	}
	set, ok := c.byYear[d.Year()]
	if !ok {
		set = make(map[string]bool)
		for _, h := range c.holidays(d.Year()) {
			set[h.String()] = true
		}
		c.byYear[d.Year()] = set
	}
	return set[key]
}

// IsBusinessDay reports whether d is neither a weekend nor a holiday.
func (c *Calendar) IsBusinessDay(d Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(d)
}

// NextBusinessDay returns d when it is a business day, otherwise the first
// business day after it.
func (c *Calendar) NextBusinessDay(d Date) Date {
	for !c.IsBusinessDay(d) {
		d = d.AddDays(1)
	}
	return d
}

// AddBusinessDays moves d forward (or backward for negative n) by n business days.
func (c *Calendar) AddBusinessDays(d Date, n int) Date {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		d = d.AddDays(step)
		if c.IsBusinessDay(d) {
			n--
		}
	}
	return d
}

// BusinessDaysBetween counts business days in (from, to]. It is negative
// when to is before from.
func (c *Calendar) BusinessDaysBetween(from, to Date) int {
	if to.Before(from) {
		return -c.BusinessDaysBetween(to, from)
	}
	count := 0
	for d := from.AddDays(1); !d.After(to); d = d.AddDays(1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// MexicanHolidays returns the mandatory rest days of Ley Federal del Trabajo
// art. 74 for the year.
func MexicanHolidays(year int) []Date {
	days := []Date{
		NewDate(year, time.January, 1),
		nthWeekday(year, time.February, time.Monday, 1),
		nthWeekday(year, time.March, time.Monday, 3),
		NewDate(year, time.May, 1),
		NewDate(year, time.September, 16),
		nthWeekday(year, time.November, time.Monday, 3),
		NewDate(year, time.December, 25),
	}
	// Presidential inauguration, every six years since 2024.
	if year >= 2024 && (year-2024)%6 == 0 {
		days = append(days, NewDate(year, time.October, 1))
	}
	return days
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) Date {
	d := NewDate(year, month, 1)
	for d.Weekday() != wd {
		d = d.AddDays(1)
	}
	return d.AddDays(7 * (n - 1))
}
