package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Monthly Frequency = "monthly"
	Weekly  Frequency = "weekly"
)

type (
	// Kind tells whether a transaction adds to or subtracts from a balance.
	Kind string

	// Frequency is the repetition unit of a recurring schedule.
	Frequency string

	// Date is a UTC calendar day. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is a single ledger record. AmountMinor is always a
	// positive magnitude in minor currency units; the sign is implied
	// by Kind.
	Transaction struct {
		ID          string
		WorkspaceID string
		Date        Date
		AmountMinor int64
		Currency    CurrencyCode
		Kind        Kind
		CategoryID  string // empty = uncategorized
		MerchantID  string // empty = unassigned
		AccountID   string
		IsArchived  bool
		IsPending   bool
	}

	// Schedule describes when a recurring definition fires.
	// DayOfMonth is an explicit override for monthly schedules; when
	// nil the day is derived from the definition's start date.
	Schedule struct {
		Frequency  Frequency
		Interval   int
		DayOfMonth *int
	}

	// RecurringDefinition is a template for transactions created by an
	// external materialization job. NextRunOn is owned by that job; this
	// engine only computes candidate values for it.
	RecurringDefinition struct {
		ID          string
		WorkspaceID string
		Description string
		AmountMinor int64
		Currency    CurrencyCode
		Kind        Kind
		CategoryID  string
		MerchantID  string
		Schedule    Schedule
		StartDate   Date
		NextRunOn   Date
		IsArchived  bool
	}

	// Budget scopes a spending plan to a set of categories/accounts and
	// a period. When PlannedByCategory is non-empty the budget is
	// per-category and the total planned amount is the sum of the map;
	// otherwise LimitMinor is the single aggregate limit.
	Budget struct {
		ID                string
		WorkspaceID       string
		Name              string
		CategoryIDs       []string // nil = all categories
		AccountIDs        []string // nil = all accounts
		Currency          CurrencyCode
		PeriodStart       Date
		PeriodEnd         Date // inclusive
		LimitMinor        int64
		PlannedByCategory map[string]int64
	}
)

var (
	ErrInvalidAmount       = errors.New("amount must be a positive number of minor units")
	ErrUnsupportedCurrency = errors.New("unsupported currency code")
	ErrInvalidKind         = errors.New("kind must be income or expense")
	ErrInvalidFrequency    = errors.New("frequency must be monthly or weekly")
	ErrInvalidInterval     = errors.New("interval must be a positive integer")
	ErrInvalidDayOfMonth   = errors.New("day of month must be between 1 and 31")
	ErrInvalidDateRange    = errors.New("start date must not be after end date")
	ErrEmptyWorkspace      = errors.New("workspace id is required")
	ErrInvalidDate         = errors.New("date cannot be zero")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
	}
	return DateOf(t), nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ParseKind parses a transaction kind, rejecting anything outside the
// closed set.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.WorkspaceID) == "" {
		return ErrEmptyWorkspace
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if err := t.Currency.Validate(); err != nil {
		return err
	}
	return t.Kind.Validate()
}

func (s Schedule) Validate() error {
	switch s.Frequency {
	case Monthly, Weekly:
	default:
		return ErrInvalidFrequency
	}
	if s.Interval < 1 {
		return ErrInvalidInterval
	}
	if s.DayOfMonth != nil {
		if s.Frequency != Monthly {
			return fmt.Errorf("day of month is only valid for monthly schedules: %w", ErrInvalidDayOfMonth)
		}
		if *s.DayOfMonth < 1 || *s.DayOfMonth > 31 {
			return ErrInvalidDayOfMonth
		}
	}
	return nil
}

func (rd RecurringDefinition) Validate() error {
	if strings.TrimSpace(rd.WorkspaceID) == "" {
		return ErrEmptyWorkspace
	}
	if rd.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if err := rd.Currency.Validate(); err != nil {
		return err
	}
	if err := rd.Kind.Validate(); err != nil {
		return err
	}
	if err := rd.Schedule.Validate(); err != nil {
		return err
	}
	if err := rd.StartDate.Validate(); err != nil {
		return err
	}
	if rd.NextRunOn.Before(rd.StartDate.Time) {
		return errors.New("next run date must not precede the start date")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.WorkspaceID) == "" {
		return ErrEmptyWorkspace
	}
	if err := b.Currency.Validate(); err != nil {
		return err
	}
	if err := b.PeriodStart.Validate(); err != nil {
		return err
	}
	if err := b.PeriodEnd.Validate(); err != nil {
		return err
	}
	if b.PeriodEnd.Before(b.PeriodStart.Time) {
		return ErrInvalidDateRange
	}
	if len(b.PlannedByCategory) == 0 && b.LimitMinor < 0 {
		return ErrInvalidAmount
	}
	for _, planned := range b.PlannedByCategory {
		if planned < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// PlannedTotalMinor returns the budget's total planned amount: the sum
// of the per-category map when present, the flat limit otherwise.
func (b Budget) PlannedTotalMinor() int64 {
	if len(b.PlannedByCategory) == 0 {
		return b.LimitMinor
	}
	var total int64
	for _, planned := range b.PlannedByCategory {
		total += planned
	}
	return total
}

// MonthPeriod returns the inclusive start and end dates of a calendar
// month, for budgets scoped to a whole month.
func MonthPeriod(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	end := NewDate(year, month+1, 1).AddDays(-1)
	return start, end
}
