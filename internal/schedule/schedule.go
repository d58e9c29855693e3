// Package schedule computes occurrence dates for recurring definitions.
//
// The arithmetic is deliberately stateless: the anchor day of a monthly
// schedule is re-derived on every call, so a clamp in a short month
// never downgrades the anchor for later months (Jan 31 -> Feb 29 ->
// Mar 31, not Mar 29).
package schedule

import (
	"fmt"
	"time"

	"ledger/internal/core"
)

// HorizonDays is the fixed look-ahead window for the due-items query.
const HorizonDays = 14

// Advance computes the next occurrence strictly after from.
//
// Weekly schedules move by 7*interval days. Monthly schedules move the
// month forward by interval and target either the schedule's explicit
// DayOfMonth or the anchor date's day, clamped to the last valid day of
// the target month. The result is always > from for every valid
// schedule and date.
func Advance(s core.Schedule, anchor core.Date, from core.Date) (core.Date, error) {
	if err := s.Validate(); err != nil {
		return core.Date{}, err
	}
	if err := from.Validate(); err != nil {
		return core.Date{}, err
	}

	switch s.Frequency {
	case core.Weekly:
		return from.AddDays(7 * s.Interval), nil
	case core.Monthly:
		targetDay := anchor.Day()
		if s.DayOfMonth != nil {
			targetDay = *s.DayOfMonth
		}
		year := from.Year()
		month := from.Month() + s.Interval
		// time.Date normalizes month overflow, and day 0 of the
		// following month is the last day of the target month.
		lastDay := time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC).Day()
		if targetDay > lastDay {
			targetDay = lastDay
		}
		return core.NewDate(year, month, targetDay), nil
	default:
		return core.Date{}, core.ErrInvalidFrequency
	}
}

// NextAfter advances a definition's own schedule from the given date,
// using the definition's start date as the monthly anchor.
func NextAfter(def core.RecurringDefinition, from core.Date) (core.Date, error) {
	next, err := Advance(def.Schedule, def.StartDate, from)
	if err != nil {
		return core.Date{}, fmt.Errorf("advance definition %s: %w", def.ID, err)
	}
	return next, nil
}

// DueWithinHorizon selects the non-archived definitions whose next run
// falls within [today, today+HorizonDays], both ends inclusive. This is
// a read-only query; advancing NextRunOn after an occurrence fires is
// the external materialization job's write.
func DueWithinHorizon(defs []core.RecurringDefinition, today core.Date) []core.RecurringDefinition {
	horizonEnd := today.AddDays(HorizonDays)

	var due []core.RecurringDefinition
	for _, def := range defs {
		if def.IsArchived {
			continue
		}
		if def.NextRunOn.Before(today.Time) || def.NextRunOn.After(horizonEnd.Time) {
			continue
		}
		due = append(due, def)
	}
	return due
}
