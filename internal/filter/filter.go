// Package filter turns a set of scope constraints into a reusable
// predicate over transactions.
//
// All date intervals here are half-open: [Start, End). Converting an
// inclusive end date into an exclusive one happens in exactly one place
// (Through and ForMonth below); call sites never add the extra day
// themselves.
package filter

import (
	"fmt"
	"strings"

	"ledger/internal/core"
)

// Predicate reports whether a transaction matches a scope.
type Predicate func(core.Transaction) bool

// Scope is the full set of constraints a caller can put on a query.
// Empty ID slices mean unconstrained; an empty Currency means any.
type Scope struct {
	WorkspaceID string
	Start       *core.Date // inclusive; nil = unbounded
	End         *core.Date // exclusive; nil = unbounded
	AccountIDs  []string
	CategoryIDs []string
	MerchantIDs []string
	Currency    core.CurrencyCode

	IncludeArchived bool
	IncludePending  bool
}

// NewScope returns a scope with the default flags: archived records
// excluded, pending records included.
func NewScope(workspaceID string) Scope {
	return Scope{
		WorkspaceID:    workspaceID,
		IncludePending: true,
	}
}

// From bounds the scope at an inclusive start date.
func (s Scope) From(start core.Date) Scope {
	s.Start = &start
	return s
}

// Through bounds the scope at an inclusive end date by converting it to
// the exclusive form the predicate uses.
func (s Scope) Through(endInclusive core.Date) Scope {
	end := endInclusive.AddDays(1)
	s.End = &end
	return s
}

// Until bounds the scope at an already-exclusive end date.
func (s Scope) Until(endExclusive core.Date) Scope {
	s.End = &endExclusive
	return s
}

// ForMonth bounds the scope to a single calendar month.
func (s Scope) ForMonth(year, month int) Scope {
	start := core.NewDate(year, month, 1)
	end := core.NewDate(year, month+1, 1)
	s.Start = &start
	s.End = &end
	return s
}

// Validate rejects malformed scopes before any predicate is built.
func (s Scope) Validate() error {
	if strings.TrimSpace(s.WorkspaceID) == "" {
		return core.ErrEmptyWorkspace
	}
	if s.Start != nil && s.End != nil && s.Start.After(s.End.Time) {
		return fmt.Errorf("scope [%s, %s): %w", s.Start, s.End, core.ErrInvalidDateRange)
	}
	if s.Currency != "" {
		if err := s.Currency.Validate(); err != nil {
			return fmt.Errorf("scope currency %q: %w", s.Currency, err)
		}
	}
	return nil
}

// Build validates the scope and returns its predicate. The predicate is
// pure: equal scopes always produce equivalent predicates.
func (s Scope) Build() (Predicate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	accounts := toSet(s.AccountIDs)
	categories := toSet(s.CategoryIDs)
	merchants := toSet(s.MerchantIDs)

	return func(t core.Transaction) bool {
		if t.WorkspaceID != s.WorkspaceID {
			return false
		}
		if t.IsArchived && !s.IncludeArchived {
			return false
		}
		if t.IsPending && !s.IncludePending {
			return false
		}
		if s.Start != nil && t.Date.Before(s.Start.Time) {
			return false
		}
		if s.End != nil && !t.Date.Before(s.End.Time) {
			return false
		}
		if s.Currency != "" && t.Currency != s.Currency {
			return false
		}
		if len(accounts) > 0 {
			if _, ok := accounts[t.AccountID]; !ok {
				return false
			}
		}
		if len(categories) > 0 {
			if _, ok := categories[t.CategoryID]; !ok {
				return false
			}
		}
		if len(merchants) > 0 {
			if _, ok := merchants[t.MerchantID]; !ok {
				return false
			}
		}
		return true
	}, nil
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
