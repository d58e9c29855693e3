// Package budget composes aggregation output with budget definitions
// into planned/actual/remaining/progress figures.
package budget

import (
	"fmt"
	"sort"

	"ledger/internal/aggregate"
	"ledger/internal/core"
	"ledger/internal/filter"
)

// Progress is the budget-vs-actual figure set for one planned amount.
// RemainingMinor may be negative: over-budget is a representable state,
// not an error. ProgressPct is capped at 1 and is exactly 0 when the
// planned amount is zero or negative.
type Progress struct {
	PlannedMinor   int64             `json:"plannedMinor"`
	ActualMinor    int64             `json:"actualMinor"`
	RemainingMinor int64             `json:"remainingMinor"`
	ProgressPct    float64           `json:"progressPct"`
	Currency       core.CurrencyCode `json:"currency"`
}

// CategorySection is the progress of a single planned category inside a
// per-category budget.
type CategorySection struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Progress
}

// Summary is the complete budget-vs-actual result. Sections is empty
// for flat-limit budgets.
type Summary struct {
	BudgetID string `json:"budgetId"`
	Name     string `json:"name"`
	Progress
	Sections []CategorySection `json:"sections,omitempty"`
}

// Service computes budget summaries from a transaction snapshot.
type Service struct {
	resolver aggregate.NameResolver
}

func NewService(resolver aggregate.NameResolver) *Service {
	return &Service{resolver: resolver}
}

// Summarize computes actual spend for the budget's scope and period and
// combines it with the planned amounts. Actuals count expenses only, in
// the budget's currency, with the category/account scope conjunctive
// with the period filter.
func (s *Service) Summarize(b core.Budget, txs []core.Transaction) (Summary, error) {
	if err := b.Validate(); err != nil {
		return Summary{}, fmt.Errorf("budget %s: %w", b.ID, err)
	}

	scope := s.scopeOf(b)
	summary := Summary{BudgetID: b.ID, Name: b.Name}

	if len(b.PlannedByCategory) == 0 {
		pred, err := scope.Build()
		if err != nil {
			return Summary{}, err
		}
		actual := expenseTotal(txs, pred, b.Currency)
		summary.Progress = newProgress(b.LimitMinor, actual, b.Currency)
		return summary, nil
	}

	// Per-category variant: actuals are computed per planned category
	// through the identical filter and summed, so the per-section
	// remainders always add up exactly to the total remainder.
	categoryIDs := make([]string, 0, len(b.PlannedByCategory))
	for id := range b.PlannedByCategory {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Strings(categoryIDs)

	var plannedTotal, actualTotal int64
	for _, categoryID := range categoryIDs {
		categoryScope := scope
		categoryScope.CategoryIDs = []string{categoryID}
		pred, err := categoryScope.Build()
		if err != nil {
			return Summary{}, err
		}

		planned := b.PlannedByCategory[categoryID]
		actual := expenseTotal(txs, pred, b.Currency)
		plannedTotal += planned
		actualTotal += actual

		summary.Sections = append(summary.Sections, CategorySection{
			CategoryID:   categoryID,
			CategoryName: s.categoryLabel(categoryID),
			Progress:     newProgress(planned, actual, b.Currency),
		})
	}

	summary.Progress = newProgress(plannedTotal, actualTotal, b.Currency)
	return summary, nil
}

// scopeOf builds the budget's base scope: workspace + period + currency
// + category/account constraints, all conjunctive.
func (s *Service) scopeOf(b core.Budget) filter.Scope {
	scope := filter.NewScope(b.WorkspaceID).
		From(b.PeriodStart).
		Through(b.PeriodEnd)
	scope.Currency = b.Currency
	scope.CategoryIDs = b.CategoryIDs
	scope.AccountIDs = b.AccountIDs
	return scope
}

func (s *Service) categoryLabel(id string) string {
	if s.resolver == nil {
		return "Unknown category"
	}
	if name, ok := s.resolver.CategoryName(id); ok {
		return name
	}
	return "Unknown category"
}

func expenseTotal(txs []core.Transaction, pred filter.Predicate, currency core.CurrencyCode) int64 {
	totals := aggregate.SumByKindAndCurrency(txs, pred)
	return totals[currency].ExpenseMinor
}

func newProgress(planned, actual int64, currency core.CurrencyCode) Progress {
	return Progress{
		PlannedMinor:   planned,
		ActualMinor:    actual,
		RemainingMinor: planned - actual,
		ProgressPct:    progressPct(planned, actual),
		Currency:       currency,
	}
}

// progressPct guards the zero-denominator case: a zero or negative
// planned amount yields exactly 0, never NaN or Inf.
func progressPct(planned, actual int64) float64 {
	if planned <= 0 {
		return 0
	}
	pct := float64(actual) / float64(planned)
	if pct > 1 {
		return 1
	}
	if pct < 0 {
		return 0
	}
	return pct
}
