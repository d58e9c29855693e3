package budget

import (
	"errors"
	"testing"

	"ledger/internal/core"
)

type stubResolver map[string]string

func (r stubResolver) CategoryName(id string) (string, bool) {
	name, ok := r[id]
	return name, ok
}

func (r stubResolver) MerchantName(string) (string, bool)    { return "", false }
func (r stubResolver) GroupName(string) (string, bool)       { return "", false }
func (r stubResolver) GroupOfCategory(string) (string, bool) { return "", false }

func expense(id, categoryID string, date core.Date, amount int64, currency core.CurrencyCode) core.Transaction {
	return core.Transaction{
		ID:          id,
		WorkspaceID: "ws",
		Date:        date,
		AmountMinor: amount,
		Currency:    currency,
		Kind:        core.Expense,
		CategoryID:  categoryID,
	}
}

func juneBudget() core.Budget {
	return core.Budget{
		ID:          "b1",
		WorkspaceID: "ws",
		Name:        "June",
		Currency:    core.EUR,
		PeriodStart: core.NewDate(2024, 6, 1),
		PeriodEnd:   core.NewDate(2024, 6, 30),
	}
}

func TestSummarizeFlatBudget(t *testing.T) {
	b := juneBudget()
	b.LimitMinor = 100000

	txs := []core.Transaction{
		expense("t1", "cat", core.NewDate(2024, 6, 10), 30000, core.EUR),
		expense("t2", "cat", core.NewDate(2024, 6, 30), 20000, core.EUR), // period end inclusive
		expense("t3", "cat", core.NewDate(2024, 7, 1), 99999, core.EUR),  // outside period
		expense("t4", "cat", core.NewDate(2024, 6, 15), 5000, core.USD),  // other currency
		{
			ID: "t5", WorkspaceID: "ws", Date: core.NewDate(2024, 6, 16),
			AmountMinor: 7000, Currency: core.EUR, Kind: core.Income,
		},
	}

	got, err := NewService(nil).Summarize(b, txs)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.ActualMinor != 50000 {
		t.Errorf("actual = %d, want 50000 (expenses in EUR within period only)", got.ActualMinor)
	}
	if got.RemainingMinor != 50000 {
		t.Errorf("remaining = %d, want 50000", got.RemainingMinor)
	}
	if got.ProgressPct != 0.5 {
		t.Errorf("progressPct = %v, want 0.5", got.ProgressPct)
	}
	if len(got.Sections) != 0 {
		t.Errorf("flat budget produced %d sections", len(got.Sections))
	}
}

func TestSummarizeZeroPlanned(t *testing.T) {
	b := juneBudget()
	b.LimitMinor = 0

	txs := []core.Transaction{
		expense("t1", "cat", core.NewDate(2024, 6, 10), 500, core.EUR),
	}

	got, err := NewService(nil).Summarize(b, txs)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.ProgressPct != 0 {
		t.Errorf("progressPct = %v, want exactly 0 for zero planned", got.ProgressPct)
	}
	if got.RemainingMinor != -500 {
		t.Errorf("remaining = %d, want -500", got.RemainingMinor)
	}
}

func TestSummarizeOverBudgetCapsProgress(t *testing.T) {
	b := juneBudget()
	b.LimitMinor = 1000

	txs := []core.Transaction{
		expense("t1", "cat", core.NewDate(2024, 6, 10), 2500, core.EUR),
	}

	got, err := NewService(nil).Summarize(b, txs)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.ProgressPct != 1 {
		t.Errorf("progressPct = %v, want capped at 1", got.ProgressPct)
	}
	if got.RemainingMinor != -1500 {
		t.Errorf("remaining = %d, want -1500 (over budget is representable)", got.RemainingMinor)
	}
}

func TestSummarizePerCategory(t *testing.T) {
	b := juneBudget()
	b.PlannedByCategory = map[string]int64{
		"catFood": 40000,
		"catFun":  10000,
	}

	txs := []core.Transaction{
		expense("t1", "catFood", core.NewDate(2024, 6, 5), 15000, core.EUR),
		expense("t2", "catFood", core.NewDate(2024, 6, 20), 10000, core.EUR),
		expense("t3", "catFun", core.NewDate(2024, 6, 8), 12000, core.EUR),
		expense("t4", "catOther", core.NewDate(2024, 6, 9), 7777, core.EUR), // not planned, not counted
	}

	resolver := stubResolver{"catFood": "Food"}
	got, err := NewService(resolver).Summarize(b, txs)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if len(got.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(got.Sections))
	}
	// Sections come out sorted by category id.
	food, fun := got.Sections[0], got.Sections[1]
	if food.CategoryID != "catFood" || fun.CategoryID != "catFun" {
		t.Fatalf("section order = %s, %s", food.CategoryID, fun.CategoryID)
	}
	if food.CategoryName != "Food" {
		t.Errorf("food name = %q", food.CategoryName)
	}
	if fun.CategoryName != "Unknown category" {
		t.Errorf("unresolved category name = %q, want fallback", fun.CategoryName)
	}
	if food.ActualMinor != 25000 || fun.ActualMinor != 12000 {
		t.Errorf("section actuals = %d, %d", food.ActualMinor, fun.ActualMinor)
	}
	if fun.RemainingMinor != -2000 {
		t.Errorf("fun remaining = %d, want -2000", fun.RemainingMinor)
	}

	if got.PlannedMinor != 50000 {
		t.Errorf("total planned = %d, want 50000", got.PlannedMinor)
	}

	var sectionRemaining int64
	for _, sec := range got.Sections {
		sectionRemaining += sec.RemainingMinor
	}
	if sectionRemaining != got.RemainingMinor {
		t.Errorf("sum of section remainders %d != total remaining %d", sectionRemaining, got.RemainingMinor)
	}
}

func TestSummarizeCategoryScopeIntersection(t *testing.T) {
	// Planned categories outside the budget's CategoryIDs scope still get
	// a section, but the scope constraint stays conjunctive.
	b := juneBudget()
	b.AccountIDs = []string{"acc1"}
	b.LimitMinor = 10000

	inScope := expense("t1", "cat", core.NewDate(2024, 6, 10), 4000, core.EUR)
	inScope.AccountID = "acc1"
	outOfScope := expense("t2", "cat", core.NewDate(2024, 6, 11), 9000, core.EUR)
	outOfScope.AccountID = "acc2"

	got, err := NewService(nil).Summarize(b, []core.Transaction{inScope, outOfScope})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.ActualMinor != 4000 {
		t.Errorf("actual = %d, want 4000 (account constraint applied)", got.ActualMinor)
	}
}

func TestSummarizeInvalidBudget(t *testing.T) {
	b := juneBudget()
	b.PeriodEnd = core.NewDate(2024, 5, 1)

	if _, err := NewService(nil).Summarize(b, nil); !errors.Is(err, core.ErrInvalidDateRange) {
		t.Errorf("Summarize() error = %v, want ErrInvalidDateRange", err)
	}
}
