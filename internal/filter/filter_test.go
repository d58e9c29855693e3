package filter

import (
	"errors"
	"testing"

	"ledger/internal/core"
)

func tx(id string, date core.Date) core.Transaction {
	return core.Transaction{
		ID:          id,
		WorkspaceID: "ws",
		Date:        date,
		AmountMinor: 100,
		Currency:    core.EUR,
		Kind:        core.Expense,
	}
}

func TestScopeHalfOpenInterval(t *testing.T) {
	scope := NewScope("ws").
		From(core.NewDate(2024, 3, 1)).
		Through(core.NewDate(2024, 3, 31))

	pred, err := scope.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		name string
		date core.Date
		want bool
	}{
		{"day before start", core.NewDate(2024, 2, 29), false},
		{"start day included", core.NewDate(2024, 3, 1), true},
		{"mid period", core.NewDate(2024, 3, 15), true},
		{"inclusive end day included", core.NewDate(2024, 3, 31), true},
		{"day after end", core.NewDate(2024, 4, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pred(tx("t", tt.date)); got != tt.want {
				t.Errorf("pred(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestScopeForMonth(t *testing.T) {
	pred, err := NewScope("ws").ForMonth(2024, 2).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !pred(tx("t", core.NewDate(2024, 2, 29))) {
		t.Error("leap day excluded from February scope")
	}
	if pred(tx("t", core.NewDate(2024, 3, 1))) {
		t.Error("March 1 included in February scope")
	}
}

func TestScopeDefaults(t *testing.T) {
	pred, err := NewScope("ws").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	archived := tx("a", core.NewDate(2024, 1, 1))
	archived.IsArchived = true
	if pred(archived) {
		t.Error("archived transaction matched without includeArchived")
	}

	pending := tx("p", core.NewDate(2024, 1, 1))
	pending.IsPending = true
	if !pred(pending) {
		t.Error("pending transaction excluded by default")
	}

	other := tx("o", core.NewDate(2024, 1, 1))
	other.WorkspaceID = "other"
	if pred(other) {
		t.Error("transaction from another workspace matched")
	}
}

func TestScopeFlagToggles(t *testing.T) {
	scope := NewScope("ws")
	scope.IncludeArchived = true
	scope.IncludePending = false

	pred, err := scope.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	archived := tx("a", core.NewDate(2024, 1, 1))
	archived.IsArchived = true
	if !pred(archived) {
		t.Error("archived transaction excluded with includeArchived=true")
	}

	pending := tx("p", core.NewDate(2024, 1, 1))
	pending.IsPending = true
	if pred(pending) {
		t.Error("pending transaction matched with includePending=false")
	}
}

func TestScopeIDConstraints(t *testing.T) {
	scope := NewScope("ws")
	scope.CategoryIDs = []string{"groceries", "rent"}
	scope.AccountIDs = []string{"checking"}

	pred, err := scope.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	match := tx("m", core.NewDate(2024, 1, 1))
	match.CategoryID = "rent"
	match.AccountID = "checking"
	if !pred(match) {
		t.Error("matching transaction rejected")
	}

	wrongCategory := match
	wrongCategory.CategoryID = "travel"
	if pred(wrongCategory) {
		t.Error("transaction with out-of-scope category matched")
	}

	uncategorized := match
	uncategorized.CategoryID = ""
	if pred(uncategorized) {
		t.Error("uncategorized transaction matched a category-constrained scope")
	}
}

func TestScopeCurrencyConstraint(t *testing.T) {
	scope := NewScope("ws")
	scope.Currency = core.MXN

	pred, err := scope.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	mxn := tx("m", core.NewDate(2024, 1, 1))
	mxn.Currency = core.MXN
	if !pred(mxn) {
		t.Error("MXN transaction rejected by MXN scope")
	}
	if pred(tx("e", core.NewDate(2024, 1, 1))) {
		t.Error("EUR transaction matched MXN scope")
	}
}

func TestScopeValidation(t *testing.T) {
	tests := []struct {
		name    string
		scope   Scope
		wantErr error
	}{
		{
			name:    "missing workspace",
			scope:   Scope{IncludePending: true},
			wantErr: core.ErrEmptyWorkspace,
		},
		{
			name: "start after end",
			scope: NewScope("ws").
				From(core.NewDate(2024, 5, 1)).
				Through(core.NewDate(2024, 4, 1)),
			wantErr: core.ErrInvalidDateRange,
		},
		{
			name: "unsupported currency",
			scope: func() Scope {
				s := NewScope("ws")
				s.Currency = "DOGE"
				return s
			}(),
			wantErr: core.ErrUnsupportedCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.scope.Build(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestScopeEqualInputsEquivalentPredicates(t *testing.T) {
	build := func() Predicate {
		pred, err := NewScope("ws").ForMonth(2024, 6).Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		return pred
	}

	p1, p2 := build(), build()
	samples := []core.Transaction{
		tx("a", core.NewDate(2024, 5, 31)),
		tx("b", core.NewDate(2024, 6, 1)),
		tx("c", core.NewDate(2024, 6, 30)),
		tx("d", core.NewDate(2024, 7, 1)),
	}
	for _, sample := range samples {
		if p1(sample) != p2(sample) {
			t.Errorf("predicates disagree on %s", sample.ID)
		}
	}
}
