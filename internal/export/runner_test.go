package export_test

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/core"
	"ledger/internal/export"
	"ledger/internal/export/memory"
	"ledger/internal/storage"
)

type stubSource struct {
	txs     []core.Transaction
	snapErr error
}

func (s *stubSource) SnapshotTransactions(context.Context, string) ([]core.Transaction, error) {
	return s.txs, s.snapErr
}

func (s *stubSource) LoadNames(context.Context, string) (*storage.NameIndex, error) {
	return storage.NewNameIndex(map[string]string{"catFood": "Food"}, nil, nil, nil), nil
}

func TestExportMonth(t *testing.T) {
	source := &stubSource{txs: []core.Transaction{
		{
			ID: "t1", WorkspaceID: "ws", Date: core.NewDate(2024, 6, 10),
			AmountMinor: 30000, Currency: core.EUR, Kind: core.Expense, CategoryID: "catFood",
		},
		{
			ID: "t2", WorkspaceID: "ws", Date: core.NewDate(2024, 6, 15),
			AmountMinor: 100000, Currency: core.EUR, Kind: core.Income,
		},
		{
			ID: "t3", WorkspaceID: "ws", Date: core.NewDate(2024, 7, 1),
			AmountMinor: 5000, Currency: core.EUR, Kind: core.Expense, CategoryID: "catFood",
		},
	}}
	store := memory.New()

	rowRef, err := export.NewRunner(source, store).ExportMonth(context.Background(), "ws", 2024, 6)
	if err != nil {
		t.Fatalf("ExportMonth() error = %v", err)
	}
	if rowRef == "" {
		t.Error("empty row reference")
	}

	summaries := store.Summaries()
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	got := summaries[0]
	if got.WorkspaceID != "ws" || got.Year != 2024 || got.Month != 6 {
		t.Errorf("summary header = %+v", got)
	}
	eur := got.Totals[core.EUR]
	if eur.IncomeMinor != 100000 || eur.ExpenseMinor != 30000 || eur.BalanceMinor != 70000 {
		t.Errorf("EUR totals = %+v (july transaction must be excluded)", eur)
	}
	if len(got.TopCategories) != 1 || got.TopCategories[0].Name != "Food" {
		t.Errorf("top categories = %+v", got.TopCategories)
	}
}

func TestExportMonthSnapshotError(t *testing.T) {
	source := &stubSource{snapErr: errors.New("db down")}
	if _, err := export.NewRunner(source, memory.New()).ExportMonth(context.Background(), "ws", 2024, 6); err == nil {
		t.Fatal("expected snapshot error to propagate")
	}
}

func TestExportMonthUninitialized(t *testing.T) {
	if _, err := export.NewRunner(nil, nil).ExportMonth(context.Background(), "ws", 2024, 6); err == nil {
		t.Fatal("expected error for uninitialized runner")
	}
}
