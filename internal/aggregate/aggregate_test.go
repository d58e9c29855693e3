package aggregate

import (
	"testing"

	"ledger/internal/core"
	"ledger/internal/filter"
)

func mustPred(t *testing.T, scope filter.Scope) filter.Predicate {
	t.Helper()
	pred, err := scope.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return pred
}

func sampleTx(id string, date core.Date, amount int64, currency core.CurrencyCode, kind core.Kind) core.Transaction {
	return core.Transaction{
		ID:          id,
		WorkspaceID: "ws",
		Date:        date,
		AmountMinor: amount,
		Currency:    currency,
		Kind:        kind,
	}
}

func TestGroupedSum(t *testing.T) {
	txs := []core.Transaction{
		sampleTx("a", core.NewDate(2024, 1, 1), 100, core.EUR, core.Expense),
		sampleTx("b", core.NewDate(2024, 1, 2), 250, core.EUR, core.Expense),
		sampleTx("c", core.NewDate(2024, 1, 3), 400, core.USD, core.Expense),
	}

	sums := GroupedSum(txs,
		func(tx core.Transaction) core.CurrencyCode { return tx.Currency },
		func(tx core.Transaction) int64 { return tx.AmountMinor })

	if sums[core.EUR] != 350 || sums[core.USD] != 400 {
		t.Errorf("GroupedSum = %v, want EUR:350 USD:400", sums)
	}
}

func TestSumByKindAndCurrency_BalanceIdentity(t *testing.T) {
	txs := []core.Transaction{
		sampleTx("i1", core.NewDate(2024, 1, 5), 300000, core.EUR, core.Income),
		sampleTx("e1", core.NewDate(2024, 1, 6), 120000, core.EUR, core.Expense),
		sampleTx("e2", core.NewDate(2024, 1, 7), 4500, core.EUR, core.Expense),
		sampleTx("i2", core.NewDate(2024, 1, 8), 50000, core.USD, core.Income),
		sampleTx("e3", core.NewDate(2024, 1, 9), 80000, core.USD, core.Expense),
	}

	totals := SumByKindAndCurrency(txs, mustPred(t, filter.NewScope("ws")))

	for currency, tot := range totals {
		if tot.BalanceMinor != tot.IncomeMinor-tot.ExpenseMinor {
			t.Errorf("%s: balance %d != income %d - expense %d",
				currency, tot.BalanceMinor, tot.IncomeMinor, tot.ExpenseMinor)
		}
	}

	eur := totals[core.EUR]
	if eur.IncomeMinor != 300000 || eur.ExpenseMinor != 124500 || eur.BalanceMinor != 175500 {
		t.Errorf("EUR totals = %+v", eur)
	}
	usd := totals[core.USD]
	if usd.BalanceMinor != -30000 {
		t.Errorf("USD balance = %d, want -30000 (negative balances are valid)", usd.BalanceMinor)
	}
}

func TestSumByKindAndCurrency_AbsentCurrencies(t *testing.T) {
	txs := []core.Transaction{
		sampleTx("e1", core.NewDate(2024, 1, 1), 100, core.EUR, core.Expense),
	}

	totals := SumByKindAndCurrency(txs, mustPred(t, filter.NewScope("ws")))

	if len(totals) != 1 {
		t.Fatalf("got %d currencies, want 1", len(totals))
	}
	if _, present := totals[core.USD]; present {
		t.Error("zero-activity currency present in map; it must be absent")
	}
}

func TestSumByKindAndCurrency_EmptyInput(t *testing.T) {
	totals := SumByKindAndCurrency(nil, mustPred(t, filter.NewScope("ws")))
	if len(totals) != 0 {
		t.Errorf("empty input produced %d entries", len(totals))
	}
}

func TestReconciliationIdentity(t *testing.T) {
	// Balance change over a period must equal the period's own net.
	txs := []core.Transaction{
		sampleTx("t1", core.NewDate(2024, 1, 10), 1000, core.EUR, core.Income),
		sampleTx("t2", core.NewDate(2024, 2, 5), 400, core.EUR, core.Expense),
		sampleTx("t3", core.NewDate(2024, 2, 20), 2500, core.EUR, core.Income),
		sampleTx("t4", core.NewDate(2024, 3, 1), 700, core.EUR, core.Expense),
		sampleTx("t5", core.NewDate(2024, 2, 12), 900, core.USD, core.Expense),
	}

	start := core.NewDate(2024, 2, 1)
	end := core.NewDate(2024, 3, 1)

	atStart, err := BalanceAsOf(txs, "ws", start)
	if err != nil {
		t.Fatalf("BalanceAsOf(start) error = %v", err)
	}
	atEnd, err := BalanceAsOf(txs, "ws", end)
	if err != nil {
		t.Fatalf("BalanceAsOf(end) error = %v", err)
	}

	periodPred := mustPred(t, filter.NewScope("ws").From(start).Until(end))
	periodTotals := SumByKindAndCurrency(txs, periodPred)

	currencies := map[core.CurrencyCode]struct{}{}
	for c := range atStart {
		currencies[c] = struct{}{}
	}
	for c := range atEnd {
		currencies[c] = struct{}{}
	}
	for c := range periodTotals {
		currencies[c] = struct{}{}
	}

	for c := range currencies {
		change := atEnd[c] - atStart[c]
		if change != periodTotals[c].BalanceMinor {
			t.Errorf("%s: balance change %d != period net %d", c, change, periodTotals[c].BalanceMinor)
		}
	}
}

func TestArchivedToggleChangesTotalsByArchivedSubset(t *testing.T) {
	archived := sampleTx("a", core.NewDate(2024, 1, 15), 7700, core.EUR, core.Expense)
	archived.IsArchived = true

	txs := []core.Transaction{
		sampleTx("live", core.NewDate(2024, 1, 10), 5000, core.EUR, core.Expense),
		archived,
	}

	without := SumByKindAndCurrency(txs, mustPred(t, filter.NewScope("ws")))

	withScope := filter.NewScope("ws")
	withScope.IncludeArchived = true
	with := SumByKindAndCurrency(txs, mustPred(t, withScope))

	if without[core.EUR].ExpenseMinor != 5000 {
		t.Errorf("default expense = %d, want 5000", without[core.EUR].ExpenseMinor)
	}
	if diff := with[core.EUR].ExpenseMinor - without[core.EUR].ExpenseMinor; diff != 7700 {
		t.Errorf("archived toggle changed totals by %d, want exactly 7700", diff)
	}
}

func TestDistinctCurrencies(t *testing.T) {
	txs := []core.Transaction{
		sampleTx("a", core.NewDate(2024, 1, 1), 1, core.USD, core.Expense),
		sampleTx("b", core.NewDate(2024, 1, 2), 1, core.EUR, core.Income),
		sampleTx("c", core.NewDate(2024, 1, 3), 1, core.EUR, core.Expense),
	}

	got := DistinctCurrencies(txs, mustPred(t, filter.NewScope("ws")))
	want := []core.CurrencyCode{core.EUR, core.USD}
	if len(got) != len(want) {
		t.Fatalf("DistinctCurrencies = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DistinctCurrencies = %v, want %v (sorted)", got, want)
			break
		}
	}
}
