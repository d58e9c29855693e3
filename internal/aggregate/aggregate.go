// Package aggregate turns raw transaction records into multi-currency
// totals, ranked breakdowns and point-in-time balances.
//
// Everything here is pure, read-only computation over a snapshot the
// caller supplies; the same contract could be satisfied by a relational
// GROUP BY or a document-store pipeline, but the engine itself never
// touches storage.
package aggregate

import (
	"sort"

	"ledger/internal/core"
	"ledger/internal/filter"
)

// Totals holds the per-currency income/expense sums and their derived
// balance, all in minor units.
type Totals struct {
	IncomeMinor  int64 `json:"incomeMinor"`
	ExpenseMinor int64 `json:"expenseMinor"`
	BalanceMinor int64 `json:"balanceMinor"`
}

// GroupedSum is the group-by + reduce primitive the rest of the engine
// is built on: it buckets records by keyFn and sums sumFn within each
// bucket.
func GroupedSum[T any, K comparable](records []T, keyFn func(T) K, sumFn func(T) int64) map[K]int64 {
	sums := make(map[K]int64)
	for _, rec := range records {
		sums[keyFn(rec)] += sumFn(rec)
	}
	return sums
}

type kindCurrencyKey struct {
	currency core.CurrencyCode
	kind     core.Kind
}

// SumByKindAndCurrency groups matching transactions by (currency, kind)
// and derives BalanceMinor = income - expense per currency. Currencies
// with no matching activity are absent from the map, never present with
// zeros; callers that need a currency present must union key sets
// before reading.
func SumByKindAndCurrency(txs []core.Transaction, pred filter.Predicate) map[core.CurrencyCode]Totals {
	matched := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if pred(t) {
			matched = append(matched, t)
		}
	}

	sums := GroupedSum(matched,
		func(t core.Transaction) kindCurrencyKey {
			return kindCurrencyKey{currency: t.Currency, kind: t.Kind}
		},
		func(t core.Transaction) int64 { return t.AmountMinor },
	)

	byCurrency := make(map[core.CurrencyCode]Totals)
	for key, sum := range sums {
		totals := byCurrency[key.currency]
		switch key.kind {
		case core.Income:
			totals.IncomeMinor += sum
		case core.Expense:
			totals.ExpenseMinor += sum
		}
		totals.BalanceMinor = totals.IncomeMinor - totals.ExpenseMinor
		byCurrency[key.currency] = totals
	}
	return byCurrency
}

// BalanceAsOf returns the per-currency balance of a workspace as of the
// given exclusive date: every non-archived transaction strictly before
// asOfExclusive counts. Period-over-period change is then
// BalanceAsOf(end) - BalanceAsOf(start).
func BalanceAsOf(txs []core.Transaction, workspaceID string, asOfExclusive core.Date) (map[core.CurrencyCode]int64, error) {
	pred, err := filter.NewScope(workspaceID).Until(asOfExclusive).Build()
	if err != nil {
		return nil, err
	}

	balances := make(map[core.CurrencyCode]int64)
	for currency, totals := range SumByKindAndCurrency(txs, pred) {
		balances[currency] = totals.BalanceMinor
	}
	return balances, nil
}

// DistinctCurrencies lists the currencies with at least one matching
// transaction, sorted. Supporting query for currency pickers.
func DistinctCurrencies(txs []core.Transaction, pred filter.Predicate) []core.CurrencyCode {
	seen := make(map[core.CurrencyCode]struct{})
	for _, t := range txs {
		if pred(t) {
			seen[t.Currency] = struct{}{}
		}
	}

	currencies := make([]core.CurrencyCode, 0, len(seen))
	for c := range seen {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	return currencies
}
