package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ledger/internal/aggregate"
	"ledger/internal/budget"
	"ledger/internal/core"
	"ledger/internal/services"
)

// handleSummary returns per-currency income/expense/balance totals for
// the requested scope. Responses are cached briefly, keyed by the full
// query string.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	cacheKey := r.URL.RawQuery
	if body, ok := s.summaryCache.Get(cacheKey); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	scope, err := parseScope(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	pred, err := scope.Build()
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := s.store.SnapshotTransactions(r.Context(), scope.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}

	totals := aggregate.SumByKindAndCurrency(txs, pred)
	body, err := json.Marshal(map[string]any{"totals": totals})
	if err != nil {
		writeError(w, err)
		return
	}

	s.summaryCache.Set(cacheKey, body)
	writeRawJSON(w, http.StatusOK, body)
}

// handleTop returns the ranked breakdown for one kind and dimension.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	scope, err := parseScope(query)
	if err != nil {
		writeError(w, err)
		return
	}
	pred, err := scope.Build()
	if err != nil {
		writeError(w, err)
		return
	}

	kind := core.Expense
	if v := strings.TrimSpace(query.Get("kind")); v != "" {
		if kind, err = core.ParseKind(v); err != nil {
			writeError(w, err)
			return
		}
	}

	dim := aggregate.DimensionCategory
	if v := strings.TrimSpace(query.Get("dimension")); v != "" {
		var ok bool
		if dim, ok = aggregate.ParseDimension(v); !ok {
			writeError(w, fmt.Errorf("unknown dimension %q: %w", v, errBadParam))
			return
		}
	}

	limit, err := parseLimit(query)
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := s.store.SnapshotTransactions(r.Context(), scope.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	names, err := s.store.LoadNames(r.Context(), scope.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}

	entries := aggregate.TopN(txs, pred, kind, dim, limit, names)
	writeJSON(w, http.StatusOK, map[string]any{
		"dimension": dim.String(),
		"kind":      kind,
		"entries":   entries,
	})
}

// handleBalance returns the per-currency balance at the end of the
// asOf day (defaults to today).
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	scope, err := parseScope(query)
	if err != nil {
		writeError(w, err)
		return
	}

	asOf := core.DateOf(time.Now())
	if v := strings.TrimSpace(query.Get("asOf")); v != "" {
		if asOf, err = core.ParseDate(v); err != nil {
			writeError(w, err)
			return
		}
	}

	pred, err := scope.Through(asOf).Build()
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := s.store.SnapshotTransactions(r.Context(), scope.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}

	balances := make(map[core.CurrencyCode]int64)
	for currency, totals := range aggregate.SumByKindAndCurrency(txs, pred) {
		balances[currency] = totals.BalanceMinor
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"asOf":     asOf.String(),
		"balances": balances,
	})
}

// handleCurrencies lists the currencies active inside the scope.
func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	pred, err := scope.Build()
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := s.store.SnapshotTransactions(r.Context(), scope.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"currencies": aggregate.DistinctCurrencies(txs, pred),
	})
}

// handleDueItems lists the recurring definitions due within the fixed
// horizon window.
func (s *Server) handleDueItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	workspaceID := strings.TrimSpace(query.Get("workspace"))
	if workspaceID == "" {
		writeError(w, core.ErrEmptyWorkspace)
		return
	}

	today := core.DateOf(time.Now())
	if v := strings.TrimSpace(query.Get("today")); v != "" {
		var err error
		if today, err = core.ParseDate(v); err != nil {
			writeError(w, err)
			return
		}
	}

	defs, err := s.store.ListRecurringDefinitions(r.Context(), workspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	// Names are cosmetic here; due items still go out unlabeled when
	// the lookup fails.
	var resolver aggregate.NameResolver
	if names, err := s.store.LoadNames(r.Context(), workspaceID); err != nil {
		slog.ErrorContext(r.Context(), "Failed to load dimension names", "error", err)
	} else {
		resolver = names
	}

	items := services.BuildDueItems(defs, today, resolver)
	writeJSON(w, http.StatusOK, map[string]any{
		"asOf":  today.String(),
		"items": items,
	})
}

// handleBudgetProgress returns the planned/actual/remaining figures for
// one budget.
func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	budgetID := r.PathValue("id")

	b, err := s.store.GetBudget(r.Context(), budgetID)
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := s.store.SnapshotTransactions(r.Context(), b.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	var resolver aggregate.NameResolver
	if names, err := s.store.LoadNames(r.Context(), b.WorkspaceID); err != nil {
		slog.ErrorContext(r.Context(), "Failed to load dimension names", "error", err)
	} else {
		resolver = names
	}

	summary, err := budget.NewService(resolver).Summarize(b, txs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
