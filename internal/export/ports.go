// Package export pushes monthly summaries to an external dashboard.
package export

import (
	"context"

	"ledger/internal/aggregate"
	"ledger/internal/core"
)

// MonthSummary is one exported dashboard row set: per-currency totals
// and the ranked expense categories for a calendar month.
type MonthSummary struct {
	WorkspaceID   string
	Year          int
	Month         int // 1-12
	Totals        map[core.CurrencyCode]aggregate.Totals
	TopCategories []aggregate.RankedEntry
}

// SummaryWriter is the outbound port. Implementations: Google Sheets
// for production, memory for tests.
type SummaryWriter interface {
	// WriteMonthSummary appends the summary and returns an
	// implementation-specific row reference.
	WriteMonthSummary(ctx context.Context, s MonthSummary) (rowRef string, err error)
}
