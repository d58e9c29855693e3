package export

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/aggregate"
	"ledger/internal/core"
	"ledger/internal/filter"
	"ledger/internal/storage"
)

// SnapshotSource provides the transaction snapshot and dimension names
// a summary is computed from.
type SnapshotSource interface {
	SnapshotTransactions(ctx context.Context, workspaceID string) ([]core.Transaction, error)
	LoadNames(ctx context.Context, workspaceID string) (*storage.NameIndex, error)
}

// Runner computes a month's summary and hands it to the writer.
type Runner struct {
	store  SnapshotSource
	writer SummaryWriter
}

func NewRunner(store SnapshotSource, writer SummaryWriter) *Runner {
	return &Runner{store: store, writer: writer}
}

// ExportMonth aggregates one calendar month of a workspace and writes
// the result through the summary port.
func (r *Runner) ExportMonth(ctx context.Context, workspaceID string, year, month int) (string, error) {
	if r.store == nil || r.writer == nil {
		return "", fmt.Errorf("export runner not properly initialized")
	}

	txs, err := r.store.SnapshotTransactions(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("snapshot transactions: %w", err)
	}

	names, err := r.store.LoadNames(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("load dimension names: %w", err)
	}

	pred, err := filter.NewScope(workspaceID).ForMonth(year, month).Build()
	if err != nil {
		return "", fmt.Errorf("build month scope: %w", err)
	}

	summary := MonthSummary{
		WorkspaceID:   workspaceID,
		Year:          year,
		Month:         month,
		Totals:        aggregate.SumByKindAndCurrency(txs, pred),
		TopCategories: aggregate.TopN(txs, pred, core.Expense, aggregate.DimensionCategory, aggregate.DefaultTopLimit, names),
	}

	rowRef, err := r.writer.WriteMonthSummary(ctx, summary)
	if err != nil {
		return "", fmt.Errorf("write month summary: %w", err)
	}

	slog.InfoContext(ctx, "Month summary exported",
		"workspace_id", workspaceID,
		"year", year,
		"month", month,
		"currencies", len(summary.Totals),
		"row_ref", rowRef)

	return rowRef, nil
}
