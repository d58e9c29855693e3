// Package storage persists ledger records in SQLite and loads the
// immutable snapshots the aggregation engine consumes.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SnapshotTransactions loads every transaction of a workspace, ordered
// by date. The engine filters in memory, so archived and pending rows
// are included here and excluded (or not) by the caller's scope.
func (r *SQLiteRepository) SnapshotTransactions(ctx context.Context, workspaceID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, tx_date, amount_minor, currency, kind,
		       category_id, merchant_id, account_id, is_archived, is_pending
		FROM transactions
		WHERE workspace_id = ?
		ORDER BY tx_date, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date string
		var archived, pending int
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &date, &t.AmountMinor, &t.Currency, &t.Kind,
			&t.CategoryID, &t.MerchantID, &t.AccountID, &archived, &pending); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.IsArchived = archived != 0
		t.IsPending = pending != 0
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CreateTransaction inserts a validated transaction. Writes come from
// the CRUD layer; the engine itself only reads.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, workspace_id, tx_date, amount_minor, currency, kind,
			 category_id, merchant_id, account_id, is_archived, is_pending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WorkspaceID, t.Date.String(), t.AmountMinor, string(t.Currency), string(t.Kind),
		t.CategoryID, t.MerchantID, t.AccountID, boolToInt(t.IsArchived), boolToInt(t.IsPending))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"workspace_id", t.WorkspaceID,
		"amount_minor", t.AmountMinor,
		"currency", t.Currency,
		"kind", t.Kind)
	return nil
}

// SetTransactionArchived archives or restores a transaction.
func (r *SQLiteRepository) SetTransactionArchived(ctx context.Context, id string, archived bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET is_archived = ? WHERE id = ?`, boolToInt(archived), id)
	if err != nil {
		return fmt.Errorf("set transaction archived: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRecurringDefinitions loads a workspace's recurring definitions,
// archived ones included; due-window selection happens in the schedule
// package.
func (r *SQLiteRepository) ListRecurringDefinitions(ctx context.Context, workspaceID string) ([]core.RecurringDefinition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, description, amount_minor, currency, kind,
		       category_id, merchant_id, frequency, interval, day_of_month,
		       start_date, next_run_on, is_archived
		FROM recurring_definitions
		WHERE workspace_id = ?
		ORDER BY next_run_on, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query recurring definitions: %w", err)
	}
	defer rows.Close()

	var defs []core.RecurringDefinition
	for rows.Next() {
		var def core.RecurringDefinition
		var dayOfMonth sql.NullInt64
		var startDate, nextRunOn string
		var archived int
		if err := rows.Scan(&def.ID, &def.WorkspaceID, &def.Description, &def.AmountMinor,
			&def.Currency, &def.Kind, &def.CategoryID, &def.MerchantID,
			&def.Schedule.Frequency, &def.Schedule.Interval, &dayOfMonth,
			&startDate, &nextRunOn, &archived); err != nil {
			return nil, fmt.Errorf("scan recurring definition: %w", err)
		}
		if dayOfMonth.Valid {
			day := int(dayOfMonth.Int64)
			def.Schedule.DayOfMonth = &day
		}
		if def.StartDate, err = core.ParseDate(startDate); err != nil {
			return nil, fmt.Errorf("definition %s start date: %w", def.ID, err)
		}
		if def.NextRunOn, err = core.ParseDate(nextRunOn); err != nil {
			return nil, fmt.Errorf("definition %s next run: %w", def.ID, err)
		}
		def.IsArchived = archived != 0
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// UpsertRecurringDefinition stores a validated definition.
func (r *SQLiteRepository) UpsertRecurringDefinition(ctx context.Context, def core.RecurringDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	var dayOfMonth sql.NullInt64
	if def.Schedule.DayOfMonth != nil {
		dayOfMonth = sql.NullInt64{Int64: int64(*def.Schedule.DayOfMonth), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_definitions
			(id, workspace_id, description, amount_minor, currency, kind,
			 category_id, merchant_id, frequency, interval, day_of_month,
			 start_date, next_run_on, is_archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount_minor = excluded.amount_minor,
			currency = excluded.currency,
			kind = excluded.kind,
			category_id = excluded.category_id,
			merchant_id = excluded.merchant_id,
			frequency = excluded.frequency,
			interval = excluded.interval,
			day_of_month = excluded.day_of_month,
			start_date = excluded.start_date,
			next_run_on = excluded.next_run_on,
			is_archived = excluded.is_archived`,
		def.ID, def.WorkspaceID, def.Description, def.AmountMinor, string(def.Currency), string(def.Kind),
		def.CategoryID, def.MerchantID, string(def.Schedule.Frequency), def.Schedule.Interval, dayOfMonth,
		def.StartDate.String(), def.NextRunOn.String(), boolToInt(def.IsArchived))
	if err != nil {
		return fmt.Errorf("upsert recurring definition: %w", err)
	}
	return nil
}

// UpdateNextRunOn records the advanced next-run date. Called by the
// external materialization job after an occurrence fires; the update is
// guarded so the date can only move forward.
func (r *SQLiteRepository) UpdateNextRunOn(ctx context.Context, id string, next core.Date) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_definitions
		SET next_run_on = ?
		WHERE id = ? AND next_run_on < ?`,
		next.String(), id, next.String())
	if err != nil {
		return fmt.Errorf("update next run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("definition %s not advanced to %s: %w", id, next, ErrNotFound)
	}
	return nil
}

// GetBudget loads a budget with its per-category plans.
func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	var b core.Budget
	var periodStart, periodEnd, categoryIDs, accountIDs string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, currency, period_start, period_end,
		       limit_minor, category_ids, account_ids
		FROM budgets WHERE id = ?`, id).
		Scan(&b.ID, &b.WorkspaceID, &b.Name, &b.Currency, &periodStart, &periodEnd,
			&b.LimitMinor, &categoryIDs, &accountIDs)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("query budget: %w", err)
	}

	if b.PeriodStart, err = core.ParseDate(periodStart); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s period start: %w", id, err)
	}
	if b.PeriodEnd, err = core.ParseDate(periodEnd); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s period end: %w", id, err)
	}
	b.CategoryIDs = splitIDs(categoryIDs)
	b.AccountIDs = splitIDs(accountIDs)

	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, planned_minor
		FROM budget_category_plans WHERE budget_id = ?`, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("query budget plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID string
		var planned int64
		if err := rows.Scan(&categoryID, &planned); err != nil {
			return core.Budget{}, fmt.Errorf("scan budget plan: %w", err)
		}
		if b.PlannedByCategory == nil {
			b.PlannedByCategory = make(map[string]int64)
		}
		b.PlannedByCategory[categoryID] = planned
	}
	return b, rows.Err()
}

// ListBudgets loads every budget of a workspace, plans included.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, workspaceID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM budgets WHERE workspace_id = ? ORDER BY period_start, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan budget id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	budgets := make([]core.Budget, 0, len(ids))
	for _, id := range ids {
		b, err := r.GetBudget(ctx, id)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// UpsertBudget stores a budget and replaces its per-category plans.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO budgets
			(id, workspace_id, name, currency, period_start, period_end,
			 limit_minor, category_ids, account_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency,
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			limit_minor = excluded.limit_minor,
			category_ids = excluded.category_ids,
			account_ids = excluded.account_ids`,
		b.ID, b.WorkspaceID, b.Name, string(b.Currency), b.PeriodStart.String(), b.PeriodEnd.String(),
		b.LimitMinor, strings.Join(b.CategoryIDs, ","), strings.Join(b.AccountIDs, ","))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM budget_category_plans WHERE budget_id = ?`, b.ID); err != nil {
		return fmt.Errorf("clear budget plans: %w", err)
	}
	for categoryID, planned := range b.PlannedByCategory {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO budget_category_plans (budget_id, category_id, planned_minor)
			VALUES (?, ?, ?)`, b.ID, categoryID, planned); err != nil {
			return fmt.Errorf("insert budget plan: %w", err)
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
