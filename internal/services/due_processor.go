// Package services orchestrates the engine packages over storage and
// the message broker.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage"
)

// DefinitionSource provides the recurring definitions and dimension
// names of a workspace.
type DefinitionSource interface {
	ListRecurringDefinitions(ctx context.Context, workspaceID string) ([]core.RecurringDefinition, error)
	LoadNames(ctx context.Context, workspaceID string) (*storage.NameIndex, error)
}

// DueItemPublisher hands due items to the external materialization job.
type DueItemPublisher interface {
	PublishDueItem(ctx context.Context, msg *amqp.DueItemMessage) error
}

// DueItemProcessor periodically announces which recurring definitions
// are due within the horizon. It never materializes transactions and
// never advances NextRunOn; both belong to the consumer of the queue.
type DueItemProcessor struct {
	store     DefinitionSource
	publisher DueItemPublisher
}

func NewDueItemProcessor(store DefinitionSource, publisher DueItemPublisher) *DueItemProcessor {
	return &DueItemProcessor{store: store, publisher: publisher}
}

// PublishDueItems publishes one message per definition due within the
// horizon window and returns how many were published. A failing item is
// logged and skipped so one bad definition cannot block the rest.
func (p *DueItemProcessor) PublishDueItems(ctx context.Context, workspaceID string, today core.Date) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	defs, err := p.store.ListRecurringDefinitions(ctx, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("list recurring definitions: %w", err)
	}

	names, err := p.store.LoadNames(ctx, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("load dimension names: %w", err)
	}

	items := BuildDueItems(defs, today, names)

	slog.InfoContext(ctx, "Publishing due recurring items",
		"workspace_id", workspaceID,
		"total_definitions", len(defs),
		"due", len(items),
		"as_of", today.String())

	if p.publisher == nil {
		slog.WarnContext(ctx, "Due item publisher not available, skipping publish",
			"workspace_id", workspaceID, "due", len(items))
		return 0, nil
	}

	published := 0
	for _, item := range items {
		msg := &amqp.DueItemMessage{
			DefinitionID: item.DefinitionID,
			NextRunOn:    item.NextRunOn,
			AmountMinor:  item.AmountMinor,
			Currency:     item.Currency,
			Kind:         item.Kind,
			CategoryName: item.CategoryName,
			MerchantName: item.MerchantName,
			Timestamp:    time.Now(),
		}
		if err := p.publisher.PublishDueItem(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish due item",
				"definition_id", item.DefinitionID,
				"error", err)
			continue
		}
		published++
	}

	slog.InfoContext(ctx, "Due item publishing complete",
		"workspace_id", workspaceID,
		"published", published,
		"due", len(items))

	return published, nil
}
