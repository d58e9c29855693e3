package services

import (
	"ledger/internal/aggregate"
	"ledger/internal/core"
	"ledger/internal/schedule"
)

// DueItem is the read-only "due within the horizon" result exposed to
// collaborators. Names are resolved snapshots; a dangling reference
// degrades to a fallback label, never an error.
type DueItem struct {
	DefinitionID string            `json:"definitionId"`
	NextRunOn    string            `json:"nextRunOn"`
	AmountMinor  int64             `json:"amountMinor"`
	Currency     core.CurrencyCode `json:"currency"`
	Kind         core.Kind         `json:"kind"`
	CategoryName string            `json:"categoryName,omitempty"`
	MerchantName string            `json:"merchantName,omitempty"`
}

// BuildDueItems selects the definitions due within the fixed horizon
// and resolves their display names. A nil resolver leaves names empty.
func BuildDueItems(defs []core.RecurringDefinition, today core.Date, names aggregate.NameResolver) []DueItem {
	due := schedule.DueWithinHorizon(defs, today)

	items := make([]DueItem, 0, len(due))
	for _, def := range due {
		items = append(items, DueItem{
			DefinitionID: def.ID,
			NextRunOn:    def.NextRunOn.String(),
			AmountMinor:  def.AmountMinor,
			Currency:     def.Currency,
			Kind:         def.Kind,
			CategoryName: dimensionLabel(def.CategoryID, names, categoryLabel),
			MerchantName: dimensionLabel(def.MerchantID, names, merchantLabel),
		})
	}
	return items
}

type labelKind int

const (
	categoryLabel labelKind = iota
	merchantLabel
)

func dimensionLabel(id string, names aggregate.NameResolver, kind labelKind) string {
	if id == "" || names == nil {
		return ""
	}
	var name string
	var ok bool
	if kind == categoryLabel {
		name, ok = names.CategoryName(id)
	} else {
		name, ok = names.MerchantName(id)
	}
	if !ok {
		if kind == categoryLabel {
			return "Unknown category"
		}
		return "Unknown merchant"
	}
	return name
}
