package aggregate

import (
	"sort"

	"ledger/internal/core"
	"ledger/internal/filter"
)

// DefaultTopLimit is the ranked-breakdown length used when the caller
// does not ask for a specific one.
const DefaultTopLimit = 5

// NameResolver resolves dimension ids to display names. A false second
// return means the id no longer resolves; the engine supplies the
// fallback label, a miss is never an error.
type NameResolver interface {
	CategoryName(id string) (string, bool)
	MerchantName(id string) (string, bool)
	GroupName(id string) (string, bool)
	// GroupOfCategory returns the group a category belongs to.
	GroupOfCategory(categoryID string) (string, bool)
}

// Dimension selects the axis a ranked breakdown is grouped by. Each
// variant carries its own fallback-label policy; callers pick one
// explicitly instead of the engine inferring it from field names.
type Dimension int

const (
	DimensionCategory Dimension = iota
	DimensionMerchant
	DimensionGroup
)

func (d Dimension) String() string {
	switch d {
	case DimensionCategory:
		return "category"
	case DimensionMerchant:
		return "merchant"
	case DimensionGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ParseDimension parses a dimension name from transport input.
func ParseDimension(s string) (Dimension, bool) {
	switch s {
	case "category":
		return DimensionCategory, true
	case "merchant":
		return DimensionMerchant, true
	case "group":
		return DimensionGroup, true
	default:
		return 0, false
	}
}

// missingLabel is the bucket name for transactions with no id on this
// dimension at all.
func (d Dimension) missingLabel() string {
	if d == DimensionMerchant {
		return "Unassigned"
	}
	return "Uncategorized"
}

// danglingLabel is the bucket name for a non-empty id whose referenced
// entity no longer exists.
func (d Dimension) danglingLabel() string {
	switch d {
	case DimensionMerchant:
		return "Unknown merchant"
	case DimensionGroup:
		return "Unknown group"
	default:
		return "Unknown category"
	}
}

// keyOf maps a transaction to its bucket id on this dimension. The
// group dimension joins through category -> group; a category whose
// group no longer resolves keeps the category id as bucket key so the
// amount is surfaced rather than dropped.
func (d Dimension) keyOf(t core.Transaction, r NameResolver) string {
	switch d {
	case DimensionMerchant:
		return t.MerchantID
	case DimensionGroup:
		if t.CategoryID == "" {
			return ""
		}
		if groupID, ok := r.GroupOfCategory(t.CategoryID); ok {
			return groupID
		}
		return t.CategoryID
	default:
		return t.CategoryID
	}
}

// nameOf resolves a bucket id to a display label, applying the
// dimension's fallback policy.
func (d Dimension) nameOf(id string, r NameResolver) string {
	if id == "" {
		return d.missingLabel()
	}
	var name string
	var ok bool
	switch d {
	case DimensionMerchant:
		name, ok = r.MerchantName(id)
	case DimensionGroup:
		name, ok = r.GroupName(id)
	default:
		name, ok = r.CategoryName(id)
	}
	if !ok {
		return d.danglingLabel()
	}
	return name
}

// RankedEntry is one row of a ranked breakdown. ID is empty for the
// missing-dimension bucket.
type RankedEntry struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Currency    core.CurrencyCode `json:"currency"`
	AmountMinor int64             `json:"amountMinor"`
	Count       int               `json:"count"`
}

type rankKey struct {
	id       string
	currency core.CurrencyCode
}

// TopN groups matching transactions of one kind by a dimension, sums
// amounts per (bucket, currency), and returns the highest totals first.
// Ordering is fully deterministic: amount descending, then bucket id
// ascending, then currency ascending. Truncation to limit happens after
// sorting; limit <= 0 means DefaultTopLimit.
func TopN(txs []core.Transaction, pred filter.Predicate, kind core.Kind, dim Dimension, limit int, r NameResolver) []RankedEntry {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	sums := make(map[rankKey]int64)
	counts := make(map[rankKey]int)
	for _, t := range txs {
		if t.Kind != kind || !pred(t) {
			continue
		}
		key := rankKey{id: dim.keyOf(t, r), currency: t.Currency}
		sums[key] += t.AmountMinor
		counts[key]++
	}

	entries := make([]RankedEntry, 0, len(sums))
	for key, sum := range sums {
		entries = append(entries, RankedEntry{
			ID:          key.id,
			Name:        dim.nameOf(key.id, r),
			Currency:    key.currency,
			AmountMinor: sum,
			Count:       counts[key],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AmountMinor != entries[j].AmountMinor {
			return entries[i].AmountMinor > entries[j].AmountMinor
		}
		if entries[i].ID != entries[j].ID {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Currency < entries[j].Currency
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
