package storage

import (
	"context"
	"fmt"
)

// NameIndex is an in-memory snapshot of dimension names for one
// workspace. It implements aggregate.NameResolver; a missing id simply
// reports found=false and the engine supplies the fallback label.
type NameIndex struct {
	categories    map[string]string
	merchants     map[string]string
	groups        map[string]string
	categoryGroup map[string]string
}

// NewNameIndex builds an index from explicit maps. Used by non-SQLite
// backends and tests; LoadNames is the SQLite path.
func NewNameIndex(categories, merchants, groups, categoryGroup map[string]string) *NameIndex {
	idx := &NameIndex{
		categories:    categories,
		merchants:     merchants,
		groups:        groups,
		categoryGroup: categoryGroup,
	}
	if idx.categories == nil {
		idx.categories = map[string]string{}
	}
	if idx.merchants == nil {
		idx.merchants = map[string]string{}
	}
	if idx.groups == nil {
		idx.groups = map[string]string{}
	}
	if idx.categoryGroup == nil {
		idx.categoryGroup = map[string]string{}
	}
	return idx
}

func (n *NameIndex) CategoryName(id string) (string, bool) {
	name, ok := n.categories[id]
	return name, ok
}

func (n *NameIndex) MerchantName(id string) (string, bool) {
	name, ok := n.merchants[id]
	return name, ok
}

func (n *NameIndex) GroupName(id string) (string, bool) {
	name, ok := n.groups[id]
	return name, ok
}

func (n *NameIndex) GroupOfCategory(categoryID string) (string, bool) {
	groupID, ok := n.categoryGroup[categoryID]
	if !ok || groupID == "" {
		return "", false
	}
	return groupID, true
}

// LoadNames builds the dimension-name snapshot for a workspace.
func (r *SQLiteRepository) LoadNames(ctx context.Context, workspaceID string) (*NameIndex, error) {
	idx := &NameIndex{
		categories:    make(map[string]string),
		merchants:     make(map[string]string),
		groups:        make(map[string]string),
		categoryGroup: make(map[string]string),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, group_id FROM categories WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name, groupID string
		if err := rows.Scan(&id, &name, &groupID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		idx.categories[id] = name
		if groupID != "" {
			idx.categoryGroup[id] = groupID
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	merchantRows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM merchants WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query merchants: %w", err)
	}
	defer merchantRows.Close()
	for merchantRows.Next() {
		var id, name string
		if err := merchantRows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		idx.merchants[id] = name
	}
	if err := merchantRows.Err(); err != nil {
		return nil, err
	}

	groupRows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM category_groups WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query category groups: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var id, name string
		if err := groupRows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan category group: %w", err)
		}
		idx.groups[id] = name
	}
	return idx, groupRows.Err()
}
