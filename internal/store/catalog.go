package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind names a catalog table.
type Kind string

// Catalog kinds.
const (
	KindIndustry     Kind = "industry"
	KindTechnology   Kind = "technology"
	KindSolutionType Kind = "solution-type"
)

// ParseKind accepts the singular or plural spelling used in URLs.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "industry", "industries":
		return KindIndustry, nil
	case "technology", "technologies":
		return KindTechnology, nil
	case "solution-type", "solution-types", "solution_type", "solution_types":
		return KindSolutionType, nil
	}
	return "", fmt.Errorf("unknown catalog kind %q", s)
}

// CatalogItem is an industry, technology or solution type. ParentID links a
// technology to its industry and a solution type to its technology.
type CatalogItem struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// GetIndustries returns the industries with the given ids, or all of them
// when ids is empty.
func (s *Store) GetIndustries(ctx context.Context, ids []string) ([]CatalogItem, error) {
	return s.GetCatalog(ctx, KindIndustry, ids)
}

// GetTechnologies returns the technologies with the given ids, or all.
func (s *Store) GetTechnologies(ctx context.Context, ids []string) ([]CatalogItem, error) {
	return s.GetCatalog(ctx, KindTechnology, ids)
}

// GetSolutionTypes returns the solution types with the given ids, or all.
func (s *Store) GetSolutionTypes(ctx context.Context, ids []string) ([]CatalogItem, error) {
	return s.GetCatalog(ctx, KindSolutionType, ids)
}

// PutIndustry creates or replaces an industry.
func (s *Store) PutIndustry(ctx context.Context, item CatalogItem) (CatalogItem, error) {
	return s.PutCatalog(ctx, KindIndustry, item)
}

// PutTechnology creates or replaces a technology.
func (s *Store) PutTechnology(ctx context.Context, item CatalogItem) (CatalogItem, error) {
	return s.PutCatalog(ctx, KindTechnology, item)
}

// PutSolutionType creates or replaces a solution type.
func (s *Store) PutSolutionType(ctx context.Context, item CatalogItem) (CatalogItem, error) {
	return s.PutCatalog(ctx, KindSolutionType, item)
}

// GetCatalog returns items of kind ordered by name. Unknown ids are ignored.
func (s *Store) GetCatalog(ctx context.Context, kind Kind, ids []string) ([]CatalogItem, error) {
	query := `SELECT id, name, description, parentId FROM catalog WHERE kind = ?`
	args := []interface{}{string(kind)}
	if len(ids) > 0 {
		query += ` AND id IN (?` + strings.Repeat(`, ?`, len(ids)-1) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY name, id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", kind, err)
	}
	defer rows.Close()

	items := []CatalogItem{}
	for rows.Next() {
		var item CatalogItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.ParentID); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", kind, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PutCatalog upserts item under kind, assigning an id when it has none.
func (s *Store) PutCatalog(ctx context.Context, kind Kind, item CatalogItem) (CatalogItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return CatalogItem{}, fmt.Errorf("store: %s name is required", kind)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	_, err := s.conn.ExecContext(ctx, `
INSERT INTO catalog(kind, id, name, description, parentId)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(kind, id) DO UPDATE SET
  name = excluded.name,
  description = excluded.description,
  parentId = excluded.parentId,
  updatedAt = CURRENT_TIMESTAMP
`, string(kind), item.ID, item.Name, item.Description, item.ParentID)
	if err != nil {
		return CatalogItem{}, fmt.Errorf("store: put %s: %w", kind, err)
	}

	s.logger.Debug("catalog item saved",
		zap.String("op", "store.PutCatalog"),
		zap.String("kind", string(kind)),
		zap.String("id", item.ID),
	)
	return item, nil
}
