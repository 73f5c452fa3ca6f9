package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// CatalogStore implements storage.CatalogStore using PostgreSQL.
type CatalogStore struct {
	pool *Pool
}

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(pool *Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// SaveCatalog replaces all reference data in a single transaction.
func (s *CatalogStore) SaveCatalog(ctx context.Context, c *catalog.Catalog) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		for _, table := range []string{"recipes", "workforce_profiles", "buildings", "materials"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for _, m := range c.Materials() {
			_, err := tx.Exec(ctx, `
			INSERT INTO materials (ticker, name, category, tier, weight, volume)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, m.Ticker, m.Name, m.Category, m.Tier, m.Weight, m.Volume)
			if err != nil {
				return fmt.Errorf("insert material %s: %w", m.Ticker, err)
			}
		}

		for _, b := range c.Buildings() {
			workforce := b.Workforce
			if workforce == nil {
				workforce = map[string]int{}
			}
			_, err := tx.Exec(ctx, `
			INSERT INTO buildings (code, name, workforce) VALUES ($1, $2, $3)
		`, b.Code, b.Name, workforce)
			if err != nil {
				return fmt.Errorf("insert building %s: %w", b.Code, err)
			}
		}

		for i, p := range c.Profiles() {
			_, err := tx.Exec(ctx, `
			INSERT INTO workforce_profiles (workforce_type, position, necessary, luxury)
			VALUES ($1, $2, $3, $4)
		`, p.Type, i, nonNil(p.Necessary), nonNil(p.Luxury))
			if err != nil {
				return fmt.Errorf("insert workforce profile %s: %w", p.Type, err)
			}
		}

		for i, r := range c.Recipes() {
			_, err := tx.Exec(ctx, `
			INSERT INTO recipes (
				recipe_key, position, building, workforce_type, workforce,
				duration_ms, inputs, outputs
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
				r.Key, i, r.Building, r.WorkforceType, r.Workforce,
				r.Duration.Milliseconds(), nonNil(r.Inputs), nonNil(r.Outputs),
			)
			if err != nil {
				return storageError(err, "insert recipe %s", r.Key)
			}
		}

		return nil
	})
}

// LoadCatalog reads all reference data and builds a catalog.
func (s *CatalogStore) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	materials, err := s.loadMaterials(ctx)
	if err != nil {
		return nil, err
	}
	buildings, err := s.loadBuildings(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := s.loadRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(materials, recipes, buildings, profiles)
}

func (s *CatalogStore) loadMaterials(ctx context.Context) ([]domain.Material, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, name, category, tier, weight, volume
		FROM materials
		ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	var result []domain.Material
	for rows.Next() {
		var m domain.Material
		if err := rows.Scan(&m.Ticker, &m.Name, &m.Category, &m.Tier, &m.Weight, &m.Volume); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *CatalogStore) loadBuildings(ctx context.Context) ([]domain.Building, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, name, workforce FROM buildings ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query buildings: %w", err)
	}
	defer rows.Close()

	var result []domain.Building
	for rows.Next() {
		var b domain.Building
		if err := rows.Scan(&b.Code, &b.Name, &b.Workforce); err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (s *CatalogStore) loadProfiles(ctx context.Context) ([]domain.WorkforceProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT workforce_type, necessary, luxury
		FROM workforce_profiles
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query workforce profiles: %w", err)
	}
	defer rows.Close()

	var result []domain.WorkforceProfile
	for rows.Next() {
		var p domain.WorkforceProfile
		if err := rows.Scan(&p.Type, &p.Necessary, &p.Luxury); err != nil {
			return nil, fmt.Errorf("scan workforce profile: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *CatalogStore) loadRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT recipe_key, building, workforce_type, workforce, duration_ms, inputs, outputs
		FROM recipes
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var result []domain.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// scanRecipe scans a single row into domain.Recipe.
func scanRecipe(row pgx.Row) (*domain.Recipe, error) {
	var (
		r          domain.Recipe
		durationMs int64
	)
	err := row.Scan(
		&r.Key, &r.Building, &r.WorkforceType, &r.Workforce,
		&durationMs, &r.Inputs, &r.Outputs,
	)
	if err != nil {
		return nil, err
	}
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return &r, nil
}

// nonNil keeps empty JSONB arrays as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Compile-time interface check.
var _ storage.CatalogStore = (*CatalogStore)(nil)
