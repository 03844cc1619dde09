package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/checkout-api/internal/cache"
)

// ErrProductNotFound is returned when no product exists for the given id.
var ErrProductNotFound = errors.New("product not found")

// Store loads product reference data from Postgres with a Redis cache in front.
type Store struct {
	Pool  *pgxpool.Pool
	Cache *cache.Cache
}

// Get resolves a single product by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog store not configured")
	}

	cacheKey := "product:" + id.String()
	var cached Product
	if ok, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}

	row := s.Pool.QueryRow(ctx,
		`SELECT id, name, description, price::text, weight::text, category
		 FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}

	_ = s.Cache.SetJSON(ctx, cacheKey, p)
	return p, nil
}

// List returns the full catalog ordered by name. The catalog is small,
// reference-data sized; no pagination.
func (s *Store) List(ctx context.Context) ([]Product, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, name, description, price::text, weight::text, category
		 FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: query: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p             Product
		price, weight string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &weight, &p.Category); err != nil {
		return Product{}, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return Product{}, fmt.Errorf("catalog: parse price: %w", err)
	}
	if p.Weight, err = decimal.NewFromString(weight); err != nil {
		return Product{}, fmt.Errorf("catalog: parse weight: %w", err)
	}
	return p, nil
}
