package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/checkout-api/internal/cache"
)

// ErrClientNotFound is returned when no client exists for the given id.
var ErrClientNotFound = errors.New("client not found")

// Store loads clients from Postgres with an optional Redis read-through cache.
type Store struct {
	Pool  *pgxpool.Pool
	Cache *cache.Cache
}

// Get resolves a client by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Client, error) {
	if s == nil || s.Pool == nil {
		return Client{}, errors.New("client store not configured")
	}

	cacheKey := "client:" + id.String()
	var cached Client
	if ok, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}

	row := s.Pool.QueryRow(ctx,
		`SELECT id, name, email, tier FROM clients WHERE id = $1`, id)

	var (
		c       Client
		rawTier string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &rawTier); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrClientNotFound
		}
		return Client{}, fmt.Errorf("client: query: %w", err)
	}
	tier, err := ParseTier(rawTier)
	if err != nil {
		return Client{}, err
	}
	c.Tier = tier

	_ = s.Cache.SetJSON(ctx, cacheKey, c)
	return c, nil
}
