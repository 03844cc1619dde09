package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/checkout-api/internal/client"
)

var (
	// ErrCartNotFound is returned when no cart with the id belongs to the client.
	ErrCartNotFound = errors.New("cart not found")
	// ErrInvalidQuantity is returned when an item is added with a non-positive quantity.
	ErrInvalidQuantity = errors.New("cart: quantity must be positive")
)

// Store persists carts and their items in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// Create opens an empty cart owned by the given client.
func (s *Store) Create(ctx context.Context, owner client.Client) (Cart, error) {
	if s == nil || s.Pool == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	c := Cart{ID: uuid.New(), Client: &owner}
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO carts (id, client_id) VALUES ($1, $2) RETURNING created_at`,
		c.ID, owner.ID)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return Cart{}, fmt.Errorf("cart: create: %w", err)
	}
	return c, nil
}

const addItemAttempts = 3

// AddItem appends a product line to the cart, keeping insertion order via a
// monotonically increasing position. Selecting from carts makes a missing cart
// insert zero rows instead of tripping the foreign key. Two concurrent adds can
// still race to the same position, so unique violations are retried.
func (s *Store) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if s == nil || s.Pool == nil {
		return errors.New("cart store not configured")
	}
	var err error
	for attempt := 0; attempt < addItemAttempts; attempt++ {
		var tag pgconn.CommandTag
		tag, err = s.Pool.Exec(ctx,
			`INSERT INTO cart_items (cart_id, product_id, qty, position)
			 SELECT c.id, $2, $3,
			        COALESCE((SELECT MAX(position) FROM cart_items WHERE cart_id = c.id), 0) + 1
			 FROM carts c WHERE c.id = $1`,
			cartID, productID, qty)
		if err == nil {
			if tag.RowsAffected() == 0 {
				return ErrCartNotFound
			}
			return nil
		}
		if !isPositionConflict(err) {
			return fmt.Errorf("cart: add item: %w", err)
		}
	}
	return fmt.Errorf("cart: add item: %w", err)
}

// isPositionConflict reports whether the insert lost a race for the next
// position slot, which shows up as a unique violation on the cart_items key.
func isPositionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Get loads the cart with the given id when it belongs to the provided client,
// hydrating its items with product data in insertion order.
func (s *Store) Get(ctx context.Context, cartID uuid.UUID, owner client.Client) (*Cart, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("cart store not configured")
	}

	c := Cart{Client: &owner}
	row := s.Pool.QueryRow(ctx,
		`SELECT id, created_at FROM carts WHERE id = $1 AND client_id = $2`,
		cartID, owner.ID)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("cart: query: %w", err)
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT p.id, p.name, p.description, p.price::text, p.weight::text, p.category, i.qty
		 FROM cart_items i
		 JOIN products p ON p.id = i.product_id
		 WHERE i.cart_id = $1
		 ORDER BY i.position`, cartID)
	if err != nil {
		return nil, fmt.Errorf("cart: query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it            Item
			price, weight string
		)
		if err := rows.Scan(&it.Product.ID, &it.Product.Name, &it.Product.Description,
			&price, &weight, &it.Product.Category, &it.Qty); err != nil {
			return nil, fmt.Errorf("cart: scan item: %w", err)
		}
		if it.Product.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("cart: parse price: %w", err)
		}
		if it.Product.Weight, err = decimal.NewFromString(weight); err != nil {
			return nil, fmt.Errorf("cart: parse weight: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}
