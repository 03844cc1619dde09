package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/checkout-api/internal/catalog"
	"github.com/noah-isme/checkout-api/internal/client"
)

// Item is a single cart line. Quantity is always positive; the store rejects
// non-positive quantities on insert.
type Item struct {
	Product catalog.Product `json:"product"`
	Qty     int32           `json:"qty"`
}

// Cart holds the ordered items a client intends to buy. Items preserve
// insertion order; the stock gateway relies on that ordering.
type Cart struct {
	ID        uuid.UUID      `json:"id"`
	Client    *client.Client `json:"client"`
	Items     []Item         `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
}
