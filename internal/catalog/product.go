package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is read-only reference data. Price and weight carry exact decimal
// semantics because pricing thresholds are compared at exact boundary values.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Weight      decimal.Decimal `json:"weight"`
	Category    string          `json:"category"`
}
