package stock

import (
	"context"

	"github.com/google/uuid"
)

// Availability reports whether every requested line can be fulfilled. The
// unavailable ids are informational; callers only branch on AllAvailable.
type Availability struct {
	AllAvailable   bool
	UnavailableIDs []uuid.UUID
}

// CommitResult reports whether the stock decrement succeeded.
type CommitResult struct {
	Success bool
}

// Gateway abstracts the external inventory system. Product ids and quantities
// are parallel sequences; the gateway pairs index i of each. Implementations
// must always return a well-formed result or an error, never an empty success.
type Gateway interface {
	CheckAvailability(ctx context.Context, productIDs []uuid.UUID, quantities []int32) (Availability, error)
	Commit(ctx context.Context, productIDs []uuid.UUID, quantities []int32) (CommitResult, error)
}
