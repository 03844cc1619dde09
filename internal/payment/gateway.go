package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Authorization is the provider's answer to an authorization request. The
// transaction id is meaningful only when Authorized is true.
type Authorization struct {
	Authorized    bool
	TransactionID uuid.UUID
}

// Gateway abstracts the external payment provider. Cancel reverses a
// previously authorized transaction; it is best-effort from the caller's
// perspective. Implementations must always return a well-formed result or an
// error, never an empty success.
type Gateway interface {
	Authorize(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (Authorization, error)
	Cancel(ctx context.Context, clientID, transactionID uuid.UUID) error
}
