package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CancelCall records the arguments of a single Cancel invocation.
type CancelCall struct {
	ClientID      uuid.UUID
	TransactionID uuid.UUID
}

// Mock is an in-memory Gateway for tests and local development.
type Mock struct {
	mu sync.Mutex

	Declined      bool
	TransactionID uuid.UUID
	AuthorizeErr  error
	CancelErr     error

	Authorized  []decimal.Decimal
	CancelCalls []CancelCall
}

// Authorize implements Gateway.
func (m *Mock) Authorize(_ context.Context, _ uuid.UUID, amount decimal.Decimal) (Authorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AuthorizeErr != nil {
		return Authorization{}, m.AuthorizeErr
	}
	if m.Declined {
		return Authorization{Authorized: false}, nil
	}
	m.Authorized = append(m.Authorized, amount)
	txn := m.TransactionID
	if txn == uuid.Nil {
		txn = uuid.New()
		m.TransactionID = txn
	}
	return Authorization{Authorized: true, TransactionID: txn}, nil
}

// Cancel implements Gateway.
func (m *Mock) Cancel(_ context.Context, clientID, transactionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls = append(m.CancelCalls, CancelCall{ClientID: clientID, TransactionID: transactionID})
	return m.CancelErr
}
