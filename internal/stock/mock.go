package stock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Call records the arguments of a single gateway invocation.
type Call struct {
	Op         string
	ProductIDs []uuid.UUID
	Quantities []int32
}

// Mock is an in-memory Gateway for tests and local development. Unlike a
// simulator that returns nothing for unimplemented paths, it always produces
// a well-formed result.
type Mock struct {
	mu sync.Mutex

	UnavailableIDs []uuid.UUID
	CommitFails    bool
	CheckErr       error
	CommitErr      error

	Calls []Call
}

// CheckAvailability implements Gateway.
func (m *Mock) CheckAvailability(_ context.Context, productIDs []uuid.UUID, quantities []int32) (Availability, error) {
	m.record("check_availability", productIDs, quantities)
	if m.CheckErr != nil {
		return Availability{}, m.CheckErr
	}
	return Availability{
		AllAvailable:   len(m.UnavailableIDs) == 0,
		UnavailableIDs: m.UnavailableIDs,
	}, nil
}

// Commit implements Gateway.
func (m *Mock) Commit(_ context.Context, productIDs []uuid.UUID, quantities []int32) (CommitResult, error) {
	m.record("commit", productIDs, quantities)
	if m.CommitErr != nil {
		return CommitResult{}, m.CommitErr
	}
	return CommitResult{Success: !m.CommitFails}, nil
}

// CallsFor returns the recorded calls for the given operation.
func (m *Mock) CallsFor(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *Mock) record(op string, ids []uuid.UUID, qtys []int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{
		Op:         op,
		ProductIDs: append([]uuid.UUID(nil), ids...),
		Quantities: append([]int32(nil), qtys...),
	})
}
