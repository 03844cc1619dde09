package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/cart"
	"github.com/noah-isme/checkout-api/internal/catalog"
	"github.com/noah-isme/checkout-api/internal/checkout"
	"github.com/noah-isme/checkout-api/internal/client"
	"github.com/noah-isme/checkout-api/internal/notify"
	"github.com/noah-isme/checkout-api/internal/payment"
	"github.com/noah-isme/checkout-api/internal/pricing"
	"github.com/noah-isme/checkout-api/internal/stock"
)

type clientMap map[uuid.UUID]client.Client

func (m clientMap) Get(_ context.Context, id uuid.UUID) (client.Client, error) {
	c, ok := m[id]
	if !ok {
		return client.Client{}, client.ErrClientNotFound
	}
	return c, nil
}

type cartMap map[uuid.UUID]*cart.Cart

func (m cartMap) Get(_ context.Context, cartID uuid.UUID, owner client.Client) (*cart.Cart, error) {
	c, ok := m[cartID]
	if !ok || c.Client == nil || c.Client.ID != owner.ID {
		return nil, cart.ErrCartNotFound
	}
	return c, nil
}

type captureEnqueuer struct {
	payloads []notify.ConfirmationPayload
	err      error
}

func (c *captureEnqueuer) EnqueueConfirmation(_ context.Context, p notify.ConfirmationPayload) error {
	c.payloads = append(c.payloads, p)
	return c.err
}

type fixture struct {
	svc      *checkout.Service
	stock    *stock.Mock
	payments *payment.Mock
	mail     *captureEnqueuer
	clientID uuid.UUID
	cartID   uuid.UUID
	cart     *cart.Cart
}

func product(price, weight string) catalog.Product {
	return catalog.Product{
		ID:     uuid.New(),
		Name:   "item",
		Price:  decimal.RequireFromString(price),
		Weight: decimal.RequireFromString(weight),
	}
}

// newFixture wires a service around a two-line bronze cart:
// subtotal 500 (no discount), weight 6 so freight is 12, total 512.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	owner := client.Client{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", Tier: client.TierBronze}
	c := &cart.Cart{
		ID:     uuid.New(),
		Client: &owner,
		Items: []cart.Item{
			{Product: product("100", "1"), Qty: 2},
			{Product: product("150", "2"), Qty: 2},
		},
	}

	f := &fixture{
		stock:    &stock.Mock{},
		payments: &payment.Mock{TransactionID: uuid.New()},
		mail:     &captureEnqueuer{},
		clientID: owner.ID,
		cartID:   c.ID,
		cart:     c,
	}
	f.svc = &checkout.Service{
		Clients:       clientMap{owner.ID: owner},
		Carts:         cartMap{c.ID: c},
		Stock:         f.stock,
		Payments:      f.payments,
		Confirmations: f.mail,
		Logger:        zerolog.Nop(),
	}
	return f
}

func TestFinalizeCheckoutSuccess(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, f.payments.TransactionID, out.TransactionID)
	require.Equal(t, checkout.SuccessMessage, out.Message)

	require.Len(t, f.payments.Authorized, 1)
	require.True(t, decimal.RequireFromString("512").Equal(f.payments.Authorized[0]))
	require.Empty(t, f.payments.CancelCalls)

	wantIDs := []uuid.UUID{f.cart.Items[0].Product.ID, f.cart.Items[1].Product.ID}
	wantQtys := []int32{2, 2}
	for _, op := range []string{"check_availability", "commit"} {
		calls := f.stock.CallsFor(op)
		require.Len(t, calls, 1, op)
		require.Equal(t, wantIDs, calls[0].ProductIDs, op)
		require.Equal(t, wantQtys, calls[0].Quantities, op)
	}

	require.Len(t, f.mail.payloads, 1)
	require.Equal(t, f.clientID, f.mail.payloads[0].ClientID)
	require.Equal(t, "512", f.mail.payloads[0].Total)
}

func TestFinalizeCheckoutUnknownClient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, uuid.New())
	require.ErrorIs(t, err, client.ErrClientNotFound)
	require.Empty(t, f.stock.Calls)
	require.Empty(t, f.payments.Authorized)
}

func TestFinalizeCheckoutUnknownCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.FinalizeCheckout(context.Background(), uuid.New(), f.clientID)
	require.ErrorIs(t, err, cart.ErrCartNotFound)
	require.Empty(t, f.stock.Calls)
}

func TestFinalizeCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.cart.Items = nil

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.ErrorIs(t, err, pricing.ErrInvalidCart)
	require.Empty(t, f.payments.Authorized)
	require.Empty(t, f.stock.CallsFor("commit"))
}

func TestFinalizeCheckoutItemsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.stock.UnavailableIDs = []uuid.UUID{f.cart.Items[0].Product.ID}

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.ErrorIs(t, err, checkout.ErrItemsUnavailable)

	require.Empty(t, f.payments.Authorized)
	require.Empty(t, f.payments.CancelCalls)
	require.Empty(t, f.stock.CallsFor("commit"))
	require.Empty(t, f.mail.payloads)
}

func TestFinalizeCheckoutPaymentDeclined(t *testing.T) {
	f := newFixture(t)
	f.payments.Declined = true

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.ErrorIs(t, err, checkout.ErrPaymentNotAuthorized)

	require.Empty(t, f.stock.CallsFor("commit"))
	require.Empty(t, f.payments.CancelCalls)
}

func TestFinalizeCheckoutCommitFailureCancelsPayment(t *testing.T) {
	f := newFixture(t)
	f.stock.CommitFails = true

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.ErrorIs(t, err, checkout.ErrStockCommitFailed)

	require.Len(t, f.payments.CancelCalls, 1)
	require.Equal(t, f.clientID, f.payments.CancelCalls[0].ClientID)
	require.Equal(t, f.payments.TransactionID, f.payments.CancelCalls[0].TransactionID)
	require.Empty(t, f.mail.payloads)
}

func TestFinalizeCheckoutCommitErrorCancelsPayment(t *testing.T) {
	f := newFixture(t)
	f.stock.CommitErr = errors.New("stock service down")

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.Error(t, err)
	require.NotErrorIs(t, err, checkout.ErrStockCommitFailed)

	require.Len(t, f.payments.CancelCalls, 1)
	require.Equal(t, f.payments.TransactionID, f.payments.CancelCalls[0].TransactionID)
}

// abortingStock cancels the request context before failing the commit, as a
// caller disconnect mid-saga would.
type abortingStock struct {
	*stock.Mock
	abort context.CancelFunc
}

func (s *abortingStock) Commit(ctx context.Context, ids []uuid.UUID, qtys []int32) (stock.CommitResult, error) {
	s.abort()
	return stock.CommitResult{}, ctx.Err()
}

type ctxRecordingPayments struct {
	*payment.Mock
	cancelCtxErr error
}

func (p *ctxRecordingPayments) Cancel(ctx context.Context, clientID, txnID uuid.UUID) error {
	p.cancelCtxErr = ctx.Err()
	return p.Mock.Cancel(ctx, clientID, txnID)
}

func TestFinalizeCheckoutCancelsPaymentAfterContextCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, abort := context.WithCancel(context.Background())
	defer abort()

	payments := &ctxRecordingPayments{Mock: f.payments}
	f.svc.Stock = &abortingStock{Mock: f.stock, abort: abort}
	f.svc.Payments = payments

	_, err := f.svc.FinalizeCheckout(ctx, f.cartID, f.clientID)
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, f.payments.CancelCalls, 1)
	require.Equal(t, f.payments.TransactionID, f.payments.CancelCalls[0].TransactionID)
	require.NoError(t, payments.cancelCtxErr)
}

func TestFinalizeCheckoutCancelFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.stock.CommitFails = true
	f.payments.CancelErr = errors.New("provider timeout")

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.ErrorIs(t, err, checkout.ErrStockCommitFailed)
	require.Len(t, f.payments.CancelCalls, 1)
}

func TestFinalizeCheckoutAvailabilityErrorSkipsPayment(t *testing.T) {
	f := newFixture(t)
	f.stock.CheckErr = errors.New("stock service down")

	_, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.Error(t, err)
	require.Empty(t, f.payments.Authorized)
	require.Empty(t, f.payments.CancelCalls)
}

func TestFinalizeCheckoutConfirmationFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("queue unavailable")

	out, err := f.svc.FinalizeCheckout(context.Background(), f.cartID, f.clientID)
	require.NoError(t, err)
	require.True(t, out.Success)
}
