package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/checkout-api/internal/cart"
	"github.com/noah-isme/checkout-api/internal/client"
	"github.com/noah-isme/checkout-api/internal/events"
	"github.com/noah-isme/checkout-api/internal/notify"
	"github.com/noah-isme/checkout-api/internal/obs"
	"github.com/noah-isme/checkout-api/internal/payment"
	"github.com/noah-isme/checkout-api/internal/pricing"
	"github.com/noah-isme/checkout-api/internal/stock"
)

// SuccessMessage is the fixed message returned on a completed checkout.
const SuccessMessage = "Purchase completed successfully."

var (
	// ErrItemsUnavailable is returned when the stock system cannot fulfill
	// at least one cart line.
	ErrItemsUnavailable = errors.New("items unavailable")
	// ErrPaymentNotAuthorized is returned when the payment provider declines
	// the authorization.
	ErrPaymentNotAuthorized = errors.New("payment not authorized")
	// ErrStockCommitFailed is returned when the stock decrement fails after a
	// successful payment authorization. The authorization is cancelled before
	// this error is surfaced.
	ErrStockCommitFailed = errors.New("stock commit failed")
)

// Outcome is the result of a finalized checkout.
type Outcome struct {
	Success       bool      `json:"success"`
	TransactionID uuid.UUID `json:"transactionId"`
	Message       string    `json:"message"`
}

// ClientLookup resolves a client by id.
type ClientLookup interface {
	Get(ctx context.Context, id uuid.UUID) (client.Client, error)
}

// CartLookup resolves a cart by id for a specific owner.
type CartLookup interface {
	Get(ctx context.Context, cartID uuid.UUID, owner client.Client) (*cart.Cart, error)
}

// ConfirmationEnqueuer schedules the post-checkout confirmation email.
type ConfirmationEnqueuer interface {
	EnqueueConfirmation(ctx context.Context, p notify.ConfirmationPayload) error
}

// Service orchestrates the checkout saga across the pricing engine and the
// external stock and payment systems. Each finalize call attempts every
// external effect at most once; the only retry-like behavior is the single
// compensating cancel after a failed stock commit.
type Service struct {
	Clients       ClientLookup
	Carts         CartLookup
	Stock         stock.Gateway
	Payments      payment.Gateway
	Events        *events.Bus
	Confirmations ConfirmationEnqueuer
	Logger        zerolog.Logger
}

// FinalizeCheckout drives the full purchase flow for the given cart and
// client: lookups, availability check, pricing, payment authorization and
// stock commit. Business rejections come back as sentinel errors; the Outcome
// is only meaningful when the returned error is nil.
func (s *Service) FinalizeCheckout(ctx context.Context, cartID, clientID uuid.UUID) (out Outcome, err error) {
	tracer := otel.Tracer("checkout")
	ctx, span := tracer.Start(ctx, "checkout.finalize", trace.WithAttributes(
		attribute.String("cart.id", cartID.String()),
		attribute.String("client.id", clientID.String()),
	))
	defer span.End()

	log := s.Logger.With().
		Str("cart_id", cartID.String()).
		Str("client_id", clientID.String()).
		Logger()

	var (
		authorized bool
		txnID      uuid.UUID
	)
	// Any unexpected exit after authorization releases the hold before the
	// error propagates. Typed commit failures cancel inline below.
	defer func() {
		if err == nil || !authorized {
			return
		}
		if errors.Is(err, ErrStockCommitFailed) {
			return
		}
		s.cancelAuthorization(ctx, log, clientID, txnID)
	}()

	owner, err := s.lookupClient(ctx, clientID)
	if err != nil {
		s.recordOutcome("rejected_client")
		return Outcome{}, err
	}

	c, err := s.lookupCart(ctx, cartID, owner)
	if err != nil {
		s.recordOutcome("rejected_cart")
		return Outcome{}, err
	}

	ids, qtys := lineSequences(c)

	if err := s.checkAvailability(ctx, ids, qtys); err != nil {
		if errors.Is(err, ErrItemsUnavailable) {
			log.Info().Msg("checkout rejected: items unavailable")
			s.recordOutcome("unavailable")
		} else {
			s.recordOutcome("stock_error")
		}
		return Outcome{}, err
	}

	total, err := s.price(ctx, c)
	if err != nil {
		s.recordOutcome("rejected_cart")
		return Outcome{}, err
	}

	txnID, err = s.authorize(ctx, clientID, total)
	if err != nil {
		if errors.Is(err, ErrPaymentNotAuthorized) {
			log.Info().Str("total", total.String()).Msg("checkout rejected: payment declined")
			s.recordOutcome("declined")
		} else {
			s.recordOutcome("payment_error")
		}
		return Outcome{}, err
	}
	authorized = true

	if err := s.commit(ctx, ids, qtys); err != nil {
		if errors.Is(err, ErrStockCommitFailed) {
			s.cancelAuthorization(ctx, log, clientID, txnID)
			log.Warn().Str("transaction_id", txnID.String()).Msg("checkout failed: stock commit rejected")
			s.recordOutcome("commit_failed")
			s.emit(ctx, events.TopicCheckoutFailed, cartID, map[string]any{
				"clientId": clientID,
				"reason":   "stock_commit",
			})
		} else {
			s.recordOutcome("stock_error")
		}
		return Outcome{}, err
	}

	log.Info().
		Str("transaction_id", txnID.String()).
		Str("total", total.String()).
		Msg("checkout completed")
	s.recordOutcome("success")
	s.emit(ctx, events.TopicCheckoutCompleted, cartID, map[string]any{
		"clientId":      clientID,
		"transactionId": txnID,
		"total":         total.String(),
	})
	s.enqueueConfirmation(ctx, log, notify.ConfirmationPayload{
		ClientID:      clientID,
		CartID:        cartID,
		TransactionID: txnID,
		Total:         total.String(),
	})

	return Outcome{Success: true, TransactionID: txnID, Message: SuccessMessage}, nil
}

func (s *Service) lookupClient(ctx context.Context, clientID uuid.UUID) (client.Client, error) {
	defer s.observeStage(ctx, "lookup_client")()
	owner, err := s.Clients.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			return client.Client{}, err
		}
		return client.Client{}, fmt.Errorf("checkout: lookup client: %w", err)
	}
	return owner, nil
}

func (s *Service) lookupCart(ctx context.Context, cartID uuid.UUID, owner client.Client) (*cart.Cart, error) {
	defer s.observeStage(ctx, "lookup_cart")()
	c, err := s.Carts.Get(ctx, cartID, owner)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("checkout: lookup cart: %w", err)
	}
	return c, nil
}

func (s *Service) checkAvailability(ctx context.Context, ids []uuid.UUID, qtys []int32) error {
	defer s.observeStage(ctx, "check_availability")()
	avail, err := s.Stock.CheckAvailability(ctx, ids, qtys)
	if err != nil {
		return fmt.Errorf("checkout: availability check: %w", err)
	}
	if !avail.AllAvailable {
		return ErrItemsUnavailable
	}
	return nil
}

func (s *Service) price(ctx context.Context, c *cart.Cart) (decimal.Decimal, error) {
	defer s.observeStage(ctx, "price")()
	total, err := pricing.ComputeTotal(c)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *Service) authorize(ctx context.Context, clientID uuid.UUID, total decimal.Decimal) (uuid.UUID, error) {
	defer s.observeStage(ctx, "authorize_payment")()
	auth, err := s.Payments.Authorize(ctx, clientID, total)
	if err != nil {
		return uuid.Nil, fmt.Errorf("checkout: authorize payment: %w", err)
	}
	if !auth.Authorized {
		return uuid.Nil, ErrPaymentNotAuthorized
	}
	return auth.TransactionID, nil
}

func (s *Service) commit(ctx context.Context, ids []uuid.UUID, qtys []int32) error {
	defer s.observeStage(ctx, "commit_stock")()
	res, err := s.Stock.Commit(ctx, ids, qtys)
	if err != nil {
		return fmt.Errorf("checkout: commit stock: %w", err)
	}
	if !res.Success {
		return ErrStockCommitFailed
	}
	return nil
}

// cancelAuthorization reverses a payment hold. Failures are logged and counted
// but never escalated; the checkout error already in flight takes precedence.
// The request context may already be cancelled when compensation runs, so the
// cancel call keeps its values but detaches from cancellation.
func (s *Service) cancelAuthorization(ctx context.Context, log zerolog.Logger, clientID, txnID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	defer s.observeStage(ctx, "cancel_payment")()
	if err := s.Payments.Cancel(ctx, clientID, txnID); err != nil {
		log.Error().Err(err).
			Str("transaction_id", txnID.String()).
			Msg("payment cancel failed, manual reconciliation needed")
		if obs.PaymentCancelTotal != nil {
			obs.PaymentCancelTotal.WithLabelValues("error").Inc()
		}
		return
	}
	log.Info().Str("transaction_id", txnID.String()).Msg("payment authorization cancelled")
	if obs.PaymentCancelTotal != nil {
		obs.PaymentCancelTotal.WithLabelValues("ok").Inc()
	}
}

func (s *Service) emit(ctx context.Context, topic string, aggregateID uuid.UUID, payload map[string]any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.Logger.Error().Err(err).Str("topic", topic).Msg("event emit failed")
	}
}

func (s *Service) enqueueConfirmation(ctx context.Context, log zerolog.Logger, p notify.ConfirmationPayload) {
	if s.Confirmations == nil {
		return
	}
	if err := s.Confirmations.EnqueueConfirmation(ctx, p); err != nil {
		log.Error().Err(err).Msg("confirmation enqueue failed")
	}
}

func (s *Service) observeStage(ctx context.Context, stage string) func() {
	tracer := otel.Tracer("checkout")
	_, span := tracer.Start(ctx, "checkout."+stage)
	start := time.Now()
	return func() {
		span.End()
		if obs.CheckoutStageDuration != nil {
			obs.CheckoutStageDuration.WithLabelValues(stage).Observe(obs.DurationMillis(time.Since(start)))
		}
	}
}

func (s *Service) recordOutcome(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}

// lineSequences flattens cart items into parallel id and quantity slices,
// preserving insertion order. Index i of both slices describes the same line.
func lineSequences(c *cart.Cart) ([]uuid.UUID, []int32) {
	ids := make([]uuid.UUID, len(c.Items))
	qtys := make([]int32, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.Product.ID
		qtys[i] = it.Qty
	}
	return ids, qtys
}
