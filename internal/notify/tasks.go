package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-api/internal/common"
)

// TypeCheckoutConfirmation identifies the confirmation email task.
const TypeCheckoutConfirmation = "checkout:confirmation"

// ConfirmationPayload carries the data needed to confirm a finished checkout.
type ConfirmationPayload struct {
	ClientID      uuid.UUID `json:"clientId"`
	CartID        uuid.UUID `json:"cartId"`
	TransactionID uuid.UUID `json:"transactionId"`
	Total         string    `json:"total"`
}

// NewConfirmationTask builds the asynq task for a completed checkout.
func NewConfirmationTask(p ConfirmationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("notify: encode confirmation: %w", err)
	}
	return asynq.NewTask(TypeCheckoutConfirmation, data, asynq.MaxRetry(5)), nil
}

// Enqueuer schedules confirmation tasks on the shared Redis queue.
type Enqueuer struct {
	Client  *asynq.Client
	Enabled bool
}

// EnqueueConfirmation schedules a confirmation email. A nil client or disabled
// enqueuer is a no-op so checkout never fails on notification plumbing.
func (e Enqueuer) EnqueueConfirmation(ctx context.Context, p ConfirmationPayload) error {
	if !e.Enabled || e.Client == nil {
		return nil
	}
	task, err := NewConfirmationTask(p)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("notify: enqueue confirmation: %w", err)
	}
	return nil
}

// ClientDirectory resolves the recipient for a confirmation email.
type ClientDirectory interface {
	Email(ctx context.Context, clientID uuid.UUID) (string, error)
}

// ConfirmationHandler processes confirmation tasks on the worker.
type ConfirmationHandler struct {
	Mail    common.EmailSender
	Clients ClientDirectory
	Logger  zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h ConfirmationHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p ConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		// malformed payloads never become processable; skip retries
		return fmt.Errorf("notify: decode confirmation: %v: %w", err, asynq.SkipRetry)
	}
	if h.Mail == nil || h.Clients == nil {
		return errors.New("notify: confirmation handler not configured")
	}
	to, err := h.Clients.Email(ctx, p.ClientID)
	if err != nil {
		return fmt.Errorf("notify: resolve recipient: %w", err)
	}
	subject := "Your order is confirmed"
	body := fmt.Sprintf("<p>Payment %s for a total of %s was processed successfully.</p>",
		p.TransactionID, p.Total)
	if err := h.Mail.Send(to, subject, body); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	h.Logger.Info().
		Str("client_id", p.ClientID.String()).
		Str("transaction_id", p.TransactionID.String()).
		Msg("confirmation sent")
	return nil
}
