package notify_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/common"
	"github.com/noah-isme/checkout-api/internal/notify"
)

type staticDirectory struct {
	email string
	err   error
}

func (d staticDirectory) Email(context.Context, uuid.UUID) (string, error) {
	return d.email, d.err
}

func TestConfirmationHandlerSendsEmail(t *testing.T) {
	t.Parallel()

	payload := notify.ConfirmationPayload{
		ClientID:      uuid.New(),
		CartID:        uuid.New(),
		TransactionID: uuid.New(),
		Total:         "540",
	}
	task, err := notify.NewConfirmationTask(payload)
	require.NoError(t, err)

	mail := &common.InMemoryEmail{}
	handler := notify.ConfirmationHandler{
		Mail:    mail,
		Clients: staticDirectory{email: "buyer@example.com"},
		Logger:  zerolog.Nop(),
	}
	require.NoError(t, handler.ProcessTask(context.Background(), task))
	require.Len(t, mail.Outbox, 1)
	sent, ok := mail.Last()
	require.True(t, ok)
	require.Equal(t, "buyer@example.com", sent.To)
	require.Contains(t, sent.HTML, payload.TransactionID.String())
	require.Contains(t, sent.HTML, "540")
}

func TestConfirmationHandlerRejectsGarbage(t *testing.T) {
	t.Parallel()

	handler := notify.ConfirmationHandler{
		Mail:    &common.InMemoryEmail{},
		Clients: staticDirectory{email: "buyer@example.com"},
		Logger:  zerolog.Nop(),
	}
	task := asynq.NewTask(notify.TypeCheckoutConfirmation, []byte("{not json"))
	require.Error(t, handler.ProcessTask(context.Background(), task))
}
