package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/payment"
	"github.com/noah-isme/checkout-api/internal/resilience"
)

func TestAuthorizeSendsDecimalAmount(t *testing.T) {
	t.Parallel()

	clientID := uuid.New()
	txn := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/authorize", r.URL.Path)
		var body struct {
			ClientID uuid.UUID `json:"clientId"`
			Amount   string    `json:"amount"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, clientID, body.ClientID)
		require.Equal(t, "540.5", body.Amount)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authorized":    true,
			"transactionId": txn,
		})
	}))
	defer srv.Close()

	gw := payment.HTTPGateway{BaseURL: srv.URL, HTTP: resilience.HTTPClient{Client: srv.Client()}}
	auth, err := gw.Authorize(context.Background(), clientID, decimal.RequireFromString("540.5"))
	require.NoError(t, err)
	require.True(t, auth.Authorized)
	require.Equal(t, txn, auth.TransactionID)
}

func TestCancelSurfacesHTTPFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gw := payment.HTTPGateway{BaseURL: srv.URL, HTTP: resilience.HTTPClient{Client: srv.Client()}}
	err := gw.Cancel(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
}
