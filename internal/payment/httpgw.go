package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/checkout-api/internal/obs"
	"github.com/noah-isme/checkout-api/internal/resilience"
)

// HTTPGateway talks to the remote payment provider over JSON/HTTP.
type HTTPGateway struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

type authorizeRequest struct {
	ClientID uuid.UUID       `json:"clientId"`
	Amount   decimal.Decimal `json:"amount"`
}

type authorizeResponse struct {
	Authorized    bool      `json:"authorized"`
	TransactionID uuid.UUID `json:"transactionId"`
}

type cancelRequest struct {
	ClientID      uuid.UUID `json:"clientId"`
	TransactionID uuid.UUID `json:"transactionId"`
}

// Authorize implements Gateway.
func (g HTTPGateway) Authorize(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (Authorization, error) {
	var out authorizeResponse
	err := g.post(ctx, "/v1/payments/authorize", authorizeRequest{ClientID: clientID, Amount: amount}, &out)
	if err != nil {
		recordCall("authorize", "error")
		return Authorization{}, err
	}
	recordCall("authorize", "ok")
	return Authorization{Authorized: out.Authorized, TransactionID: out.TransactionID}, nil
}

// Cancel implements Gateway.
func (g HTTPGateway) Cancel(ctx context.Context, clientID, transactionID uuid.UUID) error {
	err := g.post(ctx, "/v1/payments/cancel", cancelRequest{ClientID: clientID, TransactionID: transactionID}, nil)
	if err != nil {
		recordCall("cancel", "error")
		return err
	}
	recordCall("cancel", "ok")
	return nil
}

func (g HTTPGateway) post(ctx context.Context, path string, payload, dst any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("payment: encode request: %w", err)
	}
	url := strings.TrimRight(g.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("payment: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("payment: call %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment: %s returned %s", path, resp.Status)
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("payment: decode response: %w", err)
	}
	return nil
}

func recordCall(op, result string) {
	if obs.PaymentGatewayTotal != nil {
		obs.PaymentGatewayTotal.WithLabelValues(op, result).Inc()
	}
}
