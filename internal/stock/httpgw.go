package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/checkout-api/internal/obs"
	"github.com/noah-isme/checkout-api/internal/resilience"
)

// HTTPGateway talks to the remote inventory service over JSON/HTTP.
type HTTPGateway struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

type lineRequest struct {
	ProductIDs []uuid.UUID `json:"productIds"`
	Quantities []int32     `json:"quantities"`
}

type availabilityResponse struct {
	Available      bool        `json:"available"`
	UnavailableIDs []uuid.UUID `json:"unavailableIds"`
}

type commitResponse struct {
	Success bool `json:"success"`
}

// CheckAvailability implements Gateway.
func (g HTTPGateway) CheckAvailability(ctx context.Context, productIDs []uuid.UUID, quantities []int32) (Availability, error) {
	var out availabilityResponse
	if err := g.post(ctx, "/v1/stock/availability", productIDs, quantities, &out); err != nil {
		recordCall("check_availability", "error")
		return Availability{}, err
	}
	recordCall("check_availability", "ok")
	return Availability{AllAvailable: out.Available, UnavailableIDs: out.UnavailableIDs}, nil
}

// Commit implements Gateway.
func (g HTTPGateway) Commit(ctx context.Context, productIDs []uuid.UUID, quantities []int32) (CommitResult, error) {
	var out commitResponse
	if err := g.post(ctx, "/v1/stock/commit", productIDs, quantities, &out); err != nil {
		recordCall("commit", "error")
		return CommitResult{}, err
	}
	recordCall("commit", "ok")
	return CommitResult{Success: out.Success}, nil
}

func (g HTTPGateway) post(ctx context.Context, path string, productIDs []uuid.UUID, quantities []int32, dst any) error {
	if len(productIDs) != len(quantities) {
		return errors.New("stock: product ids and quantities must be aligned")
	}
	payload, err := json.Marshal(lineRequest{ProductIDs: productIDs, Quantities: quantities})
	if err != nil {
		return fmt.Errorf("stock: encode request: %w", err)
	}
	url := strings.TrimRight(g.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("stock: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("stock: call %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stock: %s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("stock: decode response: %w", err)
	}
	return nil
}

func recordCall(op, result string) {
	if obs.StockGatewayTotal != nil {
		obs.StockGatewayTotal.WithLabelValues(op, result).Inc()
	}
}
