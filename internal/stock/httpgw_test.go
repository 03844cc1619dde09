package stock_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/resilience"
	"github.com/noah-isme/checkout-api/internal/stock"
)

func TestCheckAvailabilityDecodesResponse(t *testing.T) {
	t.Parallel()

	missing := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/stock/availability", r.URL.Path)
		var body struct {
			ProductIDs []uuid.UUID `json:"productIds"`
			Quantities []int32     `json:"quantities"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.ProductIDs, 2)
		require.Equal(t, []int32{2, 1}, body.Quantities)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"available":      false,
			"unavailableIds": []uuid.UUID{missing},
		})
	}))
	defer srv.Close()

	gw := stock.HTTPGateway{
		BaseURL: srv.URL,
		HTTP:    resilience.HTTPClient{Client: srv.Client()},
	}
	result, err := gw.CheckAvailability(context.Background(),
		[]uuid.UUID{uuid.New(), missing}, []int32{2, 1})
	require.NoError(t, err)
	require.False(t, result.AllAvailable)
	require.Equal(t, []uuid.UUID{missing}, result.UnavailableIDs)
}

func TestCheckAvailabilityReadsSlowBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(50 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"available": true})
	}))
	defer srv.Close()

	gw := stock.HTTPGateway{
		BaseURL: srv.URL,
		HTTP:    resilience.HTTPClient{Client: srv.Client(), Timeout: 5 * time.Second},
	}
	result, err := gw.CheckAvailability(context.Background(), []uuid.UUID{uuid.New()}, []int32{1})
	require.NoError(t, err)
	require.True(t, result.AllAvailable)
}

func TestCommitRejectsMisalignedSequences(t *testing.T) {
	t.Parallel()

	gw := stock.HTTPGateway{BaseURL: "http://stock.invalid", HTTP: resilience.HTTPClient{Client: http.DefaultClient}}
	_, err := gw.Commit(context.Background(), []uuid.UUID{uuid.New()}, []int32{1, 2})
	require.Error(t, err)
}

func TestCommitRetriesServerErrors(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	gw := stock.HTTPGateway{
		BaseURL: srv.URL,
		HTTP: resilience.HTTPClient{
			Client:      srv.Client(),
			MaxAttempts: 2,
			BaseBackoff: 1,
		},
	}
	result, err := gw.Commit(context.Background(), []uuid.UUID{uuid.New()}, []int32{1})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, attempts)
}
