package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts finalized checkouts by outcome.
	CheckoutTotal *prometheus.CounterVec
	// CheckoutStageDuration records per-stage orchestration latency in milliseconds.
	CheckoutStageDuration *prometheus.HistogramVec
	// PaymentCancelTotal counts compensating payment cancellations by result.
	PaymentCancelTotal *prometheus.CounterVec
	// StockGatewayTotal counts stock gateway calls by operation and result.
	StockGatewayTotal *prometheus.CounterVec
	// PaymentGatewayTotal counts payment gateway calls by operation and result.
	PaymentGatewayTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of finalized checkouts by outcome.",
		}, []string{"result"})
		CheckoutStageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_stage_duration_ms",
			Help:      "Latency of individual checkout orchestration stages in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"stage"})
		PaymentCancelTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_cancel_total",
			Help:      "Count of compensating payment cancellations by result.",
		}, []string{"result"})
		StockGatewayTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_gateway_total",
			Help:      "Count of stock gateway calls by operation and result.",
		}, []string{"op", "result"})
		PaymentGatewayTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_gateway_total",
			Help:      "Count of payment gateway calls by operation and result.",
		}, []string{"op", "result"})

		CheckoutTotal = registerOrReuse(reg, CheckoutTotal)
		CheckoutStageDuration = registerOrReuse(reg, CheckoutStageDuration)
		PaymentCancelTotal = registerOrReuse(reg, PaymentCancelTotal)
		StockGatewayTotal = registerOrReuse(reg, StockGatewayTotal)
		PaymentGatewayTotal = registerOrReuse(reg, PaymentGatewayTotal)
	})
}
