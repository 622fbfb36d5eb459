package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Alturino/shop/internal/common/constants"
)

const (
	OutcomeSuccess   = "success"
	OutcomeEmptyCart = "empty_cart"
	OutcomeFailed    = "failed"
)

type CheckoutMetrics struct {
	checkouts metric.Int64Counter
	amount    metric.Float64Histogram
}

// NewCheckoutMetrics registers the checkout instruments on the global meter provider.
func NewCheckoutMetrics() CheckoutMetrics {
	meter := otel.Meter(constants.AppOrderService)
	noopMeter := noop.NewMeterProvider().Meter(constants.AppOrderService)

	checkouts, err := meter.Int64Counter(
		"shop.checkout.count",
		metric.WithDescription("Number of checkout attempts by outcome"),
	)
	if err != nil {
		checkouts, _ = noopMeter.Int64Counter("shop.checkout.count")
	}
	amount, err := meter.Float64Histogram(
		"shop.checkout.amount",
		metric.WithDescription("Total price of created orders"),
	)
	if err != nil {
		amount, _ = noopMeter.Float64Histogram("shop.checkout.amount")
	}
	return CheckoutMetrics{checkouts: checkouts, amount: amount}
}

func (m CheckoutMetrics) Record(c context.Context, outcome string, amount float64) {
	m.checkouts.Add(c, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome == OutcomeSuccess {
		m.amount.Record(c, amount)
	}
}
