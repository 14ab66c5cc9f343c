package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records the domain counters. One value serves the cart, checkout
// and catalog services.
type Metrics struct {
	cartMutations     metric.Int64Counter
	checkouts         metric.Int64Counter
	checkoutValue     metric.Float64Counter
	snapshotsApplied  metric.Int64Counter
	snapshotsRejected metric.Int64Counter
	catalogFoods      metric.Int64Gauge
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var errs [6]error

	m.cartMutations, errs[0] = meter.Int64Counter("foodstore.cart.mutations",
		metric.WithDescription("Cart mutations by operation."))
	m.checkouts, errs[1] = meter.Int64Counter("foodstore.checkout.completed",
		metric.WithDescription("Completed checkouts."))
	m.checkoutValue, errs[2] = meter.Float64Counter("foodstore.checkout.total_pay",
		metric.WithDescription("Sum of totalPay over completed checkouts."))
	m.snapshotsApplied, errs[3] = meter.Int64Counter("foodstore.catalog.snapshots_applied",
		metric.WithDescription("Catalog snapshots made active."))
	m.snapshotsRejected, errs[4] = meter.Int64Counter("foodstore.catalog.snapshots_rejected",
		metric.WithDescription("Catalog snapshots that failed validation."))
	m.catalogFoods, errs[5] = meter.Int64Gauge("foodstore.catalog.foods",
		metric.WithDescription("Foods in the active catalog snapshot."))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metrics) CartMutated(ctx context.Context, op string) {
	m.cartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *Metrics) CheckoutCompleted(ctx context.Context, totalPay decimal.Decimal) {
	m.checkouts.Add(ctx, 1)
	m.checkoutValue.Add(ctx, totalPay.InexactFloat64())
}

func (m *Metrics) SnapshotApplied(ctx context.Context, foods int) {
	m.snapshotsApplied.Add(ctx, 1)
	m.catalogFoods.Record(ctx, int64(foods))
}

func (m *Metrics) SnapshotRejected(ctx context.Context) {
	m.snapshotsRejected.Add(ctx, 1)
}
