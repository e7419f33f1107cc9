// Package revenue keeps a trip's revenue equal to the sum of its sub-trip
// costs.
package revenue

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/parse"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

// Reconciler recomputes trip revenue after sub-trip writes.
type Reconciler struct {
	store  repository.Store
	logger *zap.Logger
}

// NewReconciler wires a reconciler over the given store.
func NewReconciler(store repository.Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, logger: logger}
}

// Reconcile overwrites the trip's revenue with the sum of its sub-trip costs
// and returns the new value. Costs that do not parse count as zero. The trip
// is written with a single update, so on error the previous revenue stays.
func (r *Reconciler) Reconcile(ctx context.Context, tripID string) (float64, error) {
	subtrips, err := r.store.FindAll(ctx, models.CollectionSubTrips, repository.Filter{
		models.FieldTripID: repository.Eq(tripID),
	})
	if err != nil {
		return 0, fmt.Errorf("load sub-trips of trip %s: %w", tripID, err)
	}

	total := SumCosts(subtrips)

	if err := r.store.UpdateOne(ctx, models.CollectionTrips, tripID, repository.Document{
		models.FieldRevenue: total,
	}); err != nil {
		return 0, fmt.Errorf("update revenue of trip %s: %w", tripID, err)
	}

	r.logger.Debug("trip revenue reconciled",
		zap.String("trip_id", tripID),
		zap.Int("subtrips", len(subtrips)),
		zap.Float64("revenue", total))

	return total, nil
}

// SumCosts adds the cost field of every sub-trip in decimal arithmetic.
func SumCosts(subtrips []repository.Document) float64 {
	total := decimal.Zero
	for _, sub := range subtrips {
		total = total.Add(decimal.NewFromFloat(parse.Float(sub[models.FieldCost]).OrZero()))
	}
	return total.InexactFloat64()
}
