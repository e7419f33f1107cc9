package revenue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/parse"
	"github.com/mamadbah2/fleetbook/internal/repository"
	"github.com/mamadbah2/fleetbook/internal/repository/memory"
)

type failingUpdates struct {
	repository.Store
}

func (failingUpdates) UpdateOne(context.Context, string, string, repository.Document) error {
	return errors.New("store unavailable")
}

func seedTrip(t *testing.T, store repository.Store, revenue float64) string {
	t.Helper()
	id, err := store.InsertOne(context.Background(), models.CollectionTrips, repository.Document{
		"trip_number": "T-1",
		"revenue":     revenue,
	})
	require.NoError(t, err)
	return id
}

func addSubTrip(t *testing.T, store repository.Store, tripID string, cost any) string {
	t.Helper()
	id, err := store.InsertOne(context.Background(), models.CollectionSubTrips, repository.Document{
		"trip_id": tripID,
		"cost":    cost,
	})
	require.NoError(t, err)
	return id
}

func tripRevenue(t *testing.T, store repository.Store, tripID string) float64 {
	t.Helper()
	doc, err := store.FindByID(context.Background(), models.CollectionTrips, tripID)
	require.NoError(t, err)
	return parse.Float(doc["revenue"]).OrZero()
}

func TestReconcileFollowsSubTripMutations(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := NewReconciler(store, nil)

	tripID := seedTrip(t, store, 0)
	addSubTrip(t, store, tripID, 100.0)
	expensive := addSubTrip(t, store, tripID, 250.0)
	_, err := r.Reconcile(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, 350.0, tripRevenue(t, store, tripID))

	addSubTrip(t, store, tripID, 50.0)
	_, err = r.Reconcile(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, tripRevenue(t, store, tripID))

	require.NoError(t, store.DeleteOne(ctx, models.CollectionSubTrips, expensive))
	total, err := r.Reconcile(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, total)
	assert.Equal(t, 150.0, tripRevenue(t, store, tripID))
}

func TestReconcileIgnoresOtherTrips(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := NewReconciler(store, nil)

	a := seedTrip(t, store, 0)
	b := seedTrip(t, store, 0)
	addSubTrip(t, store, a, 10.0)
	addSubTrip(t, store, b, 99.0)

	_, err := r.Reconcile(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 10.0, tripRevenue(t, store, a))
}

func TestReconcileWithoutSubTripsIsZero(t *testing.T) {
	store := memory.NewStore()
	tripID := seedTrip(t, store, 500)

	total, err := NewReconciler(store, nil).Reconcile(context.Background(), tripID)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, tripRevenue(t, store, tripID))
}

func TestReconcileTreatsBadCostAsZero(t *testing.T) {
	store := memory.NewStore()
	tripID := seedTrip(t, store, 0)
	addSubTrip(t, store, tripID, "abc")
	addSubTrip(t, store, tripID, "120.5")
	addSubTrip(t, store, tripID, nil)
	addSubTrip(t, store, tripID, int64(30))

	total, err := NewReconciler(store, nil).Reconcile(context.Background(), tripID)
	require.NoError(t, err)
	assert.Equal(t, 150.5, total)
}

func TestReconcileFailureKeepsPreviousRevenue(t *testing.T) {
	base := memory.NewStore()
	tripID := seedTrip(t, base, 777)
	addSubTrip(t, base, tripID, 1.0)

	_, err := NewReconciler(failingUpdates{base}, nil).Reconcile(context.Background(), tripID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Equal(t, 777.0, tripRevenue(t, base, tripID))
}

func TestReconcileMissingTrip(t *testing.T) {
	_, err := NewReconciler(memory.NewStore(), nil).Reconcile(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSumCostsAvoidsFloatDrift(t *testing.T) {
	got := SumCosts([]repository.Document{{"cost": 0.1}, {"cost": 0.2}})
	assert.Equal(t, 0.3, got)
}
