package records

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/parse"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

// Reconciler recomputes a trip's revenue from its sub-trips.
type Reconciler interface {
	Reconcile(ctx context.Context, tripID string) (float64, error)
}

// Fleet adds the trip, sub-trip and truck operations that go beyond plain
// record handling.
type Fleet struct {
	*Service
	reconciler Reconciler
}

// NewFleet wires the fleet operations.
func NewFleet(records *Service, reconciler Reconciler) *Fleet {
	return &Fleet{Service: records, reconciler: reconciler}
}

// ListTrips lists trips with truck_number and driver_name filled in.
func (f *Fleet) ListTrips(ctx context.Context, params map[string]string) ([]repository.Document, error) {
	trips, err := f.List(ctx, Trips, params)
	if err != nil {
		return nil, err
	}
	return trips, f.populate(ctx, trips)
}

// GetTrip returns the trip with its sub-trips under "subtrips".
func (f *Fleet) GetTrip(ctx context.Context, id string) (repository.Document, error) {
	trip, err := f.Get(ctx, Trips, id)
	if err != nil {
		return nil, err
	}
	if err := f.populate(ctx, []repository.Document{trip}); err != nil {
		return nil, err
	}
	subtrips, err := f.subTripsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	trip["subtrips"] = subtrips
	return trip, nil
}

// populate resolves the truck number and driver name of each trip. Lookups
// are cached per call; unknown references leave the fields empty.
func (f *Fleet) populate(ctx context.Context, trips []repository.Document) error {
	trucks := map[string]string{}
	drivers := map[string]string{}

	lookup := func(cache map[string]string, collection, id string, label func(repository.Document) string) (string, error) {
		if id == "" {
			return "", nil
		}
		if v, ok := cache[id]; ok {
			return v, nil
		}
		doc, err := f.store.FindByID(ctx, collection, id)
		switch {
		case repository.IsNotFound(err):
			cache[id] = ""
		case err != nil:
			return "", fmt.Errorf("resolve %s %s: %w", collection, id, err)
		default:
			cache[id] = label(doc)
		}
		return cache[id], nil
	}

	for _, trip := range trips {
		number, err := lookup(trucks, models.CollectionTrucks, trip.String(models.FieldTruckID), func(d repository.Document) string {
			return d.String(models.FieldTruckNumber)
		})
		if err != nil {
			return err
		}
		name, err := lookup(drivers, models.CollectionEmployees, trip.String(models.FieldDriverID), repository.DisplayName)
		if err != nil {
			return err
		}
		trip[models.FieldTruckNumber] = number
		trip["driver_name"] = name
	}
	return nil
}

// RecordView increments the truck's view counter and returns the new count.
func (f *Fleet) RecordView(ctx context.Context, truckID string) (int64, error) {
	truck, err := f.Get(ctx, Trucks, truckID)
	if err != nil {
		return 0, err
	}
	views := int64(parse.Float(truck[models.FieldViews]).OrZero()) + 1
	if err := f.store.UpdateOne(ctx, models.CollectionTrucks, truckID, repository.Document{models.FieldViews: views}); err != nil {
		return 0, fmt.Errorf("record view of truck %s: %w", truckID, err)
	}
	return views, nil
}

// ListSubTrips returns the sub-trips of an existing trip.
func (f *Fleet) ListSubTrips(ctx context.Context, tripID string) ([]repository.Document, error) {
	if _, err := f.Get(ctx, Trips, tripID); err != nil {
		return nil, err
	}
	return f.subTripsOf(ctx, tripID)
}

func (f *Fleet) subTripsOf(ctx context.Context, tripID string) ([]repository.Document, error) {
	subtrips, err := f.store.FindAll(ctx, models.CollectionSubTrips, repository.Filter{
		models.FieldTripID: repository.Eq(tripID),
	})
	if err != nil {
		return nil, fmt.Errorf("load sub-trips of trip %s: %w", tripID, err)
	}
	return subtrips, nil
}

// CreateSubTrip adds a sub-trip under the trip and reconciles its revenue.
func (f *Fleet) CreateSubTrip(ctx context.Context, tripID string, body map[string]any) (repository.Document, error) {
	if _, err := f.Get(ctx, Trips, tripID); err != nil {
		return nil, err
	}
	sub, err := f.Create(ctx, SubTrips, body, repository.Document{models.FieldTripID: tripID})
	if err != nil {
		return nil, err
	}
	if err := f.reconcile(ctx, tripID); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubTrip edits a sub-trip owned by the trip and reconciles its
// revenue.
func (f *Fleet) UpdateSubTrip(ctx context.Context, tripID, subTripID string, body map[string]any) (repository.Document, error) {
	current, err := f.ownedSubTrip(ctx, tripID, subTripID)
	if err != nil {
		return nil, err
	}
	sub, err := f.update(ctx, SubTrips, current, body)
	if err != nil {
		return nil, err
	}
	if err := f.reconcile(ctx, tripID); err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubTrip removes a sub-trip owned by the trip and reconciles its
// revenue.
func (f *Fleet) DeleteSubTrip(ctx context.Context, tripID, subTripID string) error {
	if _, err := f.ownedSubTrip(ctx, tripID, subTripID); err != nil {
		return err
	}
	if err := f.store.DeleteOne(ctx, models.CollectionSubTrips, subTripID); err != nil {
		if repository.IsNotFound(err) {
			return notFound(SubTrips.Name)
		}
		return fmt.Errorf("delete sub-trip %s: %w", subTripID, err)
	}
	f.logger.Info("sub-trip deleted", zap.String("trip_id", tripID), zap.String("subtrip_id", subTripID))
	return f.reconcile(ctx, tripID)
}

// ownedSubTrip loads a sub-trip and checks it belongs to the trip. A sub-trip
// of another trip is reported as missing.
func (f *Fleet) ownedSubTrip(ctx context.Context, tripID, subTripID string) (repository.Document, error) {
	sub, err := f.Get(ctx, SubTrips, subTripID)
	if err != nil {
		return nil, err
	}
	if sub.String(models.FieldTripID) != tripID {
		return nil, notFound(SubTrips.Name)
	}
	return sub, nil
}

func (f *Fleet) reconcile(ctx context.Context, tripID string) error {
	if _, err := f.reconciler.Reconcile(ctx, tripID); err != nil {
		if repository.IsNotFound(err) {
			return notFound(Trips.Name)
		}
		return fmt.Errorf("reconcile trip %s: %w", tripID, err)
	}
	return nil
}

// SubTripsByClient returns every sub-trip billed to the client.
func (f *Fleet) SubTripsByClient(ctx context.Context, clientName string) ([]repository.Document, error) {
	if clientName == "" {
		return nil, invalidf("Missing required parameter: %s", models.FieldClientName)
	}
	subtrips, err := f.store.FindAll(ctx, models.CollectionSubTrips, repository.Filter{
		models.FieldClientName: repository.Eq(clientName),
	})
	if err != nil {
		return nil, fmt.Errorf("load sub-trips of client %s: %w", clientName, err)
	}
	return subtrips, nil
}

// ClientNames lists the distinct client names across sub-trips, sorted.
func (f *Fleet) ClientNames(ctx context.Context) ([]string, error) {
	values, err := f.store.Distinct(ctx, models.CollectionSubTrips, models.FieldClientName, repository.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load client names: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return names, nil
}
