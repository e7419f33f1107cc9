// Package analytics computes the dashboard summaries and daily series over
// completed trips.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/parse"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	day        = 24 * time.Hour

	// DefaultDays is the window used when a query does not name one.
	DefaultDays = 30
	// TopTrucks is how many trucks the ranking returns.
	TopTrucks = 5
)

// Service exposes the dashboard analytics.
type Service struct {
	store       repository.Store
	logger      *zap.Logger
	defaultDays int
	now         func() time.Time
}

// NewService wires a new analytics service instance.
func NewService(store repository.Store, defaultDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDays <= 0 {
		defaultDays = DefaultDays
	}
	return &Service{store: store, logger: logger, defaultDays: defaultDays, now: time.Now}
}

// WithClock overrides the reporting clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// trip is the slice of a trip document analytics reads.
type trip struct {
	truckID string
	start   time.Time
	tally   tally
}

// tally accumulates trip figures in decimal arithmetic.
type tally struct {
	trips         int
	distance      decimal.Decimal
	revenue       decimal.Decimal
	fuelCost      decimal.Decimal
	fuelConsumed  decimal.Decimal
	otherExpenses decimal.Decimal
}

func tallyOf(doc repository.Document) tally {
	num := func(field string) decimal.Decimal {
		return decimal.NewFromFloat(parse.Float(doc[field]).OrZero())
	}
	return tally{
		trips:         1,
		distance:      num(models.FieldDistanceKm),
		revenue:       num(models.FieldRevenue),
		fuelCost:      num(models.FieldFuelCost),
		fuelConsumed:  num(models.FieldFuelConsumed),
		otherExpenses: num(models.FieldOtherExpenses),
	}
}

func (t *tally) add(o tally) {
	t.trips += o.trips
	t.distance = t.distance.Add(o.distance)
	t.revenue = t.revenue.Add(o.revenue)
	t.fuelCost = t.fuelCost.Add(o.fuelCost)
	t.fuelConsumed = t.fuelConsumed.Add(o.fuelConsumed)
	t.otherExpenses = t.otherExpenses.Add(o.otherExpenses)
}

func (t tally) expenses() decimal.Decimal { return t.fuelCost.Add(t.otherExpenses) }

func (t tally) profit() decimal.Decimal { return t.revenue.Sub(t.expenses()) }

// efficiency is distance per unit of fuel, 0 when no fuel was consumed.
func (t tally) efficiency() float64 {
	if !t.fuelConsumed.IsPositive() {
		return 0
	}
	return t.distance.InexactFloat64() / t.fuelConsumed.InexactFloat64()
}

// Report computes the analytics payload for the query window ending now.
func (s *Service) Report(ctx context.Context, q models.AnalyticsQuery) (models.AnalyticsReport, error) {
	days := q.Days
	if days <= 0 {
		days = s.defaultDays
	}

	end := s.now().UTC()
	start := end.Add(-time.Duration(days) * day)

	trips, err := s.completedTrips(ctx, q, start, end)
	if err != nil {
		return models.AnalyticsReport{}, err
	}

	trucks, err := s.activeTrucks(ctx, q.Region)
	if err != nil {
		return models.AnalyticsReport{}, err
	}

	var total tally
	for _, t := range trips {
		total.add(t.tally)
	}

	report := models.AnalyticsReport{
		Summary: models.AnalyticsSummary{
			TotalTrips:         total.trips,
			TotalDistance:      total.distance.InexactFloat64(),
			TotalRevenue:       total.revenue.InexactFloat64(),
			TotalFuelCost:      total.fuelCost.InexactFloat64(),
			TotalFuelConsumed:  total.fuelConsumed.InexactFloat64(),
			TotalOtherExpenses: total.otherExpenses.InexactFloat64(),
			TotalProfit:        total.profit().InexactFloat64(),
			AvgFuelEfficiency:  math.Round(total.efficiency()*100) / 100,
		},
	}
	report.ProfitTrends, report.FuelEfficiency = dailySeries(trips, start, end)
	report.FuelUsage, report.HighPerformingTrucks = truckBreakdown(trips, trucks)

	s.logger.Debug("analytics computed",
		zap.Int("days", days),
		zap.Int("completed_trips", total.trips),
		zap.String("truck_id", q.TruckID),
		zap.String("driver_id", q.DriverID),
		zap.String("region", q.Region))

	return report, nil
}

// completedTrips loads the completed trips that started inside the window.
// Trips whose start date cannot be read are left out of every figure since
// they cannot be placed in the window.
func (s *Service) completedTrips(ctx context.Context, q models.AnalyticsQuery, start, end time.Time) ([]trip, error) {
	filter := repository.Filter{
		models.FieldStartDate: repository.Between(start, end),
	}
	if q.TruckID != "" {
		filter[models.FieldTruckID] = repository.Eq(q.TruckID)
	}
	if q.DriverID != "" {
		filter[models.FieldDriverID] = repository.Eq(q.DriverID)
	}

	docs, err := s.store.FindAll(ctx, models.CollectionTrips, filter)
	if err != nil {
		return nil, fmt.Errorf("load trips: %w", err)
	}

	var inRegion map[string]bool
	if q.Region != "" {
		regionTrucks, err := s.store.FindAll(ctx, models.CollectionTrucks, repository.Filter{
			models.FieldRegion: repository.Eq(q.Region),
		})
		if err != nil {
			return nil, fmt.Errorf("load trucks in region %s: %w", q.Region, err)
		}
		inRegion = make(map[string]bool, len(regionTrucks))
		for _, t := range regionTrucks {
			inRegion[t.ID()] = true
		}
	}

	trips := make([]trip, 0, len(docs))
	for _, doc := range docs {
		if doc.String(models.FieldStatus) != models.TripStatusCompleted {
			continue
		}

		started := parse.Date(doc[models.FieldStartDate])
		if !started.OK {
			s.logger.Debug("skip trip with invalid start date", zap.String("trip_id", doc.ID()), zap.Any("value", doc[models.FieldStartDate]))
			continue
		}

		truckID := doc.String(models.FieldTruckID)
		if inRegion != nil && !inRegion[truckID] {
			continue
		}

		trips = append(trips, trip{truckID: truckID, start: started.Value.UTC(), tally: tallyOf(doc)})
	}
	return trips, nil
}

func (s *Service) activeTrucks(ctx context.Context, region string) ([]repository.Document, error) {
	filter := repository.Filter{models.FieldStatus: repository.Eq(models.TruckStatusActive)}
	if region != "" {
		filter[models.FieldRegion] = repository.Eq(region)
	}
	trucks, err := s.store.FindAll(ctx, models.CollectionTrucks, filter)
	if err != nil {
		return nil, fmt.Errorf("load active trucks: %w", err)
	}
	return trucks, nil
}

// dailySeries buckets trips by the UTC calendar day they started on, one
// bucket per day the window touches, oldest first.
func dailySeries(trips []trip, start, end time.Time) ([]models.ProfitPoint, []models.EfficiencyPoint) {
	byDay := make(map[string]*tally)
	for _, t := range trips {
		key := t.start.Format(dateLayout)
		acc, ok := byDay[key]
		if !ok {
			acc = &tally{}
			byDay[key] = acc
		}
		acc.add(t.tally)
	}

	first := start.Truncate(day)
	last := end.Truncate(day)

	profits := make([]models.ProfitPoint, 0)
	efficiency := make([]models.EfficiencyPoint, 0)
	for d := first; !d.After(last); d = d.Add(day) {
		key := d.Format(dateLayout)
		var acc tally
		if found, ok := byDay[key]; ok {
			acc = *found
		}
		profits = append(profits, models.ProfitPoint{
			Date:     key,
			Profit:   acc.profit().InexactFloat64(),
			Revenue:  acc.revenue.InexactFloat64(),
			Expenses: acc.expenses().InexactFloat64(),
		})
		efficiency = append(efficiency, models.EfficiencyPoint{
			Date:       key,
			Efficiency: acc.efficiency(),
		})
	}
	return profits, efficiency
}

// truckBreakdown returns fuel usage for every truck and the TopTrucks trucks
// ranked by profit.
func truckBreakdown(trips []trip, trucks []repository.Document) ([]models.TruckFuelUsage, []models.TruckStats) {
	byTruck := make(map[string]*tally)
	for _, t := range trips {
		acc, ok := byTruck[t.truckID]
		if !ok {
			acc = &tally{}
			byTruck[t.truckID] = acc
		}
		acc.add(t.tally)
	}

	usage := make([]models.TruckFuelUsage, 0, len(trucks))
	stats := make([]models.TruckStats, 0, len(trucks))
	for _, truck := range trucks {
		number := truck.String(models.FieldTruckNumber)
		if number == "" {
			number = "Unknown"
		}

		var acc tally
		if found, ok := byTruck[truck.ID()]; ok {
			acc = *found
		}

		usage = append(usage, models.TruckFuelUsage{
			TruckNumber:  number,
			FuelConsumed: acc.fuelConsumed.InexactFloat64(),
		})

		profit := acc.profit()
		avg := 0.0
		if acc.trips > 0 {
			avg = profit.Div(decimal.NewFromInt(int64(acc.trips))).InexactFloat64()
		}
		stats = append(stats, models.TruckStats{
			TruckNumber:      number,
			Trips:            acc.trips,
			Revenue:          acc.revenue.InexactFloat64(),
			Profit:           profit.InexactFloat64(),
			Distance:         acc.distance.InexactFloat64(),
			AvgProfitPerTrip: avg,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Profit > stats[j].Profit })
	if len(stats) > TopTrucks {
		stats = stats[:TopTrucks]
	}
	return usage, stats
}
