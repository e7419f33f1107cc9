package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/repository"
	"github.com/mamadbah2/fleetbook/internal/repository/memory"
)

var reportNow = time.Date(2026, 6, 30, 18, 0, 0, 0, time.UTC)

func newTestService(store repository.Store) *Service {
	return NewService(store, 0, nil).WithClock(func() time.Time { return reportNow })
}

func insert(t *testing.T, store repository.Store, coll string, doc repository.Document) string {
	t.Helper()
	id, err := store.InsertOne(context.Background(), coll, doc)
	require.NoError(t, err)
	return id
}

func completedTrip(truckID string, start any, revenue, fuelCost, other, distance, fuel float64) repository.Document {
	return repository.Document{
		"truck_id":       truckID,
		"driver_id":      "d1",
		"status":         models.TripStatusCompleted,
		"start_date":     start,
		"revenue":        revenue,
		"fuel_cost":      fuelCost,
		"other_expenses": other,
		"distance_km":    distance,
		"fuel_consumed":  fuel,
	}
}

func TestReportEmptyWindow(t *testing.T) {
	report, err := newTestService(memory.NewStore()).Report(context.Background(), models.AnalyticsQuery{})
	require.NoError(t, err)

	assert.Equal(t, models.AnalyticsSummary{}, report.Summary)
	assert.Len(t, report.ProfitTrends, DefaultDays+1)
	assert.Len(t, report.FuelEfficiency, DefaultDays+1)
	assert.Empty(t, report.HighPerformingTrucks)
	assert.NotNil(t, report.FuelUsage)
	for _, p := range report.FuelEfficiency {
		assert.Zero(t, p.Efficiency)
	}
}

func TestReportSameDayBucket(t *testing.T) {
	store := memory.NewStore()
	truck := insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "TN-1", "status": "active"})
	day := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)

	insert(t, store, models.CollectionTrips, completedTrip(truck, day.Add(8*time.Hour), 1000, 200, 0, 300, 60))
	insert(t, store, models.CollectionTrips, completedTrip(truck, day.Add(17*time.Hour), 500, 100, 0, 200, 40))

	report, err := newTestService(store).Report(context.Background(), models.AnalyticsQuery{Days: 30})
	require.NoError(t, err)

	var bucket *models.ProfitPoint
	for i := range report.ProfitTrends {
		if report.ProfitTrends[i].Date == "2026-06-20" {
			bucket = &report.ProfitTrends[i]
		}
	}
	require.NotNil(t, bucket)
	assert.Equal(t, 1500.0, bucket.Revenue)
	assert.Equal(t, 300.0, bucket.Expenses)
	assert.Equal(t, 1200.0, bucket.Profit)

	for _, p := range report.FuelEfficiency {
		if p.Date == "2026-06-20" {
			assert.Equal(t, 5.0, p.Efficiency)
		}
	}

	assert.Equal(t, models.AnalyticsSummary{
		TotalTrips:        2,
		TotalDistance:     500,
		TotalRevenue:      1500,
		TotalFuelCost:     300,
		TotalFuelConsumed: 100,
		TotalProfit:       1200,
		AvgFuelEfficiency: 5,
	}, report.Summary)
}

func TestReportSeriesOrderAndBounds(t *testing.T) {
	report, err := newTestService(memory.NewStore()).Report(context.Background(), models.AnalyticsQuery{Days: 3})
	require.NoError(t, err)

	dates := make([]string, 0, len(report.ProfitTrends))
	for _, p := range report.ProfitTrends {
		dates = append(dates, p.Date)
	}
	assert.Equal(t, []string{"2026-06-27", "2026-06-28", "2026-06-29", "2026-06-30"}, dates)
}

func TestReportZeroFuel(t *testing.T) {
	store := memory.NewStore()
	insert(t, store, models.CollectionTrips, completedTrip("x", reportNow.Add(-time.Hour), 100, 0, 0, 50, 0))

	report, err := newTestService(store).Report(context.Background(), models.AnalyticsQuery{Days: 7})
	require.NoError(t, err)

	assert.Zero(t, report.Summary.AvgFuelEfficiency)
	last := report.FuelEfficiency[len(report.FuelEfficiency)-1]
	assert.Equal(t, "2026-06-30", last.Date)
	assert.Zero(t, last.Efficiency)
}

func TestReportOnlyCompletedTripsInWindow(t *testing.T) {
	store := memory.NewStore()
	recent := reportNow.AddDate(0, 0, -2)

	insert(t, store, models.CollectionTrips, completedTrip("a", recent, 100, 10, 5, 0, 0))
	planned := completedTrip("a", recent, 900, 0, 0, 0, 0)
	planned["status"] = models.TripStatusPlanned
	insert(t, store, models.CollectionTrips, planned)
	insert(t, store, models.CollectionTrips, completedTrip("a", reportNow.AddDate(0, 0, -40), 900, 0, 0, 0, 0))
	insert(t, store, models.CollectionTrips, completedTrip("a", "garbage", 900, 0, 0, 0, 0))

	report, err := newTestService(store).Report(context.Background(), models.AnalyticsQuery{Days: 30})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.TotalTrips)
	assert.Equal(t, 100.0, report.Summary.TotalRevenue)
	assert.Equal(t, 85.0, report.Summary.TotalProfit)
}

func TestReportTolerantNumbers(t *testing.T) {
	store := memory.NewStore()
	insert(t, store, models.CollectionTrips, repository.Document{
		"status":         models.TripStatusCompleted,
		"start_date":     reportNow.Add(-time.Hour),
		"revenue":        "750",
		"fuel_cost":      "",
		"other_expenses": "n/a",
	})

	report, err := newTestService(store).Report(context.Background(), models.AnalyticsQuery{Days: 1})
	require.NoError(t, err)
	assert.Equal(t, 750.0, report.Summary.TotalRevenue)
	assert.Equal(t, 750.0, report.Summary.TotalProfit)
}

func TestReportFilters(t *testing.T) {
	store := memory.NewStore()
	north := insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "N-1", "status": "active", "region": "north"})
	south := insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "S-1", "status": "active", "region": "south"})
	when := reportNow.AddDate(0, 0, -1)

	insert(t, store, models.CollectionTrips, completedTrip(north, when, 100, 0, 0, 0, 0))
	southTrip := completedTrip(south, when, 40, 0, 0, 0, 0)
	southTrip["driver_id"] = "d2"
	insert(t, store, models.CollectionTrips, southTrip)

	svc := newTestService(store)
	ctx := context.Background()

	byTruck, err := svc.Report(ctx, models.AnalyticsQuery{TruckID: north})
	require.NoError(t, err)
	assert.Equal(t, 100.0, byTruck.Summary.TotalRevenue)

	byDriver, err := svc.Report(ctx, models.AnalyticsQuery{DriverID: "d2"})
	require.NoError(t, err)
	assert.Equal(t, 40.0, byDriver.Summary.TotalRevenue)

	byRegion, err := svc.Report(ctx, models.AnalyticsQuery{Region: "south"})
	require.NoError(t, err)
	assert.Equal(t, 40.0, byRegion.Summary.TotalRevenue)
	require.Len(t, byRegion.HighPerformingTrucks, 1)
	assert.Equal(t, "S-1", byRegion.HighPerformingTrucks[0].TruckNumber)
}

func TestReportTopTrucks(t *testing.T) {
	store := memory.NewStore()
	when := reportNow.AddDate(0, 0, -1)

	for i := 1; i <= 7; i++ {
		truck := insert(t, store, models.CollectionTrucks, repository.Document{
			"truck_number": fmt.Sprintf("T-%d", i),
			"status":       "active",
		})
		insert(t, store, models.CollectionTrips, completedTrip(truck, when, float64(i*100), 10, 0, 0, 0))
		insert(t, store, models.CollectionTrips, completedTrip(truck, when, float64(i*100), 10, 0, 0, 0))
	}
	retired := insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "OLD", "status": "Inactive"})
	insert(t, store, models.CollectionTrips, completedTrip(retired, when, 99999, 0, 0, 0, 0))
	insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "IDLE", "status": "active"})

	report, err := newTestService(store).Report(context.Background(), models.AnalyticsQuery{})
	require.NoError(t, err)

	require.Len(t, report.HighPerformingTrucks, TopTrucks)
	top := report.HighPerformingTrucks[0]
	assert.Equal(t, "T-7", top.TruckNumber)
	assert.Equal(t, 2, top.Trips)
	assert.Equal(t, 1400.0, top.Revenue)
	assert.Equal(t, 1380.0, top.Profit)
	assert.Equal(t, 690.0, top.AvgProfitPerTrip)
	assert.Equal(t, "T-3", report.HighPerformingTrucks[4].TruckNumber)

	assert.Len(t, report.FuelUsage, 8)
	for _, u := range report.FuelUsage {
		assert.NotEqual(t, "OLD", u.TruckNumber)
	}
}

func TestFilters(t *testing.T) {
	store := memory.NewStore()
	insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "TN-1", "status": "active", "region": "north"})
	insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "TN-2", "status": "Inactive", "region": "east"})
	insert(t, store, models.CollectionTrucks, repository.Document{"truck_number": "TN-3", "status": "active", "region": ""})
	insert(t, store, models.CollectionEmployees, repository.Document{"first_name": "Ada", "last_name": "Obi", "position": "driver", "status": "active"})
	insert(t, store, models.CollectionEmployees, repository.Document{"first_name": "Bo", "position": "mechanic", "status": "active"})

	f, err := newTestService(store).Filters(context.Background())
	require.NoError(t, err)

	require.Len(t, f.Trucks, 2)
	assert.Equal(t, "TN-1", f.Trucks[0].Label)
	require.Len(t, f.Drivers, 1)
	assert.Equal(t, "Ada Obi", f.Drivers[0].Label)
	assert.Equal(t, []models.FilterOption{{ID: "north", Label: "north"}, {ID: "east", Label: "east"}}, f.Regions)
}
