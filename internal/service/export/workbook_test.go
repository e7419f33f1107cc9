package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
)

func TestWorkbook(t *testing.T) {
	report := models.AnalyticsReport{
		Summary: models.AnalyticsSummary{TotalTrips: 2, TotalRevenue: 1500, TotalProfit: 1200},
		ProfitTrends: []models.ProfitPoint{
			{Date: "2026-06-29", Revenue: 0},
			{Date: "2026-06-30", Revenue: 1500, Expenses: 300, Profit: 1200},
		},
		FuelEfficiency:       []models.EfficiencyPoint{{Date: "2026-06-30", Efficiency: 5}},
		FuelUsage:            []models.TruckFuelUsage{{TruckNumber: "TN-1", FuelConsumed: 100}},
		HighPerformingTrucks: []models.TruckStats{{TruckNumber: "TN-1", Trips: 2, Profit: 1200}},
	}

	data, err := Workbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetProfit, SheetEfficiency, SheetFuelUsage, SheetTopTrucks}, f.GetSheetList())

	trips, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", trips)

	rows, err := f.GetRows(SheetProfit)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2026-06-30", "1500", "300", "1200"}, rows[2])

	top, err := f.GetCellValue(SheetTopTrucks, "A2")
	require.NoError(t, err)
	assert.Equal(t, "TN-1", top)
}
