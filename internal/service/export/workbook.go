// Package export renders analytics reports as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
)

// Sheet names in workbook order.
const (
	SheetSummary    = "Summary"
	SheetProfit     = "Profit Trends"
	SheetEfficiency = "Fuel Efficiency"
	SheetFuelUsage  = "Fuel Usage"
	SheetTopTrucks  = "Top Trucks"

	// ContentType is the MIME type of the rendered workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Workbook renders the report, one sheet per section.
func Workbook(report models.AnalyticsReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}

	s := report.Summary
	summary := [][]any{
		{"Metric", "Value"},
		{"Total trips", s.TotalTrips},
		{"Total distance", s.TotalDistance},
		{"Total revenue", s.TotalRevenue},
		{"Total fuel cost", s.TotalFuelCost},
		{"Total fuel consumed", s.TotalFuelConsumed},
		{"Total other expenses", s.TotalOtherExpenses},
		{"Total profit", s.TotalProfit},
		{"Average fuel efficiency", s.AvgFuelEfficiency},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}

	profit := [][]any{{"Date", "Revenue", "Expenses", "Profit"}}
	for _, p := range report.ProfitTrends {
		profit = append(profit, []any{p.Date, p.Revenue, p.Expenses, p.Profit})
	}

	efficiency := [][]any{{"Date", "Efficiency"}}
	for _, p := range report.FuelEfficiency {
		efficiency = append(efficiency, []any{p.Date, p.Efficiency})
	}

	usage := [][]any{{"Truck", "Fuel consumed"}}
	for _, u := range report.FuelUsage {
		usage = append(usage, []any{u.TruckNumber, u.FuelConsumed})
	}

	top := [][]any{{"Truck", "Trips", "Revenue", "Profit", "Distance", "Avg profit per trip"}}
	for _, t := range report.HighPerformingTrucks {
		top = append(top, []any{t.TruckNumber, t.Trips, t.Revenue, t.Profit, t.Distance, t.AvgProfitPerTrip})
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{SheetProfit, profit},
		{SheetEfficiency, efficiency},
		{SheetFuelUsage, usage},
		{SheetTopTrucks, top},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet.name, err)
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
