// Package sheets appends analytics snapshots to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/fleetbook/internal/config"
	"github.com/mamadbah2/fleetbook/internal/domain/models"
)

const (
	// SnapshotRange is where daily analytics rows are appended.
	SnapshotRange = "Analytics!A:J"
	// SnapshotDates is the column holding each row's snapshot date.
	SnapshotDates = "Analytics!A:A"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// SnapshotRow lays out one analytics summary as a sheet row keyed by date.
func SnapshotRow(date string, days int, s models.AnalyticsSummary) []interface{} {
	return []interface{}{
		date,
		days,
		s.TotalTrips,
		s.TotalDistance,
		s.TotalRevenue,
		s.TotalFuelCost,
		s.TotalOtherExpenses,
		s.TotalProfit,
		s.TotalFuelConsumed,
		s.AvgFuelEfficiency,
	}
}

// AppendSnapshot writes the row for date unless one is already present.
// It reports whether a row was written.
func AppendSnapshot(ctx context.Context, repo Repository, date string, days int, s models.AnalyticsSummary) (bool, error) {
	existing, err := repo.ReadRange(ctx, SnapshotDates)
	if err != nil {
		return false, err
	}
	for _, row := range existing {
		if len(row) > 0 && fmt.Sprint(row[0]) == date {
			return false, nil
		}
	}
	if err := repo.WriteRow(ctx, SnapshotRange, SnapshotRow(date, days, s)); err != nil {
		return false, err
	}
	return true, nil
}
