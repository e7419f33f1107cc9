package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/service/alerts"
)

type fakeAlerts struct {
	calls int
	err   error
}

func (f *fakeAlerts) Refresh(context.Context) (alerts.RefreshResult, error) {
	f.calls++
	return alerts.RefreshResult{Created: 1}, f.err
}

type fakeReports struct{ query models.AnalyticsQuery }

func (f *fakeReports) Report(_ context.Context, q models.AnalyticsQuery) (models.AnalyticsReport, error) {
	f.query = q
	return models.AnalyticsReport{Summary: models.AnalyticsSummary{TotalTrips: 4}}, nil
}

type fakeSheet struct{ rows [][]interface{} }

func (f *fakeSheet) WriteRow(_ context.Context, _ string, values []interface{}) error {
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	return f.rows, nil
}

func TestStartRegistersConfiguredJobs(t *testing.T) {
	s := NewScheduler(Options{}, &fakeAlerts{}, &fakeReports{}, &fakeSheet{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
	assert.Zero(t, s.Jobs())

	s = NewScheduler(Options{AlertSchedule: "*/5 * * * *", SnapshotSchedule: "0 1 * * *"}, &fakeAlerts{}, &fakeReports{}, nil, nil)
	require.NoError(t, s.Start())
	s.Stop()
	assert.Equal(t, 1, s.Jobs())

	s = NewScheduler(Options{AlertSchedule: "whenever"}, &fakeAlerts{}, nil, nil, nil)
	assert.Error(t, s.Start())
}

func TestSweepAlerts(t *testing.T) {
	refresher := &fakeAlerts{err: errors.New("store down")}
	s := NewScheduler(Options{}, refresher, nil, nil, nil)

	s.sweepAlerts()
	assert.Equal(t, 1, refresher.calls)
}

func TestExportSnapshot(t *testing.T) {
	reports := &fakeReports{}
	sheet := &fakeSheet{}
	s := NewScheduler(Options{SnapshotDays: 30}, nil, reports, sheet, nil)
	s.now = func() time.Time { return time.Date(2026, 7, 1, 1, 0, 0, 0, time.UTC) }

	s.exportSnapshot()
	s.exportSnapshot()

	assert.Equal(t, 30, reports.query.Days)
	require.Len(t, sheet.rows, 1)
	assert.Equal(t, "2026-07-01", sheet.rows[0][0])
	assert.Equal(t, 4, sheet.rows[0][2])
}
