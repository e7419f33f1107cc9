package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/repository/sheets"
	"github.com/mamadbah2/fleetbook/internal/service/alerts"
)

const jobTimeout = 2 * time.Minute

// AlertRefresher re-evaluates the expiry rules.
type AlertRefresher interface {
	Refresh(ctx context.Context) (alerts.RefreshResult, error)
}

// ReportSource computes the analytics summary exported to Sheets.
type ReportSource interface {
	Report(ctx context.Context, q models.AnalyticsQuery) (models.AnalyticsReport, error)
}

// Options selects the jobs to run. An empty schedule or a nil dependency
// leaves that job out.
type Options struct {
	AlertSchedule    string
	SnapshotSchedule string
	SnapshotDays     int
	Location         *time.Location
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	alerts   AlertRefresher
	reports  ReportSource
	sheet    sheets.Repository
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
	jobCount int
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(opts Options, alertSvc AlertRefresher, reports ReportSource, sheet sheets.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(opts.Location)),
		alerts:  alertSvc,
		reports: reports,
		sheet:   sheet,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers the configured jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.opts.AlertSchedule != "" && s.alerts != nil {
		if _, err := s.cron.AddFunc(s.opts.AlertSchedule, s.sweepAlerts); err != nil {
			return fmt.Errorf("schedule alert sweep: %w", err)
		}
		s.jobCount++
		s.logger.Info("alert sweep scheduled", zap.String("schedule", s.opts.AlertSchedule))
	}

	if s.opts.SnapshotSchedule != "" && s.reports != nil && s.sheet != nil {
		if _, err := s.cron.AddFunc(s.opts.SnapshotSchedule, s.exportSnapshot); err != nil {
			return fmt.Errorf("schedule analytics snapshot: %w", err)
		}
		s.jobCount++
		s.logger.Info("analytics snapshot scheduled", zap.String("schedule", s.opts.SnapshotSchedule))
	}

	s.cron.Start()
	return nil
}

// Jobs returns how many jobs Start registered.
func (s *Scheduler) Jobs() int { return s.jobCount }

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := s.alerts.Refresh(ctx)
	if err != nil {
		s.logger.Error("alert sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("alert sweep completed", zap.Int("created", res.Created), zap.Int("deactivated", res.Deactivated))
}

func (s *Scheduler) exportSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.reports.Report(ctx, models.AnalyticsQuery{Days: s.opts.SnapshotDays})
	if err != nil {
		s.logger.Error("analytics snapshot failed", zap.Error(err))
		return
	}

	date := s.now().In(s.opts.Location).Format("2006-01-02")
	wrote, err := sheets.AppendSnapshot(ctx, s.sheet, date, s.opts.SnapshotDays, report.Summary)
	if err != nil {
		s.logger.Error("failed to append analytics snapshot", zap.Error(err))
		return
	}
	if !wrote {
		s.logger.Info("analytics snapshot already exported", zap.String("date", date))
		return
	}
	s.logger.Info("analytics snapshot exported", zap.String("date", date), zap.Int("trips", report.Summary.TotalTrips))
}
