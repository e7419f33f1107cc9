package alerts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

// DefaultListLimit caps the alerts returned to the dashboard.
const DefaultListLimit = 10

// Notifier is told about every alert the service creates.
type Notifier interface {
	NotifyAlert(ctx context.Context, alert models.Alert) error
}

// RefreshResult counts the transitions applied by one Refresh.
type RefreshResult struct {
	Created     int
	Deactivated int
}

// Service runs the expiry rules against the store.
type Service struct {
	store    repository.Store
	rules    []Rule
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the alert service. notifier may be nil.
func NewService(store repository.Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		rules:    Rules(),
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the evaluation clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Refresh evaluates every rule against the active employees and trucks and
// applies the resulting alert transitions.
func (s *Service) Refresh(ctx context.Context) (RefreshResult, error) {
	var result RefreshResult
	now := s.now().UTC()

	for _, rule := range s.rules {
		subjects, err := s.loadSubjects(ctx, rule)
		if err != nil {
			return result, err
		}

		active, err := s.loadActive(ctx, rule.Type)
		if err != nil {
			return result, err
		}

		for _, m := range Evaluate(rule, subjects, active, now) {
			if err := s.apply(ctx, m); err != nil {
				return result, err
			}
			if m.Kind == Create {
				result.Created++
			} else {
				result.Deactivated++
			}
		}
	}

	if result.Created > 0 || result.Deactivated > 0 {
		s.logger.Info("alerts refreshed",
			zap.Int("created", result.Created),
			zap.Int("deactivated", result.Deactivated))
	}
	return result, nil
}

// ListActive returns up to limit active alerts, latest alert date first.
func (s *Service) ListActive(ctx context.Context, limit int) ([]models.Alert, error) {
	docs, err := s.store.FindAll(ctx, models.CollectionAlerts, repository.Filter{
		models.FieldStatus: repository.Eq(models.AlertStatusActive),
	})
	if err != nil {
		return nil, fmt.Errorf("load active alerts: %w", err)
	}

	alerts, err := decodeAlerts(docs)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].AlertDate.After(alerts[j].AlertDate)
	})

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

// Current refreshes the alerts and returns the active ones.
func (s *Service) Current(ctx context.Context, limit int) ([]models.Alert, error) {
	if _, err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.ListActive(ctx, limit)
}

func (s *Service) loadSubjects(ctx context.Context, rule Rule) ([]Subject, error) {
	docs, err := s.store.FindAll(ctx, rule.Collection, repository.Filter{
		models.FieldStatus: repository.Eq(rule.ActiveStatus()),
	})
	if err != nil {
		return nil, fmt.Errorf("load %s for %s: %w", rule.Collection, rule.Type, err)
	}

	subjects := make([]Subject, 0, len(docs))
	for _, doc := range docs {
		subjects = append(subjects, rule.SubjectFrom(doc))
	}
	return subjects, nil
}

func (s *Service) loadActive(ctx context.Context, alertType models.AlertType) ([]models.Alert, error) {
	docs, err := s.store.FindAll(ctx, models.CollectionAlerts, repository.Filter{
		models.FieldType:   repository.Eq(string(alertType)),
		models.FieldStatus: repository.Eq(models.AlertStatusActive),
	})
	if err != nil {
		return nil, fmt.Errorf("load active %s alerts: %w", alertType, err)
	}
	return decodeAlerts(docs)
}

func (s *Service) apply(ctx context.Context, m Mutation) error {
	switch m.Kind {
	case Create:
		doc, err := repository.Encode(m.Alert)
		if err != nil {
			return err
		}
		id, err := s.store.InsertOne(ctx, models.CollectionAlerts, doc)
		if err != nil {
			return fmt.Errorf("create %s alert: %w", m.Alert.Type, err)
		}
		m.Alert.ID = id
		s.logger.Debug("alert created",
			zap.String("alert_id", id),
			zap.String("type", string(m.Alert.Type)),
			zap.String("subject_id", m.Alert.SubjectID()))
		s.notify(ctx, m.Alert)
	case Deactivate:
		if err := s.store.UpdateOne(ctx, models.CollectionAlerts, m.Alert.ID, repository.Document{
			models.FieldStatus: models.AlertStatusInactive,
		}); err != nil {
			return fmt.Errorf("deactivate alert %s: %w", m.Alert.ID, err)
		}
		s.logger.Debug("alert deactivated",
			zap.String("alert_id", m.Alert.ID),
			zap.String("type", string(m.Alert.Type)))
	}
	return nil
}

func (s *Service) notify(ctx context.Context, alert models.Alert) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAlert(ctx, alert); err != nil {
		s.logger.Warn("alert notification failed", zap.String("alert_id", alert.ID), zap.Error(err))
	}
}

func decodeAlerts(docs []repository.Document) ([]models.Alert, error) {
	alerts := make([]models.Alert, 0, len(docs))
	for _, doc := range docs {
		var a models.Alert
		if err := repository.Decode(doc, &a); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
