// Package records implements the create, read, update and delete operations
// for the fleet collections on top of the document store.
package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/parse"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

const (
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"

	// Query parameters bounding Resource.DateRange on list.
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
)

var validate = validator.New()

// Service performs record operations for any Resource.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a record service.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the clock used for defaults and timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns the records matching the resource's list filters present in
// params. Empty parameters are ignored.
func (s *Service) List(ctx context.Context, res Resource, params map[string]string) ([]repository.Document, error) {
	filter := repository.Filter{}
	for _, field := range res.ListFilters {
		if v := strings.TrimSpace(params[field]); v != "" {
			filter[field] = repository.Eq(v)
		}
	}

	if res.DateRange != "" {
		from, err := rangeBound(params, ParamStartDate)
		if err != nil {
			return nil, err
		}
		to, err := rangeBound(params, ParamEndDate)
		if err != nil {
			return nil, err
		}
		if from != nil || to != nil {
			filter[res.DateRange] = repository.Between(from, to)
		}
	}

	docs, err := s.store.FindAll(ctx, res.Collection, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", res.Collection, err)
	}
	return docs, nil
}

func rangeBound(params map[string]string, key string) (any, error) {
	raw := strings.TrimSpace(params[key])
	if raw == "" {
		return nil, nil
	}
	t, ok := parse.ISODate(raw)
	if !ok {
		return nil, invalidf("Invalid %s: %s", key, raw)
	}
	return t, nil
}

// Get fetches one record.
func (s *Service) Get(ctx context.Context, res Resource, id string) (repository.Document, error) {
	doc, err := s.store.FindByID(ctx, res.Collection, id)
	if repository.IsNotFound(err) {
		return nil, notFound(res.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", res.Collection, id, err)
	}
	return doc, nil
}

// Create validates body against the resource and inserts it. extra is stored
// as is and bypasses field coercion; callers use it for parent links.
func (s *Service) Create(ctx context.Context, res Resource, body map[string]any, extra repository.Document) (repository.Document, error) {
	for _, field := range res.Required {
		if missing(body[field]) {
			return nil, invalidf("Missing required field: %s", field)
		}
	}

	doc := repository.Document{}
	for field, kind := range res.Fields {
		raw, ok := body[field]
		if !ok {
			continue
		}
		value, err := coerce(field, kind, raw)
		if err != nil {
			return nil, err
		}
		doc[field] = value
	}
	if err := s.check(res, doc); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, res, doc, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	for field, def := range res.Defaults {
		if missing(doc[field]) {
			doc[field] = def(now)
		}
	}
	if res.Timestamps {
		doc[fieldCreatedAt] = now
		doc[fieldUpdatedAt] = now
	}
	for k, v := range extra {
		doc[k] = v
	}

	id, err := s.store.InsertOne(ctx, res.Collection, doc)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", res.Collection, err)
	}
	s.logger.Info("record created", zap.String("collection", res.Collection), zap.String("id", id))

	return s.Get(ctx, res, id)
}

// Update applies the updatable fields present in body. Fields outside the
// resource's update set are ignored and required fields may not be blanked.
func (s *Service) Update(ctx context.Context, res Resource, id string, body map[string]any) (repository.Document, error) {
	current, err := s.Get(ctx, res, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, res, current, body)
}

func (s *Service) update(ctx context.Context, res Resource, current repository.Document, body map[string]any) (repository.Document, error) {
	set := repository.Document{}
	for field, raw := range body {
		if !res.updatable(field) {
			continue
		}
		value, err := coerce(field, res.Fields[field], raw)
		if err != nil {
			return nil, err
		}
		set[field] = value
	}

	for _, field := range res.Required {
		if v, ok := set[field]; ok && missing(v) {
			return nil, invalidf("Missing required field: %s", field)
		}
	}

	merged := current.Clone()
	for k, v := range set {
		merged[k] = v
	}
	if err := s.check(res, merged); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, res, set, current.ID()); err != nil {
		return nil, err
	}

	if res.Timestamps {
		set[fieldUpdatedAt] = s.now().UTC()
	}
	if len(set) > 0 {
		if err := s.store.UpdateOne(ctx, res.Collection, current.ID(), set); err != nil {
			if repository.IsNotFound(err) {
				return nil, notFound(res.Name)
			}
			return nil, fmt.Errorf("update %s %s: %w", res.Collection, current.ID(), err)
		}
	}
	s.logger.Info("record updated", zap.String("collection", res.Collection), zap.String("id", current.ID()), zap.Int("fields", len(set)))

	return s.Get(ctx, res, current.ID())
}

// Delete marks the record with the resource's deleted status. Records stay in
// the store so historical trips and reports keep resolving.
func (s *Service) Delete(ctx context.Context, res Resource, id string) error {
	if res.DeletedStatus == "" {
		return fmt.Errorf("%s has no deleted status", res.Collection)
	}
	if _, err := s.Get(ctx, res, id); err != nil {
		return err
	}

	set := repository.Document{models.FieldStatus: res.DeletedStatus}
	if res.Timestamps {
		set[fieldUpdatedAt] = s.now().UTC()
	}
	if err := s.store.UpdateOne(ctx, res.Collection, id, set); err != nil {
		if repository.IsNotFound(err) {
			return notFound(res.Name)
		}
		return fmt.Errorf("delete %s %s: %w", res.Collection, id, err)
	}
	s.logger.Info("record deactivated", zap.String("collection", res.Collection), zap.String("id", id), zap.String("status", res.DeletedStatus))
	return nil
}

// check enforces the non-negative, format and date order rules on a full
// record.
func (s *Service) check(res Resource, doc repository.Document) error {
	for _, field := range res.NonNegative {
		if n := parse.Float(doc[field]); n.OK && n.Value < 0 {
			return invalidf("%s must be ≥ 0", title(field))
		}
	}
	for field, tag := range res.Formats {
		v, ok := doc[field].(string)
		if !ok || v == "" {
			continue
		}
		if err := validate.Var(v, tag); err != nil {
			return invalidf("Invalid %s: %s", strings.ReplaceAll(field, "_", " "), v)
		}
	}
	if first, second := res.DateOrder[0], res.DateOrder[1]; first != "" {
		from, to := parse.Date(doc[first]), parse.Date(doc[second])
		if from.OK && to.OK && from.Value.After(to.Value) {
			return invalidf("%s cannot be after %s", title(first), title(second))
		}
	}
	return nil
}

// checkUnique rejects values of unique fields held by another record.
func (s *Service) checkUnique(ctx context.Context, res Resource, values repository.Document, selfID string) error {
	for _, field := range res.Unique {
		v, ok := values[field]
		if !ok || missing(v) {
			continue
		}
		filter := repository.Filter{field: repository.Eq(v)}
		if selfID != "" {
			filter[models.FieldID] = repository.Ne(selfID)
		}
		_, err := s.store.FindOne(ctx, res.Collection, filter)
		switch {
		case err == nil:
			if msg, ok := res.UniqueMessages[field]; ok {
				return &ValidationError{Message: msg}
			}
			return invalidf("%s already exists", title(field))
		case repository.IsNotFound(err):
		default:
			return fmt.Errorf("check unique %s: %w", field, err)
		}
	}
	return nil
}

func coerce(field string, kind FieldKind, raw any) (any, error) {
	switch kind {
	case Text:
		switch t := raw.(type) {
		case nil:
			return nil, nil
		case string:
			return strings.TrimSpace(t), nil
		default:
			return nil, invalidf("Invalid value for %s: expected text", field)
		}
	case Number:
		return parse.Float(raw).OrZero(), nil
	case Date:
		switch t := raw.(type) {
		case nil:
			return nil, nil
		case time.Time:
			return t.UTC(), nil
		case string:
			if strings.TrimSpace(t) == "" {
				return nil, nil
			}
			d, ok := parse.ISODate(t)
			if !ok {
				return nil, invalidf("Invalid date for %s: %s", field, t)
			}
			return d, nil
		default:
			return nil, invalidf("Invalid date for %s", field)
		}
	default:
		return raw, nil
	}
}

func missing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

// title turns a snake_case field into "Title Case" words.
func title(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
