package analytics

import (
	"context"
	"fmt"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

// Filters lists the trucks, drivers and regions the dashboard can filter by.
func (s *Service) Filters(ctx context.Context) (models.DashboardFilters, error) {
	trucks, err := s.activeTrucks(ctx, "")
	if err != nil {
		return models.DashboardFilters{}, err
	}

	drivers, err := s.store.FindAll(ctx, models.CollectionEmployees, repository.Filter{
		models.FieldPosition: repository.Eq(models.PositionDriver),
		models.FieldStatus:   repository.Eq(models.EmployeeStatusActive),
	})
	if err != nil {
		return models.DashboardFilters{}, fmt.Errorf("load drivers: %w", err)
	}

	regions, err := s.store.Distinct(ctx, models.CollectionTrucks, models.FieldRegion, repository.Filter{
		models.FieldRegion: repository.Ne(nil),
	})
	if err != nil {
		return models.DashboardFilters{}, fmt.Errorf("load regions: %w", err)
	}

	out := models.DashboardFilters{
		Trucks:  make([]models.FilterOption, 0, len(trucks)),
		Drivers: make([]models.FilterOption, 0, len(drivers)),
		Regions: make([]models.FilterOption, 0, len(regions)),
	}
	for _, t := range trucks {
		out.Trucks = append(out.Trucks, models.FilterOption{ID: t.ID(), Label: t.String(models.FieldTruckNumber)})
	}
	for _, d := range drivers {
		out.Drivers = append(out.Drivers, models.FilterOption{ID: d.ID(), Label: repository.DisplayName(d)})
	}
	for _, r := range regions {
		if name, ok := r.(string); ok && name != "" {
			out.Regions = append(out.Regions, models.FilterOption{ID: name, Label: name})
		}
	}
	return out, nil
}
