// Package earnings is the read-only driver earnings view.
package earnings

import (
	"context"
	"time"

	"github.com/AlokMahapatra26/lastmile-client/pkg/common"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

// GatewayInterface is the backend slice the earnings view needs.
type GatewayInterface interface {
	DriverStats(ctx context.Context, startDate, endDate *time.Time) (*models.DriverStats, error)
}

// Service fetches aggregated earnings.
type Service struct {
	gw  GatewayInterface
	now func() time.Time
}

// NewService wires the earnings view.
func NewService(gw GatewayInterface) *Service {
	return &Service{gw: gw, now: time.Now}
}

// Stats fetches the all-time earnings summary.
func (s *Service) Stats(ctx context.Context) (*models.DriverStats, error) {
	return s.gw.DriverStats(ctx, nil, nil)
}

// StatsBetween fetches earnings limited to [start, end]. Both bounds are
// required together; the backend rejects half-open filters.
func (s *Service) StatsBetween(ctx context.Context, start, end time.Time) (*models.DriverStats, error) {
	if end.Before(start) {
		return nil, common.NewValidationError("end date is before start date")
	}
	return s.gw.DriverStats(ctx, &start, &end)
}

// StatsThisWeek fetches earnings for the trailing seven days.
func (s *Service) StatsThisWeek(ctx context.Context) (*models.DriverStats, error) {
	end := s.now()
	start := end.AddDate(0, 0, -7)
	return s.gw.DriverStats(ctx, &start, &end)
}

// StatsThisMonth fetches earnings since the first of the current month.
func (s *Service) StatsThisMonth(ctx context.Context) (*models.DriverStats, error) {
	end := s.now()
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	return s.gw.DriverStats(ctx, &start, &end)
}
