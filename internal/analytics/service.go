package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
)

const (
	// DefaultWindowDays is the histogram window when none is requested.
	DefaultWindowDays = 30
	maxWindowDays     = 90
)

// DashboardDTO is the admin dashboard payload.
type DashboardDTO struct {
	TotalClaims   int           `json:"total_claims"`
	StatusCounts  []StatusCount `json:"status_counts"`
	DailyActivity []DayCount    `json:"daily_activity"`
	WindowDays    int           `json:"window_days"`
}

// Service assembles aggregate views for admins.
type Service interface {
	Dashboard(ctx context.Context, windowDays int) (*DashboardDTO, error)
}

type claimLister interface {
	ListAll(ctx context.Context) ([]models.Claim, error)
}

type service struct {
	claims claimLister
}

// NewService constructs the analytics service.
func NewService(claims claimLister) (Service, error) {
	if claims == nil {
		return nil, fmt.Errorf("claim lister required")
	}
	return &service{claims: claims}, nil
}

// Dashboard folds the full claim set into status counts and the trailing
// activity histogram.
func (s *service) Dashboard(ctx context.Context, windowDays int) (*DashboardDTO, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays > maxWindowDays {
		windowDays = maxWindowDays
	}

	rows, err := s.claims.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list claims")
	}

	return &DashboardDTO{
		TotalClaims:   len(rows),
		StatusCounts:  CountsByStatus(rows),
		DailyActivity: DailyActivityHistogram(rows, windowDays, time.Now().UTC()),
		WindowDays:    windowDays,
	}, nil
}
