package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
)

type stubClaims struct {
	rows []models.Claim
	err  error
}

func (s *stubClaims) ListAll(ctx context.Context) ([]models.Claim, error) {
	return s.rows, s.err
}

func TestDashboardAggregates(t *testing.T) {
	rows := []models.Claim{
		claimAt(enums.ClaimStatusPending, time.Now().UTC()),
		claimAt(enums.ClaimStatusComplete, time.Now().UTC().AddDate(0, 0, -1)),
	}
	svc, err := NewService(&stubClaims{rows: rows})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Dashboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dto.TotalClaims != 2 {
		t.Fatalf("expected 2 claims, got %d", dto.TotalClaims)
	}
	if dto.WindowDays != DefaultWindowDays {
		t.Fatalf("expected default window, got %d", dto.WindowDays)
	}
	if len(dto.StatusCounts) != 4 {
		t.Fatalf("expected all statuses, got %d", len(dto.StatusCounts))
	}
	if len(dto.DailyActivity) != DefaultWindowDays {
		t.Fatalf("expected %d buckets, got %d", DefaultWindowDays, len(dto.DailyActivity))
	}
}

func TestDashboardClampsWindow(t *testing.T) {
	svc, err := NewService(&stubClaims{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	dto, err := svc.Dashboard(context.Background(), 500)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dto.WindowDays != maxWindowDays {
		t.Fatalf("expected clamped window, got %d", dto.WindowDays)
	}
}

func TestDashboardWrapsRepoError(t *testing.T) {
	svc, err := NewService(&stubClaims{err: errors.New("boom")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Dashboard(context.Background(), 7)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
