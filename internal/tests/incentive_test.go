package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trike/internal/domain"
	"trike/internal/service"
)

var testWeekStart = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

// seedCompletedTrips adds n completed trips for the driver inside the
// evaluation week, each with the given final fare.
func seedCompletedTrips(tripRepo *MockTripRepository, driverID string, n int, finalFare float64) {
	for i := 0; i < n; i++ {
		tripRepo.AddTrip(&domain.Trip{
			ID:          fmt.Sprintf("%s-trip-%d", driverID, i),
			Workflow:    domain.WorkflowRide,
			DriverID:    driverID,
			Status:      domain.StatusCompleted,
			FinalFare:   finalFare,
			CompletedAt: testWeekStart.Add(time.Duration(i%7*24) * time.Hour),
		})
	}
}

func newIncentiveService(
	tripRepo *MockTripRepository,
	incentiveRepo *MockIncentiveRepository,
	walletRepo *MockWalletRepository,
) *service.IncentiveService {
	return service.NewIncentiveService(tripRepo, incentiveRepo, walletRepo, nil)
}

func TestIncentive_GoldAwardCreditsWallet(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	incentiveRepo := NewMockIncentiveRepository()
	walletRepo := NewMockWalletRepository()
	seedCompletedTrips(tripRepo, "driver-1", 60, 100)

	svc := newIncentiveService(tripRepo, incentiveRepo, walletRepo)

	record, err := svc.EvaluateWeek(context.Background(), service.EvaluateWeekRequest{
		DriverID:  "driver-1",
		WeekStart: testWeekStart,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.AwardedTier != domain.IncentiveTierGold {
		t.Errorf("expected gold tier, got %q", record.AwardedTier)
	}
	if record.Reward != 1000 {
		t.Errorf("expected reward 1000, got %v", record.Reward)
	}
	if record.TripCount != 60 {
		t.Errorf("expected 60 trips counted, got %d", record.TripCount)
	}
	if record.Earnings != 6000 {
		t.Errorf("expected earnings 6000, got %v", record.Earnings)
	}

	if got := walletRepo.Balance("driver-1", domain.AccountDriverWallet); got != 1000 {
		t.Errorf("expected wallet credit 1000, got %v", got)
	}
}

func TestIncentive_HighestTierOnly(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	incentiveRepo := NewMockIncentiveRepository()
	walletRepo := NewMockWalletRepository()
	// 45 trips clears silver and bronze; only silver pays.
	seedCompletedTrips(tripRepo, "driver-1", 45, 80)

	svc := newIncentiveService(tripRepo, incentiveRepo, walletRepo)

	record, err := svc.EvaluateWeek(context.Background(), service.EvaluateWeekRequest{
		DriverID:  "driver-1",
		WeekStart: testWeekStart,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.AwardedTier != domain.IncentiveTierSilver {
		t.Errorf("expected silver tier, got %q", record.AwardedTier)
	}
	if got := walletRepo.Balance("driver-1", domain.AccountDriverWallet); got != 500 {
		t.Errorf("expected single 500 credit, got %v", got)
	}
}

func TestIncentive_IdempotentWeek(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	incentiveRepo := NewMockIncentiveRepository()
	walletRepo := NewMockWalletRepository()
	seedCompletedTrips(tripRepo, "driver-1", 60, 100)

	svc := newIncentiveService(tripRepo, incentiveRepo, walletRepo)
	ctx := context.Background()
	req := service.EvaluateWeekRequest{DriverID: "driver-1", WeekStart: testWeekStart}

	first, err := svc.EvaluateWeek(ctx, req)
	if err != nil {
		t.Fatalf("first evaluation failed: %v", err)
	}

	second, err := svc.EvaluateWeek(ctx, req)
	if err != nil {
		t.Fatalf("second evaluation failed: %v", err)
	}

	if second.ID != first.ID {
		t.Error("expected the existing record to be returned")
	}
	if got := incentiveRepo.CreateCallCount; got != 1 {
		t.Errorf("expected one record write, got %d", got)
	}
	if got := walletRepo.Balance("driver-1", domain.AccountDriverWallet); got != 1000 {
		t.Errorf("expected a single reward credit, got %v", got)
	}
}

func TestIncentive_NoThresholdMet(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	incentiveRepo := NewMockIncentiveRepository()
	walletRepo := NewMockWalletRepository()
	seedCompletedTrips(tripRepo, "driver-1", 12, 100)

	svc := newIncentiveService(tripRepo, incentiveRepo, walletRepo)

	record, err := svc.EvaluateWeek(context.Background(), service.EvaluateWeekRequest{
		DriverID:  "driver-1",
		WeekStart: testWeekStart,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The week is still recorded so it is never re-evaluated.
	if record.AwardedTier != "" || record.Reward != 0 {
		t.Errorf("expected no award, got tier %q reward %v", record.AwardedTier, record.Reward)
	}
	if record.TripCount != 12 {
		t.Errorf("expected 12 trips, got %d", record.TripCount)
	}
	if got := walletRepo.Balance("driver-1", domain.AccountDriverWallet); got != 0 {
		t.Errorf("expected no credit, got %v", got)
	}
}

func TestIncentive_TripsOutsideWindowIgnored(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	incentiveRepo := NewMockIncentiveRepository()
	walletRepo := NewMockWalletRepository()

	seedCompletedTrips(tripRepo, "driver-1", 19, 100)
	// One trip completed after the window closes must not tip bronze.
	tripRepo.AddTrip(&domain.Trip{
		ID:          "late-trip",
		Workflow:    domain.WorkflowRide,
		DriverID:    "driver-1",
		Status:      domain.StatusCompleted,
		FinalFare:   100,
		CompletedAt: testWeekStart.AddDate(0, 0, 7),
	})

	svc := newIncentiveService(tripRepo, incentiveRepo, walletRepo)

	record, err := svc.EvaluateWeek(context.Background(), service.EvaluateWeekRequest{
		DriverID:  "driver-1",
		WeekStart: testWeekStart,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.TripCount != 19 {
		t.Errorf("expected 19 trips counted, got %d", record.TripCount)
	}
	if record.AwardedTier != "" {
		t.Errorf("expected no award, got %q", record.AwardedTier)
	}
}

func TestIncentive_RequiresWeekStart(t *testing.T) {
	t.Parallel()

	svc := newIncentiveService(NewMockTripRepository(), NewMockIncentiveRepository(), NewMockWalletRepository())

	_, err := svc.EvaluateWeek(context.Background(), service.EvaluateWeekRequest{DriverID: "driver-1"})
	if err != service.ErrInvalidWeekWindow {
		t.Errorf("expected ErrInvalidWeekWindow, got %v", err)
	}
}
