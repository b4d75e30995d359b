package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/incentive"
	"trike/internal/repository"
)

// IncentiveService evaluates drivers' weekly trip volume against the
// reward thresholds and credits the payout once per week.
type IncentiveService struct {
	tripRepo      repository.TripRepository
	incentiveRepo repository.IncentiveRepository
	walletRepo    repository.WalletRepository
	thresholds    []domain.IncentiveThreshold
}

// NewIncentiveService creates a new IncentiveService.
func NewIncentiveService(
	tripRepo repository.TripRepository,
	incentiveRepo repository.IncentiveRepository,
	walletRepo repository.WalletRepository,
	thresholds []domain.IncentiveThreshold,
) *IncentiveService {
	if len(thresholds) == 0 {
		thresholds = incentive.DefaultThresholds
	}
	return &IncentiveService{
		tripRepo:      tripRepo,
		incentiveRepo: incentiveRepo,
		walletRepo:    walletRepo,
		thresholds:    thresholds,
	}
}

// EvaluateWeekRequest identifies the driver and the week to evaluate.
type EvaluateWeekRequest struct {
	DriverID  string
	WeekStart time.Time
}

// EvaluateWeek runs the weekly incentive evaluation for a driver. The week
// runs [WeekStart, WeekStart+7d). An already-evaluated week returns the
// existing record; evaluation never runs twice for the same week.
func (s *IncentiveService) EvaluateWeek(ctx context.Context, req EvaluateWeekRequest) (*domain.DriverIncentiveRecord, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.WeekStart.IsZero() {
		return nil, ErrInvalidWeekWindow
	}

	weekStart := req.WeekStart.Truncate(24 * time.Hour)
	weekEnd := weekStart.AddDate(0, 0, 7)

	existing, err := s.incentiveRepo.GetByDriverWeek(ctx, req.DriverID, weekStart)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	tripCount, err := s.tripRepo.CountCompletedByDriver(ctx, req.DriverID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	earnings, err := s.tripRepo.SumEarningsByDriver(ctx, req.DriverID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	record := &domain.DriverIncentiveRecord{
		ID:        uuid.New().String(),
		DriverID:  req.DriverID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		TripCount: tripCount,
		Earnings:  earnings,
		CreatedAt: time.Now(),
	}

	if award := incentive.Evaluate(tripCount, earnings, s.thresholds); award != nil {
		record.AwardedTier = award.Tier
		record.Reward = award.Reward
	}

	if err := s.incentiveRepo.Create(ctx, record); err != nil {
		if err == repository.ErrConflict {
			// Another evaluator won the same week; return its record.
			if winner, gerr := s.incentiveRepo.GetByDriverWeek(ctx, req.DriverID, weekStart); gerr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}

	if record.Reward > 0 {
		if err := s.walletRepo.ApplyDelta(ctx, req.DriverID, domain.AccountDriverWallet, record.Reward, false); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// GetDriverRecords returns a driver's incentive history, newest first.
func (s *IncentiveService) GetDriverRecords(ctx context.Context, driverID string) ([]*domain.DriverIncentiveRecord, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.incentiveRepo.GetByDriver(ctx, driverID)
}

// Thresholds exposes the active reward table.
func (s *IncentiveService) Thresholds() []domain.IncentiveThreshold {
	return s.thresholds
}
