package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/fare"
	"trike/internal/redis"
	"trike/internal/repository"
	"trike/internal/statemachine"
)

// TripService applies validated status transitions to trips and runs the
// downstream effects each transition demands.
type TripService struct {
	tripRepo   repository.TripRepository
	driverRepo repository.DriverRepository
	userRepo   repository.UserRepository
	settlement *SettlementService
	cacheStore *redis.CacheStore
	notifier   Notifier
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	driverRepo repository.DriverRepository,
	userRepo repository.UserRepository,
	settlement *SettlementService,
	cacheStore *redis.CacheStore,
	notifier Notifier,
) *TripService {
	return &TripService{
		tripRepo:   tripRepo,
		driverRepo: driverRepo,
		userRepo:   userRepo,
		settlement: settlement,
		cacheStore: cacheStore,
		notifier:   notifier,
	}
}

// TransitionRequest contains the parameters for a status transition.
type TransitionRequest struct {
	TripID   string
	ToStatus domain.Status
	Role     domain.Role
	ActorID  string

	// Fare carries the proposed amount on fare_proposed transitions.
	Fare *float64

	// ActualPassengers carries the headcount observed at a ride-share
	// pickup; required on passenger_b_pickup.
	ActualPassengers *int

	// CancelReason is recorded on cancellation.
	CancelReason string
}

// Transition validates and applies a status transition. Re-requesting the
// status a trip already holds fails with AlreadyInStateError and writes
// nothing, so a retried command can never re-run settlement. A concurrent
// transition that wins the compare-and-swap surfaces as
// repository.ErrConflict.
func (s *TripService) Transition(ctx context.Context, req TransitionRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	switch req.Role {
	case domain.RolePassenger, domain.RoleDriver, domain.RoleVendor, domain.RoleDispatcher:
	default:
		return nil, ErrInvalidRole
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	// The transition already happened; report it rather than re-running
	// any effect.
	if trip.Status == req.ToStatus {
		return nil, &AlreadyInStateError{TripID: trip.ID, Status: trip.Status}
	}

	now := time.Now()
	updated, effects, err := statemachine.Apply(trip, req.ToStatus, req.Role, now)
	if err != nil {
		return nil, err
	}

	if req.ActorID != "" {
		switch req.Role {
		case domain.RoleDriver:
			if updated.DriverID == "" {
				updated.DriverID = req.ActorID
			}
		}
	}

	if err := s.applyPrePersist(ctx, updated, effects, req); err != nil {
		return nil, err
	}

	if err := s.tripRepo.UpdateStatus(ctx, updated, trip.Status); err != nil {
		return nil, err
	}

	if err := s.tripRepo.AppendStatusChange(ctx, &domain.StatusChange{
		TripID:     updated.ID,
		FromStatus: trip.Status,
		ToStatus:   req.ToStatus,
		Role:       req.Role,
		ChangedAt:  now,
	}); err != nil {
		return nil, err
	}

	s.applyPostPersist(ctx, updated, effects)

	NotifyStatusChange(ctx, s.notifier, updated, req.ToStatus)

	return updated, nil
}

// applyPrePersist mutates the transitioned trip before it is written:
// fare proposals, pickup codes, headcount re-pricing, cancellation
// reasons, and the final discounted fare on completion.
func (s *TripService) applyPrePersist(ctx context.Context, trip *domain.Trip, effects []statemachine.Effect, req TransitionRequest) error {
	switch trip.Status {
	case domain.StatusFareProposed:
		if req.Fare == nil || *req.Fare < 0 {
			return ErrInvalidFare
		}
		trip.AgreedFare = *req.Fare
	case domain.StatusFareAccepted:
		if trip.AgreedFare <= 0 {
			return ErrInvalidFare
		}
	case domain.StatusCancelled:
		trip.CancelReason = req.CancelReason
	}

	for _, effect := range effects {
		switch effect {
		case statemachine.EffectIssuePickupCode:
			trip.PickupCode = newPickupCode()
		case statemachine.EffectRecalculateFare:
			if req.ActualPassengers == nil || *req.ActualPassengers < 1 {
				return ErrInvalidPassengerCount
			}
			trip.ActualPassengers = *req.ActualPassengers
			trip.AgreedFare = fareBasis(trip) +
				fare.PassengerCountAdjustment(trip.DeclaredPassengers, trip.ActualPassengers)
		}
	}

	if trip.Status == domain.StatusCompleted {
		benefit, err := s.membershipBenefit(ctx, trip)
		if err != nil {
			return err
		}
		trip.FinalFare = benefit.FinalFare
	}

	return nil
}

// applyPostPersist runs the side effects of a persisted transition. These
// are not atomic with the status write; settlement is idempotent and the
// driver flips are reconcilable, so a crash between them loses nothing
// that a retry cannot restore.
func (s *TripService) applyPostPersist(ctx context.Context, trip *domain.Trip, effects []statemachine.Effect) {
	for _, effect := range effects {
		switch effect {
		case statemachine.EffectDriverOnTrip:
			if trip.DriverID != "" {
				_ = s.driverRepo.UpdateStatus(ctx, trip.DriverID, domain.DriverStatusOnTrip)
				s.invalidateDriverCache(ctx, trip.DriverID)
			}
		case statemachine.EffectDriverAvailable:
			if trip.DriverID != "" {
				_ = s.driverRepo.UpdateStatus(ctx, trip.DriverID, domain.DriverStatusAvailable)
				s.invalidateDriverCache(ctx, trip.DriverID)
			}
		case statemachine.EffectSettleTrip:
			if s.settlement != nil {
				_, _ = s.settlement.SettleTrip(ctx, trip)
			}
			s.awardPoints(ctx, trip)
		}
	}
}

// membershipBenefit applies the passenger's tier to the trip's fare basis.
func (s *TripService) membershipBenefit(ctx context.Context, trip *domain.Trip) (fare.MembershipBenefit, error) {
	tier := domain.TierBronze
	user, err := s.userRepo.GetByID(ctx, trip.PassengerID)
	if err != nil {
		if err != repository.ErrNotFound {
			return fare.MembershipBenefit{}, err
		}
	} else {
		tier = user.Tier
	}
	return fare.ApplyMembership(tier, fareBasis(trip)), nil
}

// awardPoints credits reward points and bumps the ride count after a
// completed trip settles.
func (s *TripService) awardPoints(ctx context.Context, trip *domain.Trip) {
	benefit, err := s.membershipBenefit(ctx, trip)
	if err != nil {
		return
	}
	_ = s.userRepo.AddRewardPoints(ctx, trip.PassengerID, benefit.BasePoints+benefit.BonusPoints)
	_ = s.userRepo.RecordRide(ctx, trip.PassengerID)
}

func (s *TripService) invalidateDriverCache(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateDriver(ctx, driverID)
}

// fareBasis is the amount settlement and discounts start from: the agreed
// fare when one was negotiated or quoted, otherwise the declared fare.
func fareBasis(trip *domain.Trip) float64 {
	if trip.AgreedFare > 0 {
		return trip.AgreedFare
	}
	return trip.DeclaredFare
}

// newPickupCode returns the short code a driver reads out at the vendor
// counter.
func newPickupCode() string {
	return strings.ToUpper(uuid.New().String()[:6])
}
