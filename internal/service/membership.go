package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

// MembershipService manages passengers: registration, wallet top-ups, and
// tier qualification.
type MembershipService struct {
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(userRepo repository.UserRepository, walletRepo repository.WalletRepository) *MembershipService {
	return &MembershipService{
		userRepo:   userRepo,
		walletRepo: walletRepo,
	}
}

// RegisterUserRequest contains the parameters for registering a passenger.
type RegisterUserRequest struct {
	Name  string
	Phone string
}

// RegisterUser creates a new passenger at the Bronze tier.
func (s *MembershipService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*domain.User, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, ErrInvalidUserID
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Tier:      domain.TierBronze,
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a passenger by ID.
func (s *MembershipService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers retrieves all passengers.
func (s *MembershipService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.GetAll(ctx)
}

// TopUp credits a passenger's wallet and re-evaluates their tier, since
// cumulative top-ups count toward qualification.
func (s *MembershipService) TopUp(ctx context.Context, userID string, amount float64) (*domain.Wallet, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidTopUpAmount
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.walletRepo.ApplyDelta(ctx, userID, domain.AccountPassengerWallet, amount, false); err != nil {
		return nil, err
	}

	if err := s.userRepo.RecordTopUp(ctx, userID, amount); err != nil {
		return nil, err
	}

	if _, err := s.EvaluateTier(ctx, userID); err != nil {
		return nil, err
	}

	return s.walletRepo.Get(ctx, userID, domain.AccountPassengerWallet)
}

// EvaluateTier re-checks a passenger's qualification against the tier
// table and persists an upgrade or downgrade. A tier requires both the
// ride count and the cumulative top-up total.
func (s *MembershipService) EvaluateTier(ctx context.Context, userID string) (domain.MembershipTier, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	tier := qualifiedTier(user.RideCount, user.TopUpTotal)
	if tier != user.Tier {
		if err := s.userRepo.SetTier(ctx, userID, tier); err != nil {
			return "", err
		}
	}

	return tier, nil
}

// qualifiedTier returns the best tier whose ride and top-up requirements
// are both met. The table is ordered highest first and Bronze has no
// requirements, so this always resolves.
func qualifiedTier(rideCount int, topUpTotal float64) domain.MembershipTier {
	for _, b := range domain.TierBenefits {
		if rideCount >= b.MinRides && topUpTotal >= b.MinTopUps {
			return b.Tier
		}
	}
	return domain.TierBronze
}
