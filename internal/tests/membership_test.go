package tests

import (
	"context"
	"testing"

	"trike/internal/domain"
	"trike/internal/service"
)

func newMembershipService(userRepo *MockUserRepository, walletRepo *MockWalletRepository) *service.MembershipService {
	return service.NewMembershipService(userRepo, walletRepo)
}

func TestMembership_RegisterStartsBronze(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	svc := newMembershipService(userRepo, NewMockWalletRepository())

	user, err := svc.RegisterUser(context.Background(), service.RegisterUserRequest{
		Name:  "Maria",
		Phone: "+639171234567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Tier != domain.TierBronze {
		t.Errorf("expected bronze tier, got %q", user.Tier)
	}
	if user.ID == "" {
		t.Error("expected generated user ID")
	}
}

func TestMembership_TopUpUpgradesTier(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()
	// One top-up short of silver: 20 rides done, 1900 of the 2000 required.
	userRepo.AddUser(&domain.User{
		ID:         "user-1",
		Name:       "Maria",
		Tier:       domain.TierBronze,
		RideCount:  20,
		TopUpTotal: 1900,
	})

	svc := newMembershipService(userRepo, walletRepo)

	wallet, err := svc.TopUp(context.Background(), "user-1", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wallet.Balance != 100 {
		t.Errorf("expected wallet balance 100, got %v", wallet.Balance)
	}
	if got := userRepo.GetUser("user-1").Tier; got != domain.TierSilver {
		t.Errorf("expected silver after top-up, got %q", got)
	}
	if got := userRepo.GetUser("user-1").TopUpTotal; got != 2000 {
		t.Errorf("expected cumulative top-ups 2000, got %v", got)
	}
}

func TestMembership_TierRequiresBothThresholds(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()
	// Plenty of money, not enough rides: stays bronze.
	userRepo.AddUser(&domain.User{
		ID:         "user-1",
		Name:       "Maria",
		Tier:       domain.TierBronze,
		RideCount:  5,
		TopUpTotal: 9000,
	})

	svc := newMembershipService(userRepo, walletRepo)

	if _, err := svc.TopUp(context.Background(), "user-1", 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := userRepo.GetUser("user-1").Tier; got != domain.TierBronze {
		t.Errorf("expected bronze with too few rides, got %q", got)
	}
}

func TestMembership_GoldQualification(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{
		ID:         "user-1",
		Name:       "Maria",
		Tier:       domain.TierSilver,
		RideCount:  50,
		TopUpTotal: 5000,
	})

	svc := newMembershipService(userRepo, NewMockWalletRepository())

	tier, err := svc.EvaluateTier(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tier != domain.TierGold {
		t.Errorf("expected gold, got %q", tier)
	}
	if got := userRepo.GetUser("user-1").Tier; got != domain.TierGold {
		t.Errorf("expected gold persisted, got %q", got)
	}
}

func TestMembership_InvalidTopUpAmount(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	seedBronzePassenger(userRepo, "user-1")
	svc := newMembershipService(userRepo, NewMockWalletRepository())
	ctx := context.Background()

	if _, err := svc.TopUp(ctx, "user-1", 0); err != service.ErrInvalidTopUpAmount {
		t.Errorf("expected ErrInvalidTopUpAmount for zero, got %v", err)
	}
	if _, err := svc.TopUp(ctx, "user-1", -50); err != service.ErrInvalidTopUpAmount {
		t.Errorf("expected ErrInvalidTopUpAmount for negative, got %v", err)
	}
}
