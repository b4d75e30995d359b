package handler

import (
	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// SettlementHandler handles HTTP requests for settlements, ledgers, and
// wallets.
type SettlementHandler struct {
	settlementService *service.SettlementService
	bookingService    *service.BookingService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService *service.SettlementService, bookingService *service.BookingService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		bookingService:    bookingService,
	}
}

// SettlementResponse is the HTTP representation of a trip settlement.
type SettlementResponse struct {
	ID             string  `json:"id"`
	TripID         string  `json:"trip_id"`
	Fare           float64 `json:"fare"`
	CommissionRate float64 `json:"commission_rate"`
	Commission     float64 `json:"commission"`
	DriverNet      float64 `json:"driver_net"`
	PaymentMethod  string  `json:"payment_method"`
	CreatedAt      string  `json:"created_at"`
}

func toSettlementResponse(s *domain.Settlement) SettlementResponse {
	return SettlementResponse{
		ID:             s.ID,
		TripID:         s.TripID,
		Fare:           s.Fare,
		CommissionRate: s.CommissionRate,
		Commission:     s.Commission,
		DriverNet:      s.DriverNet,
		PaymentMethod:  string(s.PaymentMethod),
		CreatedAt:      s.CreatedAt.Format(timeFormat),
	}
}

// Settle handles POST /v1/trips/:id/settle. Settlement normally runs as a
// completion side effect; this endpoint retries it after a failure.
func (h *SettlementHandler) Settle(c *gin.Context) {
	trip, err := h.bookingService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	settlement, err := h.settlementService.SettleTrip(c.Request.Context(), trip)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toSettlementResponse(settlement))
}

// LedgerEntryResponse is the HTTP representation of one ledger entry.
type LedgerEntryResponse struct {
	ID            string  `json:"id"`
	TripID        string  `json:"trip_id"`
	Account       string  `json:"account"`
	OwnerID       string  `json:"owner_id,omitempty"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	CreatedAt     string  `json:"created_at"`
}

// GetLedger handles GET /v1/trips/:id/ledger
func (h *SettlementHandler) GetLedger(c *gin.Context) {
	entries, err := h.settlementService.GetTripLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, LedgerEntryResponse{
			ID:            entry.ID,
			TripID:        entry.TripID,
			Account:       string(entry.Account),
			OwnerID:       entry.OwnerID,
			Amount:        entry.Amount,
			PaymentMethod: string(entry.PaymentMethod),
			CreatedAt:     entry.CreatedAt.Format(timeFormat),
		})
	}

	respondOK(c, response)
}

// WalletResponse is the HTTP representation of a wallet balance.
type WalletResponse struct {
	OwnerID string  `json:"owner_id"`
	Account string  `json:"account"`
	Balance float64 `json:"balance"`
}

// GetWallet handles GET /v1/wallets/:owner_id. The account defaults to the
// driver wallet; pass ?account=passenger_wallet for passengers.
func (h *SettlementHandler) GetWallet(c *gin.Context) {
	account := domain.Account(c.DefaultQuery("account", string(domain.AccountDriverWallet)))
	switch account {
	case domain.AccountDriverWallet, domain.AccountPassengerWallet, domain.AccountPlatformCommission:
	default:
		respondError(c, service.ErrInvalidUserID)
		return
	}

	wallet, err := h.settlementService.GetWallet(c.Request.Context(), c.Param("owner_id"), account)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, WalletResponse{
		OwnerID: wallet.OwnerID,
		Account: string(wallet.Account),
		Balance: wallet.Balance,
	})
}
