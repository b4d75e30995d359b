package handler

import (
	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// UserHandler handles HTTP requests for passengers.
type UserHandler struct {
	membershipService *service.MembershipService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(membershipService *service.MembershipService) *UserHandler {
	return &UserHandler{membershipService: membershipService}
}

// UserResponse is the HTTP representation of a passenger.
type UserResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Tier         string  `json:"tier"`
	RewardPoints int     `json:"reward_points"`
	RideCount    int     `json:"ride_count"`
	TopUpTotal   float64 `json:"top_up_total"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Phone:        user.Phone,
		Tier:         string(user.Tier),
		RewardPoints: user.RewardPoints,
		RideCount:    user.RideCount,
		TopUpTotal:   user.TopUpTotal,
	}
}

// RegisterUserRequest is the HTTP request body for registering a passenger.
type RegisterUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// Register handles POST /v1/users
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidUserID)
		return
	}

	user, err := h.membershipService.RegisterUser(c.Request.Context(), service.RegisterUserRequest{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, toUserResponse(user))
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.membershipService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.membershipService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, toUserResponse(user))
	}

	respondOK(c, response)
}

// TopUpRequest is the HTTP request body for a wallet top-up.
type TopUpRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// TopUpResponse carries the wallet balance after a top-up.
type TopUpResponse struct {
	OwnerID string  `json:"owner_id"`
	Balance float64 `json:"balance"`
}

// TopUp handles POST /v1/users/:id/topup
func (h *UserHandler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidTopUpAmount)
		return
	}

	wallet, err := h.membershipService.TopUp(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, TopUpResponse{OwnerID: wallet.OwnerID, Balance: wallet.Balance})
}
