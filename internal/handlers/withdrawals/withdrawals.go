package withdrawals

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/internal/handlers/httperr"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/utils"
)

type Service interface {
	Request(ctx context.Context, userID string, amount decimal.Decimal, destination string) (*domain.Withdrawal, error)
	List(ctx context.Context, userID string) ([]domain.Withdrawal, error)
}

type UserService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type WithdrawalHandler struct {
	withdrawalService Service
	userService       UserService
}

func New(withdrawalService Service, userService UserService) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
		userService:       userService,
	}
}

// Request godoc
//
//	@Summary		Withdraw balance
//	@Description	Debits amount, sends amount minus the withdrawal fee to the destination wallet.
//	@Description	Without destination_wallet the saved wallet is used. A failed payout is refunded and reported with status "failed".
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawRequestDTO	true	"Amount and destination"
//	@Success		201		{object}	dto.WithdrawalResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		402		{object}	utils.Response	"Insufficient balance"
//	@Failure		422		{object}	utils.Response	"Invalid address or amount"
//	@Router			/api/withdrawals [post]
func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := auth.UserID(r.Context())
	destination := strings.TrimSpace(req.DestinationWallet)
	if destination == "" {
		user, err := h.userService.Me(r.Context(), userID)
		if err != nil {
			httperr.Respond(w, err)
			return
		}
		if user.WalletAddress == "" {
			httperr.Respond(w, domain.ErrInvalidAddress)
			return
		}
		destination = user.WalletAddress
	}

	withdrawal, err := h.withdrawalService.Request(r.Context(), userID, req.Amount, destination)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewWithdrawalResponse(withdrawal))
}

// List godoc
//
//	@Summary	Withdrawal history
//	@Tags		Withdrawals
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		dto.WithdrawalResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Router		/api/withdrawals [get]
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.withdrawalService.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalsResponse(withdrawals))
}
