package users

import (
	"context"
	"net/http"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/internal/handlers/httperr"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/utils"
)

type Service interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateWallet(ctx context.Context, userID, wallet string) (*domain.User, error)
	Transactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Me godoc
//
//	@Summary		Current user
//	@Description	Profile and ledger balances of the authenticated user.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.UserResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Me(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// UpdateWallet godoc
//
//	@Summary		Set payout wallet
//	@Description	Store a TON address used as the default withdrawal destination.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.UpdateWalletRequestDTO	true	"Wallet address"
//	@Success		200		{object}	dto.UserResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		422		{object}	utils.Response	"Invalid address"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users/me/wallet [put]
func (h *UserHandler) UpdateWallet(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWalletRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.userService.UpdateWallet(r.Context(), auth.UserID(r.Context()), req.WalletAddress)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// Transactions godoc
//
//	@Summary		Ledger history
//	@Description	Deposits, rewards and withdrawals of the authenticated user, newest first.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/me/transactions [get]
func (h *UserHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.userService.Transactions(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionsResponse(txs))
}
