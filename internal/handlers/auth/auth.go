package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/internal/handlers/httperr"
	"github.com/ronsuru/taskquer/pkg/utils"
)

type Service interface {
	LoginTelegram(ctx context.Context, rawInitData string) (*domain.User, error)
	GenerateToken(user *domain.User) (string, time.Time, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginTelegram godoc
//
//	@Summary		Log in from the Telegram Mini App
//	@Description	Validate Mini App init data, register the user on first login and issue a JWT.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TelegramLoginRequestDTO	true	"Raw init data"
//	@Success		200		{object}	dto.LoginResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Init data is forged or expired"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/telegram [post]
func (h *AuthHandler) LoginTelegram(w http.ResponseWriter, r *http.Request) {
	var req dto.TelegramLoginRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.InitData) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.LoginTelegram(r.Context(), req.InitData)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	token, expiresAt, err := h.authService.GenerateToken(user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.LoginResponseDTO{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	})
}
