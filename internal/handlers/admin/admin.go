package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/internal/handlers/httperr"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/utils"
)

type Service interface {
	AdjustBalance(ctx context.Context, adminID, userID string, action domain.AdjustmentAction, amount decimal.Decimal) (*domain.BalanceAdjustment, error)
	UpdateSystemSettings(ctx context.Context, adminID string, patch domain.SettingsPatch) (domain.SystemSettings, error)
	ListAdjustments(ctx context.Context, userID string) ([]domain.BalanceAdjustment, error)
	SetCampaignSlots(ctx context.Context, adminID, campaignID string, available int) (*domain.Campaign, error)
	ListActions(ctx context.Context, limit int) ([]domain.AdminAction, error)
}

type Settings interface {
	Current(ctx context.Context) (domain.SystemSettings, error)
}

type AdminHandler struct {
	adminService Service
	settings     Settings
}

func New(adminService Service, settings Settings) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		settings:     settings,
	}
}

// AdjustBalance godoc
//
//	@Summary		Override a user's balance
//	@Description	set replaces the balance, add and deduct change it by amount. The balance never goes below zero.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"user id"
//	@Param			action	path		string							true	"set, add or deduct"
//	@Param			request	body		dto.BalanceAdjustmentRequestDTO	true	"Amount"
//	@Success		200		{object}	dto.BalanceAdjustmentResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		402		{object}	utils.Response	"Balance would go negative"
//	@Failure		403		{object}	utils.Response	"Admins only"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Failure		422		{object}	utils.Response	"Unknown action or bad amount"
//	@Router			/api/admin/users/{id}/balance/{action} [post]
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.BalanceAdjustmentRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	adj, err := h.adminService.AdjustBalance(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"),
		domain.AdjustmentAction(chi.URLParam(r, "action")), req.Amount)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceAdjustmentResponse(adj))
}

// Adjustments godoc
//
//	@Summary	Balance adjustment audit trail of a user
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"user id"
//	@Success	200	{array}		dto.BalanceAdjustmentResponseDTO
//	@Router		/api/admin/users/{id}/adjustments [get]
func (h *AdminHandler) Adjustments(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.adminService.ListAdjustments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	out := make([]dto.BalanceAdjustmentResponseDTO, len(adjustments))
	for i := range adjustments {
		out[i] = dto.NewBalanceAdjustmentResponse(&adjustments[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// Actions godoc
//
//	@Summary		Audit trail of settings changes and slot corrections
//	@Description	Newest first.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"page size, at most 100"
//	@Success		200		{array}		dto.AdminActionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid limit"
//	@Router			/api/admin/actions [get]
func (h *AdminHandler) Actions(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}
	actions, err := h.adminService.ListActions(r.Context(), limit)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	out := make([]dto.AdminActionResponseDTO, len(actions))
	for i := range actions {
		out[i] = dto.NewAdminActionResponse(&actions[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// SetCampaignSlots godoc
//
//	@Summary		Correct a campaign's available slots
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"campaign id"
//	@Param			request	body		dto.CampaignSlotsRequestDTO	true	"New counter"
//	@Success		200		{object}	dto.CampaignResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		404		{object}	utils.Response	"Campaign not found"
//	@Failure		422		{object}	utils.Response	"Outside 0..total_slots"
//	@Router			/api/admin/campaigns/{id}/slots [post]
func (h *AdminHandler) SetCampaignSlots(w http.ResponseWriter, r *http.Request) {
	var req dto.CampaignSlotsRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	campaign, err := h.adminService.SetCampaignSlots(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), req.AvailableSlots)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCampaignResponse(campaign))
}

// GetSettings godoc
//
//	@Summary	Current fee rates and withdrawal minimum
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	dto.SettingsDTO
//	@Router		/api/admin/settings [get]
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Current(r.Context())
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewSettingsResponse(settings))
}

// UpdateSettings godoc
//
//	@Summary		Change fee rates or withdrawal minimum
//	@Description	Omitted fields keep their value. Rates must be in [0, 1), the minimum must be positive.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SettingsDTO	true	"Fields to change"
//	@Success		200		{object}	dto.SettingsDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		422		{object}	utils.Response	"Value out of range"
//	@Router			/api/admin/settings [put]
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	settings, err := h.adminService.UpdateSystemSettings(r.Context(), auth.UserID(r.Context()), req.Patch())
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewSettingsResponse(settings))
}
