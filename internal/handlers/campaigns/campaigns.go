package campaigns

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
	"github.com/ronsuru/taskquer/pkg/money"
	"github.com/ronsuru/taskquer/pkg/utils"
)

type Service interface {
	CalculateTotalCost(ctx context.Context, reward decimal.Decimal, slots int) (money.Cost, error)
	Create(ctx context.Context, creatorID string, input domain.CampaignInput) (*domain.Campaign, error)
	Fund(ctx context.Context, campaignID, txHash, userID string) (*domain.Campaign, error)
	Cancel(ctx context.Context, campaignID, userID string) (*domain.Campaign, error)
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context, f domain.CampaignFilter) ([]domain.Campaign, error)
}

type CampaignHandler struct {
	campaignService Service
}

func New(campaignService Service) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

// List godoc
//
//	@Summary		List campaigns
//	@Description	Campaigns newest first. creator=me restricts the list to the caller's own campaigns.
//	@Tags			Campaigns
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"draft, active, completed or cancelled"
//	@Param			creator	query		string	false	"creator id or me"
//	@Param			limit	query		int		false	"page size, at most 100"
//	@Param			offset	query		int		false	"page offset"
//	@Success		200		{array}		dto.CampaignResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid paging"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/campaigns [get]
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.CampaignFilter{
		Status:    domain.CampaignStatus(q.Get("status")),
		CreatorID: q.Get("creator"),
	}
	if f.CreatorID == "me" {
		f.CreatorID = auth.UserID(r.Context())
	}
	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	campaigns, err := h.campaignService.List(r.Context(), f)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCampaignsResponse(campaigns))
}

// Create godoc
//
//	@Summary		Create a campaign
//	@Description	Create a draft campaign. It becomes active once funded.
//	@Tags			Campaigns
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateCampaignRequestDTO	true	"Campaign terms"
//	@Success		201		{object}	dto.CampaignResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		422		{object}	utils.Response	"Terms below minimums"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/campaigns [post]
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCampaignRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	campaign, err := h.campaignService.Create(r.Context(), auth.UserID(r.Context()), req.Input())
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewCampaignResponse(campaign))
}

// Cost godoc
//
//	@Summary		Preview funding cost
//	@Description	Escrow subtotal, platform fee and total for the given terms.
//	@Tags			Campaigns
//	@Security		BearerAuth
//	@Produce		json
//	@Param			reward	query		string	true	"reward per slot"
//	@Param			slots	query		int		true	"number of slots"
//	@Success		200		{object}	dto.CostResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid query"
//	@Failure		422		{object}	utils.Response	"Terms below minimums"
//	@Router			/api/campaigns/cost [get]
func (h *CampaignHandler) Cost(w http.ResponseWriter, r *http.Request) {
	reward, err := money.Parse(r.URL.Query().Get("reward"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reward")
		return
	}
	slots, err := strconv.Atoi(r.URL.Query().Get("slots"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid slots")
		return
	}
	cost, err := h.campaignService.CalculateTotalCost(r.Context(), reward, slots)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCostResponse(cost))
}

// Get godoc
//
//	@Summary		Get a campaign
//	@Tags			Campaigns
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"campaign id"
//	@Success		200	{object}	dto.CampaignResponseDTO
//	@Failure		404	{object}	utils.Response	"Campaign not found"
//	@Router			/api/campaigns/{id} [get]
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCampaignResponse(campaign))
}

// Fund godoc
//
//	@Summary		Fund a campaign
//	@Description	Verify the deposit transaction on chain and activate the campaign. The deposit must come from the creator's saved wallet. Each hash funds one campaign.
//	@Tags			Campaigns
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"campaign id"
//	@Param			request	body		dto.FundCampaignRequestDTO	true	"Deposit hash"
//	@Success		200		{object}	dto.CampaignResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Not the campaign creator"
//	@Failure		404		{object}	utils.Response	"Campaign not found"
//	@Failure		409		{object}	utils.Response	"Already funded or hash already used"
//	@Failure		422		{object}	utils.Response	"No wallet saved, or deposit missing, too small or from another wallet"
//	@Router			/api/campaigns/{id}/fund [post]
func (h *CampaignHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundCampaignRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	campaign, err := h.campaignService.Fund(r.Context(), chi.URLParam(r, "id"), req.TxHash, auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCampaignResponse(campaign))
}

// Cancel godoc
//
//	@Summary		Cancel an unfunded campaign
//	@Tags			Campaigns
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"campaign id"
//	@Success		200	{object}	dto.CampaignResponseDTO
//	@Failure		403	{object}	utils.Response	"Not the campaign creator"
//	@Failure		404	{object}	utils.Response	"Campaign not found"
//	@Failure		409	{object}	utils.Response	"Campaign is not a draft"
//	@Router			/api/campaigns/{id}/cancel [post]
func (h *CampaignHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.Cancel(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCampaignResponse(campaign))
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
