package submissions

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/internal/handlers/httperr"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/utils"
)

type Service interface {
	Submit(ctx context.Context, campaignID, userID string, proofType domain.ProofType, proofData string) (*domain.TaskSubmission, error)
	Review(ctx context.Context, submissionID string, decision domain.SubmissionStatus, reviewerID string) (*domain.TaskSubmission, error)
	ListByCampaign(ctx context.Context, campaignID, requesterID string) ([]domain.TaskSubmission, error)
	ListByUser(ctx context.Context, userID string) ([]domain.TaskSubmission, error)
}

type SubmissionHandler struct {
	submissionService Service
}

func New(submissionService Service) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// Submit godoc
//
//	@Summary		Claim a slot
//	@Description	Submit proof of a completed task. Each tasker claims at most one slot per campaign.
//	@Tags			Submissions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"campaign id"
//	@Param			request	body		dto.SubmitRequestDTO	true	"Proof"
//	@Success		201		{object}	dto.SubmissionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Creators cannot claim their own campaign"
//	@Failure		404		{object}	utils.Response	"Campaign not found"
//	@Failure		409		{object}	utils.Response	"No slots left or already submitted"
//	@Failure		422		{object}	utils.Response	"Invalid proof or campaign not active"
//	@Router			/api/campaigns/{id}/submissions [post]
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	submission, err := h.submissionService.Submit(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()),
		domain.ProofType(req.ProofType), req.ProofData)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewSubmissionResponse(submission))
}

// ListByCampaign godoc
//
//	@Summary		Submissions of a campaign
//	@Description	Visible to the campaign creator and to admins.
//	@Tags			Submissions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"campaign id"
//	@Success		200	{array}		dto.SubmissionResponseDTO
//	@Failure		403	{object}	utils.Response	"Not the campaign creator"
//	@Failure		404	{object}	utils.Response	"Campaign not found"
//	@Router			/api/campaigns/{id}/submissions [get]
func (h *SubmissionHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.submissionService.ListByCampaign(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewSubmissionsResponse(submissions))
}

// Mine godoc
//
//	@Summary		Own submissions
//	@Tags			Submissions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.SubmissionResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/submissions [get]
func (h *SubmissionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.submissionService.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewSubmissionsResponse(submissions))
}

// Review godoc
//
//	@Summary		Review a submission
//	@Description	Approve to pay the reward or reject to return the slot. Pending submissions only.
//	@Tags			Submissions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"submission id"
//	@Param			request	body		dto.ReviewRequestDTO	true	"approved or rejected"
//	@Success		200		{object}	dto.SubmissionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Not the campaign creator"
//	@Failure		404		{object}	utils.Response	"Submission not found"
//	@Failure		409		{object}	utils.Response	"Already reviewed"
//	@Failure		422		{object}	utils.Response	"Unknown decision"
//	@Router			/api/submissions/{id}/review [post]
func (h *SubmissionHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req dto.ReviewRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	submission, err := h.submissionService.Review(r.Context(), chi.URLParam(r, "id"),
		domain.SubmissionStatus(req.Decision), auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewSubmissionResponse(submission))
}
