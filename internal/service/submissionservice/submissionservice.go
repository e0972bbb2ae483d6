package submissionservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
	"github.com/ronsuru/taskquer/pkg/events"
	"github.com/ronsuru/taskquer/pkg/metrics"
	"github.com/ronsuru/taskquer/pkg/validate"
)

type Repo interface {
	Create(ctx context.Context, s *domain.TaskSubmission) error
	GetByID(ctx context.Context, id string) (*domain.TaskSubmission, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.TaskSubmission, error)
	ListByUser(ctx context.Context, userID string) ([]domain.TaskSubmission, error)
	UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, reviewerID string) (*domain.TaskSubmission, error)
}

type CampaignRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	ReserveSlot(ctx context.Context, id string) (*domain.Campaign, error)
	ReleaseSlot(ctx context.Context, id string) (*domain.Campaign, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetForUpdate(ctx context.Context, id string) (*domain.User, error)
	CreditReward(ctx context.Context, id string, amount decimal.Decimal) error
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) error
}

type ObjectChecker interface {
	Exists(objectPath string) bool
}

type Service struct {
	repo         Repo
	campaignRepo CampaignRepo
	userRepo     UserRepo
	txRepo       TransactionRepo
	txManager    pg.TXManager
	objects      ObjectChecker
	publisher    events.Publisher
}

func New(
	repo Repo,
	campaignRepo CampaignRepo,
	userRepo UserRepo,
	txRepo TransactionRepo,
	txManager pg.TXManager,
	objects ObjectChecker,
	publisher events.Publisher,
) *Service {
	return &Service{
		repo:         repo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		txRepo:       txRepo,
		txManager:    txManager,
		objects:      objects,
		publisher:    publisher,
	}
}

// Submit claims one slot of an active campaign for userID. The slot decrement and the
// submission insert commit together, so a duplicate claim leaves the counter untouched.
func (s *Service) Submit(ctx context.Context, campaignID, userID string, proofType domain.ProofType, proofData string) (*domain.TaskSubmission, error) {
	if err := validate.Proof(string(proofType), proofData); err != nil {
		return nil, domain.NewValidationError("proof")
	}
	if proofType == domain.ProofImage && !s.objects.Exists(proofData) {
		return nil, domain.NewValidationError("proof")
	}

	campaign, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CreatorID == userID {
		return nil, domain.ErrForbidden
	}
	switch campaign.Status {
	case domain.CampaignDraft, domain.CampaignCancelled:
		return nil, domain.NewValidationError("campaign_not_active")
	case domain.CampaignCompleted:
		return nil, domain.ErrNoSlotsAvailable
	}
	if campaign.AvailableSlots <= 0 {
		return nil, domain.ErrNoSlotsAvailable
	}

	submission := &domain.TaskSubmission{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		UserID:     userID,
		ProofType:  proofType,
		ProofData:  proofData,
		Status:     domain.SubmissionPending,
		CreatedAt:  time.Now().UTC(),
	}
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.campaignRepo.ReserveSlot(ctx, campaignID); err != nil {
			return err
		}
		return s.repo.Create(ctx, submission)
	})
	if err != nil {
		zap.L().Info("submission not accepted", zap.String("campaignID", campaignID), zap.String("userID", userID), zap.Error(err))
		return nil, err
	}

	metrics.SubmissionsTotal.WithLabelValues(string(domain.SubmissionPending)).Inc()
	s.publisher.Publish(ctx, events.Event{
		Type:     events.SubmissionCreated,
		UserID:   campaign.CreatorID,
		EntityID: submission.ID,
		Status:   string(submission.Status),
	})
	return submission, nil
}

// Review settles a pending submission. Approval pays the campaign reward to the tasker
// in the same transaction as the status change; rejection gives the slot back.
func (s *Service) Review(ctx context.Context, submissionID string, decision domain.SubmissionStatus, reviewerID string) (*domain.TaskSubmission, error) {
	if decision != domain.SubmissionApproved && decision != domain.SubmissionRejected {
		return nil, domain.NewValidationError("decision")
	}

	submission, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, domain.ErrNotFound
	}
	campaign, err := s.getCampaign(ctx, submission.CampaignID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, campaign, reviewerID); err != nil {
		return nil, err
	}
	if submission.Status != domain.SubmissionPending {
		return nil, domain.ErrInvalidStateTransition
	}

	var reviewed *domain.TaskSubmission
	var tasker *domain.User
	if decision == domain.SubmissionRejected {
		err = s.txManager.Begin(ctx, func(ctx context.Context) error {
			var err error
			if reviewed, err = s.repo.UpdateStatus(ctx, submissionID, domain.SubmissionRejected, reviewerID); err != nil {
				return err
			}
			_, err = s.campaignRepo.ReleaseSlot(ctx, campaign.ID)
			return err
		})
	} else {
		err = s.txManager.Begin(ctx, func(ctx context.Context) error {
			var err error
			if tasker, err = s.userRepo.GetForUpdate(ctx, submission.UserID); err != nil {
				return err
			}
			if reviewed, err = s.repo.UpdateStatus(ctx, submissionID, domain.SubmissionApproved, reviewerID); err != nil {
				return err
			}
			reward := &domain.Transaction{
				ID:           uuid.NewString(),
				UserID:       submission.UserID,
				Type:         domain.TxReward,
				Amount:       campaign.RewardAmount,
				Fee:          decimal.Zero,
				Status:       domain.StatusCompleted,
				CampaignID:   &campaign.ID,
				SubmissionID: &submission.ID,
			}
			if err := s.txRepo.Create(ctx, reward); err != nil {
				return err
			}
			return s.userRepo.CreditReward(ctx, submission.UserID, campaign.RewardAmount)
		})
	}
	if err != nil {
		zap.L().Error("failed to review submission",
			zap.String("submissionID", submissionID),
			zap.String("decision", string(decision)),
			zap.Error(err))
		return nil, err
	}

	metrics.SubmissionsTotal.WithLabelValues(string(decision)).Inc()
	e := events.Event{UserID: submission.UserID, EntityID: submission.ID, Status: string(decision)}
	if decision == domain.SubmissionApproved {
		metrics.AddAmount(metrics.RewardsPaid, campaign.RewardAmount)
		e.Type, e.Amount = events.SubmissionApproved, campaign.RewardAmount
	} else {
		e.Type = events.SubmissionRejected
		tasker, _ = s.userRepo.GetByID(ctx, submission.UserID)
	}
	if tasker != nil {
		e.TelegramID = tasker.TelegramID
	}
	s.publisher.Publish(ctx, e)
	return reviewed, nil
}

// ListByCampaign is visible to the campaign creator and to admins.
func (s *Service) ListByCampaign(ctx context.Context, campaignID, requesterID string) ([]domain.TaskSubmission, error) {
	campaign, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, campaign, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListByCampaign(ctx, campaignID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.TaskSubmission, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) getCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, domain.ErrNotFound
	}
	return campaign, nil
}

func (s *Service) authorize(ctx context.Context, campaign *domain.Campaign, userID string) error {
	if campaign.CreatorID == userID {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
