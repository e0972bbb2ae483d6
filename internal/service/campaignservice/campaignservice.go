package campaignservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
	"github.com/ronsuru/taskquer/pkg/chain"
	"github.com/ronsuru/taskquer/pkg/events"
	"github.com/ronsuru/taskquer/pkg/metrics"
	"github.com/ronsuru/taskquer/pkg/money"
	"github.com/ronsuru/taskquer/pkg/validate"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	fundGuardTTL = 2 * time.Minute
)

type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	Create(ctx context.Context, c *domain.Campaign) error
	List(ctx context.Context, f domain.CampaignFilter) ([]domain.Campaign, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.CampaignStatus) error
}

type TransactionRepo interface {
	GetByHash(ctx context.Context, hash string) (*domain.Transaction, error)
	Create(ctx context.Context, tx *domain.Transaction) error
}

type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Verifier interface {
	VerifyTransaction(ctx context.Context, hash string) (*chain.Verification, error)
}

type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string)
}

type Settings interface {
	Current(ctx context.Context) (domain.SystemSettings, error)
}

type Service struct {
	repo         Repo
	txRepo       TransactionRepo
	userRepo     UserRepo
	txManager    pg.TXManager
	verifier     Verifier
	guard        Guard
	settings     Settings
	publisher    events.Publisher
	chainTimeout time.Duration
}

func New(
	repo Repo,
	txRepo TransactionRepo,
	userRepo UserRepo,
	txManager pg.TXManager,
	verifier Verifier,
	guard Guard,
	settings Settings,
	publisher events.Publisher,
	chainTimeout time.Duration,
) *Service {
	return &Service{
		repo:         repo,
		txRepo:       txRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		verifier:     verifier,
		guard:        guard,
		settings:     settings,
		publisher:    publisher,
		chainTimeout: chainTimeout,
	}
}

func validateTerms(reward decimal.Decimal, slots int) error {
	if slots < domain.MinCampaignSlots {
		return domain.NewValidationError("min_slots")
	}
	if reward.LessThan(domain.MinRewardAmount) {
		return domain.NewValidationError("min_reward")
	}
	return nil
}

// CalculateTotalCost previews what funding a campaign with these terms will cost.
func (s *Service) CalculateTotalCost(ctx context.Context, reward decimal.Decimal, slots int) (money.Cost, error) {
	if err := validateTerms(reward, slots); err != nil {
		return money.Cost{}, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return money.Cost{}, err
	}
	return money.TotalCost(money.Escrow(reward, slots), settings.FeeRate), nil
}

func (s *Service) Create(ctx context.Context, creatorID string, input domain.CampaignInput) (*domain.Campaign, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.NewValidationError("title_required")
	}
	if err := validateTerms(input.RewardAmount, input.TotalSlots); err != nil {
		return nil, err
	}
	if input.TaskURL != "" && !validate.URL(input.TaskURL) {
		return nil, domain.NewValidationError("task_url")
	}

	cost, err := s.CalculateTotalCost(ctx, input.RewardAmount, input.TotalSlots)
	if err != nil {
		return nil, err
	}

	campaign := &domain.Campaign{
		ID:             uuid.NewString(),
		CreatorID:      creatorID,
		Title:          input.Title,
		Description:    input.Description,
		Platform:       input.Platform,
		TaskType:       input.TaskType,
		TaskURL:        input.TaskURL,
		TotalSlots:     input.TotalSlots,
		AvailableSlots: input.TotalSlots,
		RewardAmount:   input.RewardAmount,
		EscrowAmount:   cost.Subtotal,
		Fee:            cost.Fee,
		Status:         domain.CampaignDraft,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		zap.L().Error("failed to create campaign", zap.String("creatorID", creatorID), zap.Error(err))
		return nil, err
	}
	return campaign, nil
}

// Fund activates a draft campaign once the deposit behind txHash is verified on chain,
// was sent from the creator's saved wallet and covers escrow plus fee. A hash can fund
// at most one campaign.
func (s *Service) Fund(ctx context.Context, campaignID, txHash, userID string) (*domain.Campaign, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return nil, domain.NewValidationError("tx_hash")
	}

	campaign, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CreatorID != userID {
		return nil, domain.ErrForbidden
	}
	if campaign.Status != domain.CampaignDraft {
		return nil, domain.ErrInvalidStateTransition
	}
	creator, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, domain.ErrNotFound
	}
	if creator.WalletAddress == "" {
		return nil, domain.NewValidationError("wallet_required")
	}

	guardKey := "fund:" + txHash
	acquired, err := s.guard.Acquire(ctx, guardKey, fundGuardTTL)
	switch {
	case err != nil:
		zap.L().Warn("funding guard unavailable, relying on unique hash", zap.String("hash", txHash), zap.Error(err))
	case !acquired:
		return nil, domain.ErrDuplicateTransaction
	default:
		defer s.guard.Release(context.WithoutCancel(ctx), guardKey)
	}

	existing, err := s.txRepo.GetByHash(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateTransaction
	}

	required := campaign.EscrowAmount.Add(campaign.Fee)
	verified, err := s.verifyDeposit(ctx, txHash, creator.WalletAddress, required)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		deposit := &domain.Transaction{
			ID:         uuid.NewString(),
			UserID:     userID,
			Type:       domain.TxDeposit,
			Amount:     verified,
			Fee:        campaign.Fee,
			Status:     domain.StatusCompleted,
			Hash:       &txHash,
			CampaignID: &campaign.ID,
		}
		if err := s.txRepo.Create(ctx, deposit); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, campaign.ID, domain.CampaignDraft, domain.CampaignActive)
	})
	if err != nil {
		zap.L().Error("failed to fund campaign", zap.String("campaignID", campaign.ID), zap.String("hash", txHash), zap.Error(err))
		return nil, err
	}

	campaign.Status = domain.CampaignActive
	metrics.CampaignsFundedTotal.Inc()
	s.notify(ctx, events.CampaignFunded, campaign)
	zap.L().Info("campaign funded", zap.String("campaignID", campaign.ID), zap.String("hash", txHash))
	return campaign, nil
}

// verifyDeposit returns the amount the chain reports for txHash. It may exceed required.
func (s *Service) verifyDeposit(ctx context.Context, txHash, sender string, required decimal.Decimal) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	defer cancel()

	v, err := s.verifier.VerifyTransaction(ctx, txHash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrInvalidTransaction, err)
	}
	if !v.Valid {
		return decimal.Zero, domain.ErrInvalidTransaction
	}
	if !v.SentFrom(sender) {
		return decimal.Zero, fmt.Errorf("%w: deposit was not sent from %s", domain.ErrInvalidTransaction, sender)
	}
	if v.Amount.LessThan(required) {
		return decimal.Zero, fmt.Errorf("%w: deposit %s is below required %s", domain.ErrInvalidTransaction, v.Amount, required)
	}
	return v.Amount, nil
}

// Cancel withdraws a campaign that was never funded.
func (s *Service) Cancel(ctx context.Context, campaignID, userID string) (*domain.Campaign, error) {
	campaign, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CreatorID != userID {
		return nil, domain.ErrForbidden
	}
	if err := s.repo.UpdateStatus(ctx, campaign.ID, domain.CampaignDraft, domain.CampaignCancelled); err != nil {
		return nil, err
	}
	campaign.Status = domain.CampaignCancelled
	return campaign, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, domain.ErrNotFound
	}
	return campaign, nil
}

func (s *Service) List(ctx context.Context, f domain.CampaignFilter) ([]domain.Campaign, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) notify(ctx context.Context, t events.Type, c *domain.Campaign) {
	e := events.Event{Type: t, UserID: c.CreatorID, EntityID: c.ID, Amount: c.EscrowAmount, Status: string(c.Status)}
	if user, err := s.userRepo.GetByID(ctx, c.CreatorID); err == nil && user != nil {
		e.TelegramID = user.TelegramID
	}
	s.publisher.Publish(ctx, e)
}
