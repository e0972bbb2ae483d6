package adminservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
	"github.com/ronsuru/taskquer/pkg/metrics"
)

const maxActions = 100

type UserRepo interface {
	GetForUpdate(ctx context.Context, id string) (*domain.User, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

type AdjustmentRepo interface {
	Create(ctx context.Context, adj *domain.BalanceAdjustment) error
	ListByUser(ctx context.Context, userID string) ([]domain.BalanceAdjustment, error)
}

type ActionRepo interface {
	Create(ctx context.Context, a *domain.AdminAction) error
	List(ctx context.Context, limit int) ([]domain.AdminAction, error)
}

type CampaignRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	UpdateSlots(ctx context.Context, id string, available int) error
}

type Settings interface {
	Current(ctx context.Context) (domain.SystemSettings, error)
	Load(ctx context.Context) (domain.SystemSettings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (domain.SystemSettings, error)
}

type Service struct {
	userRepo       UserRepo
	adjustmentRepo AdjustmentRepo
	actionRepo     ActionRepo
	campaignRepo   CampaignRepo
	txManager      pg.TXManager
	settings       Settings
}

func New(userRepo UserRepo, adjustmentRepo AdjustmentRepo, actionRepo ActionRepo, campaignRepo CampaignRepo, txManager pg.TXManager, settings Settings) *Service {
	return &Service{
		userRepo:       userRepo,
		adjustmentRepo: adjustmentRepo,
		actionRepo:     actionRepo,
		campaignRepo:   campaignRepo,
		txManager:      txManager,
		settings:       settings,
	}
}

func (s *Service) SetBalance(ctx context.Context, adminID, userID string, amount decimal.Decimal) (*domain.BalanceAdjustment, error) {
	return s.AdjustBalance(ctx, adminID, userID, domain.AdjustSet, amount)
}

func (s *Service) AddBalance(ctx context.Context, adminID, userID string, amount decimal.Decimal) (*domain.BalanceAdjustment, error) {
	return s.AdjustBalance(ctx, adminID, userID, domain.AdjustAdd, amount)
}

func (s *Service) DeductBalance(ctx context.Context, adminID, userID string, amount decimal.Decimal) (*domain.BalanceAdjustment, error) {
	return s.AdjustBalance(ctx, adminID, userID, domain.AdjustDeduct, amount)
}

// AdjustBalance overrides a user's balance outside the business flows. Minimum amounts do not
// apply, but the balance never goes negative and every change leaves an audit row.
func (s *Service) AdjustBalance(ctx context.Context, adminID, userID string, action domain.AdjustmentAction, amount decimal.Decimal) (*domain.BalanceAdjustment, error) {
	switch action {
	case domain.AdjustSet, domain.AdjustAdd, domain.AdjustDeduct:
	default:
		return nil, domain.NewValidationError("action")
	}
	if amount.IsNegative() {
		return nil, domain.NewValidationError("amount")
	}
	if action != domain.AdjustSet && amount.IsZero() {
		return nil, domain.NewValidationError("amount")
	}

	adj := &domain.BalanceAdjustment{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		UserID:    userID,
		Action:    action,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		adj.PreviousBalance = user.Balance
		switch action {
		case domain.AdjustSet:
			adj.NewBalance = amount
		case domain.AdjustAdd:
			adj.NewBalance = user.Balance.Add(amount)
		case domain.AdjustDeduct:
			adj.NewBalance = user.Balance.Sub(amount)
		}
		if adj.NewBalance.IsNegative() {
			return domain.ErrInsufficientBalance
		}
		if err := s.userRepo.UpdateBalance(ctx, userID, adj.NewBalance); err != nil {
			return err
		}
		return s.adjustmentRepo.Create(ctx, adj)
	})
	if err != nil {
		zap.L().Warn("balance adjustment not applied",
			zap.String("adminID", adminID),
			zap.String("userID", userID),
			zap.String("action", string(action)),
			zap.Error(err))
		return nil, err
	}

	metrics.BalanceAdjustmentsTotal.WithLabelValues(string(action)).Inc()
	zap.L().Info("balance adjusted",
		zap.String("adminID", adminID),
		zap.String("userID", userID),
		zap.String("action", string(action)),
		zap.String("previous", adj.PreviousBalance.String()),
		zap.String("new", adj.NewBalance.String()))
	return adj, nil
}

// UpdateSystemSettings applies patch and records the previous and new values in one transaction.
func (s *Service) UpdateSystemSettings(ctx context.Context, adminID string, patch domain.SettingsPatch) (domain.SystemSettings, error) {
	var updated domain.SystemSettings
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		previous, err := s.settings.Current(ctx)
		if err != nil {
			return err
		}
		if updated, err = s.settings.Update(ctx, patch); err != nil {
			return err
		}
		return s.audit(ctx, adminID, domain.AdminSettingsUpdate, "system_settings", settingsSnapshot(previous), settingsSnapshot(updated))
	})
	if err != nil {
		if _, loadErr := s.settings.Load(context.WithoutCancel(ctx)); loadErr != nil {
			zap.L().Error("failed to reload settings after rollback", zap.Error(loadErr))
		}
		return domain.SystemSettings{}, err
	}
	zap.L().Info("system settings updated",
		zap.String("adminID", adminID),
		zap.String("feeRate", updated.FeeRate.String()),
		zap.String("withdrawalFeeRate", updated.WithdrawalFeeRate.String()),
		zap.String("minWithdrawal", updated.MinWithdrawal.String()))
	return updated, nil
}

func (s *Service) ListAdjustments(ctx context.Context, userID string) ([]domain.BalanceAdjustment, error) {
	return s.adjustmentRepo.ListByUser(ctx, userID)
}

func (s *Service) ListActions(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	if limit <= 0 || limit > maxActions {
		limit = maxActions
	}
	return s.actionRepo.List(ctx, limit)
}

// SetCampaignSlots corrects a campaign's available slot counter. The status is left alone.
func (s *Service) SetCampaignSlots(ctx context.Context, adminID, campaignID string, available int) (*domain.Campaign, error) {
	var campaign *domain.Campaign
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		if campaign, err = s.campaignRepo.GetByID(ctx, campaignID); err != nil {
			return err
		}
		if campaign == nil {
			return domain.ErrNotFound
		}
		if err := s.campaignRepo.UpdateSlots(ctx, campaignID, available); err != nil {
			return err
		}
		previous := campaign.AvailableSlots
		campaign.AvailableSlots = available
		return s.audit(ctx, adminID, domain.AdminCampaignSlots, campaignID, slotsSnapshot(previous), slotsSnapshot(available))
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("campaign slots set",
		zap.String("adminID", adminID),
		zap.String("campaignID", campaignID),
		zap.Int("available", available))
	return campaign, nil
}

func (s *Service) audit(ctx context.Context, adminID string, action domain.AdminActionType, target, previous, next string) error {
	return s.actionRepo.Create(ctx, &domain.AdminAction{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Action:    action,
		Target:    target,
		Previous:  previous,
		New:       next,
		CreatedAt: time.Now().UTC(),
	})
}

func settingsSnapshot(v domain.SystemSettings) string {
	b, _ := json.Marshal(map[string]string{
		domain.SettingFeeRate:           v.FeeRate.String(),
		domain.SettingWithdrawalFeeRate: v.WithdrawalFeeRate.String(),
		domain.SettingMinWithdrawal:     v.MinWithdrawal.String(),
	})
	return string(b)
}

func slotsSnapshot(available int) string {
	b, _ := json.Marshal(map[string]int{"available_slots": available})
	return string(b)
}
