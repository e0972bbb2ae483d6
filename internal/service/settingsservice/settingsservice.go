package settingsservice

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
	"github.com/ronsuru/taskquer/pkg/money"
)

type Repo interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

// Service serves system settings from memory. Stored values override the configured defaults.
type Service struct {
	repo      Repo
	txManager pg.TXManager
	defaults  domain.SystemSettings

	mu     sync.RWMutex
	cached *domain.SystemSettings
}

func New(repo Repo, txManager pg.TXManager, defaults domain.SystemSettings) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		defaults:  defaults,
	}
}

func (s *Service) Current(ctx context.Context) (domain.SystemSettings, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}
	return s.Load(ctx)
}

func (s *Service) Load(ctx context.Context) (domain.SystemSettings, error) {
	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		return domain.SystemSettings{}, err
	}

	settings := s.defaults
	settings.FeeRate = overlay(stored, domain.SettingFeeRate, settings.FeeRate, money.ParseRate)
	settings.WithdrawalFeeRate = overlay(stored, domain.SettingWithdrawalFeeRate, settings.WithdrawalFeeRate, money.ParseRate)
	settings.MinWithdrawal = overlay(stored, domain.SettingMinWithdrawal, settings.MinWithdrawal, money.Parse)

	s.mu.Lock()
	s.cached = &settings
	s.mu.Unlock()
	return settings, nil
}

func overlay(stored map[string]string, key string, fallback decimal.Decimal, parse func(string) (decimal.Decimal, error)) decimal.Decimal {
	raw, ok := stored[key]
	if !ok {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		zap.L().Warn("ignoring malformed setting", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return v
}

func (s *Service) Update(ctx context.Context, patch domain.SettingsPatch) (domain.SystemSettings, error) {
	values := map[string]string{}
	if patch.FeeRate != nil {
		if !validRate(*patch.FeeRate) {
			return domain.SystemSettings{}, domain.NewValidationError(domain.SettingFeeRate)
		}
		values[domain.SettingFeeRate] = patch.FeeRate.String()
	}
	if patch.WithdrawalFeeRate != nil {
		if !validRate(*patch.WithdrawalFeeRate) {
			return domain.SystemSettings{}, domain.NewValidationError(domain.SettingWithdrawalFeeRate)
		}
		values[domain.SettingWithdrawalFeeRate] = patch.WithdrawalFeeRate.String()
	}
	if patch.MinWithdrawal != nil {
		if !patch.MinWithdrawal.IsPositive() {
			return domain.SystemSettings{}, domain.NewValidationError(domain.SettingMinWithdrawal)
		}
		values[domain.SettingMinWithdrawal] = patch.MinWithdrawal.String()
	}
	if len(values) == 0 {
		return s.Current(ctx)
	}

	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		for key, value := range values {
			if err := s.repo.Upsert(ctx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to update settings", zap.Error(err))
		return domain.SystemSettings{}, err
	}
	return s.Load(ctx)
}

func validRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThan(decimal.NewFromInt(1))
}
