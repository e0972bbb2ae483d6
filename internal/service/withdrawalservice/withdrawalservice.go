package withdrawalservice

import (
	"context"
	"errors"
	"strings"
	"sync"
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
)

const (
	errPayoutRejected = "payout rejected"
	errPayoutMissing  = "payout not found at gateway"
)

type Repo interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Withdrawal, error)
	FindStale(ctx context.Context, before time.Time, limit int) ([]domain.Withdrawal, error)
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, hash *string, errMsg string) error
}

type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetForUpdate(ctx context.Context, id string) (*domain.User, error)
	Debit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
	Credit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	UpdateStatusByWithdrawal(ctx context.Context, withdrawalID string, status domain.TransactionStatus, hash *string) error
}

type Payouts interface {
	ProcessWithdrawal(ctx context.Context, req chain.PayoutRequest) (*chain.PayoutResult, error)
	LookupWithdrawal(ctx context.Context, id string) (*chain.PayoutResult, error)
}

type AddressValidator interface {
	ValidateAddress(address string) bool
}

type Settings interface {
	Current(ctx context.Context) (domain.SystemSettings, error)
}

type Service struct {
	repo         Repo
	userRepo     UserRepo
	txRepo       TransactionRepo
	txManager    pg.TXManager
	payouts      Payouts
	addresses    AddressValidator
	settings     Settings
	publisher    events.Publisher
	chainTimeout time.Duration

	settling sync.WaitGroup
}

func New(
	repo Repo,
	userRepo UserRepo,
	txRepo TransactionRepo,
	txManager pg.TXManager,
	payouts Payouts,
	addresses AddressValidator,
	settings Settings,
	publisher events.Publisher,
	chainTimeout time.Duration,
) *Service {
	return &Service{
		repo:         repo,
		userRepo:     userRepo,
		txRepo:       txRepo,
		txManager:    txManager,
		payouts:      payouts,
		addresses:    addresses,
		settings:     settings,
		publisher:    publisher,
		chainTimeout: chainTimeout,
	}
}

// Request debits amount from the user and pays amount minus the withdrawal fee to destination.
// Once the debit commits the withdrawal always ends completed or refunded; a failed payout
// is reported through the returned withdrawal's status, not as an error.
func (s *Service) Request(ctx context.Context, userID string, amount decimal.Decimal, destination string) (*domain.Withdrawal, error) {
	destination = strings.TrimSpace(destination)
	if !s.addresses.ValidateAddress(destination) {
		return nil, domain.ErrInvalidAddress
	}
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("amount")
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(settings.MinWithdrawal) {
		return nil, domain.NewValidationError("min_withdrawal")
	}

	payout, fee := money.Payout(amount, settings.WithdrawalFeeRate)
	withdrawal := &domain.Withdrawal{
		ID:                uuid.NewString(),
		UserID:            userID,
		Amount:            payout,
		Fee:               fee,
		DestinationWallet: destination,
		Status:            domain.StatusPending,
		CreatedAt:         time.Now().UTC(),
	}

	var user *domain.User
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.userRepo.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		if user.Balance.LessThan(amount) {
			return domain.ErrInsufficientBalance
		}
		if err := s.repo.Create(ctx, withdrawal); err != nil {
			return err
		}
		if _, err := s.userRepo.Debit(ctx, userID, amount); err != nil {
			return err
		}
		return s.txRepo.Create(ctx, &domain.Transaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Type:         domain.TxWithdrawal,
			Amount:       payout,
			Fee:          fee,
			Status:       domain.StatusPending,
			WithdrawalID: &withdrawal.ID,
			CreatedAt:    withdrawal.CreatedAt,
		})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			zap.L().Error("failed to record withdrawal", zap.String("userID", userID), zap.Error(err))
		}
		return nil, err
	}

	// From here on the debit is committed; the caller leaving must not strand it.
	s.settling.Add(1)
	defer s.settling.Done()
	ctx = context.WithoutCancel(ctx)
	result, err := s.process(ctx, withdrawal)
	switch {
	case err != nil:
		zap.L().Warn("payout failed", zap.String("withdrawalID", withdrawal.ID), zap.Error(err))
		s.settle(ctx, withdrawal, user, domain.StatusFailed, nil, err.Error())
	case result.Success():
		hash := result.Hash
		s.settle(ctx, withdrawal, user, domain.StatusCompleted, &hash, "")
	case result.Status == chain.PayoutProcessing:
		zap.L().Info("payout still processing, left for reconciliation", zap.String("withdrawalID", withdrawal.ID))
	default:
		s.settle(ctx, withdrawal, user, domain.StatusFailed, nil, failureReason(result, errPayoutRejected))
	}
	return withdrawal, nil
}

// Drain waits for payouts already started by Request to settle, or for ctx to end.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.settling.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) process(ctx context.Context, w *domain.Withdrawal) (*chain.PayoutResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	defer cancel()
	return s.payouts.ProcessWithdrawal(ctx, chain.PayoutRequest{
		ID:          w.ID,
		Destination: w.DestinationWallet,
		Amount:      w.Amount,
	})
}

// settle writes the final status of w. A failed withdrawal refunds payout plus fee.
// When the write itself fails w stays pending and the reconciler picks it up later.
func (s *Service) settle(ctx context.Context, w *domain.Withdrawal, user *domain.User, status domain.TransactionStatus, hash *string, errMsg string) bool {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, w.ID, status, hash, errMsg); err != nil {
			return err
		}
		if err := s.txRepo.UpdateStatusByWithdrawal(ctx, w.ID, status, hash); err != nil {
			return err
		}
		if status == domain.StatusFailed {
			if _, err := s.userRepo.Credit(ctx, w.UserID, w.Debit()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to settle withdrawal",
			zap.String("withdrawalID", w.ID),
			zap.String("status", string(status)),
			zap.Error(err))
		return false
	}

	now := time.Now().UTC()
	w.Status, w.Hash, w.Error, w.ProcessedAt = status, hash, errMsg, &now
	metrics.WithdrawalsTotal.WithLabelValues(string(status)).Inc()

	e := events.Event{Type: events.WithdrawalCompleted, UserID: w.UserID, EntityID: w.ID, Amount: w.Amount, Status: string(status)}
	if status == domain.StatusFailed {
		e.Type, e.Amount = events.WithdrawalFailed, w.Debit()
	}
	if user == nil {
		user, _ = s.userRepo.GetByID(ctx, w.UserID)
	}
	if user != nil {
		e.TelegramID = user.TelegramID
	}
	s.publisher.Publish(ctx, e)
	return true
}

// Reconcile resolves a withdrawal left pending by asking the payout gateway what happened to it.
// A payout the gateway never saw is refunded; one still in flight is left for the next pass.
func (s *Service) Reconcile(ctx context.Context, w domain.Withdrawal) error {
	if w.Status != domain.StatusPending {
		return nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	result, err := s.payouts.LookupWithdrawal(lookupCtx, w.ID)
	cancel()
	if err != nil {
		return err
	}

	var settled bool
	switch result.Status {
	case chain.PayoutCompleted:
		hash := result.Hash
		settled = s.settle(ctx, &w, nil, domain.StatusCompleted, &hash, "")
	case chain.PayoutFailed:
		settled = s.settle(ctx, &w, nil, domain.StatusFailed, nil, failureReason(result, errPayoutRejected))
	case chain.PayoutUnknown:
		settled = s.settle(ctx, &w, nil, domain.StatusFailed, nil, errPayoutMissing)
	default:
		metrics.ReconciledTotal.WithLabelValues("in_flight").Inc()
		return nil
	}
	if !settled {
		metrics.ReconciledTotal.WithLabelValues("error").Inc()
		return errors.New("withdrawal " + w.ID + " left pending")
	}
	metrics.ReconciledTotal.WithLabelValues(string(w.Status)).Inc()
	zap.L().Info("withdrawal reconciled", zap.String("withdrawalID", w.ID), zap.String("status", string(w.Status)))
	return nil
}

// Stale lists pending withdrawals older than age.
func (s *Service) Stale(ctx context.Context, age time.Duration, limit int) ([]domain.Withdrawal, error) {
	return s.repo.FindStale(ctx, time.Now().UTC().Add(-age), limit)
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Withdrawal, error) {
	return s.repo.ListByUser(ctx, userID)
}

func failureReason(r *chain.PayoutResult, fallback string) string {
	if r != nil && r.Error != "" {
		return r.Error
	}
	return fallback
}
