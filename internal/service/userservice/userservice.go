package userservice

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
)

type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateWallet(ctx context.Context, id, wallet string) error
}

type TransactionRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type AddressValidator interface {
	ValidateAddress(address string) bool
}

type Service struct {
	repo      Repo
	txRepo    TransactionRepo
	addresses AddressValidator
}

func New(repo Repo, txRepo TransactionRepo, addresses AddressValidator) *Service {
	return &Service{
		repo:      repo,
		txRepo:    txRepo,
		addresses: addresses,
	}
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// UpdateWallet stores the payout address used as the default withdrawal destination.
func (s *Service) UpdateWallet(ctx context.Context, userID, wallet string) (*domain.User, error) {
	wallet = strings.TrimSpace(wallet)
	if !s.addresses.ValidateAddress(wallet) {
		return nil, domain.ErrInvalidAddress
	}
	if err := s.repo.UpdateWallet(ctx, userID, wallet); err != nil {
		zap.L().Error("can't update wallet", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *Service) Transactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.txRepo.ListByUser(ctx, userID)
}
