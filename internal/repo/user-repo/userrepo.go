package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
)

const userColumns = `id, telegram_id, username, wallet_address, balance, rewards, completed_tasks, is_admin, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.TelegramID, &user.Username, &user.WalletAddress,
		&user.Balance, &user.Rewards, &user.CompletedTasks, &user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE telegram_id = $1", telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by telegram id", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// GetForUpdate locks the user row until the surrounding transaction ends.
func (repo *Repository) GetForUpdate(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		zap.L().Error("can't lock user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Create inserts the user; a concurrent login for the same telegram id returns the existing row.
func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, telegram_id, username, wallet_address, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username, is_admin = users.is_admin OR EXCLUDED.is_admin
		RETURNING ` + userColumns
	created, err := scanUser(repo.db.QueryRow(ctx, query, user.ID, user.TelegramID, user.Username, user.WalletAddress, user.IsAdmin))
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return created, nil
}

// UpdateBalance overwrites the balance. Callers hold the row lock.
func (repo *Repository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return domain.ErrInsufficientBalance
	}
	tag, err := repo.db.Exec(ctx, "UPDATE users SET balance = $2 WHERE id = $1", id, balance)
	if err != nil {
		zap.L().Error("can't update balance", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Debit subtracts amount only when the balance covers it.
func (repo *Repository) Debit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users SET balance = balance - $2
		WHERE id = $1 AND balance >= $2
		RETURNING balance
	`
	var balance decimal.Decimal
	err := repo.db.QueryRow(ctx, query, id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrInsufficientBalance
		}
		zap.L().Error("can't debit balance", zap.String("id", id), zap.Error(err))
		return decimal.Zero, err
	}
	return balance, nil
}

func (repo *Repository) Credit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := repo.db.QueryRow(ctx, "UPDATE users SET balance = balance + $2 WHERE id = $1 RETURNING balance", id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		zap.L().Error("can't credit balance", zap.String("id", id), zap.Error(err))
		return decimal.Zero, err
	}
	return balance, nil
}

func (repo *Repository) CreditReward(ctx context.Context, id string, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET balance = balance + $2, rewards = rewards + $2, completed_tasks = completed_tasks + 1
		WHERE id = $1
	`
	tag, err := repo.db.Exec(ctx, query, id, amount)
	if err != nil {
		zap.L().Error("can't credit reward", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (repo *Repository) UpdateWallet(ctx context.Context, id, wallet string) error {
	tag, err := repo.db.Exec(ctx, "UPDATE users SET wallet_address = $2 WHERE id = $1", id, wallet)
	if err != nil {
		zap.L().Error("can't update wallet", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
