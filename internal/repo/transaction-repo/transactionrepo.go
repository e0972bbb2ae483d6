package transactionrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
)

const transactionColumns = `id, user_id, type, amount, fee, status, hash, campaign_id, submission_id, withdrawal_id, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Fee, &tx.Status, &tx.Hash,
		&tx.CampaignID, &tx.SubmissionID, &tx.WithdrawalID, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Create appends a ledger row. Both the hash index and the per-submission reward index map to ErrDuplicateTransaction.
func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, fee, status, hash, campaign_id, submission_id, withdrawal_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query, tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Fee, tx.Status, tx.Hash,
		tx.CampaignID, tx.SubmissionID, tx.WithdrawalID, tx.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, "") {
			return domain.ErrDuplicateTransaction
		}
		zap.L().Error("can't save transaction", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE hash = $1", hash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find transaction by hash", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		zap.L().Error("can't list transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, hash *string) error {
	tag, err := r.db.Exec(ctx, "UPDATE transactions SET status = $2, hash = COALESCE($3, hash) WHERE id = $1", id, status, hash)
	if err != nil {
		if pg.IsUniqueViolation(err, "") {
			return domain.ErrDuplicateTransaction
		}
		zap.L().Error("can't update transaction status", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatusByWithdrawal settles the pending ledger row that belongs to a withdrawal.
func (r *Repository) UpdateStatusByWithdrawal(ctx context.Context, withdrawalID string, status domain.TransactionStatus, hash *string) error {
	query := `
		UPDATE transactions SET status = $2, hash = COALESCE($3, hash)
		WHERE withdrawal_id = $1 AND type = 'withdrawal' AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, withdrawalID, status, hash)
	if err != nil {
		if pg.IsUniqueViolation(err, "") {
			return domain.ErrDuplicateTransaction
		}
		zap.L().Error("can't settle withdrawal transaction", zap.String("withdrawal_id", withdrawalID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}
