package adjustmentrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, adj *domain.BalanceAdjustment) error {
	query := `
		INSERT INTO balance_adjustments (id, admin_id, user_id, action, amount, previous_balance, new_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, adj.ID, adj.AdminID, adj.UserID, adj.Action, adj.Amount,
		adj.PreviousBalance, adj.NewBalance, adj.CreatedAt)
	if err != nil {
		zap.L().Error("can't save balance adjustment", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.BalanceAdjustment, error) {
	query := `
		SELECT id, admin_id, user_id, action, amount, previous_balance, new_balance, created_at
		FROM balance_adjustments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't list balance adjustments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	adjustments := make([]domain.BalanceAdjustment, 0)
	for rows.Next() {
		var a domain.BalanceAdjustment
		if err := rows.Scan(&a.ID, &a.AdminID, &a.UserID, &a.Action, &a.Amount, &a.PreviousBalance, &a.NewBalance, &a.CreatedAt); err != nil {
			zap.L().Error("can't scan balance adjustment row", zap.Error(err))
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}
