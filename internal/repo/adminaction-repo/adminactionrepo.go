package adminactionrepo

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

func (r *Repository) Create(ctx context.Context, a *domain.AdminAction) error {
	query := `
		INSERT INTO admin_actions (id, admin_id, action, target, previous, new_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.AdminID, a.Action, a.Target, a.Previous, a.New, a.CreatedAt)
	if err != nil {
		zap.L().Error("can't save admin action", zap.String("action", string(a.Action)), zap.Error(err))
		return err
	}
	return nil
}

// List returns the newest admin actions first.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	query := `
		SELECT id, admin_id, action, target, previous::text, new_value::text, created_at
		FROM admin_actions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't list admin actions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	actions := make([]domain.AdminAction, 0)
	for rows.Next() {
		var a domain.AdminAction
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.Target, &a.Previous, &a.New, &a.CreatedAt); err != nil {
			zap.L().Error("can't scan admin action row", zap.Error(err))
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
