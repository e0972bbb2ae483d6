package campaignrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
)

const campaignColumns = `id, creator_id, title, description, platform, task_type, task_url,
	total_slots, available_slots, reward_amount, escrow_amount, fee, status, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.Platform, &c.TaskType, &c.TaskURL,
		&c.TotalSlots, &c.AvailableSlots, &c.RewardAmount, &c.EscrowAmount, &c.Fee, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow(ctx, "SELECT "+campaignColumns+" FROM campaigns WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find campaign", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) Create(ctx context.Context, c *domain.Campaign) error {
	query := `
		INSERT INTO campaigns (id, creator_id, title, description, platform, task_type, task_url,
			total_slots, available_slots, reward_amount, escrow_amount, fee, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.CreatorID, c.Title, c.Description, c.Platform, c.TaskType, c.TaskURL,
		c.TotalSlots, c.AvailableSlots, c.RewardAmount, c.EscrowAmount, c.Fee, c.Status, c.CreatedAt,
	)
	if err != nil {
		zap.L().Error("can't save campaign", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) List(ctx context.Context, f domain.CampaignFilter) ([]domain.Campaign, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CreatorID != "" {
		args = append(args, f.CreatorID)
		conds = append(conds, fmt.Sprintf("creator_id = $%d", len(args)))
	}

	query := "SELECT " + campaignColumns + " FROM campaigns"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list campaigns", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]domain.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			zap.L().Error("can't scan campaign row", zap.Error(err))
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// UpdateSlots sets the counter directly; values outside [0, total_slots] are rejected.
func (r *Repository) UpdateSlots(ctx context.Context, id string, available int) error {
	if available < 0 {
		return domain.NewValidationError("slots_out_of_range")
	}
	tag, err := r.db.Exec(ctx, "UPDATE campaigns SET available_slots = $2 WHERE id = $1 AND $2 <= total_slots", id, available)
	if err != nil {
		zap.L().Error("can't update campaign slots", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return domain.NewValidationError("slots_out_of_range")
}

// ReserveSlot takes one slot from an active campaign and completes it when the last slot goes.
func (r *Repository) ReserveSlot(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `
		UPDATE campaigns
		SET available_slots = available_slots - 1,
			status = CASE WHEN available_slots = 1 THEN 'completed' ELSE status END
		WHERE id = $1 AND status = 'active' AND available_slots > 0
		RETURNING ` + campaignColumns
	c, err := scanCampaign(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoSlotsAvailable
	}
	if err != nil {
		zap.L().Error("can't reserve campaign slot", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// ReleaseSlot returns one slot, reopening a completed campaign. A counter that is
// already full is left as is and the row is still returned.
func (r *Repository) ReleaseSlot(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `
		UPDATE campaigns
		SET available_slots = LEAST(available_slots + 1, total_slots),
			status = CASE WHEN status = 'completed' AND available_slots < total_slots THEN 'active' ELSE status END
		WHERE id = $1
		RETURNING ` + campaignColumns
	c, err := scanCampaign(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		zap.L().Error("can't release campaign slot", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.CampaignStatus) error {
	tag, err := r.db.Exec(ctx, "UPDATE campaigns SET status = $3 WHERE id = $1 AND status = $2", id, from, to)
	if err != nil {
		zap.L().Error("failed to update campaign status", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}
