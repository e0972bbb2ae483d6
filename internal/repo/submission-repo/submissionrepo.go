package submissionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
)

const (
	submissionColumns   = `id, campaign_id, user_id, proof_type, proof_data, status, reviewed_by, reviewed_at, created_at`
	campaignUserKeyName = "task_submissions_campaign_user_key"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanSubmission(row pgx.Row) (*domain.TaskSubmission, error) {
	var s domain.TaskSubmission
	err := row.Scan(&s.ID, &s.CampaignID, &s.UserID, &s.ProofType, &s.ProofData, &s.Status, &s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, s *domain.TaskSubmission) error {
	query := `
		INSERT INTO task_submissions (id, campaign_id, user_id, proof_type, proof_data, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.CampaignID, s.UserID, s.ProofType, s.ProofData, s.Status, s.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, campaignUserKeyName) {
			return domain.ErrAlreadySubmitted
		}
		zap.L().Error("can't save submission", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.TaskSubmission, error) {
	s, err := scanSubmission(r.db.QueryRow(ctx, "SELECT "+submissionColumns+" FROM task_submissions WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find submission", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *Repository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.TaskSubmission, error) {
	return r.list(ctx, "SELECT "+submissionColumns+" FROM task_submissions WHERE campaign_id = $1 ORDER BY created_at DESC", campaignID)
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.TaskSubmission, error) {
	return r.list(ctx, "SELECT "+submissionColumns+" FROM task_submissions WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

func (r *Repository) list(ctx context.Context, query string, arg string) ([]domain.TaskSubmission, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		zap.L().Error("can't list submissions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	submissions := make([]domain.TaskSubmission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			zap.L().Error("can't scan submission row", zap.Error(err))
			return nil, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, rows.Err()
}

// UpdateStatus moves a pending submission to a review outcome.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, reviewerID string) (*domain.TaskSubmission, error) {
	query := `
		UPDATE task_submissions
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + submissionColumns
	s, err := scanSubmission(r.db.QueryRow(ctx, query, id, status, reviewerID, time.Now().UTC()))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		zap.L().Error("can't update submission status", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrInvalidStateTransition
}
