package submissionrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/ronsuru/taskquer/internal/domain"
)

var submissionCols = []string{"id", "campaign_id", "user_id", "proof_type", "proof_data", "status", "reviewed_by", "reviewed_at", "created_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	submission := &domain.TaskSubmission{
		ID: "s-1", CampaignID: "c-1", UserID: "u-2",
		ProofType: domain.ProofLink, ProofData: "https://x.com/post/1",
		Status: domain.SubmissionPending, CreatedAt: now,
	}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr error
	}{
		{
			name: "Submission saved",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_submissions")).
					WithArgs("s-1", "c-1", "u-2", domain.ProofLink, "https://x.com/post/1", domain.SubmissionPending, now).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "Second claim on the same campaign",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_submissions")).
					WithArgs("s-1", "c-1", "u-2", domain.ProofLink, "https://x.com/post/1", domain.SubmissionPending, now).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "task_submissions_campaign_user_key"})
			},
			expectErr: domain.ErrAlreadySubmitted,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_submissions")).
					WithArgs("s-1", "c-1", "u-2", domain.ProofLink, "https://x.com/post/1", domain.SubmissionPending, now).
					WillReturnError(errors.New("database error"))
			},
			expectErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.Create(context.Background(), submission)
			if tt.expectErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectErr.Error())
		})
	}
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	reviewer := "u-1"

	tests := []struct {
		name      string
		mockSetup func()
		expectErr error
	}{
		{
			name: "Pending submission approved",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending'")).
					WithArgs("s-1", domain.SubmissionApproved, reviewer, pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows(submissionCols).
						AddRow("s-1", "c-1", "u-2", domain.ProofText, "done", domain.SubmissionApproved, &reviewer, &now, now))
			},
		},
		{
			name: "Already reviewed",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending'")).
					WithArgs("s-1", domain.SubmissionApproved, reviewer, pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows(submissionCols))
				mock.ExpectQuery(regexp.QuoteMeta("FROM task_submissions WHERE id = $1")).
					WithArgs("s-1").
					WillReturnRows(pgxmock.NewRows(submissionCols).
						AddRow("s-1", "c-1", "u-2", domain.ProofText, "done", domain.SubmissionRejected, &reviewer, &now, now))
			},
			expectErr: domain.ErrInvalidStateTransition,
		},
		{
			name: "Unknown submission",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending'")).
					WithArgs("s-1", domain.SubmissionApproved, reviewer, pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows(submissionCols))
				mock.ExpectQuery(regexp.QuoteMeta("FROM task_submissions WHERE id = $1")).
					WithArgs("s-1").
					WillReturnError(pgx.ErrNoRows)
			},
			expectErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			s, err := repo.UpdateStatus(context.Background(), "s-1", domain.SubmissionApproved, reviewer)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, s)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, domain.SubmissionApproved, s.Status)
			assert.Equal(t, &reviewer, s.ReviewedBy)
		})
	}
}

func TestRepository_ListByCampaign(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM task_submissions WHERE campaign_id = $1 ORDER BY created_at DESC")).
		WithArgs("c-1").
		WillReturnRows(pgxmock.NewRows(submissionCols).
			AddRow("s-1", "c-1", "u-2", domain.ProofText, "done", domain.SubmissionPending, (*string)(nil), (*time.Time)(nil), now).
			AddRow("s-2", "c-1", "u-3", domain.ProofImage, "proofs/abc", domain.SubmissionPending, (*string)(nil), (*time.Time)(nil), now))

	submissions, err := repo.ListByCampaign(context.Background(), "c-1")
	assert.NoError(t, err)
	assert.Len(t, submissions, 2)
	assert.Nil(t, submissions[0].ReviewedBy)
	assert.Equal(t, domain.ProofImage, submissions[1].ProofType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
