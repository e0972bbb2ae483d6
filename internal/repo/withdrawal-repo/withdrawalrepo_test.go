package withdrawalrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ronsuru/taskquer/internal/domain"
)

var withdrawalCols = []string{"id", "user_id", "amount", "fee", "destination_wallet", "status", "hash", "error", "created_at", "processed_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)
	now := time.Now()
	withdrawal := &domain.Withdrawal{
		ID:                "w-1",
		UserID:            "u-1",
		Amount:            decimal.RequireFromString("4.95"),
		Fee:               decimal.RequireFromString("0.05"),
		DestinationWallet: "EQ-wallet",
		Status:            domain.StatusPending,
		CreatedAt:         now,
	}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Create withdrawal successfully",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO withdrawals")).
					WithArgs("w-1", "u-1", withdrawal.Amount, withdrawal.Fee, "EQ-wallet", domain.StatusPending, now).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO withdrawals")).
					WithArgs("w-1", "u-1", withdrawal.Amount, withdrawal.Fee, "EQ-wallet", domain.StatusPending, now).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.Create(ctx, withdrawal)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)
	now := time.Now()
	hash := "tx-hash"

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		count     int
	}{
		{
			name: "Withdrawals found",
			mockSetup: func() {
				rows := pgxmock.NewRows(withdrawalCols).
					AddRow("w-2", "u-1", decimal.RequireFromString("4.95"), decimal.RequireFromString("0.05"), "EQ-wallet",
						domain.StatusCompleted, &hash, "", now, &now).
					AddRow("w-1", "u-1", decimal.RequireFromString("1.98"), decimal.RequireFromString("0.02"), "EQ-wallet",
						domain.StatusFailed, (*string)(nil), "gateway timeout", now, &now)
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC")).
					WithArgs("u-1").
					WillReturnRows(rows)
			},
			count: 2,
		},
		{
			name: "No withdrawals",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC")).
					WithArgs("u-1").
					WillReturnRows(pgxmock.NewRows(withdrawalCols))
			},
			count: 0,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC")).
					WithArgs("u-1").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.ListByUser(ctx, "u-1")
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, result, tt.count)
		})
	}
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM withdrawals WHERE id = $1")).
		WithArgs("w-404").
		WillReturnError(pgx.ErrNoRows)

	wd, err := repo.GetByID(context.Background(), "w-404")
	assert.NoError(t, err)
	assert.Nil(t, wd)
}

func TestRepository_FindStale(t *testing.T) {
	repo, mock := NewMock(t)
	cutoff := time.Now().Add(-10 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2")).
		WithArgs(cutoff, 50).
		WillReturnRows(pgxmock.NewRows(withdrawalCols).
			AddRow("w-1", "u-1", decimal.RequireFromString("4.95"), decimal.RequireFromString("0.05"), "EQ-wallet",
				domain.StatusPending, (*string)(nil), "", cutoff.Add(-time.Hour), (*time.Time)(nil)))

	stale, err := repo.FindStale(context.Background(), cutoff, 50)
	assert.NoError(t, err)
	assert.Len(t, stale, 1)
	assert.Equal(t, domain.StatusPending, stale[0].Status)
	assert.Nil(t, stale[0].ProcessedAt)
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := NewMock(t)
	hash := "tx-hash"

	tests := []struct {
		name      string
		affected  int64
		expectErr error
	}{
		{name: "Pending withdrawal settled", affected: 1},
		{name: "Already settled", affected: 0, expectErr: domain.ErrInvalidStateTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending'")).
				WithArgs("w-1", domain.StatusCompleted, &hash, "", pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			err := repo.UpdateStatus(context.Background(), "w-1", domain.StatusCompleted, &hash, "")
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
