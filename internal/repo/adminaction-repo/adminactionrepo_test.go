package adminactionrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/ronsuru/taskquer/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_CreateAndList(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	action := &domain.AdminAction{
		ID:        "a-1",
		AdminID:   "admin",
		Action:    domain.AdminCampaignSlots,
		Target:    "c-1",
		Previous:  `{"available_slots":2}`,
		New:       `{"available_slots":5}`,
		CreatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_actions")).
		WithArgs("a-1", "admin", domain.AdminCampaignSlots, "c-1", action.Previous, action.New, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	assert.NoError(t, repo.Create(context.Background(), action))

	mock.ExpectQuery(regexp.QuoteMeta("FROM admin_actions")).
		WithArgs(20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "admin_id", "action", "target", "previous", "new_value", "created_at"}).
			AddRow("a-1", "admin", domain.AdminCampaignSlots, "c-1", action.Previous, action.New, now))

	list, err := repo.List(context.Background(), 20)
	assert.NoError(t, err)
	assert.Equal(t, []domain.AdminAction{*action}, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateError(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_actions")).
		WillReturnError(errors.New("db down"))
	err := repo.Create(context.Background(), &domain.AdminAction{ID: "a-1", Action: domain.AdminSettingsUpdate})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
