package submissionservice

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/pg"
	"github.com/ronsuru/taskquer/pkg/events"
)

const imageProof = "/objects/uploads/6f1c2d7e-8c11-4d1f-9a61-0b9e3c0f4d2a"

type mocks struct {
	repo         *MockRepo
	campaignRepo *MockCampaignRepo
	userRepo     *MockUserRepo
	txRepo       *MockTransactionRepo
	objects      *MockObjectChecker
	events       *eventLog
}

type eventLog struct {
	got []events.Event
}

func (l *eventLog) Publish(_ context.Context, e events.Event) {
	l.got = append(l.got, e)
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:         NewMockRepo(ctrl),
		campaignRepo: NewMockCampaignRepo(ctrl),
		userRepo:     NewMockUserRepo(ctrl),
		txRepo:       NewMockTransactionRepo(ctrl),
		objects:      NewMockObjectChecker(ctrl),
		events:       &eventLog{},
	}
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()
	return New(m.repo, m.campaignRepo, m.userRepo, m.txRepo, txManager, m.objects, m.events), m
}

func campaign(status domain.CampaignStatus, available int) *domain.Campaign {
	return &domain.Campaign{
		ID:             "c-1",
		CreatorID:      "creator",
		TotalSlots:     5,
		AvailableSlots: available,
		RewardAmount:   decimal.RequireFromString("0.5"),
		Status:         status,
	}
}

func TestService_Submit(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		proofType   domain.ProofType
		proofData   string
		prepareMock func(m *mocks)
		wantErr     error
		wantReason  string
	}{
		{
			name:      "Slot reserved and submission created",
			userID:    "tasker",
			proofType: domain.ProofLink,
			proofData: "https://t.me/c/1",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 3), nil)
				m.campaignRepo.EXPECT().ReserveSlot(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *domain.TaskSubmission) error {
					assert.Equal(t, domain.SubmissionPending, s.Status)
					assert.Equal(t, "tasker", s.UserID)
					return nil
				})
			},
		},
		{
			name:      "Uploaded image proof",
			userID:    "tasker",
			proofType: domain.ProofImage,
			proofData: imageProof,
			prepareMock: func(m *mocks) {
				m.objects.EXPECT().Exists(imageProof).Return(true)
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 1), nil)
				m.campaignRepo.EXPECT().ReserveSlot(gomock.Any(), "c-1").Return(campaign(domain.CampaignCompleted, 0), nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "Image never uploaded",
			userID:    "tasker",
			proofType: domain.ProofImage,
			proofData: imageProof,
			prepareMock: func(m *mocks) {
				m.objects.EXPECT().Exists(imageProof).Return(false)
			},
			wantReason: "proof",
		},
		{name: "Empty text proof", userID: "tasker", proofType: domain.ProofText, proofData: " ", wantReason: "proof"},
		{
			name:      "Unknown campaign",
			userID:    "tasker",
			proofType: domain.ProofText,
			proofData: "done",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:      "Creator cannot claim own slot",
			userID:    "creator",
			proofType: domain.ProofText,
			proofData: "done",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 3), nil)
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:      "Draft campaign",
			userID:    "tasker",
			proofType: domain.ProofText,
			proofData: "done",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignDraft, 5), nil)
			},
			wantReason: "campaign_not_active",
		},
		{
			name:      "Completed campaign",
			userID:    "tasker",
			proofType: domain.ProofText,
			proofData: "done",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignCompleted, 0), nil)
			},
			wantErr: domain.ErrNoSlotsAvailable,
		},
		{
			name:      "Last slot taken concurrently",
			userID:    "tasker",
			proofType: domain.ProofText,
			proofData: "done",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 1), nil)
				m.campaignRepo.EXPECT().ReserveSlot(gomock.Any(), "c-1").Return(nil, domain.ErrNoSlotsAvailable)
			},
			wantErr: domain.ErrNoSlotsAvailable,
		},
		{
			name:      "Second claim by same tasker",
			userID:    "tasker",
			proofType: domain.ProofText,
			proofData: "done",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 3), nil)
				m.campaignRepo.EXPECT().ReserveSlot(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrAlreadySubmitted)
			},
			wantErr: domain.ErrAlreadySubmitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(m)
			}

			got, err := service.Submit(context.Background(), "c-1", tt.userID, tt.proofType, tt.proofData)
			switch {
			case tt.wantReason != "":
				assert.True(t, domain.IsValidation(err, tt.wantReason), "got %v", err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, m.events.got)
			default:
				require.NoError(t, err)
				assert.Equal(t, domain.SubmissionPending, got.Status)
				require.Len(t, m.events.got, 1)
				assert.Equal(t, events.SubmissionCreated, m.events.got[0].Type)
				assert.Equal(t, "creator", m.events.got[0].UserID)
			}
		})
	}
}

func pending() *domain.TaskSubmission {
	return &domain.TaskSubmission{ID: "s-1", CampaignID: "c-1", UserID: "tasker", Status: domain.SubmissionPending}
}

func TestService_Review(t *testing.T) {
	reward := decimal.RequireFromString("0.5")

	tests := []struct {
		name        string
		decision    domain.SubmissionStatus
		reviewerID  string
		prepareMock func(m *mocks)
		wantErr     error
		wantReason  string
		wantEvent   events.Type
	}{
		{
			name:       "Approval pays reward",
			decision:   domain.SubmissionApproved,
			reviewerID: "creator",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), "s-1").Return(pending(), nil)
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.userRepo.EXPECT().GetForUpdate(gomock.Any(), "tasker").Return(&domain.User{ID: "tasker", TelegramID: 7}, nil)
				approved := pending()
				approved.Status = domain.SubmissionApproved
				m.repo.EXPECT().UpdateStatus(gomock.Any(), "s-1", domain.SubmissionApproved, "creator").Return(approved, nil)
				m.txRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
					assert.Equal(t, domain.TxReward, tx.Type)
					assert.True(t, reward.Equal(tx.Amount))
					assert.True(t, tx.Fee.IsZero())
					assert.Equal(t, "s-1", *tx.SubmissionID)
					return nil
				})
				m.userRepo.EXPECT().CreditReward(gomock.Any(), "tasker", reward).Return(nil)
			},
			wantEvent: events.SubmissionApproved,
		},
		{
			name:       "Admin may review",
			decision:   domain.SubmissionRejected,
			reviewerID: "admin",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), "s-1").Return(pending(), nil)
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignCompleted, 0), nil)
				m.userRepo.EXPECT().GetByID(gomock.Any(), "admin").Return(&domain.User{ID: "admin", IsAdmin: true}, nil)
				rejected := pending()
				rejected.Status = domain.SubmissionRejected
				m.repo.EXPECT().UpdateStatus(gomock.Any(), "s-1", domain.SubmissionRejected, "admin").Return(rejected, nil)
				m.campaignRepo.EXPECT().ReleaseSlot(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 1), nil)
				m.userRepo.EXPECT().GetByID(gomock.Any(), "tasker").Return(&domain.User{ID: "tasker", TelegramID: 7}, nil)
			},
			wantEvent: events.SubmissionRejected,
		},
		{name: "Unknown decision", decision: "maybe", reviewerID: "creator", wantReason: "decision"},
		{
			name:       "Unknown submission",
			decision:   domain.SubmissionApproved,
			reviewerID: "creator",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), "s-1").Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:       "Stranger cannot review",
			decision:   domain.SubmissionApproved,
			reviewerID: "stranger",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), "s-1").Return(pending(), nil)
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.userRepo.EXPECT().GetByID(gomock.Any(), "stranger").Return(&domain.User{ID: "stranger"}, nil)
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:       "Already reviewed",
			decision:   domain.SubmissionApproved,
			reviewerID: "creator",
			prepareMock: func(m *mocks) {
				s := pending()
				s.Status = domain.SubmissionApproved
				m.repo.EXPECT().GetByID(gomock.Any(), "s-1").Return(s, nil)
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
			},
			wantErr: domain.ErrInvalidStateTransition,
		},
		{
			name:       "Concurrent review wins the race",
			decision:   domain.SubmissionApproved,
			reviewerID: "creator",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), "s-1").Return(pending(), nil)
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.userRepo.EXPECT().GetForUpdate(gomock.Any(), "tasker").Return(&domain.User{ID: "tasker"}, nil)
				m.repo.EXPECT().UpdateStatus(gomock.Any(), "s-1", domain.SubmissionApproved, "creator").
					Return(nil, domain.ErrInvalidStateTransition)
			},
			wantErr: domain.ErrInvalidStateTransition,
		},
		{
			name:       "Reward credit failure rolls back",
			decision:   domain.SubmissionApproved,
			reviewerID: "creator",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), "s-1").Return(pending(), nil)
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.userRepo.EXPECT().GetForUpdate(gomock.Any(), "tasker").Return(&domain.User{ID: "tasker"}, nil)
				m.repo.EXPECT().UpdateStatus(gomock.Any(), "s-1", domain.SubmissionApproved, "creator").Return(pending(), nil)
				m.txRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				m.userRepo.EXPECT().CreditReward(gomock.Any(), "tasker", reward).Return(errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(m)
			}

			got, err := service.Review(context.Background(), "s-1", tt.decision, tt.reviewerID)
			switch {
			case tt.wantReason != "":
				assert.True(t, domain.IsValidation(err, tt.wantReason), "got %v", err)
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Empty(t, m.events.got)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.decision, got.Status)
				require.Len(t, m.events.got, 1)
				assert.Equal(t, tt.wantEvent, m.events.got[0].Type)
				assert.Equal(t, int64(7), m.events.got[0].TelegramID)
			}
		})
	}
}

func TestService_ListByCampaign(t *testing.T) {
	tests := []struct {
		name        string
		requester   string
		prepareMock func(m *mocks)
		wantErr     error
	}{
		{
			name:      "Creator sees submissions",
			requester: "creator",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.repo.EXPECT().ListByCampaign(gomock.Any(), "c-1").Return([]domain.TaskSubmission{*pending()}, nil)
			},
		},
		{
			name:      "Tasker does not",
			requester: "tasker",
			prepareMock: func(m *mocks) {
				m.campaignRepo.EXPECT().GetByID(gomock.Any(), "c-1").Return(campaign(domain.CampaignActive, 2), nil)
				m.userRepo.EXPECT().GetByID(gomock.Any(), "tasker").Return(&domain.User{ID: "tasker"}, nil)
			},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			got, err := service.ListByCampaign(context.Background(), "c-1", tt.requester)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}
