package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Terminal reports whether no further review is allowed.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

type ProofType string

const (
	ProofImage ProofType = "image"
	ProofLink  ProofType = "link"
	ProofText  ProofType = "text"
)

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxReward     TransactionType = "reward"
	TxWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus is shared by transactions and withdrawals.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

type AdjustmentAction string

const (
	AdjustSet    AdjustmentAction = "set"
	AdjustAdd    AdjustmentAction = "add"
	AdjustDeduct AdjustmentAction = "deduct"
)

// AdminActionType names admin mutations that are not balance adjustments.
type AdminActionType string

const (
	AdminSettingsUpdate AdminActionType = "settings_update"
	AdminCampaignSlots  AdminActionType = "campaign_slots"
)

const (
	MinCampaignSlots = 5
)

var MinRewardAmount = decimal.RequireFromString("0.015")

type User struct {
	ID             string          `db:"id"`
	TelegramID     int64           `db:"telegram_id"`
	Username       string          `db:"username"`
	WalletAddress  string          `db:"wallet_address"`
	Balance        decimal.Decimal `db:"balance"`
	Rewards        decimal.Decimal `db:"rewards"`
	CompletedTasks int             `db:"completed_tasks"`
	IsAdmin        bool            `db:"is_admin"`
	CreatedAt      time.Time       `db:"created_at"`
}

type Campaign struct {
	ID             string          `db:"id"`
	CreatorID      string          `db:"creator_id"`
	Title          string          `db:"title"`
	Description    string          `db:"description"`
	Platform       string          `db:"platform"`
	TaskType       string          `db:"task_type"`
	TaskURL        string          `db:"task_url"`
	TotalSlots     int             `db:"total_slots"`
	AvailableSlots int             `db:"available_slots"`
	RewardAmount   decimal.Decimal `db:"reward_amount"`
	EscrowAmount   decimal.Decimal `db:"escrow_amount"`
	Fee            decimal.Decimal `db:"fee"`
	Status         CampaignStatus  `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
}

type TaskSubmission struct {
	ID         string           `db:"id"`
	CampaignID string           `db:"campaign_id"`
	UserID     string           `db:"user_id"`
	ProofType  ProofType        `db:"proof_type"`
	ProofData  string           `db:"proof_data"`
	Status     SubmissionStatus `db:"status"`
	ReviewedBy *string          `db:"reviewed_by"`
	ReviewedAt *time.Time       `db:"reviewed_at"`
	CreatedAt  time.Time        `db:"created_at"`
}

type Transaction struct {
	ID           string            `db:"id"`
	UserID       string            `db:"user_id"`
	Type         TransactionType   `db:"type"`
	Amount       decimal.Decimal   `db:"amount"`
	Fee          decimal.Decimal   `db:"fee"`
	Status       TransactionStatus `db:"status"`
	Hash         *string           `db:"hash"`
	CampaignID   *string           `db:"campaign_id"`
	SubmissionID *string           `db:"submission_id"`
	WithdrawalID *string           `db:"withdrawal_id"`
	CreatedAt    time.Time         `db:"created_at"`
}

type Withdrawal struct {
	ID                string            `db:"id"`
	UserID            string            `db:"user_id"`
	Amount            decimal.Decimal   `db:"amount"`
	Fee               decimal.Decimal   `db:"fee"`
	DestinationWallet string            `db:"destination_wallet"`
	Status            TransactionStatus `db:"status"`
	Hash              *string           `db:"hash"`
	Error             string            `db:"error"`
	CreatedAt         time.Time         `db:"created_at"`
	ProcessedAt       *time.Time        `db:"processed_at"`
}

// Debit is the full amount removed from the balance for this withdrawal.
func (w *Withdrawal) Debit() decimal.Decimal {
	return w.Amount.Add(w.Fee)
}

type BalanceAdjustment struct {
	ID              string           `db:"id"`
	AdminID         string           `db:"admin_id"`
	UserID          string           `db:"user_id"`
	Action          AdjustmentAction `db:"action"`
	Amount          decimal.Decimal  `db:"amount"`
	PreviousBalance decimal.Decimal  `db:"previous_balance"`
	NewBalance      decimal.Decimal  `db:"new_balance"`
	CreatedAt       time.Time        `db:"created_at"`
}

// AdminAction is the audit record of a settings change or slot correction.
// Previous and New hold the affected values as JSON.
type AdminAction struct {
	ID        string          `db:"id"`
	AdminID   string          `db:"admin_id"`
	Action    AdminActionType `db:"action"`
	Target    string          `db:"target"`
	Previous  string          `db:"previous"`
	New       string          `db:"new_value"`
	CreatedAt time.Time       `db:"created_at"`
}

type SystemSettings struct {
	FeeRate           decimal.Decimal
	WithdrawalFeeRate decimal.Decimal
	MinWithdrawal     decimal.Decimal
}

// Setting keys as stored in system_settings.
const (
	SettingFeeRate           = "fee_rate"
	SettingWithdrawalFeeRate = "withdrawal_fee_rate"
	SettingMinWithdrawal     = "min_withdrawal"
)

type CampaignFilter struct {
	Status    CampaignStatus
	CreatorID string
	Limit     int
	Offset    int
}

type CampaignInput struct {
	Title        string
	Description  string
	Platform     string
	TaskType     string
	TaskURL      string
	TotalSlots   int
	RewardAmount decimal.Decimal
}

// SettingsPatch changes only the fields that are set.
type SettingsPatch struct {
	FeeRate           *decimal.Decimal
	WithdrawalFeeRate *decimal.Decimal
	MinWithdrawal     *decimal.Decimal
}
