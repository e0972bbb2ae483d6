package repo

import (
	"github.com/ronsuru/taskquer/internal/pg"
	adjustmentrepo "github.com/ronsuru/taskquer/internal/repo/adjustment-repo"
	adminactionrepo "github.com/ronsuru/taskquer/internal/repo/adminaction-repo"
	campaignrepo "github.com/ronsuru/taskquer/internal/repo/campaign-repo"
	settingsrepo "github.com/ronsuru/taskquer/internal/repo/settings-repo"
	submissionrepo "github.com/ronsuru/taskquer/internal/repo/submission-repo"
	transactionrepo "github.com/ronsuru/taskquer/internal/repo/transaction-repo"
	userrepo "github.com/ronsuru/taskquer/internal/repo/user-repo"
	withdrawalrepo "github.com/ronsuru/taskquer/internal/repo/withdrawal-repo"
)

// Repositories is the Ledger Store. Each service narrows these to the interface it declares.
type Repositories struct {
	Users        *userrepo.Repository
	Campaigns    *campaignrepo.Repository
	Submissions  *submissionrepo.Repository
	Transactions *transactionrepo.Repository
	Withdrawals  *withdrawalrepo.Repository
	Settings     *settingsrepo.Repository
	Adjustments  *adjustmentrepo.Repository
	AdminActions *adminactionrepo.Repository
	TXManager    pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		Users:        userrepo.New(conn),
		Campaigns:    campaignrepo.New(conn),
		Submissions:  submissionrepo.New(conn),
		Transactions: transactionrepo.New(conn),
		Withdrawals:  withdrawalrepo.New(conn),
		Settings:     settingsrepo.New(conn),
		Adjustments:  adjustmentrepo.New(conn),
		AdminActions: adminactionrepo.New(conn),
		TXManager:    txManager,
	}
}
