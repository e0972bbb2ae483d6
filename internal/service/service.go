package service

import (
	"time"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/handlers/admin"
	"github.com/ronsuru/taskquer/internal/handlers/auth"
	"github.com/ronsuru/taskquer/internal/handlers/campaigns"
	"github.com/ronsuru/taskquer/internal/handlers/submissions"
	"github.com/ronsuru/taskquer/internal/handlers/users"
	"github.com/ronsuru/taskquer/internal/repo"
	"github.com/ronsuru/taskquer/internal/service/adminservice"
	"github.com/ronsuru/taskquer/internal/service/authservice"
	"github.com/ronsuru/taskquer/internal/service/campaignservice"
	"github.com/ronsuru/taskquer/internal/service/settingsservice"
	"github.com/ronsuru/taskquer/internal/service/submissionservice"
	"github.com/ronsuru/taskquer/internal/service/userservice"
	"github.com/ronsuru/taskquer/internal/service/withdrawalservice"
	pkgauth "github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/chain"
	"github.com/ronsuru/taskquer/pkg/events"
)

// Deps are the collaborators outside the database.
type Deps struct {
	Verifier     campaignservice.Verifier
	Guard        campaignservice.Guard
	Payouts      withdrawalservice.Payouts
	Objects      submissionservice.ObjectChecker
	InitData     authservice.InitDataParser
	JWT          pkgauth.JWTServiceInterface
	Publisher    events.Publisher
	AdminIDs     []int64
	TokenTTL     time.Duration
	ChainTimeout time.Duration
	Defaults     domain.SystemSettings
}

type Services struct {
	AuthService       auth.Service
	UserService       users.Service
	CampaignService   campaigns.Service
	SubmissionService submissions.Service
	AdminService      admin.Service
	WithdrawalService *withdrawalservice.Service
	SettingsService   *settingsservice.Service
}

func New(repo *repo.Repositories, deps Deps) *Services {
	addresses := chain.AddressValidator{}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}

	settingsService := settingsservice.New(repo.Settings, repo.TXManager, deps.Defaults)
	authService := authservice.New(repo.Users, deps.InitData, deps.JWT, deps.AdminIDs, deps.TokenTTL)
	userService := userservice.New(repo.Users, repo.Transactions, addresses)
	campaignService := campaignservice.New(repo.Campaigns, repo.Transactions, repo.Users, repo.TXManager,
		deps.Verifier, deps.Guard, settingsService, publisher, deps.ChainTimeout)
	submissionService := submissionservice.New(repo.Submissions, repo.Campaigns, repo.Users, repo.Transactions,
		repo.TXManager, deps.Objects, publisher)
	withdrawalService := withdrawalservice.New(repo.Withdrawals, repo.Users, repo.Transactions, repo.TXManager,
		deps.Payouts, addresses, settingsService, publisher, deps.ChainTimeout)
	adminService := adminservice.New(repo.Users, repo.Adjustments, repo.AdminActions, repo.Campaigns, repo.TXManager, settingsService)

	return &Services{
		AuthService:       authService,
		UserService:       userService,
		CampaignService:   campaignService,
		SubmissionService: submissionService,
		AdminService:      adminService,
		WithdrawalService: withdrawalService,
		SettingsService:   settingsService,
	}
}
