package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/ronsuru/taskquer/docs"
	adminhandlers "github.com/ronsuru/taskquer/internal/handlers/admin"
	authhandlers "github.com/ronsuru/taskquer/internal/handlers/auth"
	campaignhandlers "github.com/ronsuru/taskquer/internal/handlers/campaigns"
	objecthandlers "github.com/ronsuru/taskquer/internal/handlers/objects"
	submissionhandlers "github.com/ronsuru/taskquer/internal/handlers/submissions"
	userhandlers "github.com/ronsuru/taskquer/internal/handlers/users"
	withdrawalhandlers "github.com/ronsuru/taskquer/internal/handlers/withdrawals"
	"github.com/ronsuru/taskquer/internal/service"
	"github.com/ronsuru/taskquer/pkg/auth"
)

type AuthHandler interface {
	LoginTelegram(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	UpdateWallet(w http.ResponseWriter, r *http.Request)
	Transactions(w http.ResponseWriter, r *http.Request)
}

type CampaignHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Cost(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Fund(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type SubmissionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListByCampaign(w http.ResponseWriter, r *http.Request)
	Mine(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	Request(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type ObjectHandler interface {
	UploadURL(w http.ResponseWriter, r *http.Request)
	Upload(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	AdjustBalance(w http.ResponseWriter, r *http.Request)
	Adjustments(w http.ResponseWriter, r *http.Request)
	Actions(w http.ResponseWriter, r *http.Request)
	SetCampaignSlots(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler       AuthHandler
	UserHandler       UserHandler
	CampaignHandler   CampaignHandler
	SubmissionHandler SubmissionHandler
	WithdrawalHandler WithdrawalHandler
	ObjectHandler     ObjectHandler
	AdminHandler      AdminHandler

	jwtService auth.JWTServiceInterface
}

func New(s *service.Services, store objecthandlers.Store, jwtService auth.JWTServiceInterface) *Handlers {
	return &Handlers{
		AuthHandler:       authhandlers.New(s.AuthService),
		UserHandler:       userhandlers.New(s.UserService),
		CampaignHandler:   campaignhandlers.New(s.CampaignService),
		SubmissionHandler: submissionhandlers.New(s.SubmissionService),
		WithdrawalHandler: withdrawalhandlers.New(s.WithdrawalService, s.UserService),
		ObjectHandler:     objecthandlers.New(store),
		AdminHandler:      adminhandlers.New(s.AdminService, s.SettingsService),
		jwtService:        jwtService,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/objects/uploads/{id}", func(r chi.Router) {
		r.Put("/", h.ObjectHandler.Upload)
		r.Get("/", h.ObjectHandler.Download)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/telegram", h.AuthHandler.LoginTelegram)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwtService))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.UserHandler.Me)
				r.Put("/wallet", h.UserHandler.UpdateWallet)
				r.Get("/transactions", h.UserHandler.Transactions)
			})
			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.CampaignHandler.List)
				r.Post("/", h.CampaignHandler.Create)
				r.Get("/cost", h.CampaignHandler.Cost)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.CampaignHandler.Get)
					r.Post("/fund", h.CampaignHandler.Fund)
					r.Post("/cancel", h.CampaignHandler.Cancel)
					r.Post("/submissions", h.SubmissionHandler.Submit)
					r.Get("/submissions", h.SubmissionHandler.ListByCampaign)
				})
			})
			r.Get("/submissions", h.SubmissionHandler.Mine)
			r.Post("/submissions/{id}/review", h.SubmissionHandler.Review)
			r.Route("/withdrawals", func(r chi.Router) {
				r.Post("/", h.WithdrawalHandler.Request)
				r.Get("/", h.WithdrawalHandler.List)
			})
			r.Post("/objects/upload", h.ObjectHandler.UploadURL)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.AdminOnly)
				r.Post("/users/{id}/balance/{action}", h.AdminHandler.AdjustBalance)
				r.Get("/users/{id}/adjustments", h.AdminHandler.Adjustments)
				r.Get("/actions", h.AdminHandler.Actions)
				r.Post("/campaigns/{id}/slots", h.AdminHandler.SetCampaignSlots)
				r.Get("/settings", h.AdminHandler.GetSettings)
				r.Put("/settings", h.AdminHandler.UpdateSettings)
			})
		})
	})

	return r
}
