package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/config"
	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/internal/handlers"
	"github.com/ronsuru/taskquer/internal/pg"
	"github.com/ronsuru/taskquer/internal/reconciler"
	"github.com/ronsuru/taskquer/internal/repo"
	"github.com/ronsuru/taskquer/internal/service"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/chain"
	"github.com/ronsuru/taskquer/pkg/clients"
	"github.com/ronsuru/taskquer/pkg/events"
	"github.com/ronsuru/taskquer/pkg/logger"
	"github.com/ronsuru/taskquer/pkg/metrics"
	"github.com/ronsuru/taskquer/pkg/objectstore"
	"github.com/ronsuru/taskquer/pkg/xredis"
)

const (
	eventBuffer     = 256
	shutdownTimeout = 5 * time.Second
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg        *config.Config
	api        *handlers.Handlers
	srv        *service.Services
	repo       *repo.Repositories
	reconciler *reconciler.Service
	events     *events.Async
	closers    []func()

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	metrics.MustRegister()

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	rdb, err := xredis.NewRedis(ctx, &xredis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		zap.L().Error("redis connection failed: ", zap.Error(err))
		return fmt.Errorf("can't connect redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	verifier, err := chain.NewTonAPI(chain.TonAPIConfig{
		BaseURL:        cfg.TonAPIAddress,
		Token:          cfg.TonAPIToken,
		DepositWallet:  cfg.DepositWallet,
		JettonMaster:   cfg.JettonMaster,
		JettonDecimals: cfg.JettonDecimals,
		RPS:            cfg.TonAPIRPS,
	}, clients.NewHTTPClientWithTimeout(cfg.ChainTimeout))
	if err != nil {
		return fmt.Errorf("can't build TonAPI client: %w", err)
	}
	payouts := chain.NewPayoutGateway(cfg.PayoutAddress, cfg.PayoutToken, cfg.JettonDecimals,
		clients.NewHTTPClientWithTimeout(cfg.ChainTimeout))

	store, err := objectstore.New(cfg.ObjectsDir, cfg.PublicBaseURL, cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("can't open object store: %w", err)
	}

	a.events = events.NewAsync(a.publishers(cfg), eventBuffer)
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	feeRate, withdrawalFeeRate, minWithdrawal := cfg.Defaults()

	a.cfg = cfg
	a.repo = repo.New(pg.New(pool), txManager)
	a.srv = service.New(a.repo, service.Deps{
		Verifier:     verifier,
		Guard:        xredis.NewGuard(rdb),
		Payouts:      payouts,
		Objects:      store,
		InitData:     auth.NewInitDataValidator(cfg.BotToken, cfg.InitDataTTL),
		JWT:          jwtService,
		Publisher:    a.events,
		AdminIDs:     cfg.AdminTelegramIDs,
		TokenTTL:     cfg.JWTTTL,
		ChainTimeout: cfg.ChainTimeout,
		Defaults: domain.SystemSettings{
			FeeRate:           feeRate,
			WithdrawalFeeRate: withdrawalFeeRate,
			MinWithdrawal:     minWithdrawal,
		},
	})
	if _, err := a.srv.SettingsService.Load(ctx); err != nil {
		return fmt.Errorf("can't load system settings: %w", err)
	}
	a.api = handlers.New(a.srv, store, jwtService)
	a.reconciler = reconciler.New(cfg, a.srv.WithdrawalService, xredis.NewLeaderLock(rdb))

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startReconciler(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

// publishers fans events out to every configured sink. Missing sinks are skipped, not fatal.
func (a *Application) publishers(cfg *config.Config) events.Publisher {
	var sinks events.Multi
	if cfg.NatsURL != "" {
		nats, err := events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			zap.L().Warn("nats unavailable, events will not be streamed", zap.Error(err))
		} else {
			sinks = append(sinks, nats)
			a.closers = append(a.closers, nats.Close)
		}
	}
	if cfg.NotifyTelegram && cfg.BotToken != "" {
		notifier, err := events.NewTelegramNotifier(cfg.BotToken)
		if err != nil {
			zap.L().Warn("telegram notifier unavailable", zap.Error(err))
		} else {
			sinks = append(sinks, notifier)
		}
	}
	return sinks
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		// Withdrawal handlers keep paying out after the client leaves, so give them the chain timeout too.
		sCtx, cancel := context.WithTimeout(context.Background(), a.drainTimeout())
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) drainTimeout() time.Duration {
	if a.cfg == nil {
		return shutdownTimeout
	}
	return shutdownTimeout + a.cfg.ChainTimeout
}

func (a *Application) startReconciler(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.reconciler.Start(ctx)
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	if a.srv != nil && a.srv.WithdrawalService != nil {
		dCtx, cancel := context.WithTimeout(context.Background(), a.drainTimeout())
		if err := a.srv.WithdrawalService.Drain(dCtx); err != nil {
			zap.L().Error("withdrawals still settling at shutdown", zap.Error(err))
		}
		cancel()
	}
	if a.events != nil {
		a.events.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}

	return appErr
}
