package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	apihttp "rentnotice-cloud/internal/api/http"
	"rentnotice-cloud/internal/audit"
	"rentnotice-cloud/internal/auth"
	"rentnotice-cloud/internal/config"
	noticeapp "rentnotice-cloud/internal/notice/application"
	noticerepo "rentnotice-cloud/internal/notice/infrastructure/postgres"
	"rentnotice-cloud/internal/notice/infrastructure/relay"
	"rentnotice-cloud/internal/observability/metrics"
	rentapp "rentnotice-cloud/internal/rent/application"
	rentrepo "rentnotice-cloud/internal/rent/infrastructure/postgres"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	rentRepo := rentrepo.NewRepository(db)
	noticeRepo := noticerepo.NewNoticeRepository(db)
	emailQueue := noticerepo.NewEmailQueueStore(db)
	clock := rentapp.SystemClock{}

	tenantService, err := rentapp.NewTenantService(rentRepo, rentRepo, rentRepo, clock)
	if err != nil {
		logger.Fatalf("tenant service error: %v", err)
	}
	ledgerService, err := rentapp.NewLedgerService(rentRepo, rentRepo, clock)
	if err != nil {
		logger.Fatalf("ledger service error: %v", err)
	}
	paymentService, err := rentapp.NewPaymentService(rentRepo, rentRepo, clock)
	if err != nil {
		logger.Fatalf("payment service error: %v", err)
	}
	settingsService, err := rentapp.NewSettingsService(rentRepo)
	if err != nil {
		logger.Fatalf("settings service error: %v", err)
	}
	noticeService, err := noticeapp.NewService(rentRepo, rentRepo, noticeRepo, emailQueue,
		noticeapp.WithClock(clock),
		noticeapp.WithDocumentOptions(cfg.Notice.DocumentOptions()),
		noticeapp.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("notice service error: %v", err)
	}

	var sender noticeapp.EmailSender = relay.LogSender{Printf: logger.Printf}
	if cfg.EmailRelayURL != "" {
		webhook, err := relay.NewWebhookSender(cfg.EmailRelayURL, cfg.EmailFrom, cfg.EmailRelayTimeout)
		if err != nil {
			logger.Fatalf("email relay error: %v", err)
		}
		sender = webhook
	} else {
		logger.Printf("EMAIL_RELAY_URL not set, queued notice emails are only logged")
	}
	dispatcher, err := noticeapp.NewDispatcher(emailQueue, sender, cfg.DispatchInterval, logger)
	if err != nil {
		logger.Fatalf("email dispatcher error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go dispatcher.Run(ctx)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	authMiddleware.Logger = logger
	router, err := apihttp.NewRouter(apihttp.Services{
		Tenants:  tenantService,
		Ledger:   ledgerService,
		Payments: paymentService,
		Settings: settingsService,
		Notices:  noticeService,
	}, apihttp.RouterConfig{
		Auth:    authMiddleware,
		Audit:   auditRepo,
		Logger:  logger,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		logger.Fatalf("router error: %v", err)
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server error: %v", err)
	}
}
