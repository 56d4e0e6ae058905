package apihttp

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentnotice-cloud/internal/audit"
	"rentnotice-cloud/internal/auth"
	noticeapp "rentnotice-cloud/internal/notice/application"
	rentapp "rentnotice-cloud/internal/rent/application"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Tenants  *rentapp.TenantService
	Ledger   *rentapp.LedgerService
	Payments *rentapp.PaymentService
	Settings *rentapp.SettingsService
	Notices  *noticeapp.Service
}

// RouterConfig wires cross-cutting concerns into the router.
// A nil Auth serves the API without authentication, which only tests do.
type RouterConfig struct {
	Auth    *auth.Middleware
	Audit   audit.Logger
	Logger  *log.Logger
	Timeout time.Duration
}

// NewRouter mounts every route on a chi router.
func NewRouter(svc Services, cfg RouterConfig) (http.Handler, error) {
	auditor := auditor{logger: cfg.Audit, log: cfg.Logger}
	rentH, err := newRentHandler(svc.Tenants, svc.Ledger, svc.Payments, svc.Settings, auditor)
	if err != nil {
		return nil, err
	}
	noticeH, err := newNoticeHandler(svc.Notices, auditor)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))
	if cfg.Auth != nil {
		r.Use(cfg.Auth.Wrap)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/settings", rentH.handleGetSettings)
		r.Put("/settings", rentH.handlePutSettings)

		r.Get("/tenants", rentH.handleListTenants)
		r.Post("/tenants", rentH.handleCreateTenant)
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Get("/ledger", rentH.handleLedger)
			r.Get("/ledger.xlsx", rentH.handleLedgerXLSX)
			r.Post("/payments", rentH.handleRecordPayment)
			r.Post("/notice/preview", noticeH.handlePreview)
			r.Post("/notice/document", noticeH.handleDocument)
			r.Post("/notices", noticeH.handleSave)
			r.Post("/notices/send", noticeH.handleSend)
		})

		r.Get("/notices", noticeH.handleHistory)
		r.Get("/notices/{noticeID}", noticeH.handleGet)
		r.Get("/notices/{noticeID}/export.pdf", noticeH.handleExportPDF)
	})
	return r, nil
}
