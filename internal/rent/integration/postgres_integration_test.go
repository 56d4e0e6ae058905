package integration_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"rentnotice-cloud/internal/audit"
	noticeapp "rentnotice-cloud/internal/notice/application"
	notice "rentnotice-cloud/internal/notice/domain"
	noticerepo "rentnotice-cloud/internal/notice/infrastructure/postgres"
	rentapp "rentnotice-cloud/internal/rent/application"
	rent "rentnotice-cloud/internal/rent/domain"
	rentrepo "rentnotice-cloud/internal/rent/infrastructure/postgres"
)

func TestPostgres_LedgerAndNoticeLifecycle(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := applyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	ownerID := "owner-" + uuid.NewString()
	clock := rentapp.FixedClock(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))
	repo := rentrepo.NewRepository(db)

	settingsSvc, err := rentapp.NewSettingsService(repo)
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}
	empty, err := settingsSvc.Get(ctx, ownerID)
	if err != nil {
		t.Fatalf("get empty settings: %v", err)
	}
	if empty.BusinessName != "" || empty.DefaultDueDay != nil {
		t.Fatalf("expected empty settings, got %+v", empty)
	}
	if _, err := settingsSvc.Save(ctx, ownerID, []byte(`{"business_name":"Acme Homes","contact_info":"555-0100","default_due_day":3,"default_late_fee_flat":"45.50"}`)); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if _, err := settingsSvc.Save(ctx, ownerID, []byte(`{"business_name":"Acme Homes","contact_info":"555-0199","default_due_day":3,"default_late_fee_flat":"45.50"}`)); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	settings, err := settingsSvc.Get(ctx, ownerID)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.ContactInfo != "555-0199" {
		t.Fatalf("contact info not updated: %q", settings.ContactInfo)
	}
	if settings.DefaultLateFeeFlat == nil || !settings.DefaultLateFeeFlat.Equal(decimal.RequireFromString("45.5")) {
		t.Fatalf("default late fee mismatch: %v", settings.DefaultLateFeeFlat)
	}

	tenantSvc, err := rentapp.NewTenantService(repo, repo, repo, clock)
	if err != nil {
		t.Fatalf("tenant service: %v", err)
	}
	tenant, err := tenantSvc.Create(ctx, ownerID, []byte(`{"name":"Jane Doe","unit":"4B","email":"jane@example.com","rent":"1200.00"}`))
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if tenant.DueDay != 3 || !tenant.LateFeeFlat.Equal(decimal.RequireFromString("45.5")) {
		t.Fatalf("owner defaults not applied: %+v", tenant)
	}

	paymentSvc, err := rentapp.NewPaymentService(repo, repo, clock)
	if err != nil {
		t.Fatalf("payment service: %v", err)
	}
	for _, record := range []string{
		`{"period":"2024-03","amount":"500"}`,
		`{"period":"2024-03","amount":"200.25"}`,
		`{"period":"2024-02","amount":"1200"}`,
	} {
		if _, err := paymentSvc.Record(ctx, ownerID, tenant.ID, []byte(record)); err != nil {
			t.Fatalf("record payment %s: %v", record, err)
		}
	}

	ledgerSvc, err := rentapp.NewLedgerService(repo, repo, clock)
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	view, err := ledgerSvc.Ledger(ctx, ownerID, tenant.ID)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(view.Rows) != rent.LedgerPeriods {
		t.Fatalf("expected %d rows, got %d", rent.LedgerPeriods, len(view.Rows))
	}
	if !view.Rows[0].Paid.Equal(decimal.RequireFromString("700.25")) || view.Rows[0].Status != rent.StatusPartial {
		t.Fatalf("current row mismatch: %+v", view.Rows[0])
	}
	if view.Rows[1].Status != rent.StatusPaid {
		t.Fatalf("previous row should be paid: %+v", view.Rows[1])
	}
	if _, err := ledgerSvc.Ledger(ctx, "owner-"+uuid.NewString(), tenant.ID); err != rent.ErrTenantNotFound {
		t.Fatalf("expected tenant not found for other owner, got %v", err)
	}

	noticeRepo := noticerepo.NewNoticeRepository(db)
	queue := noticerepo.NewEmailQueueStore(db)
	noticeSvc, err := noticeapp.NewService(repo, repo, noticeRepo, queue, noticeapp.WithClock(clock))
	if err != nil {
		t.Fatalf("notice service: %v", err)
	}
	saved, err := noticeSvc.Save(ctx, ownerID, tenant.ID, notice.EditableSections{Intro: "Second reminder."})
	if err != nil {
		t.Fatalf("save notice: %v", err)
	}
	sent, err := noticeSvc.Send(ctx, ownerID, tenant.ID, notice.EditableSections{})
	if err != nil {
		t.Fatalf("send notice: %v", err)
	}

	stored, err := noticeSvc.Get(ctx, ownerID, saved.ID)
	if err != nil {
		t.Fatalf("get notice: %v", err)
	}
	if stored.Text != saved.Text || !stored.TotalAmount.Equal(decimal.RequireFromString("1245.5")) {
		t.Fatalf("stored notice mismatch: %+v", stored)
	}
	if stored.Tenant.Name != "Jane Doe" || stored.Owner.BusinessName != "Acme Homes" || stored.Period != "2024-03" {
		t.Fatalf("stored snapshot mismatch: %+v", stored)
	}
	history, err := noticeSvc.History(ctx, ownerID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(history))
	}
	doc, _, err := noticeSvc.Export(ctx, ownerID, saved.ID, "pdf")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(doc.Data) == 0 || doc.ContentType != "application/pdf" {
		t.Fatalf("unexpected export: %s %d bytes", doc.ContentType, len(doc.Data))
	}

	sender := &recordingSender{}
	dispatcher, err := noticeapp.NewDispatcher(queue, sender, time.Second, nil)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	if _, _, err := dispatcher.Dispatch(ctx); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !sender.saw(sent.Email.ID) {
		t.Fatalf("queued email %s was not dispatched", sent.Email.ID)
	}
	var status string
	if err := db.QueryRowContext(ctx, `SELECT status FROM email_queue WHERE id = $1`, sent.Email.ID).Scan(&status); err != nil {
		t.Fatalf("query email status: %v", err)
	}
	if status != string(notice.EmailSent) {
		t.Fatalf("expected sent status, got %s", status)
	}

	auditRepo := audit.NewRepository(db)
	meta, _ := json.Marshal(map[string]any{"period": "2024-03"})
	if err := auditRepo.Log(ctx, audit.Entry{
		OwnerID:      ownerID,
		Actor:        "user-1",
		Role:         "manager",
		Action:       "notice.send",
		ResourceType: "notice",
		ResourceID:   sent.Notice.ID,
		TenantID:     tenant.ID,
		Metadata:     meta,
	}); err != nil {
		t.Fatalf("audit log: %v", err)
	}
	var auditCount int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE owner_id = $1 AND payload_digest <> ''`, ownerID).Scan(&auditCount); err != nil {
		t.Fatalf("count audit logs: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected 1 audit entry, got %d", auditCount)
	}
}

type recordingSender struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (s *recordingSender) Send(ctx context.Context, msg notice.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		s.ids = make(map[string]bool)
	}
	s.ids[msg.ID] = true
	return nil
}

func (s *recordingSender) saw(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id]
}

func applyMigrations(db *sql.DB) error {
	root := projectRoot()
	files := []string{
		filepath.Join(root, "migrations", "001_rent.sql"),
		filepath.Join(root, "migrations", "002_notices.sql"),
		filepath.Join(root, "migrations", "003_audit.sql"),
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return err
		}
	}
	return nil
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}
