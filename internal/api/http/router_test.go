package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentnotice-cloud/internal/audit"
	"rentnotice-cloud/internal/auth"
	noticeapp "rentnotice-cloud/internal/notice/application"
	notice "rentnotice-cloud/internal/notice/domain"
	noticemem "rentnotice-cloud/internal/notice/infrastructure/memory"
	"rentnotice-cloud/internal/notice/layout"
	rentapp "rentnotice-cloud/internal/rent/application"
	rent "rentnotice-cloud/internal/rent/domain"
	rentmem "rentnotice-cloud/internal/rent/infrastructure/memory"
)

var testSecret = []byte("router-test-secret")

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Log(ctx context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type testServer struct {
	handler http.Handler
	audit   *recordingAudit
	emails  *noticemem.EmailQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := rentapp.FixedClock(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))
	store := rentmem.NewStore()
	notices := noticemem.NewNoticeStore()
	emails := noticemem.NewEmailQueue()

	tenants, err := rentapp.NewTenantService(store, store, store, clock)
	require.NoError(t, err)
	ledger, err := rentapp.NewLedgerService(store, store, clock)
	require.NoError(t, err)
	payments, err := rentapp.NewPaymentService(store, store, clock)
	require.NoError(t, err)
	settings, err := rentapp.NewSettingsService(store)
	require.NoError(t, err)
	noticeSvc, err := noticeapp.NewService(store, store, notices, emails, noticeapp.WithClock(clock))
	require.NoError(t, err)

	rec := &recordingAudit{}
	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	handler, err := NewRouter(Services{
		Tenants: tenants, Ledger: ledger, Payments: payments, Settings: settings, Notices: noticeSvc,
	}, RouterConfig{Auth: auth.NewMiddleware(testSecret, policy), Audit: rec})
	require.NoError(t, err)
	return &testServer{handler: handler, audit: rec, emails: emails}
}

func (s *testServer) do(t *testing.T, method, path string, role auth.Role, owner, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		token, err := auth.IssueJWT(testSecret, owner, role, "user-"+string(role), time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), dst), resp.Body.String())
}

func TestRouter_HealthAndMetricsAreOpen(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/healthz", "", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body.String())

	resp = s.do(t, http.MethodGet, "/metrics", "", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodGet, "/api/v1/tenants", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRouter_LedgerAndNoticeFlow(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPut, "/api/v1/settings", auth.RoleOwner, "o-1", `{"business_name":"Acme Homes","contact_info":"555-0100"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodPost, "/api/v1/tenants", auth.RoleManager, "o-1",
		`{"name":"Jane Doe","unit":"4B","email":"jane@example.com","rent":1200,"due_day":1,"late_fee_flat":50}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var tenant rent.Tenant
	decodeJSON(t, resp, &tenant)
	require.NotEmpty(t, tenant.ID)
	base := "/api/v1/tenants/" + tenant.ID

	resp = s.do(t, http.MethodPost, base+"/payments", auth.RoleManager, "o-1", `{"period":"2024-03","amount":200}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodGet, base+"/ledger", auth.RoleViewer, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var view struct {
		Rows []rent.LedgerRow `json:"rows"`
	}
	decodeJSON(t, resp, &view)
	require.Len(t, view.Rows, rent.LedgerPeriods)
	assert.Equal(t, rent.StatusPartial, view.Rows[0].Status)

	resp = s.do(t, http.MethodGet, base+"/ledger?as_of=2024-04-02", auth.RoleViewer, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	decodeJSON(t, resp, &view)
	assert.Equal(t, rent.PeriodKey("2024-04"), view.Rows[0].Period)

	resp = s.do(t, http.MethodGet, base+"/ledger.xlsx", auth.RoleViewer, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "spreadsheetml")

	resp = s.do(t, http.MethodGet, "/api/v1/tenants", auth.RoleViewer, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var overviews []map[string]any
	decodeJSON(t, resp, &overviews)
	require.Len(t, overviews, 1)
	assert.Equal(t, true, overviews[0]["late"])

	resp = s.do(t, http.MethodPost, base+"/notice/preview", auth.RoleViewer, "o-1", `{"intro":"Friendly reminder."}`)
	require.Equal(t, http.StatusOK, resp.Code)
	var preview noticeapp.Preview
	decodeJSON(t, resp, &preview)
	assert.Empty(t, preview.Validation.Blocking)
	assert.Contains(t, preview.Notice.Text, "Friendly reminder.")

	resp = s.do(t, http.MethodPost, base+"/notice/document?format=txt", auth.RoleViewer, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Equal(t, "1", resp.Header().Get("X-Notice-Pages"))
	assert.Contains(t, resp.Body.String(), "Late Rent Notice")

	resp = s.do(t, http.MethodPost, base+"/notices", auth.RoleManager, "o-1", "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var saved notice.ComposedNotice
	decodeJSON(t, resp, &saved)

	resp = s.do(t, http.MethodPost, base+"/notices/send", auth.RoleManager, "o-1", "")
	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())
	require.Len(t, s.emails.Messages(), 1)

	resp = s.do(t, http.MethodGet, "/api/v1/notices", auth.RoleViewer, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var history []notice.ComposedNotice
	decodeJSON(t, resp, &history)
	assert.Len(t, history, 2)

	resp = s.do(t, http.MethodGet, "/api/v1/notices/"+saved.ID, auth.RoleViewer, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodGet, "/api/v1/notices/"+saved.ID+"/export.pdf", auth.RoleManager, "o-1", "")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = s.do(t, http.MethodGet, "/api/v1/notices/"+saved.ID+"/export.pdf", auth.RoleOwner, "o-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Body.String(), "%PDF-"))

	assert.Equal(t, []string{
		"settings.update", "tenant.create", "payment.record", "ledger.export",
		"notice.save", "notice.send", "notice.export",
	}, s.audit.actions())
}

func TestRouter_ErrorResponses(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/v1/tenants", auth.RoleManager, "o-1", `{"unit":"4B","rent":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.do(t, http.MethodPost, "/api/v1/tenants", auth.RoleManager, "o-1", `{"unit":"4B"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	var body errorBody
	decodeJSON(t, resp, &body)
	assert.Equal(t, "invalid tenant", body.Error)
	assert.NotEmpty(t, body.Fields)

	resp = s.do(t, http.MethodPost, "/api/v1/tenants", auth.RoleManager, "o-1", `{"name":"No Mail","rent":900,"due_day":5}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	var tenant rent.Tenant
	decodeJSON(t, resp, &tenant)
	base := "/api/v1/tenants/" + tenant.ID

	resp = s.do(t, http.MethodPost, base+"/notice/preview", auth.RoleViewer, "o-1", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodPost, base+"/notices", auth.RoleManager, "o-1", "")
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	decodeJSON(t, resp, &body)
	assert.Len(t, body.Blocking, 2)

	resp = s.do(t, http.MethodPut, "/api/v1/settings", auth.RoleOwner, "o-1", `{"business_name":"Acme","contact_info":"x"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = s.do(t, http.MethodPost, base+"/notices/send", auth.RoleManager, "o-1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = s.do(t, http.MethodPost, base+"/notice/preview", auth.RoleViewer, "o-1", `{"unknown":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.do(t, http.MethodPost, base+"/notice/document?format=docx", auth.RoleViewer, "o-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.do(t, http.MethodGet, base+"/ledger?as_of=March", auth.RoleViewer, "o-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.do(t, http.MethodGet, base+"/ledger", auth.RoleViewer, "o-2", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = s.do(t, http.MethodGet, "/api/v1/notices/missing", auth.RoleViewer, "o-1", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = s.do(t, http.MethodPost, base+"/payments", auth.RoleViewer, "o-1", `{"period":"2024-03","amount":1}`)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{auth.ErrMissingOwner, http.StatusUnauthorized},
		{&rent.DecodeError{Record: "payment"}, http.StatusBadRequest},
		{&notice.ValidationError{Blocking: []string{"x"}}, http.StatusUnprocessableEntity},
		{notice.ErrMissingRecipient, http.StatusUnprocessableEntity},
		{rent.ErrTenantNotFound, http.StatusNotFound},
		{notice.ErrNoticeNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: tenant: %w", rentapp.ErrLoadFailed, errors.New("timeout")), http.StatusBadGateway},
		{fmt.Errorf("%w: notice: %w", rentapp.ErrStoreFailed, errors.New("timeout")), http.StatusBadGateway},
		{layout.ErrContentTooNarrow, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		respondServiceError(resp, tc.err)
		assert.Equal(t, tc.code, resp.Code, tc.err.Error())
	}
}

func TestRouter_AuditRecordsPeerAddress(t *testing.T) {
	s := newTestServer(t)
	token, err := auth.IssueJWT(testSecret, "o-1", auth.RoleOwner, "user-owner", time.Hour)
	require.NoError(t, err)

	put := func(configure func(*http.Request)) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"business_name":"Acme Homes","contact_info":"555-0100"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		configure(req)
		resp := httptest.NewRecorder()
		s.handler.ServeHTTP(resp, req)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	put(func(r *http.Request) { r.RemoteAddr = "198.51.100.4:5555" })
	put(func(r *http.Request) {
		r.RemoteAddr = "10.0.0.2:4000"
		r.Header.Set("X-Real-IP", "203.0.113.9")
	})

	require.Len(t, s.audit.entries, 2)
	assert.Equal(t, "198.51.100.4", s.audit.entries[0].IP)
	assert.Equal(t, "203.0.113.9", s.audit.entries[1].IP)
}

func TestRemoteIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "192.0.2.1", remoteIP(req))

	req.RemoteAddr = "192.0.2.1"
	assert.Equal(t, "192.0.2.1", remoteIP(req))
}
