package apihttp

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rentnotice-cloud/internal/auth"
	"rentnotice-cloud/internal/observability/metrics"
	rentapp "rentnotice-cloud/internal/rent/application"
	rentinterfaces "rentnotice-cloud/internal/rent/interfaces"
)

// rentHandler serves tenants, payments, ledgers and owner settings.
type rentHandler struct {
	tenants  *rentapp.TenantService
	ledger   *rentapp.LedgerService
	payments *rentapp.PaymentService
	settings *rentapp.SettingsService
	audit    auditor
}

// newRentHandler constructs a handler.
func newRentHandler(tenants *rentapp.TenantService, ledger *rentapp.LedgerService, payments *rentapp.PaymentService, settings *rentapp.SettingsService, auditLogger auditor) (*rentHandler, error) {
	if tenants == nil || ledger == nil || payments == nil || settings == nil {
		return nil, errors.New("rent handler: nil service")
	}
	return &rentHandler{tenants: tenants, ledger: ledger, payments: payments, settings: settings, audit: auditLogger}, nil
}

func (h *rentHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	settings, err := h.settings.Get(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *rentHandler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	settings, err := h.settings.Save(r.Context(), ownerID, body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
	h.audit.record(r, "settings.update", "settings", ownerID, "", map[string]any{
		"business_name": settings.BusinessName,
	})
}

func (h *rentHandler) handleListTenants(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	list, err := h.tenants.List(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *rentHandler) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	tenant, err := h.tenants.Create(r.Context(), ownerID, body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tenant)
	h.audit.record(r, "tenant.create", "tenant", tenant.ID, tenant.ID, map[string]any{
		"name": tenant.Name,
		"unit": tenant.Unit,
	})
}

func (h *rentHandler) handleLedger(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadLedger(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *rentHandler) handleLedgerXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(rentinterfaces.FormatXLSX, result, time.Since(start))
	}()

	view, ok := h.loadLedger(w, r)
	if !ok {
		result = metrics.ResultError
		return
	}
	file, err := rentinterfaces.ExportLedger(view, rentinterfaces.FormatXLSX)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	writeFile(w, file.ContentType, file.Filename, file.Data)
	h.audit.record(r, "ledger.export", "ledger", view.Tenant.ID, view.Tenant.ID, map[string]any{"format": rentinterfaces.FormatXLSX})
}

func (h *rentHandler) loadLedger(w http.ResponseWriter, r *http.Request) (*rentapp.LedgerView, bool) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	tenantID := chi.URLParam(r, "tenantID")
	var view *rentapp.LedgerView
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			http.Error(w, "as_of must be YYYY-MM-DD", http.StatusBadRequest)
			return nil, false
		}
		view, err = h.ledger.LedgerAsOf(r.Context(), ownerID, tenantID, asOf)
		if err != nil {
			respondServiceError(w, err)
			return nil, false
		}
		return view, true
	}
	view, err = h.ledger.Ledger(r.Context(), ownerID, tenantID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return view, true
}

func (h *rentHandler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	tenantID := chi.URLParam(r, "tenantID")
	payment, err := h.payments.Record(r.Context(), ownerID, tenantID, body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
	h.audit.record(r, "payment.record", "payment", payment.ID, tenantID, map[string]any{
		"period": payment.Period,
		"amount": payment.Amount.String(),
	})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
