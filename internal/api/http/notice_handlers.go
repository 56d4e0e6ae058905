package apihttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rentnotice-cloud/internal/auth"
	noticeapp "rentnotice-cloud/internal/notice/application"
	notice "rentnotice-cloud/internal/notice/domain"
	"rentnotice-cloud/internal/notice/render"
)

// noticeHandler serves notice previews, documents, history and delivery.
type noticeHandler struct {
	service *noticeapp.Service
	audit   auditor
}

func newNoticeHandler(service *noticeapp.Service, auditLogger auditor) (*noticeHandler, error) {
	if service == nil {
		return nil, errors.New("notice handler: nil service")
	}
	return &noticeHandler{service: service, audit: auditLogger}, nil
}

func (h *noticeHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ownerID, sections, ok := noticeRequest(w, r)
	if !ok {
		return
	}
	preview, err := h.service.Preview(r.Context(), ownerID, chi.URLParam(r, "tenantID"), sections)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (h *noticeHandler) handleDocument(w http.ResponseWriter, r *http.Request) {
	ownerID, sections, ok := noticeRequest(w, r)
	if !ok {
		return
	}
	doc, preview, err := h.service.Document(r.Context(), ownerID, chi.URLParam(r, "tenantID"), sections, r.URL.Query().Get("format"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("X-Notice-Pages", strconv.Itoa(doc.Pages))
	if !preview.Validation.CanPersist() {
		w.Header().Set("X-Notice-Blocked", "true")
	}
	writeFile(w, doc.ContentType, doc.Filename(preview.Notice), doc.Data)
}

func (h *noticeHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	ownerID, sections, ok := noticeRequest(w, r)
	if !ok {
		return
	}
	tenantID := chi.URLParam(r, "tenantID")
	n, err := h.service.Save(r.Context(), ownerID, tenantID, sections)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
	h.audit.record(r, "notice.save", "notice", n.ID, tenantID, map[string]any{
		"period": n.Period,
		"total":  n.TotalAmount.String(),
	})
}

func (h *noticeHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	ownerID, sections, ok := noticeRequest(w, r)
	if !ok {
		return
	}
	tenantID := chi.URLParam(r, "tenantID")
	result, err := h.service.Send(r.Context(), ownerID, tenantID, sections)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
	h.audit.record(r, "notice.send", "notice", result.Notice.ID, tenantID, map[string]any{
		"email_id": result.Email.ID,
		"to":       result.Email.To,
	})
}

func (h *noticeHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	list, err := h.service.History(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []notice.ComposedNotice{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *noticeHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	n, err := h.service.Get(r.Context(), ownerID, chi.URLParam(r, "noticeID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *noticeHandler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	doc, n, err := h.service.Export(r.Context(), ownerID, chi.URLParam(r, "noticeID"), render.FormatPDF)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeFile(w, doc.ContentType, doc.Filename(*n), doc.Data)
	h.audit.record(r, "notice.export", "notice", n.ID, n.Tenant.ID, map[string]any{"format": render.FormatPDF})
}

// noticeRequest resolves the owner and decodes optional editable sections.
// An empty body means no sections.
func noticeRequest(w http.ResponseWriter, r *http.Request) (string, notice.EditableSections, bool) {
	var sections notice.EditableSections
	ownerID, err := auth.RequireOwner(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return "", sections, false
	}
	body, ok := readBody(w, r)
	if !ok {
		return "", sections, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ownerID, sections, true
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sections); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid notice sections"})
		return "", sections, false
	}
	return ownerID, sections, true
}
