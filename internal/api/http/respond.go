package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentnotice-cloud/internal/auth"
	notice "rentnotice-cloud/internal/notice/domain"
	"rentnotice-cloud/internal/notice/layout"
	"rentnotice-cloud/internal/notice/render"
	rentapp "rentnotice-cloud/internal/rent/application"
	rent "rentnotice-cloud/internal/rent/domain"
	rentinterfaces "rentnotice-cloud/internal/rent/interfaces"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error    string            `json:"error"`
	Fields   []rent.FieldError `json:"fields,omitempty"`
	Blocking []string          `json:"blocking,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// respondServiceError maps use-case errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var decodeErr *rent.DecodeError
	var validationErr *notice.ValidationError
	switch {
	case errors.Is(err, auth.ErrMissingOwner):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.As(err, &decodeErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid " + decodeErr.Record, Fields: decodeErr.Fields})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "notice blocked", Blocking: validationErr.Blocking})
	case errors.Is(err, notice.ErrMissingRecipient):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "tenant email is required to send a notice"})
	case errors.Is(err, rent.ErrTenantNotFound):
		http.Error(w, "tenant not found", http.StatusNotFound)
	case errors.Is(err, notice.ErrNoticeNotFound):
		http.Error(w, "notice not found", http.StatusNotFound)
	case errors.Is(err, rent.ErrEmptyTenantID), errors.Is(err, rent.ErrInvalidPeriod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, render.ErrUnknownFormat), errors.Is(err, rentinterfaces.ErrUnsupportedLedgerFormat):
		http.Error(w, "unsupported format", http.StatusBadRequest)
	case errors.Is(err, rentapp.ErrLoadFailed):
		http.Error(w, "failed to load", http.StatusBadGateway)
	case errors.Is(err, rentapp.ErrStoreFailed):
		http.Error(w, "failed to store", http.StatusBadGateway)
	case errors.Is(err, layout.ErrContentTooNarrow), errors.Is(err, layout.ErrPageTooShort), errors.Is(err, layout.ErrInvalidConfig):
		http.Error(w, "layout error", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
