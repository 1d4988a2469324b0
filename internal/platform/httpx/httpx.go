// Package httpx agrupa helpers HTTP comunes a los handlers de dominio.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/middleware"
	"livestock-ledger/internal/platform/logger"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteErrorMsg(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// WriteError mapea los errores comunes del dominio. Los paquetes con
// errores propios los resuelven antes de llegar acá.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *herd.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Reason, Field: verr.Field})
	case errors.Is(err, herd.ErrNotFound):
		WriteErrorMsg(w, http.StatusNotFound, "not found")
	case errors.Is(err, herd.ErrForbidden):
		WriteErrorMsg(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, herd.ErrConflict):
		WriteErrorMsg(w, http.StatusConflict, "conflict")
	default:
		logger.FromContext(r.Context(), logger.Nop()).Error("request failed", map[string]any{"err": err})
		WriteErrorMsg(w, http.StatusInternalServerError, "internal error")
	}
}

// RequireUser responde 401 si no hay claims.
func RequireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid := middleware.UserID(r.Context())
	if uid <= 0 {
		WriteErrorMsg(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return uid, true
}

// PathID lee un id numérico de la ruta; responde 400 si no parsea.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "must be a positive integer", Field: name})
		return 0, false
	}
	return id, true
}

// Decode exige JSON sin campos desconocidos.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteErrorMsg(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// ParseDate acepta YYYY-MM-DD o RFC3339.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
