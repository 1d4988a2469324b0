package movements

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/platform/httpx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/animals/{animalID}/movements", historyHandler(svc, herd.EntityAnimal, "animalID"))
	r.Get("/lots/{lotID}/movements", historyHandler(svc, herd.EntityLot, "lotID"))
	r.Post("/movements", recordMovementHandler(svc))
}

type movementResponse struct {
	ID           string       `json:"id"`
	EntityType   string       `json:"entity_type"`
	EntityID     int64        `json:"entity_id"`
	LocationKind LocationKind `json:"location_kind"`
	FromID       *int64       `json:"from_id"`
	FromName     *string      `json:"from_name"`
	ToID         int64        `json:"to_id"`
	ToName       *string      `json:"to_name"`
	MovedAt      time.Time    `json:"moved_at"`
	Reason       string       `json:"reason"`
	ActorUserID  int64        `json:"actor_user_id"`
	CreatedAt    time.Time    `json:"created_at"`
}

type recordMovementRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	FromID     *int64 `json:"from_id"`
	ToID       int64  `json:"to_id"`
	MovedAt    string `json:"moved_at"` // RFC3339 opcional
	Reason     string `json:"reason"`
}

// historyHandler godoc
// @Summary Historial de movimientos
// @Description Movimientos de un animal (entre lotes) o de un lote (entre potreros), más reciente primero. Los nombres de origen/destino se resuelven al leer y quedan en null si no existen. Con `format=xlsx` devuelve una planilla.
// @Tags movements
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal (o lotID en /lots/{lotID}/movements)"
// @Param format query string false "json (default) o xlsx"
// @Success 200 {array} movementResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID}/movements [get]
// @Router /lots/{lotID}/movements [get]
func historyHandler(svc *Service, kind herd.EntityKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		id, ok := httpx.PathID(w, r, param)
		if !ok {
			return
		}

		entries, err := svc.GetHistory(r.Context(), uid, kind, id)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
			var buf bytes.Buffer
			if err := WriteXLSX(&buf, entries); err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			name := fmt.Sprintf("%s-%d-movements.xlsx", strings.ToLower(string(kind)), id)
			w.Header().Set("Content-Type", xlsxContentType)
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
			w.WriteHeader(http.StatusOK)
			_, _ = buf.WriteTo(w)
			return
		}

		out := make([]movementResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toMovementResponse(e))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// recordMovementHandler godoc
// @Summary Registrar movimiento histórico
// @Description Agrega un registro al ledger sin cambiar la ubicación actual de la entidad. Para mover una entidad usar los endpoints de relocate.
// @Tags movements
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body recordMovementRequest true "Movimiento; moved_at RFC3339"
// @Success 201 {object} movementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /movements [post]
func recordMovementHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}

		var req recordMovementRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		var movedAt time.Time
		if s := strings.TrimSpace(req.MovedAt); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: "must be RFC3339", Field: "moved_at"})
				return
			}
			movedAt = t
		}

		m, err := svc.RecordMovement(r.Context(), RecordInput{
			EntityType:  herd.EntityKind(strings.ToUpper(strings.TrimSpace(req.EntityType))),
			EntityID:    req.EntityID,
			FromID:      req.FromID,
			ToID:        req.ToID,
			Reason:      req.Reason,
			ActorUserID: uid,
			MovedAt:     movedAt,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toMovementResponse(Entry{Movement: m, LocationKind: LocationKindOf(m.EntityType)}))
	}
}

func toMovementResponse(e Entry) movementResponse {
	return movementResponse{
		ID:           e.ID,
		EntityType:   string(e.EntityType),
		EntityID:     e.EntityID,
		LocationKind: e.LocationKind,
		FromID:       e.FromID,
		FromName:     e.FromName,
		ToID:         e.ToID,
		ToName:       e.ToName,
		MovedAt:      e.MovedAt,
		Reason:       e.Reason,
		ActorUserID:  e.ActorUserID,
		CreatedAt:    e.CreatedAt,
	}
}
