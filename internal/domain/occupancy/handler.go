package occupancy

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/platform/httpx"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// bulk antes que /{animalID} para que chi no lo tome como id
	r.Post("/animals/relocate", relocateAnimalsHandler(svc))
	r.Post("/animals/{animalID}/relocate", relocateAnimalHandler(svc))
	r.Post("/lots/{lotID}/relocate", relocateLotHandler(svc))

	r.Get("/lots/{lotID}/animals", listAnimalsHandler(svc))
	r.Get("/paddocks/{paddockID}/lots", listLotsHandler(svc))
}

type relocateAnimalRequest struct {
	ToLotID int64  `json:"to_lot_id"`
	Reason  string `json:"reason"`
}

type relocateAnimalsRequest struct {
	AnimalIDs []int64 `json:"animal_ids"`
	ToLotID   int64   `json:"to_lot_id"`
	Reason    string  `json:"reason"`
}

type relocateLotRequest struct {
	ToPaddockID int64  `json:"to_paddock_id"`
	Reason      string `json:"reason"`
}

type movementResponse struct {
	ID          string    `json:"id"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	FromID      *int64    `json:"from_id"`
	ToID        int64     `json:"to_id"`
	MovedAt     time.Time `json:"moved_at"`
	Reason      string    `json:"reason"`
	ActorUserID int64     `json:"actor_user_id"`
}

type animalSummary struct {
	ID           int64  `json:"id"`
	Tag          string `json:"tag"`
	PedigreeCode string `json:"pedigree_code"`
	Name         string `json:"name"`
	Sex          string `json:"sex"`
	LotID        int64  `json:"lot_id"`
	LifeStatus   string `json:"life_status"`
}

type lotSummary struct {
	ID        int64  `json:"id"`
	PaddockID int64  `json:"paddock_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

// relocateAnimalHandler godoc
// @Summary Mover un animal de lote
// @Description Actualiza el lote actual y agrega el movimiento al ledger en la misma transacción. Requiere membresía en la granja de origen y en la de destino.
// @Tags occupancy
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Param payload body relocateAnimalRequest true "Lote destino y motivo"
// @Success 200 {object} movementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID}/relocate [post]
func relocateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		animalID, ok := httpx.PathID(w, r, "animalID")
		if !ok {
			return
		}
		var req relocateAnimalRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		m, err := svc.RelocateAnimal(r.Context(), uid, animalID, req.ToLotID, req.Reason)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toMovementResponse(m))
	}
}

// relocateAnimalsHandler godoc
// @Summary Mover varios animales a un lote
// @Description Todo-o-nada: si un animal falla, no se mueve ninguno.
// @Tags occupancy
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body relocateAnimalsRequest true "Animales, lote destino y motivo"
// @Success 200 {array} movementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/relocate [post]
func relocateAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		var req relocateAnimalsRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		ms, err := svc.RelocateAnimals(r.Context(), uid, req.AnimalIDs, req.ToLotID, req.Reason)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		out := make([]movementResponse, 0, len(ms))
		for _, m := range ms {
			out = append(out, toMovementResponse(m))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// relocateLotHandler godoc
// @Summary Mover un lote de potrero
// @Tags occupancy
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param lotID path int true "ID del lote"
// @Param payload body relocateLotRequest true "Potrero destino y motivo"
// @Success 200 {object} movementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /lots/{lotID}/relocate [post]
func relocateLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		lotID, ok := httpx.PathID(w, r, "lotID")
		if !ok {
			return
		}
		var req relocateLotRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		m, err := svc.RelocateLot(r.Context(), uid, lotID, req.ToPaddockID, req.Reason)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toMovementResponse(m))
	}
}

// listAnimalsHandler godoc
// @Summary Animales de un lote
// @Tags occupancy
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param lotID path int true "ID del lote"
// @Success 200 {array} animalSummary
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /lots/{lotID}/animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		lotID, ok := httpx.PathID(w, r, "lotID")
		if !ok {
			return
		}

		items, err := svc.ListAnimalsInLot(r.Context(), uid, lotID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		out := make([]animalSummary, 0, len(items))
		for _, a := range items {
			out = append(out, animalSummary{
				ID:           a.ID,
				Tag:          a.Tag,
				PedigreeCode: a.PedigreeCode,
				Name:         a.Name,
				Sex:          string(a.Sex),
				LotID:        a.LotID,
				LifeStatus:   string(a.Status.Life),
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// listLotsHandler godoc
// @Summary Lotes de un potrero
// @Tags occupancy
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param paddockID path int true "ID del potrero"
// @Success 200 {array} lotSummary
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /paddocks/{paddockID}/lots [get]
func listLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		paddockID, ok := httpx.PathID(w, r, "paddockID")
		if !ok {
			return
		}

		items, err := svc.ListLotsInPaddock(r.Context(), uid, paddockID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		out := make([]lotSummary, 0, len(items))
		for _, l := range items {
			out = append(out, lotSummary{ID: l.ID, PaddockID: l.PaddockID, Name: l.Name, Status: string(l.Status)})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toMovementResponse(m herd.Movement) movementResponse {
	return movementResponse{
		ID:          m.ID,
		EntityType:  string(m.EntityType),
		EntityID:    m.EntityID,
		FromID:      m.FromID,
		ToID:        m.ToID,
		MovedAt:     m.MovedAt,
		Reason:      m.Reason,
		ActorUserID: m.ActorUserID,
	}
}
