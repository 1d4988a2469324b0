package ownership

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"livestock-ledger/internal/platform/httpx"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/animals/{animalID}/owners", getOwnersHandler(svc))
	r.Put("/animals/{animalID}/owners", replaceOwnersHandler(svc))
}

type ShareRequest struct {
	OwnerID      int64           `json:"owner_id"`
	SharePercent decimal.Decimal `json:"share_percent" swaggertype:"string" example:"50.5"`
}

type replaceOwnersRequest struct {
	Owners []ShareRequest `json:"owners"`
}

type holdingResponse struct {
	OwnerID      int64           `json:"owner_id"`
	OwnerName    string          `json:"owner_name"`
	SharePercent decimal.Decimal `json:"share_percent" swaggertype:"string" example:"50.5"`
}

// getOwnersHandler godoc
// @Summary Dueños de un animal
// @Description Participaciones actuales. Las filas cuyo dueño no existe se omiten.
// @Tags ownership
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Success 200 {array} holdingResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID}/owners [get]
func getOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		animalID, ok := httpx.PathID(w, r, "animalID")
		if !ok {
			return
		}

		items, err := svc.GetOwners(r.Context(), uid, animalID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]holdingResponse, 0, len(items))
		for _, h := range items {
			out = append(out, holdingResponse{OwnerID: h.Owner.ID, OwnerName: h.Owner.Name, SharePercent: h.SharePercent})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// replaceOwnersHandler godoc
// @Summary Reemplazar dueños de un animal
// @Description Borra las participaciones actuales e inserta las nuevas en una transacción. Cada share en (0,100], total <= 100. Lista vacía deja al animal sin dueños.
// @Tags ownership
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Param payload body replaceOwnersRequest true "Nuevo set de dueños"
// @Success 200 {array} holdingResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID}/owners [put]
func replaceOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		animalID, ok := httpx.PathID(w, r, "animalID")
		if !ok {
			return
		}

		var req replaceOwnersRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		if err := svc.ReplaceOwners(r.Context(), uid, animalID, ToShares(req.Owners)); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		items, err := svc.GetOwners(r.Context(), uid, animalID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		out := make([]holdingResponse, 0, len(items))
		for _, h := range items {
			out = append(out, holdingResponse{OwnerID: h.Owner.ID, OwnerName: h.Owner.Name, SharePercent: h.SharePercent})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// ToShares convierte el payload HTTP; lo reusa el alta de animales.
func ToShares(in []ShareRequest) []Share {
	out := make([]Share, 0, len(in))
	for _, s := range in {
		out = append(out, Share{OwnerID: s.OwnerID, SharePercent: s.SharePercent})
	}
	return out
}
