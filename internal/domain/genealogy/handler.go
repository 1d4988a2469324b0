package genealogy

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"livestock-ledger/internal/platform/httpx"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/animals/{animalID}/genealogy", genealogyHandler(svc))
}

type nodeResponse struct {
	ID           int64           `json:"id"`
	Tag          string          `json:"tag"`
	PedigreeCode string          `json:"pedigree_code"`
	Name         string          `json:"name"`
	Sex          string          `json:"sex"`
	BirthDate    *time.Time      `json:"birth_date,omitempty"`
	Breed        string          `json:"breed"`
	Deleted      bool            `json:"deleted"`
	Mother       *nodeResponse   `json:"mother"`
	Father       *nodeResponse   `json:"father"`
	Children     []*nodeResponse `json:"children"`
}

type cycleResponse struct {
	Error string  `json:"error"`
	Path  []int64 `json:"path"`
}

// genealogyHandler godoc
// @Summary Árbol genealógico de un animal
// @Description Ancestros (madre/padre recursivos) y descendientes (hijos recursivos) del animal. La membresía se valida sólo en la raíz. Un ciclo en los datos devuelve 409 con el camino; superar la profundidad o la cantidad máxima de nodos devuelve 422.
// @Tags genealogy
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Success 200 {object} nodeResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} cycleResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /animals/{animalID}/genealogy [get]
func genealogyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		animalID, ok := httpx.PathID(w, r, "animalID")
		if !ok {
			return
		}

		root, err := svc.BuildGenealogy(r.Context(), uid, animalID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toNodeResponse(root))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var cycle *CyclicPedigreeError
	switch {
	case errors.As(err, &cycle):
		httpx.WriteJSON(w, http.StatusConflict, cycleResponse{Error: "cyclic pedigree", Path: cycle.Path})
	case errors.Is(err, ErrDepthExceeded), errors.Is(err, ErrTreeTooLarge):
		httpx.WriteErrorMsg(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httpx.WriteError(w, r, err)
	}
}

func toNodeResponse(n *Node) *nodeResponse {
	if n == nil {
		return nil
	}
	out := &nodeResponse{
		ID:           n.ID,
		Tag:          n.Tag,
		PedigreeCode: n.PedigreeCode,
		Name:         n.Name,
		Sex:          string(n.Sex),
		BirthDate:    n.BirthDate,
		Breed:        n.Breed,
		Deleted:      n.Deleted,
		Mother:       toNodeResponse(n.Mother),
		Father:       toNodeResponse(n.Father),
		Children:     make([]*nodeResponse, 0, len(n.Children)),
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toNodeResponse(c))
	}
	return out
}
