package registry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"livestock-ledger/internal/domain/genealogy"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/domain/ownership"
	"livestock-ledger/internal/platform/httpx"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/farms", createFarmHandler(svc))
	r.Post("/farms/{farmID}/members", addMemberHandler(svc))
	r.Post("/paddocks", createPaddockHandler(svc))
	r.Post("/lots", createLotHandler(svc))
	r.Delete("/lots/{lotID}", deleteLotHandler(svc))
	r.Post("/owners", createOwnerHandler(svc))

	// rutas planas: genealogy/movements/occupancy cuelgan de /animals/{animalID}/...
	r.Post("/animals", createAnimalHandler(svc))
	r.Get("/animals/{animalID}", getAnimalHandler(svc))
	r.Patch("/animals/{animalID}", updateAnimalHandler(svc))
	r.Delete("/animals/{animalID}", deleteAnimalHandler(svc))
}

type nameRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	UserID int64 `json:"user_id"`
}

type farmResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type createPaddockRequest struct {
	FarmID   int64           `json:"farm_id"`
	Name     string          `json:"name"`
	Boundary json.RawMessage `json:"boundary,omitempty" swaggertype:"object"` // GeoJSON Polygon/MultiPolygon
}

type paddockResponse struct {
	ID           int64           `json:"id"`
	FarmID       int64           `json:"farm_id"`
	Name         string          `json:"name"`
	Boundary     json.RawMessage `json:"boundary,omitempty" swaggertype:"object"`
	AreaHectares float64         `json:"area_hectares"`
	CreatedAt    time.Time       `json:"created_at"`
}

type createLotRequest struct {
	PaddockID int64  `json:"paddock_id"`
	Name      string `json:"name"`
}

type lotResponse struct {
	ID        int64      `json:"id"`
	PaddockID int64      `json:"paddock_id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type ownerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type statusPayload struct {
	Life         string `json:"life"`
	Production   string `json:"production"`
	Health       string `json:"health"`
	Reproductive string `json:"reproductive"`
}

type createAnimalRequest struct {
	Tag          string                   `json:"tag"`
	PedigreeCode string                   `json:"pedigree_code"`
	Name         string                   `json:"name"`
	Sex          string                   `json:"sex"`
	BirthDate    string                   `json:"birth_date"` // YYYY-MM-DD opcional
	Breed        string                   `json:"breed"`
	Color        string                   `json:"color"`
	Status       statusPayload            `json:"status"`
	MotherID     *int64                   `json:"mother_id"`
	FatherID     *int64                   `json:"father_id"`
	LotID        int64                    `json:"lot_id"`
	Owners       []ownership.ShareRequest `json:"owners"`
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	// birth_date, mother_id y father_id aceptan null para limpiar.
	Tag          *string                   `json:"tag"`
	PedigreeCode *string                   `json:"pedigree_code"`
	Name         *string                   `json:"name"`
	Sex          *string                   `json:"sex"`
	Breed        *string                   `json:"breed"`
	Color        *string                   `json:"color"`
	Status       *statusPayload            `json:"status"`
	Owners       *[]ownership.ShareRequest `json:"owners"`
}

type animalStatusResponse struct {
	Life         string `json:"life"`
	Production   string `json:"production"`
	Health       string `json:"health"`
	Reproductive string `json:"reproductive"`
}

type warningResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type animalResponse struct {
	ID           int64                `json:"id"`
	Tag          string               `json:"tag"`
	PedigreeCode string               `json:"pedigree_code"`
	Name         string               `json:"name"`
	Sex          string               `json:"sex"`
	BirthDate    *time.Time           `json:"birth_date,omitempty"`
	Breed        string               `json:"breed"`
	Color        string               `json:"color"`
	Status       animalStatusResponse `json:"status"`
	MotherID     *int64               `json:"mother_id"`
	FatherID     *int64               `json:"father_id"`
	LotID        int64                `json:"lot_id"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	DeletedAt    *time.Time           `json:"deleted_at,omitempty"`
	Warnings     []warningResponse    `json:"warnings,omitempty"`
}

// createFarmHandler godoc
// @Summary Crear granja
// @Description El usuario autenticado queda como miembro.
// @Tags registry
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body nameRequest true "Nombre"
// @Success 201 {object} farmResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /farms [post]
func createFarmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		var req nameRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		f, err := svc.CreateFarm(r.Context(), uid, req.Name)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, farmResponse{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt})
	}
}

// addMemberHandler godoc
// @Summary Agregar miembro a una granja
// @Tags registry
// @Accept json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param farmID path int true "ID de la granja"
// @Param payload body addMemberRequest true "Usuario a agregar"
// @Success 204
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /farms/{farmID}/members [post]
func addMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		farmID, ok := httpx.PathID(w, r, "farmID")
		if !ok {
			return
		}
		var req addMemberRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		if err := svc.AddMember(r.Context(), uid, farmID, req.UserID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// createPaddockHandler godoc
// @Summary Crear potrero
// @Description boundary es un Polygon o MultiPolygon GeoJSON opcional; el área se calcula en hectáreas.
// @Tags registry
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createPaddockRequest true "Potrero"
// @Success 201 {object} paddockResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /paddocks [post]
func createPaddockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		var req createPaddockRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		p, err := svc.CreatePaddock(r.Context(), uid, PaddockInput{FarmID: req.FarmID, Name: req.Name, Boundary: req.Boundary})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, paddockResponse{
			ID:           p.ID,
			FarmID:       p.FarmID,
			Name:         p.Name,
			Boundary:     p.Boundary,
			AreaHectares: p.AreaHectares,
			CreatedAt:    p.CreatedAt,
		})
	}
}

// createLotHandler godoc
// @Summary Crear lote
// @Description Registra también el movimiento inicial (from_id null, reason registration).
// @Tags registry
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createLotRequest true "Lote"
// @Success 201 {object} lotResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /lots [post]
func createLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		var req createLotRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		l, err := svc.CreateLot(r.Context(), uid, LotInput{PaddockID: req.PaddockID, Name: req.Name})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toLotResponse(l))
	}
}

// deleteLotHandler godoc
// @Summary Borrar lote (soft delete)
// @Description El lote debe estar vacío; si tiene animales devuelve 409.
// @Tags registry
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param lotID path int true "ID del lote"
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /lots/{lotID} [delete]
func deleteLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		lotID, ok := httpx.PathID(w, r, "lotID")
		if !ok {
			return
		}
		if err := svc.DeleteLot(r.Context(), uid, lotID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// createOwnerHandler godoc
// @Summary Crear dueño
// @Tags registry
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body nameRequest true "Nombre"
// @Success 201 {object} ownerResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /owners [post]
func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		var req nameRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		o, err := svc.CreateOwner(r.Context(), uid, req.Name)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ownerResponse{ID: o.ID, Name: o.Name, CreatedAt: o.CreatedAt})
	}
}

// createAnimalHandler godoc
// @Summary Crear animal
// @Description Alta en un lote con dueños opcionales. Registra el movimiento inicial. Las advertencias de pedigrí (padre inexistente, ciclo, sexo) se devuelven pero no bloquean.
// @Tags registry
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createAnimalRequest true "Animal; birth_date YYYY-MM-DD"
// @Success 201 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse "pedigree_code duplicado"
// @Router /animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		var req createAnimalRequest
		if !httpx.Decode(w, r, &req) {
			return
		}

		bd, err := httpx.ParseDate(req.BirthDate)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: "must be YYYY-MM-DD", Field: "birth_date"})
			return
		}

		res, err := svc.CreateAnimal(r.Context(), uid, CreateAnimalInput{
			Tag:          req.Tag,
			PedigreeCode: req.PedigreeCode,
			Name:         req.Name,
			Sex:          req.Sex,
			BirthDate:    bd,
			Breed:        req.Breed,
			Color:        req.Color,
			Status:       StatusInput(req.Status),
			MotherID:     req.MotherID,
			FatherID:     req.FatherID,
			LotID:        req.LotID,
			Owners:       ownership.ToShares(req.Owners),
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toAnimalResponse(res.Animal, res.Warnings))
	}
}

// getAnimalHandler godoc
// @Summary Obtener animal
// @Tags registry
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		animalID, ok := httpx.PathID(w, r, "animalID")
		if !ok {
			return
		}

		a, err := svc.GetAnimal(r.Context(), uid, animalID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(a, nil))
	}
}

// updateAnimalHandler godoc
// @Summary Editar animal
// @Description PATCH: sólo se aplican los campos enviados. birth_date, mother_id y father_id aceptan null. owners reemplaza el set completo. El lote se cambia con /relocate.
// @Tags registry
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Param payload body updateAnimalRequest true "Campos a cambiar"
// @Success 200 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [patch]
func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		animalID, ok := httpx.PathID(w, r, "animalID")
		if !ok {
			return
		}

		// Decodificamos a map primero para detectar presencia de los campos
		// que aceptan null (null = limpiar, ausente = no tocar).
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			httpx.WriteErrorMsg(w, http.StatusBadRequest, "invalid json")
			return
		}

		var req updateAnimalRequest
		{
			rest := make(map[string]json.RawMessage, len(raw))
			for k, v := range raw {
				switch k {
				case "birth_date", "mother_id", "father_id":
					continue
				}
				rest[k] = v
			}
			b, _ := json.Marshal(rest)
			dec := json.NewDecoder(bytes.NewReader(b))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				httpx.WriteErrorMsg(w, http.StatusBadRequest, "invalid json")
				return
			}
		}

		in := UpdateAnimalInput{
			Tag:          req.Tag,
			PedigreeCode: req.PedigreeCode,
			Name:         req.Name,
			Sex:          req.Sex,
			Breed:        req.Breed,
			Color:        req.Color,
		}
		if req.Status != nil {
			in.Status = StatusInput(*req.Status)
		}
		if req.Owners != nil {
			shares := ownership.ToShares(*req.Owners)
			in.Owners = &shares
		}

		var err error
		if in.MotherID, err = optionalID(raw, "mother_id"); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if in.FatherID, err = optionalID(raw, "father_id"); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if v, exists := raw["birth_date"]; exists {
			in.BirthDate.Set = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: "must be YYYY-MM-DD or null", Field: "birth_date"})
					return
				}
				bd, err := httpx.ParseDate(s)
				if err != nil {
					httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: "must be YYYY-MM-DD or null", Field: "birth_date"})
					return
				}
				in.BirthDate.Value = bd
			}
		}

		res, err := svc.UpdateAnimal(r.Context(), uid, animalID, in)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(res.Animal, res.Warnings))
	}
}

// deleteAnimalHandler godoc
// @Summary Borrar animal (soft delete)
// @Tags registry
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := httpx.RequireUser(w, r)
		if !ok {
			return
		}
		animalID, ok := httpx.PathID(w, r, "animalID")
		if !ok {
			return
		}
		if err := svc.DeleteAnimal(r.Context(), uid, animalID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func optionalID(raw map[string]json.RawMessage, key string) (OptionalID, error) {
	v, exists := raw[key]
	if !exists {
		return OptionalID{}, nil
	}
	if string(v) == "null" {
		return OptionalID{Set: true}, nil
	}
	var id int64
	if err := json.Unmarshal(v, &id); err != nil || id <= 0 {
		return OptionalID{}, herd.Invalid(key, "must be a positive integer or null")
	}
	return OptionalID{Set: true, Value: &id}, nil
}

func toLotResponse(l herd.Lot) lotResponse {
	return lotResponse{
		ID:        l.ID,
		PaddockID: l.PaddockID,
		Name:      l.Name,
		Status:    string(l.Status),
		CreatedAt: l.CreatedAt,
		DeletedAt: l.DeletedAt,
	}
}

func toAnimalResponse(a herd.Animal, warnings []genealogy.Warning) animalResponse {
	out := animalResponse{
		ID:           a.ID,
		Tag:          a.Tag,
		PedigreeCode: a.PedigreeCode,
		Name:         a.Name,
		Sex:          string(a.Sex),
		BirthDate:    a.BirthDate,
		Breed:        a.Breed,
		Color:        a.Color,
		Status: animalStatusResponse{
			Life:         string(a.Status.Life),
			Production:   string(a.Status.Production),
			Health:       string(a.Status.Health),
			Reproductive: string(a.Status.Reproductive),
		},
		MotherID:  a.MotherID,
		FatherID:  a.FatherID,
		LotID:     a.LotID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		DeletedAt: a.DeletedAt,
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, warningResponse{Code: string(w.Code), Message: w.Message})
	}
	return out
}
