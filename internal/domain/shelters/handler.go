package shelters

import (
	"context"
	"net/http"

	"animal-shelter-api/internal/domain/ownership"
	"animal-shelter-api/internal/middleware"
	"animal-shelter-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// Placement es la parte del motor de ubicación que tocan las rutas de refugios.
type Placement interface {
	AssignShelter(ctx context.Context, callerID string, animalID, shelterID int64) error
	UnassignShelter(ctx context.Context, callerID string, animalID, shelterID int64) error
	DeleteShelter(ctx context.Context, callerID string, shelterID int64) error
	EditShelter(ctx context.Context, callerID string, shelterID int64, in UpdateInput, replace bool) (Shelter, error)
}

func RegisterRoutes(r chi.Router, svc *Service, place Placement, pageSize int) {
	r.Route("/shelters", func(sr chi.Router) {
		sr.Put("/", httpx.MethodNotAllowed(http.MethodGet, http.MethodPost))
		sr.Delete("/", httpx.MethodNotAllowed(http.MethodGet, http.MethodPost))

		sr.Group(func(pr chi.Router) {
			pr.Use(requireCaller)

			pr.Post("/", createShelterHandler(svc))
			pr.Get("/", listSheltersHandler(svc, pageSize))

			pr.Get("/{shelterID}", getShelterHandler(svc))
			pr.Patch("/{shelterID}", editShelterHandler(place, false))
			pr.Put("/{shelterID}", editShelterHandler(place, true))
			pr.Delete("/{shelterID}", deleteShelterHandler(place))

			pr.Put("/{shelterID}/animals/{animalID}", memberHandler(place.AssignShelter))
			pr.Delete("/{shelterID}/animals/{animalID}", memberHandler(place.UnassignShelter))
		})
	})
}

// requireCaller: todas las rutas de refugios son privadas.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.CallerID(r.Context()) == "" {
			httpx.WriteDomainError(w, ownership.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type shelterRequest struct {
	Name    *string  `json:"name" validate:"required"`
	Address *string  `json:"address" validate:"required"`
	Contact *Contact `json:"contact" validate:"required"`
	Website *string  `json:"website"`
}

type animalSummaryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Species   string `json:"species"`
	Adoptable bool   `json:"adoptable"`
	Self      string `json:"self"`
}

type shelterResponse struct {
	ID      int64                   `json:"id"`
	Name    string                  `json:"name"`
	Address string                  `json:"address"`
	Contact Contact                 `json:"contact"`
	Website string                  `json:"website,omitempty"`
	Animals []animalSummaryResponse `json:"animals"`
	User    string                  `json:"user"`
	Self    string                  `json:"self"`
}

type shelterListResponse struct {
	Shelters   []shelterResponse `json:"shelters"`
	TotalItems int               `json:"total_items"`
	httpx.Links
}

// createShelterHandler godoc
// @Summary      Crear un refugio
// @Description  El refugio queda a nombre del caller. El nombre debe ser único.
// @Tags         shelters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      shelterRequest  true  "Refugio"
// @Success      201   {object}  shelterResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string  "Nombre ya usado"
// @Router       /shelters [post]
func createShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shelterRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		in := CreateInput{Name: *req.Name, Address: *req.Address, Contact: *req.Contact}
		if req.Website != nil {
			in.Website = *req.Website
		}

		sh, err := svc.Create(r.Context(), middleware.CallerID(r.Context()), in)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		w.Header().Set("Location", httpx.SelfLink(r, "shelters", sh.ID))
		httpx.WriteJSON(w, http.StatusCreated, toShelterResponse(r, sh))
	}
}

// listSheltersHandler godoc
// @Summary      Listar mis refugios
// @Tags         shelters
// @Produce      json
// @Security     BearerAuth
// @Param        cursor  query     string  false  "Cursor opaco"
// @Success      200     {object}  shelterListResponse
// @Failure      401     {object}  map[string]string
// @Router       /shelters [get]
func listSheltersHandler(svc *Service, pageSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := httpx.ParsePage(r, pageSize)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		res, err := svc.ListByOwner(r.Context(), middleware.CallerID(r.Context()), p)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		out := shelterListResponse{
			Shelters:   make([]shelterResponse, 0, len(res.Items)),
			TotalItems: len(res.Items),
			Links:      httpx.PageLinks(r, "shelters", res.Next),
		}
		for _, sh := range res.Items {
			out.Shelters = append(out.Shelters, toShelterResponse(r, sh))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getShelterHandler godoc
// @Summary      Ver un refugio
// @Tags         shelters
// @Produce      json
// @Security     BearerAuth
// @Param        shelterID  path      int  true  "ID del refugio"
// @Success      200        {object}  shelterResponse
// @Failure      401        {object}  map[string]string
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /shelters/{shelterID} [get]
func getShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := svc.GetOwned(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "shelterID"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toShelterResponse(r, sh))
	}
}

// editShelterHandler godoc
// @Summary      Editar un refugio
// @Description  PATCH acepta un subconjunto; PUT exige name, address y contact. Renombrar actualiza la ubicación de sus animales.
// @Tags         shelters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        shelterID  path      int             true  "ID del refugio"
// @Param        body       body      shelterRequest  true  "Atributos"
// @Success      200        {object}  shelterResponse
// @Failure      400        {object}  map[string]string
// @Failure      403        {object}  map[string]string  "Ajeno o nombre ya usado"
// @Failure      404        {object}  map[string]string
// @Router       /shelters/{shelterID} [patch]
// @Router       /shelters/{shelterID} [put]
func editShelterHandler(place Placement, replace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shelterRequest
		if err := httpx.DecodeBody(r, &req); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		sh, err := place.EditShelter(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "shelterID"), UpdateInput{
			Name:    req.Name,
			Address: req.Address,
			Contact: req.Contact,
			Website: req.Website,
		}, replace)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toShelterResponse(r, sh))
	}
}

// deleteShelterHandler godoc
// @Summary      Borrar un refugio
// @Description  Sus animales quedan sin ubicación.
// @Tags         shelters
// @Security     BearerAuth
// @Param        shelterID  path  int  true  "ID del refugio"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /shelters/{shelterID} [delete]
func deleteShelterHandler(place Placement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := place.DeleteShelter(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "shelterID")); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// memberHandler godoc
// @Summary      Agregar o quitar un animal del refugio
// @Tags         shelters
// @Security     BearerAuth
// @Param        shelterID  path  int  true  "ID del refugio"
// @Param        animalID   path  int  true  "ID del animal"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /shelters/{shelterID}/animals/{animalID} [put]
// @Router       /shelters/{shelterID}/animals/{animalID} [delete]
func memberHandler(move func(ctx context.Context, callerID string, animalID, shelterID int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := move(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "animalID"), httpx.PathID(r, "shelterID"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toShelterResponse(r *http.Request, sh Shelter) shelterResponse {
	out := shelterResponse{
		ID:      sh.ID,
		Name:    sh.Name,
		Address: sh.Address,
		Contact: sh.Contact,
		Website: sh.Website,
		Animals: make([]animalSummaryResponse, 0, len(sh.Animals)),
		User:    sh.OwnerUserID,
		Self:    httpx.SelfLink(r, "shelters", sh.ID),
	}
	for _, a := range sh.Animals {
		out.Animals = append(out.Animals, animalSummaryResponse{
			ID:        a.ID,
			Name:      a.Name,
			Species:   a.Species,
			Adoptable: a.Adoptable,
			Self:      httpx.SelfLink(r, "animals", a.ID),
		})
	}
	return out
}
