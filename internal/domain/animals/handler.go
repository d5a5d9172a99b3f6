package animals

import (
	"context"
	"encoding/json"
	"net/http"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/middleware"
	"animal-shelter-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// Placement son las operaciones que mueven animales entre refugios y adoptantes.
// La implementa placement.Engine; se declara acá para no importar ese paquete.
type Placement interface {
	AssignShelter(ctx context.Context, callerID string, animalID, shelterID int64) error
	UnassignShelter(ctx context.Context, callerID string, animalID, shelterID int64) error
	AssignAdopter(ctx context.Context, callerID string, animalID, adopterID int64) error
	UnassignAdopter(ctx context.Context, callerID string, animalID, adopterID int64) error
	DeleteAnimal(ctx context.Context, animalID int64) error
	EditAnimal(ctx context.Context, animalID int64, in UpdateInput, replace bool) (Animal, error)
}

var ErrLocationReadOnly = errs.Invalid("The location of an animal can only be changed through its shelter or adopter routes")

func RegisterRoutes(r chi.Router, svc *Service, place Placement, pageSize int) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc))
		ar.Get("/", listAnimalsHandler(svc, pageSize))
		ar.Put("/", httpx.MethodNotAllowed(http.MethodGet, http.MethodPost))
		ar.Delete("/", httpx.MethodNotAllowed(http.MethodGet, http.MethodPost))

		ar.Get("/{animalID}", getAnimalHandler(svc))
		ar.Patch("/{animalID}", editAnimalHandler(place, false))
		ar.Put("/{animalID}", editAnimalHandler(place, true))
		ar.Delete("/{animalID}", deleteAnimalHandler(place))

		// Mutan también al refugio/adoptante: exigen ser su dueño.
		ar.Put("/{animalID}/shelters/{shelterID}", assignHandler(svc, place.AssignShelter, "shelterID"))
		ar.Delete("/{animalID}/shelters/{shelterID}", unassignHandler(place.UnassignShelter, "shelterID"))
		ar.Put("/{animalID}/adopters/{adopterID}", assignHandler(svc, place.AssignAdopter, "adopterID"))
		ar.Delete("/{animalID}/adopters/{adopterID}", unassignHandler(place.UnassignAdopter, "adopterID"))
	})
}

// animalRequest: punteros para distinguir "no enviado" de false/0.
type animalRequest struct {
	Name         *string         `json:"name" validate:"required"`
	Species      *string         `json:"species" validate:"required"`
	Breed        *string         `json:"breed" validate:"required"`
	Age          *int            `json:"age" validate:"required,gte=0"`
	Gender       *string         `json:"gender" validate:"required"`
	Colors       []string        `json:"colors" validate:"required,min=1,dive,required"`
	Adoptable    *bool           `json:"adoptable" validate:"required"`
	Microchipped *bool           `json:"microchipped" validate:"required"`
	Location     json.RawMessage `json:"location,omitempty" swaggerignore:"true"`
}

func (req animalRequest) toUpdate() UpdateInput {
	return UpdateInput{
		Name:         req.Name,
		Species:      req.Species,
		Breed:        req.Breed,
		Age:          req.Age,
		Gender:       req.Gender,
		Colors:       req.Colors,
		Adoptable:    req.Adoptable,
		Microchipped: req.Microchipped,
	}
}

type locationResponse struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Type LocationType `json:"type"`
	Self string       `json:"self"`
}

type animalResponse struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Species      string            `json:"species"`
	Breed        string            `json:"breed"`
	Age          int               `json:"age"`
	Gender       string            `json:"gender"`
	Colors       []string          `json:"colors"`
	Adoptable    bool              `json:"adoptable"`
	Microchipped bool              `json:"microchipped"`
	Location     *locationResponse `json:"location"`
	Self         string            `json:"self"`
}

type animalListResponse struct {
	Animals    []animalResponse `json:"animals"`
	TotalItems int              `json:"total_items"`
	httpx.Links
}

// createAnimalHandler godoc
// @Summary      Registrar un animal
// @Description  Crea un animal sin ubicación. Todos los atributos son obligatorios.
// @Tags         animals
// @Accept       json
// @Produce      json
// @Param        body  body      animalRequest  true  "Animal"
// @Success      201   {object}  animalResponse
// @Failure      400   {object}  map[string]string
// @Failure      415   {object}  map[string]string
// @Router       /animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req animalRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		if req.Location != nil {
			httpx.WriteDomainError(w, ErrLocationReadOnly)
			return
		}

		a, err := svc.Create(r.Context(), middleware.CallerID(r.Context()), CreateInput{
			Name:         *req.Name,
			Species:      *req.Species,
			Breed:        *req.Breed,
			Age:          *req.Age,
			Gender:       *req.Gender,
			Colors:       req.Colors,
			Adoptable:    *req.Adoptable,
			Microchipped: *req.Microchipped,
		})
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		w.Header().Set("Location", httpx.SelfLink(r, "animals", a.ID))
		httpx.WriteJSON(w, http.StatusCreated, toAnimalResponse(r, a))
	}
}

// listAnimalsHandler godoc
// @Summary      Listar animales
// @Description  Paginado de a 5. Usar el link next para la página siguiente.
// @Tags         animals
// @Produce      json
// @Param        cursor  query     string  false  "Cursor opaco"
// @Success      200     {object}  animalListResponse
// @Router       /animals [get]
func listAnimalsHandler(svc *Service, pageSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := httpx.ParsePage(r, pageSize)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		res, err := svc.List(r.Context(), p)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		out := animalListResponse{
			Animals:    make([]animalResponse, 0, len(res.Items)),
			TotalItems: len(res.Items),
			Links:      httpx.PageLinks(r, "animals", res.Next),
		}
		for _, a := range res.Items {
			out.Animals = append(out.Animals, toAnimalResponse(r, a))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getAnimalHandler godoc
// @Summary      Ver un animal
// @Tags         animals
// @Produce      json
// @Param        animalID  path      int  true  "ID del animal"
// @Success      200       {object}  animalResponse
// @Failure      404       {object}  map[string]string
// @Failure      406       {object}  map[string]string
// @Router       /animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), httpx.PathID(r, "animalID"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(r, a))
	}
}

// editAnimalHandler godoc
// @Summary      Editar un animal
// @Description  PATCH acepta un subconjunto; PUT exige todos los atributos. location no se puede enviar.
// @Tags         animals
// @Accept       json
// @Produce      json
// @Param        animalID  path      int            true  "ID del animal"
// @Param        body      body      animalRequest  true  "Atributos"
// @Success      200       {object}  animalResponse
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /animals/{animalID} [patch]
// @Router       /animals/{animalID} [put]
func editAnimalHandler(place Placement, replace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req animalRequest
		if err := httpx.DecodeBody(r, &req); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		if req.Location != nil {
			httpx.WriteDomainError(w, ErrLocationReadOnly)
			return
		}

		a, err := place.EditAnimal(r.Context(), httpx.PathID(r, "animalID"), req.toUpdate(), replace)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(r, a))
	}
}

// deleteAnimalHandler godoc
// @Summary      Borrar un animal
// @Description  Lo saca antes del refugio o adoptante donde esté.
// @Tags         animals
// @Param        animalID  path  int  true  "ID del animal"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /animals/{animalID} [delete]
func deleteAnimalHandler(place Placement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := place.DeleteAnimal(r.Context(), httpx.PathID(r, "animalID")); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type moveFunc func(ctx context.Context, callerID string, animalID, ownerID int64) error

// assignHandler godoc
// @Summary      Ubicar un animal
// @Description  Asigna el animal a un refugio o adoptante del caller. Devuelve el animal actualizado.
// @Tags         animals
// @Produce      json
// @Security     BearerAuth
// @Param        animalID   path      int  true  "ID del animal"
// @Param        shelterID  path      int  false  "ID del refugio"
// @Param        adopterID  path      int  false  "ID del adoptante"
// @Success      200        {object}  animalResponse
// @Failure      401        {object}  map[string]string
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /animals/{animalID}/shelters/{shelterID} [put]
// @Router       /animals/{animalID}/adopters/{adopterID} [put]
func assignHandler(svc *Service, assign moveFunc, ownerParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animalID := httpx.PathID(r, "animalID")
		err := assign(r.Context(), middleware.CallerID(r.Context()), animalID, httpx.PathID(r, ownerParam))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		a, err := svc.GetByID(r.Context(), animalID)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(r, a))
	}
}

// unassignHandler godoc
// @Summary      Quitar la ubicación de un animal
// @Tags         animals
// @Security     BearerAuth
// @Param        animalID   path  int  true   "ID del animal"
// @Param        shelterID  path  int  false  "ID del refugio"
// @Param        adopterID  path  int  false  "ID del adoptante"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string  "El animal no está ahí"
// @Router       /animals/{animalID}/shelters/{shelterID} [delete]
// @Router       /animals/{animalID}/adopters/{adopterID} [delete]
func unassignHandler(unassign moveFunc, ownerParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := unassign(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "animalID"), httpx.PathID(r, ownerParam))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toAnimalResponse(r *http.Request, a Animal) animalResponse {
	out := animalResponse{
		ID:           a.ID,
		Name:         a.Name,
		Species:      a.Species,
		Breed:        a.Breed,
		Age:          a.Age,
		Gender:       a.Gender,
		Colors:       a.Colors,
		Adoptable:    a.Adoptable,
		Microchipped: a.Microchipped,
		Self:         httpx.SelfLink(r, "animals", a.ID),
	}
	if out.Colors == nil {
		out.Colors = []string{}
	}
	if loc := a.Location; loc != nil {
		out.Location = &locationResponse{
			ID:   loc.ID,
			Name: loc.Name,
			Type: loc.Type,
			Self: httpx.SelfLink(r, string(loc.Type)+"s", loc.ID),
		}
	}
	return out
}
