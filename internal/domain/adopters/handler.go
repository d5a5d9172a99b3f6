package adopters

import (
	"context"
	"net/http"

	"animal-shelter-api/internal/domain/ownership"
	"animal-shelter-api/internal/middleware"
	"animal-shelter-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

type Placement interface {
	AssignAdopter(ctx context.Context, callerID string, animalID, adopterID int64) error
	UnassignAdopter(ctx context.Context, callerID string, animalID, adopterID int64) error
	DeleteAdopter(ctx context.Context, callerID string, adopterID int64) error
	EditAdopter(ctx context.Context, callerID string, adopterID int64, in UpdateInput, replace bool) (Adopter, error)
}

func RegisterRoutes(r chi.Router, svc *Service, place Placement, pageSize int) {
	r.Route("/adopters", func(ar chi.Router) {
		ar.Put("/", httpx.MethodNotAllowed(http.MethodGet, http.MethodPost))
		ar.Delete("/", httpx.MethodNotAllowed(http.MethodGet, http.MethodPost))

		ar.Group(func(pr chi.Router) {
			pr.Use(requireCaller)

			pr.Post("/", createAdopterHandler(svc))
			pr.Get("/", listAdoptersHandler(svc, pageSize))

			pr.Get("/{adopterID}", getAdopterHandler(svc))
			pr.Patch("/{adopterID}", editAdopterHandler(place, false))
			pr.Put("/{adopterID}", editAdopterHandler(place, true))
			pr.Delete("/{adopterID}", deleteAdopterHandler(place))

			pr.Put("/{adopterID}/animals/{animalID}", adoptHandler(svc, place))
			pr.Delete("/{adopterID}/animals/{animalID}", releaseHandler(place))
		})
	})
}

func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.CallerID(r.Context()) == "" {
			httpx.WriteDomainError(w, ownership.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type adopterRequest struct {
	Name        *string `json:"name" validate:"required"`
	Email       *string `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phone_number" validate:"required"`
}

type petResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Self    string `json:"self"`
}

type adopterResponse struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	PhoneNumber string        `json:"phone_number"`
	Pets        []petResponse `json:"pets"`
	User        string        `json:"user"`
	Self        string        `json:"self"`
}

type adopterListResponse struct {
	Adopters   []adopterResponse `json:"adopters"`
	TotalItems int               `json:"total_items"`
	httpx.Links
}

// createAdopterHandler godoc
// @Summary      Registrar un adoptante
// @Tags         adopters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      adopterRequest  true  "Adoptante"
// @Success      201   {object}  adopterResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /adopters [post]
func createAdopterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adopterRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		a, err := svc.Create(r.Context(), middleware.CallerID(r.Context()), CreateInput{
			Name:        *req.Name,
			Email:       *req.Email,
			PhoneNumber: *req.PhoneNumber,
		})
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		w.Header().Set("Location", httpx.SelfLink(r, "adopters", a.ID))
		httpx.WriteJSON(w, http.StatusCreated, toAdopterResponse(r, a))
	}
}

// listAdoptersHandler godoc
// @Summary      Listar mis adoptantes
// @Tags         adopters
// @Produce      json
// @Security     BearerAuth
// @Param        cursor  query     string  false  "Cursor opaco"
// @Success      200     {object}  adopterListResponse
// @Failure      401     {object}  map[string]string
// @Router       /adopters [get]
func listAdoptersHandler(svc *Service, pageSize int) http.HandlerFunc {
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

		out := adopterListResponse{
			Adopters:   make([]adopterResponse, 0, len(res.Items)),
			TotalItems: len(res.Items),
			Links:      httpx.PageLinks(r, "adopters", res.Next),
		}
		for _, a := range res.Items {
			out.Adopters = append(out.Adopters, toAdopterResponse(r, a))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getAdopterHandler godoc
// @Summary      Ver un adoptante
// @Tags         adopters
// @Produce      json
// @Security     BearerAuth
// @Param        adopterID  path      int  true  "ID del adoptante"
// @Success      200        {object}  adopterResponse
// @Failure      401        {object}  map[string]string
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /adopters/{adopterID} [get]
func getAdopterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetOwned(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "adopterID"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAdopterResponse(r, a))
	}
}

// editAdopterHandler godoc
// @Summary      Editar un adoptante
// @Description  PATCH acepta un subconjunto; PUT exige todos los atributos. El nombre nuevo se copia a la ubicación de sus mascotas.
// @Tags         adopters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        adopterID  path      int             true  "ID del adoptante"
// @Param        body       body      adopterRequest  true  "Atributos"
// @Success      200        {object}  adopterResponse
// @Failure      400        {object}  map[string]string
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /adopters/{adopterID} [patch]
// @Router       /adopters/{adopterID} [put]
func editAdopterHandler(place Placement, replace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adopterRequest
		if err := httpx.DecodeBody(r, &req); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		a, err := place.EditAdopter(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "adopterID"), UpdateInput{
			Name:        req.Name,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
		}, replace)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAdopterResponse(r, a))
	}
}

// deleteAdopterHandler godoc
// @Summary      Borrar un adoptante
// @Description  Sus mascotas quedan sin ubicación.
// @Tags         adopters
// @Security     BearerAuth
// @Param        adopterID  path  int  true  "ID del adoptante"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /adopters/{adopterID} [delete]
func deleteAdopterHandler(place Placement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := place.DeleteAdopter(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "adopterID")); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// adoptHandler godoc
// @Summary      Dar un animal en adopción
// @Description  Si el animal estaba en un refugio, sale de ese refugio en la misma operación.
// @Tags         adopters
// @Produce      json
// @Security     BearerAuth
// @Param        adopterID  path      int  true  "ID del adoptante"
// @Param        animalID   path      int  true  "ID del animal"
// @Success      200        {object}  adopterResponse
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /adopters/{adopterID}/animals/{animalID} [put]
func adoptHandler(svc *Service, place Placement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adopterID := httpx.PathID(r, "adopterID")
		if err := place.AssignAdopter(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "animalID"), adopterID); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		a, err := svc.GetByID(r.Context(), adopterID)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAdopterResponse(r, a))
	}
}

// releaseHandler godoc
// @Summary      Devolver un animal
// @Tags         adopters
// @Security     BearerAuth
// @Param        adopterID  path  int  true  "ID del adoptante"
// @Param        animalID   path  int  true  "ID del animal"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /adopters/{adopterID}/animals/{animalID} [delete]
func releaseHandler(place Placement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := place.UnassignAdopter(r.Context(), middleware.CallerID(r.Context()), httpx.PathID(r, "animalID"), httpx.PathID(r, "adopterID"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toAdopterResponse(r *http.Request, a Adopter) adopterResponse {
	out := adopterResponse{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		Pets:        make([]petResponse, 0, len(a.Pets)),
		User:        a.OwnerUserID,
		Self:        httpx.SelfLink(r, "adopters", a.ID),
	}
	for _, p := range a.Pets {
		out.Pets = append(out.Pets, petResponse{
			ID:      p.ID,
			Name:    p.Name,
			Species: p.Species,
			Self:    httpx.SelfLink(r, "animals", p.ID),
		})
	}
	return out
}
