package users

import (
	"context"
	"net/http"

	"animal-shelter-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// OwnedLister devuelve los refugios o adoptantes a nombre de un usuario.
type OwnedLister func(ctx context.Context, ownerUserID string) ([]Owned, error)

func RegisterRoutes(r chi.Router, svc *Service, shelters, adopters OwnedLister, pageSize int) {
	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", listUsersHandler(svc, shelters, adopters, pageSize))
		ur.Post("/", httpx.MethodNotAllowed(http.MethodGet))
		ur.Put("/", httpx.MethodNotAllowed(http.MethodGet))
		ur.Delete("/", httpx.MethodNotAllowed(http.MethodGet))

		ur.Get("/{userID}", getUserHandler(svc, shelters, adopters))
	})
}

type ownedResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Self string `json:"self"`
}

type userResponse struct {
	ID       int64           `json:"id"`
	UserID   string          `json:"user_id"`
	Email    string          `json:"email"`
	Shelters []ownedResponse `json:"shelters"`
	Adopters []ownedResponse `json:"adopters"`
	Self     string          `json:"self"`
}

type userListResponse struct {
	Users      []userResponse `json:"users"`
	TotalItems int            `json:"total_items"`
	httpx.Links
}

// listUsersHandler godoc
// @Summary      Listar usuarios
// @Description  Los usuarios se crean solos la primera vez que llegan con un JWT válido.
// @Tags         users
// @Produce      json
// @Param        cursor  query     string  false  "Cursor opaco"
// @Success      200     {object}  userListResponse
// @Router       /users [get]
func listUsersHandler(svc *Service, shelters, adopters OwnedLister, pageSize int) http.HandlerFunc {
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

		out := userListResponse{
			Users:      make([]userResponse, 0, len(res.Items)),
			TotalItems: len(res.Items),
			Links:      httpx.PageLinks(r, "users", res.Next),
		}
		for _, u := range res.Items {
			ur, err := toUserResponse(r, u, shelters, adopters)
			if err != nil {
				httpx.WriteDomainError(w, err)
				return
			}
			out.Users = append(out.Users, ur)
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getUserHandler godoc
// @Summary      Ver un usuario
// @Tags         users
// @Produce      json
// @Param        userID  path      int  true  "ID del usuario"
// @Success      200     {object}  userResponse
// @Failure      404     {object}  map[string]string
// @Router       /users/{userID} [get]
func getUserHandler(svc *Service, shelters, adopters OwnedLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.GetByID(r.Context(), httpx.PathID(r, "userID"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		out, err := toUserResponse(r, u, shelters, adopters)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toUserResponse(r *http.Request, u User, shelters, adopters OwnedLister) (userResponse, error) {
	out := userResponse{
		ID:     u.ID,
		UserID: u.ExternalID,
		Email:  u.Email,
		Self:   httpx.SelfLink(r, "users", u.ID),
	}

	var err error
	if out.Shelters, err = owned(r, shelters, u.ExternalID, "shelters"); err != nil {
		return userResponse{}, err
	}
	if out.Adopters, err = owned(r, adopters, u.ExternalID, "adopters"); err != nil {
		return userResponse{}, err
	}
	return out, nil
}

func owned(r *http.Request, list OwnedLister, owner, collection string) ([]ownedResponse, error) {
	out := []ownedResponse{}
	if list == nil {
		return out, nil
	}
	items, err := list(r.Context(), owner)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out = append(out, ownedResponse{ID: it.ID, Name: it.Name, Self: httpx.SelfLink(r, collection, it.ID)})
	}
	return out, nil
}
