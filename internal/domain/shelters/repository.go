package shelters

import (
	"context"

	"animal-shelter-api/internal/platform/paging"
)

type Repository interface {
	// Create asigna el ID. Devuelve errs.ErrConflict si el nombre ya existe.
	Create(ctx context.Context, s Shelter) (Shelter, error)
	Update(ctx context.Context, s Shelter) error
	GetByID(ctx context.Context, id int64) (Shelter, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p paging.Page) ([]Shelter, error)
	ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) ([]Shelter, error)
	// FindByName es match exacto (case-sensitive). errs.ErrNotFound si no hay.
	FindByName(ctx context.Context, name string) (Shelter, error)
}
