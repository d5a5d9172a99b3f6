package adopters

import (
	"context"

	"animal-shelter-api/internal/platform/paging"
)

type Repository interface {
	Create(ctx context.Context, a Adopter) (Adopter, error)
	Update(ctx context.Context, a Adopter) error
	GetByID(ctx context.Context, id int64) (Adopter, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p paging.Page) ([]Adopter, error)
	ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) ([]Adopter, error)
}
