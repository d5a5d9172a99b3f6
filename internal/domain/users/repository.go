package users

import (
	"context"

	"animal-shelter-api/internal/platform/paging"
)

type Repository interface {
	// Create devuelve errs.ErrConflict si ExternalID ya existe.
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByExternalID(ctx context.Context, externalID string) (User, error)
	List(ctx context.Context, p paging.Page) ([]User, error)
}
