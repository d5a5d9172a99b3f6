package animals

import (
	"context"

	"animal-shelter-api/internal/platform/paging"
)

type Repository interface {
	// Create asigna el ID y devuelve el animal persistido.
	Create(ctx context.Context, a Animal) (Animal, error)
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id int64) (Animal, error)
	Delete(ctx context.Context, id int64) error
	// List devuelve hasta p.Fetch() animales con id > p.After, ordenados por id.
	List(ctx context.Context, p paging.Page) ([]Animal, error)
}
