// Package placement mantiene la consistencia bidireccional entre la ubicación de cada
// animal y las listas de miembros de refugios y adoptantes. Toda escritura que toque
// ambos lados pasa por aquí, dentro de una unidad de trabajo.
package placement

import (
	"context"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/shelters"
)

// Repos son los repositorios ligados a una misma transacción.
type Repos struct {
	Animals  animals.Repository
	Shelters shelters.Repository
	Adopters adopters.Repository
}

// UnitOfWork ejecuta fn de forma atómica: si fn devuelve error no queda ninguna escritura.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
