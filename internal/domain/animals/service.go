package animals

import (
	"context"
	"strings"
	"time"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/platform/paging"
)

var (
	ErrInvalidInput = errs.Invalid("The request object is missing at least one of the required attributes")
	ErrNotFound     = errs.NotFound("No animal with this animal_id exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name         string
	Species      string
	Breed        string
	Age          int
	Gender       string
	Colors       []string
	Adoptable    bool
	Microchipped bool
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	Name         *string
	Species      *string
	Breed        *string
	Age          *int
	Gender       *string
	Colors       []string
	Adoptable    *bool
	Microchipped *bool
}

func (in UpdateInput) complete() bool {
	return in.Name != nil && in.Species != nil && in.Breed != nil && in.Age != nil &&
		in.Gender != nil && in.Colors != nil && in.Adoptable != nil && in.Microchipped != nil
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Animal, error) {
	a := Animal{
		Name:         strings.TrimSpace(in.Name),
		Species:      strings.TrimSpace(in.Species),
		Breed:        strings.TrimSpace(in.Breed),
		Age:          in.Age,
		Gender:       strings.TrimSpace(in.Gender),
		Colors:       NormalizeColors(in.Colors),
		Adoptable:    in.Adoptable,
		Microchipped: in.Microchipped,
		OwnerUserID:  strings.TrimSpace(ownerUserID),
	}
	if err := validate(a); err != nil {
		return Animal{}, err
	}

	now := s.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	return s.repo.Create(ctx, a)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Animal, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Animal{}, notFound(err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, p paging.Page) (paging.Result[Animal], error) {
	items, err := s.repo.List(ctx, p)
	if err != nil {
		return paging.Result[Animal]{}, err
	}
	return paging.Build(items, p, func(a Animal) int64 { return a.ID }), nil
}

// ApplyUpdate aplica in sobre a. replace=true (PUT) exige todos los atributos.
// Location nunca se toca aquí.
func ApplyUpdate(a Animal, in UpdateInput, replace bool, now time.Time) (Animal, error) {
	if replace && !in.complete() {
		return Animal{}, ErrInvalidInput
	}

	out := a.Clone()
	if in.Name != nil {
		out.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		out.Species = strings.TrimSpace(*in.Species)
	}
	if in.Breed != nil {
		out.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Age != nil {
		out.Age = *in.Age
	}
	if in.Gender != nil {
		out.Gender = strings.TrimSpace(*in.Gender)
	}
	if in.Colors != nil {
		out.Colors = NormalizeColors(in.Colors)
	}
	if in.Adoptable != nil {
		out.Adoptable = *in.Adoptable
	}
	if in.Microchipped != nil {
		out.Microchipped = *in.Microchipped
	}

	if err := validate(out); err != nil {
		return Animal{}, err
	}
	out.UpdatedAt = now
	return out, nil
}

func validate(a Animal) error {
	if a.Name == "" || a.Species == "" || a.Breed == "" || a.Gender == "" {
		return ErrInvalidInput
	}
	if a.Age < 0 {
		return errs.Invalid("age must be zero or greater")
	}
	if len(a.Colors) == 0 {
		return ErrInvalidInput
	}
	return nil
}

// notFound traduce el not-found genérico del store al mensaje del módulo.
func notFound(err error) error {
	if errs.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
