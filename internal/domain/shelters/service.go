package shelters

import (
	"context"
	"errors"
	"strings"
	"time"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/ownership"
	"animal-shelter-api/internal/platform/paging"
)

var (
	ErrInvalidInput = errs.Invalid("The request object is missing at least one of the required attributes")
	ErrNotFound     = errs.NotFound("No shelter with this shelter_id exists")
	ErrNameTaken    = errs.Conflict("A shelter with that name already exists")
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
	Name    string
	Address string
	Contact Contact
	Website string
}

// UpdateInput: nil = no tocar (PATCH).
type UpdateInput struct {
	Name    *string
	Address *string
	Contact *Contact
	Website *string
}

func (in UpdateInput) complete() bool {
	return in.Name != nil && in.Address != nil && in.Contact != nil
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Shelter, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Shelter{}, ownership.ErrUnauthenticated
	}

	sh := Shelter{
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		Contact:     in.Contact,
		Website:     strings.TrimSpace(in.Website),
		Animals:     []AnimalSummary{},
		OwnerUserID: ownerUserID,
	}
	if err := validate(sh); err != nil {
		return Shelter{}, err
	}

	if err := EnsureNameAvailable(ctx, s.repo, sh.Name, 0); err != nil {
		return Shelter{}, err
	}

	now := s.now()
	sh.CreatedAt = now
	sh.UpdatedAt = now

	created, err := s.repo.Create(ctx, sh)
	if errors.Is(err, errs.ErrConflict) {
		return Shelter{}, ErrNameTaken
	}
	return created, err
}

// EnsureNameAvailable: selfID != 0 excluye al propio refugio (rename a sí mismo).
// Recibe el repo para poder usarse dentro de una unidad de trabajo.
func EnsureNameAvailable(ctx context.Context, repo Repository, name string, selfID int64) error {
	existing, err := repo.FindByName(ctx, name)
	switch {
	case errs.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		return ErrNameTaken
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (Shelter, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Shelter{}, notFound(err)
	}
	return sh, nil
}

// GetOwned aplica el guard: 404 antes que 403.
func (s *Service) GetOwned(ctx context.Context, callerID string, id int64) (Shelter, error) {
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return Shelter{}, err
	}
	if err := ownership.Authorize(ownership.ResourceShelter, callerID, sh.OwnerUserID); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) (paging.Result[Shelter], error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return paging.Result[Shelter]{}, ownership.ErrUnauthenticated
	}
	items, err := s.repo.ListByOwner(ctx, ownerUserID, p)
	if err != nil {
		return paging.Result[Shelter]{}, err
	}
	return paging.Build(items, p, func(sh Shelter) int64 { return sh.ID }), nil
}

// AllByOwner recorre todas las páginas (para la vista de usuario).
func (s *Service) AllByOwner(ctx context.Context, ownerUserID string) ([]Shelter, error) {
	out := make([]Shelter, 0)
	p := paging.Page{Limit: 100}
	for {
		items, err := s.repo.ListByOwner(ctx, ownerUserID, p)
		if err != nil {
			return nil, err
		}
		if len(items) > p.Limit {
			items = items[:p.Limit]
			out = append(out, items...)
			p.After = items[len(items)-1].ID
			continue
		}
		return append(out, items...), nil
	}
}

// ApplyUpdate no toca Animals ni OwnerUserID. replace=true (PUT) exige name/address/contact.
func ApplyUpdate(sh Shelter, in UpdateInput, replace bool, now time.Time) (Shelter, error) {
	if replace && !in.complete() {
		return Shelter{}, ErrInvalidInput
	}

	out := sh.Clone()
	if in.Name != nil {
		out.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		out.Address = strings.TrimSpace(*in.Address)
	}
	if in.Contact != nil {
		out.Contact = *in.Contact
	}
	if in.Website != nil {
		out.Website = strings.TrimSpace(*in.Website)
	} else if replace {
		out.Website = ""
	}

	if err := validate(out); err != nil {
		return Shelter{}, err
	}
	out.UpdatedAt = now
	return out, nil
}

func validate(sh Shelter) error {
	if sh.Name == "" || sh.Address == "" || sh.Contact.Empty() {
		return ErrInvalidInput
	}
	return nil
}

func notFound(err error) error {
	if errs.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
