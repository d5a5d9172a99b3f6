package adopters

import (
	"context"
	"strings"
	"time"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/ownership"
	"animal-shelter-api/internal/platform/paging"
)

var (
	ErrInvalidInput = errs.Invalid("The request object is missing at least one of the required attributes")
	ErrNotFound     = errs.NotFound("No adopter with this adopter_id exists")
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
	Name        string
	Email       string
	PhoneNumber string
}

type UpdateInput struct {
	Name        *string
	Email       *string
	PhoneNumber *string
}

func (in UpdateInput) complete() bool {
	return in.Name != nil && in.Email != nil && in.PhoneNumber != nil
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Adopter, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Adopter{}, ownership.ErrUnauthenticated
	}

	a := Adopter{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Pets:        []PetSummary{},
		OwnerUserID: ownerUserID,
	}
	if err := validate(a); err != nil {
		return Adopter{}, err
	}

	now := s.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	return s.repo.Create(ctx, a)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Adopter, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Adopter{}, notFound(err)
	}
	return a, nil
}

func (s *Service) GetOwned(ctx context.Context, callerID string, id int64) (Adopter, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Adopter{}, err
	}
	if err := ownership.Authorize(ownership.ResourceAdopter, callerID, a.OwnerUserID); err != nil {
		return Adopter{}, err
	}
	return a, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) (paging.Result[Adopter], error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return paging.Result[Adopter]{}, ownership.ErrUnauthenticated
	}
	items, err := s.repo.ListByOwner(ctx, ownerUserID, p)
	if err != nil {
		return paging.Result[Adopter]{}, err
	}
	return paging.Build(items, p, func(a Adopter) int64 { return a.ID }), nil
}

func (s *Service) AllByOwner(ctx context.Context, ownerUserID string) ([]Adopter, error) {
	out := make([]Adopter, 0)
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

// ApplyUpdate conserva Pets y OwnerUserID.
func ApplyUpdate(a Adopter, in UpdateInput, replace bool, now time.Time) (Adopter, error) {
	if replace && !in.complete() {
		return Adopter{}, ErrInvalidInput
	}

	out := a.Clone()
	if in.Name != nil {
		out.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		out.Email = strings.TrimSpace(*in.Email)
	}
	if in.PhoneNumber != nil {
		out.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}

	if err := validate(out); err != nil {
		return Adopter{}, err
	}
	out.UpdatedAt = now
	return out, nil
}

func validate(a Adopter) error {
	if a.Name == "" || a.Email == "" || a.PhoneNumber == "" {
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
