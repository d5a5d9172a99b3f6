package memory

import (
	"context"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/platform/paging"
)

type adopterRepo struct{ guard }

func (r *adopterRepo) Create(ctx context.Context, a adopters.Adopter) (adopters.Adopter, error) {
	defer r.lock()()

	r.s.seq.adopters++
	a.ID = r.s.seq.adopters
	r.s.adopters[a.ID] = a.Clone()
	return a.Clone(), nil
}

func (r *adopterRepo) Update(ctx context.Context, a adopters.Adopter) error {
	defer r.lock()()

	if _, exists := r.s.adopters[a.ID]; !exists {
		return errs.ErrNotFound
	}
	r.s.adopters[a.ID] = a.Clone()
	return nil
}

func (r *adopterRepo) GetByID(ctx context.Context, id int64) (adopters.Adopter, error) {
	defer r.rlock()()

	a, ok := r.s.adopters[id]
	if !ok {
		return adopters.Adopter{}, errs.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *adopterRepo) Delete(ctx context.Context, id int64) error {
	defer r.lock()()

	if _, exists := r.s.adopters[id]; !exists {
		return errs.ErrNotFound
	}
	delete(r.s.adopters, id)
	return nil
}

func (r *adopterRepo) List(ctx context.Context, p paging.Page) ([]adopters.Adopter, error) {
	defer r.rlock()()

	return pageOf(r.s.adopters, p, nil, adopters.Adopter.Clone), nil
}

func (r *adopterRepo) ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) ([]adopters.Adopter, error) {
	defer r.rlock()()

	return pageOf(r.s.adopters, p, func(a adopters.Adopter) bool {
		return a.OwnerUserID == ownerUserID
	}, adopters.Adopter.Clone), nil
}
