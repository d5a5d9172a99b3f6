package memory

import (
	"context"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/platform/paging"
)

type shelterRepo struct{ guard }

func (r *shelterRepo) Create(ctx context.Context, sh shelters.Shelter) (shelters.Shelter, error) {
	defer r.lock()()

	if r.nameTaken(sh.Name, 0) {
		return shelters.Shelter{}, errs.ErrConflict
	}
	r.s.seq.shelters++
	sh.ID = r.s.seq.shelters
	r.s.shelters[sh.ID] = sh.Clone()
	return sh.Clone(), nil
}

func (r *shelterRepo) Update(ctx context.Context, sh shelters.Shelter) error {
	defer r.lock()()

	if _, exists := r.s.shelters[sh.ID]; !exists {
		return errs.ErrNotFound
	}
	if r.nameTaken(sh.Name, sh.ID) {
		return errs.ErrConflict
	}
	r.s.shelters[sh.ID] = sh.Clone()
	return nil
}

func (r *shelterRepo) GetByID(ctx context.Context, id int64) (shelters.Shelter, error) {
	defer r.rlock()()

	sh, ok := r.s.shelters[id]
	if !ok {
		return shelters.Shelter{}, errs.ErrNotFound
	}
	return sh.Clone(), nil
}

func (r *shelterRepo) Delete(ctx context.Context, id int64) error {
	defer r.lock()()

	if _, exists := r.s.shelters[id]; !exists {
		return errs.ErrNotFound
	}
	delete(r.s.shelters, id)
	return nil
}

func (r *shelterRepo) List(ctx context.Context, p paging.Page) ([]shelters.Shelter, error) {
	defer r.rlock()()

	return pageOf(r.s.shelters, p, nil, shelters.Shelter.Clone), nil
}

func (r *shelterRepo) ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) ([]shelters.Shelter, error) {
	defer r.rlock()()

	return pageOf(r.s.shelters, p, func(sh shelters.Shelter) bool {
		return sh.OwnerUserID == ownerUserID
	}, shelters.Shelter.Clone), nil
}

func (r *shelterRepo) FindByName(ctx context.Context, name string) (shelters.Shelter, error) {
	defer r.rlock()()

	for _, sh := range r.s.shelters {
		if sh.Name == name {
			return sh.Clone(), nil
		}
	}
	return shelters.Shelter{}, errs.ErrNotFound
}

// nameTaken asume el lock tomado.
func (r *shelterRepo) nameTaken(name string, selfID int64) bool {
	for id, sh := range r.s.shelters {
		if id != selfID && sh.Name == name {
			return true
		}
	}
	return false
}
