package memory

import (
	"context"
	"slices"

	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/platform/paging"
)

type animalRepo struct{ guard }

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	defer r.lock()()

	r.s.seq.animals++
	a.ID = r.s.seq.animals
	r.s.animals[a.ID] = a.Clone()
	return a.Clone(), nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	defer r.lock()()

	if _, exists := r.s.animals[a.ID]; !exists {
		return errs.ErrNotFound
	}
	r.s.animals[a.ID] = a.Clone()
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	defer r.rlock()()

	a, ok := r.s.animals[id]
	if !ok {
		return animals.Animal{}, errs.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *animalRepo) Delete(ctx context.Context, id int64) error {
	defer r.lock()()

	if _, exists := r.s.animals[id]; !exists {
		return errs.ErrNotFound
	}
	delete(r.s.animals, id)
	return nil
}

func (r *animalRepo) List(ctx context.Context, p paging.Page) ([]animals.Animal, error) {
	defer r.rlock()()

	return pageOf(r.s.animals, p, nil, animals.Animal.Clone), nil
}

// pageOf ordena por id y devuelve hasta p.Fetch() valores con id > p.After.
func pageOf[T any](m map[int64]T, p paging.Page, keep func(T) bool, clone func(T) T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		if id > p.After {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]T, 0, min(len(ids), p.Fetch()))
	for _, id := range ids {
		v := m[id]
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, clone(v))
		if len(out) == p.Fetch() {
			break
		}
	}
	return out
}
