package memory

import (
	"context"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/users"
	"animal-shelter-api/internal/platform/paging"
)

type userRepo struct{ guard }

func (r *userRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	defer r.lock()()

	for _, existing := range r.s.users {
		if existing.ExternalID == u.ExternalID {
			return users.User{}, errs.ErrConflict
		}
	}
	r.s.seq.users++
	u.ID = r.s.seq.users
	r.s.users[u.ID] = u
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	defer r.rlock()()

	u, ok := r.s.users[id]
	if !ok {
		return users.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (users.User, error) {
	defer r.rlock()()

	for _, u := range r.s.users {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	return users.User{}, errs.ErrNotFound
}

func (r *userRepo) List(ctx context.Context, p paging.Page) ([]users.User, error) {
	defer r.rlock()()

	return pageOf(r.s.users, p, nil, func(u users.User) users.User { return u }), nil
}
