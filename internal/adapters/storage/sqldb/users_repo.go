package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/users"
	"animal-shelter-api/internal/platform/paging"
)

type userRepo struct{ conn }

func (r *userRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	data, err := encodeUser(u)
	if err != nil {
		return users.User{}, err
	}
	err = r.queryRow(ctx, `
		INSERT INTO users (external_id, data)
		VALUES ($1, $2)
		RETURNING id
	`, u.ExternalID, string(data)).Scan(&u.ID)
	if err != nil {
		if r.d.IsUniqueViolation(err) {
			return users.User{}, errs.ErrConflict
		}
		return users.User{}, errs.Store("create user", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	return r.get(ctx, `SELECT id, external_id, data FROM users WHERE id = $1`, id)
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (users.User, error) {
	return r.get(ctx, `SELECT id, external_id, data FROM users WHERE external_id = $1`, externalID)
}

func (r *userRepo) List(ctx context.Context, p paging.Page) ([]users.User, error) {
	rows, err := r.query(ctx, `
		SELECT id, external_id, data FROM users
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, p.After, p.Fetch())
	if err != nil {
		return nil, errs.Store("list users", err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var (
			id         int64
			externalID string
			data       []byte
		)
		if err := rows.Scan(&id, &externalID, &data); err != nil {
			return nil, errs.Store("list users", err)
		}
		u, err := decodeUser(id, externalID, data)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, errs.Store("list users", rows.Err())
}

func (r *userRepo) get(ctx context.Context, query string, arg any) (users.User, error) {
	var (
		id         int64
		externalID string
		data       []byte
	)
	err := r.queryRow(ctx, query, arg).Scan(&id, &externalID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, errs.ErrNotFound
	}
	if err != nil {
		return users.User{}, errs.Store("get user", err)
	}
	return decodeUser(id, externalID, data)
}
