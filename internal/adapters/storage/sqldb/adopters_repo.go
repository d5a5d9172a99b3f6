package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/platform/paging"
)

type adopterRepo struct{ conn }

func (r *adopterRepo) Create(ctx context.Context, a adopters.Adopter) (adopters.Adopter, error) {
	data, err := encodeAdopter(a)
	if err != nil {
		return adopters.Adopter{}, err
	}
	err = r.queryRow(ctx, `
		INSERT INTO adopters (owner_user_id, data)
		VALUES ($1, $2)
		RETURNING id
	`, a.OwnerUserID, string(data)).Scan(&a.ID)
	if err != nil {
		return adopters.Adopter{}, errs.Store("create adopter", err)
	}
	return a, nil
}

func (r *adopterRepo) Update(ctx context.Context, a adopters.Adopter) error {
	data, err := encodeAdopter(a)
	if err != nil {
		return err
	}
	res, err := r.exec(ctx, `
		UPDATE adopters
		SET owner_user_id = $2, data = $3
		WHERE id = $1
	`, a.ID, a.OwnerUserID, string(data))
	if err != nil {
		return errs.Store("update adopter", err)
	}
	return affected(res, "update adopter")
}

func (r *adopterRepo) GetByID(ctx context.Context, id int64) (adopters.Adopter, error) {
	var data []byte
	err := r.queryRow(ctx, `SELECT data FROM adopters WHERE id = $1`+r.lockClause(), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return adopters.Adopter{}, errs.ErrNotFound
	}
	if err != nil {
		return adopters.Adopter{}, errs.Store("get adopter", err)
	}
	return decodeAdopter(id, data)
}

func (r *adopterRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM adopters WHERE id = $1`, id)
	if err != nil {
		return errs.Store("delete adopter", err)
	}
	return affected(res, "delete adopter")
}

func (r *adopterRepo) List(ctx context.Context, p paging.Page) ([]adopters.Adopter, error) {
	return r.list(ctx, `
		SELECT id, data FROM adopters
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, p.After, p.Fetch())
}

func (r *adopterRepo) ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) ([]adopters.Adopter, error) {
	return r.list(ctx, `
		SELECT id, data FROM adopters
		WHERE id > $1 AND owner_user_id = $3
		ORDER BY id ASC
		LIMIT $2
	`, p.After, p.Fetch(), ownerUserID)
}

func (r *adopterRepo) list(ctx context.Context, query string, args ...any) ([]adopters.Adopter, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, errs.Store("list adopters", err)
	}
	defer rows.Close()

	out := make([]adopters.Adopter, 0)
	for rows.Next() {
		var (
			id   int64
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, errs.Store("list adopters", err)
		}
		a, err := decodeAdopter(id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, errs.Store("list adopters", rows.Err())
}
