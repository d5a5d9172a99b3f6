package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/platform/paging"
)

type shelterRepo struct{ conn }

func (r *shelterRepo) Create(ctx context.Context, sh shelters.Shelter) (shelters.Shelter, error) {
	data, err := encodeShelter(sh)
	if err != nil {
		return shelters.Shelter{}, err
	}
	err = r.queryRow(ctx, `
		INSERT INTO shelters (name, owner_user_id, data)
		VALUES ($1, $2, $3)
		RETURNING id
	`, sh.Name, sh.OwnerUserID, string(data)).Scan(&sh.ID)
	if err != nil {
		if r.d.IsUniqueViolation(err) {
			return shelters.Shelter{}, errs.ErrConflict
		}
		return shelters.Shelter{}, errs.Store("create shelter", err)
	}
	return sh, nil
}

func (r *shelterRepo) Update(ctx context.Context, sh shelters.Shelter) error {
	data, err := encodeShelter(sh)
	if err != nil {
		return err
	}
	res, err := r.exec(ctx, `
		UPDATE shelters
		SET name = $2, owner_user_id = $3, data = $4
		WHERE id = $1
	`, sh.ID, sh.Name, sh.OwnerUserID, string(data))
	if err != nil {
		if r.d.IsUniqueViolation(err) {
			return errs.ErrConflict
		}
		return errs.Store("update shelter", err)
	}
	return affected(res, "update shelter")
}

func (r *shelterRepo) GetByID(ctx context.Context, id int64) (shelters.Shelter, error) {
	var data []byte
	err := r.queryRow(ctx, `SELECT data FROM shelters WHERE id = $1`+r.lockClause(), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return shelters.Shelter{}, errs.ErrNotFound
	}
	if err != nil {
		return shelters.Shelter{}, errs.Store("get shelter", err)
	}
	return decodeShelter(id, data)
}

func (r *shelterRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM shelters WHERE id = $1`, id)
	if err != nil {
		return errs.Store("delete shelter", err)
	}
	return affected(res, "delete shelter")
}

func (r *shelterRepo) List(ctx context.Context, p paging.Page) ([]shelters.Shelter, error) {
	return r.list(ctx, `
		SELECT id, data FROM shelters
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, p.After, p.Fetch())
}

func (r *shelterRepo) ListByOwner(ctx context.Context, ownerUserID string, p paging.Page) ([]shelters.Shelter, error) {
	return r.list(ctx, `
		SELECT id, data FROM shelters
		WHERE id > $1 AND owner_user_id = $3
		ORDER BY id ASC
		LIMIT $2
	`, p.After, p.Fetch(), ownerUserID)
}

func (r *shelterRepo) FindByName(ctx context.Context, name string) (shelters.Shelter, error) {
	var (
		id   int64
		data []byte
	)
	err := r.queryRow(ctx, `SELECT id, data FROM shelters WHERE name = $1`, name).Scan(&id, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return shelters.Shelter{}, errs.ErrNotFound
	}
	if err != nil {
		return shelters.Shelter{}, errs.Store("find shelter", err)
	}
	return decodeShelter(id, data)
}

func (r *shelterRepo) list(ctx context.Context, query string, args ...any) ([]shelters.Shelter, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, errs.Store("list shelters", err)
	}
	defer rows.Close()

	out := make([]shelters.Shelter, 0)
	for rows.Next() {
		var (
			id   int64
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, errs.Store("list shelters", err)
		}
		sh, err := decodeShelter(id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, errs.Store("list shelters", rows.Err())
}
