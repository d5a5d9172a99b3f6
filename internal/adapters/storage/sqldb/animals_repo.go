package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/platform/paging"
)

type animalRepo struct{ conn }

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	data, err := encodeAnimal(a)
	if err != nil {
		return animals.Animal{}, err
	}
	if err := r.queryRow(ctx, `INSERT INTO animals (data) VALUES ($1) RETURNING id`, string(data)).Scan(&a.ID); err != nil {
		return animals.Animal{}, errs.Store("create animal", err)
	}
	return a, nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	data, err := encodeAnimal(a)
	if err != nil {
		return err
	}
	res, err := r.exec(ctx, `UPDATE animals SET data = $2 WHERE id = $1`, a.ID, string(data))
	if err != nil {
		return errs.Store("update animal", err)
	}
	return affected(res, "update animal")
}

func (r *animalRepo) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	var data []byte
	err := r.queryRow(ctx, `SELECT data FROM animals WHERE id = $1`+r.lockClause(), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, errs.ErrNotFound
	}
	if err != nil {
		return animals.Animal{}, errs.Store("get animal", err)
	}
	return decodeAnimal(id, data)
}

func (r *animalRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return errs.Store("delete animal", err)
	}
	return affected(res, "delete animal")
}

func (r *animalRepo) List(ctx context.Context, p paging.Page) ([]animals.Animal, error) {
	rows, err := r.query(ctx, `
		SELECT id, data FROM animals
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, p.After, p.Fetch())
	if err != nil {
		return nil, errs.Store("list animals", err)
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		var (
			id   int64
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, errs.Store("list animals", err)
		}
		a, err := decodeAnimal(id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, errs.Store("list animals", rows.Err())
}

// affected traduce 0 filas afectadas en not found.
func affected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Store(op, err)
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
