package postgres

import (
	"context"
	"database/sql"

	"livestock-ledger/internal/domain/herd"
)

type LotsRepo struct {
	q    querier
	inTx bool
}

const lotColumns = `id, paddock_id, name, status, created_at, updated_at, deleted_at`

func scanLot(s rowScanner) (herd.Lot, error) {
	var (
		l   herd.Lot
		del sql.NullTime
	)
	if err := s.Scan(&l.ID, &l.PaddockID, &l.Name, &l.Status, &l.CreatedAt, &l.UpdatedAt, &del); err != nil {
		return herd.Lot{}, err
	}
	l.DeletedAt = fromNullTime(del)
	return l, nil
}

func (r *LotsRepo) GetByID(ctx context.Context, id int64) (herd.Lot, error) {
	l, err := scanLot(r.q.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id))
	if err != nil {
		return herd.Lot{}, notFound(err, "lot %d", id)
	}
	return l, nil
}

func (r *LotsRepo) GetForUpdate(ctx context.Context, id int64) (herd.Lot, error) {
	l, err := scanLot(r.q.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`+forUpdate(r.inTx), id))
	if err != nil {
		return herd.Lot{}, notFound(err, "lot %d", id)
	}
	return l, nil
}

func (r *LotsRepo) ListByPaddock(ctx context.Context, paddockID int64) ([]herd.Lot, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+lotColumns+` FROM lots
		WHERE paddock_id = $1 AND deleted_at IS NULL
		ORDER BY id ASC`, paddockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]herd.Lot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LotsRepo) Create(ctx context.Context, l herd.Lot) (herd.Lot, error) {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO lots (paddock_id, name, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, l.PaddockID, l.Name, l.Status, l.CreatedAt, l.UpdatedAt).Scan(&l.ID)
	if err != nil {
		return herd.Lot{}, mapErr(err)
	}
	return l, nil
}

func (r *LotsRepo) Update(ctx context.Context, l herd.Lot) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE lots
		SET paddock_id = $2, name = $3, status = $4, updated_at = $5, deleted_at = $6
		WHERE id = $1
	`, l.ID, l.PaddockID, l.Name, l.Status, l.UpdatedAt, toNullTime(l.DeletedAt))
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return herd.NotFoundf("lot %d", l.ID)
	}
	return nil
}

type PaddocksRepo struct {
	q querier
}

func (r *PaddocksRepo) GetByID(ctx context.Context, id int64) (herd.Paddock, error) {
	var (
		p        herd.Paddock
		boundary []byte
		del      sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, farm_id, name, boundary, area_hectares, created_at, updated_at, deleted_at
		FROM paddocks
		WHERE id = $1
	`, id).Scan(&p.ID, &p.FarmID, &p.Name, &boundary, &p.AreaHectares, &p.CreatedAt, &p.UpdatedAt, &del)
	if err != nil {
		return herd.Paddock{}, notFound(err, "paddock %d", id)
	}
	p.Boundary = boundary
	p.DeletedAt = fromNullTime(del)
	return p, nil
}

func (r *PaddocksRepo) Create(ctx context.Context, p herd.Paddock) (herd.Paddock, error) {
	var boundary any
	if len(p.Boundary) > 0 {
		boundary = string(p.Boundary)
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO paddocks (farm_id, name, boundary, area_hectares, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, p.FarmID, p.Name, boundary, p.AreaHectares, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return herd.Paddock{}, mapErr(err)
	}
	return p, nil
}

type FarmsRepo struct {
	q querier
}

func (r *FarmsRepo) GetByID(ctx context.Context, id int64) (herd.Farm, error) {
	var (
		f   herd.Farm
		del sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at, deleted_at FROM farms WHERE id = $1
	`, id).Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt, &del)
	if err != nil {
		return herd.Farm{}, notFound(err, "farm %d", id)
	}
	f.DeletedAt = fromNullTime(del)
	return f, nil
}

func (r *FarmsRepo) Create(ctx context.Context, f herd.Farm) (herd.Farm, error) {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO farms (name, created_at, updated_at) VALUES ($1,$2,$3) RETURNING id
	`, f.Name, f.CreatedAt, f.UpdatedAt).Scan(&f.ID)
	if err != nil {
		return herd.Farm{}, mapErr(err)
	}
	return f, nil
}
