package postgres

import (
	"context"
	"database/sql"

	"livestock-ledger/internal/domain/herd"
)

type AnimalsRepo struct {
	q    querier
	inTx bool
}

const animalColumns = `
	id, tag, pedigree_code, name, sex, birth_date, breed, color,
	life_status, production_status, health_status, reproductive_status,
	mother_id, father_id, lot_id, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(s rowScanner) (herd.Animal, error) {
	var (
		a        herd.Animal
		bd, del  sql.NullTime
		mom, dad sql.NullInt64
	)
	if err := s.Scan(
		&a.ID, &a.Tag, &a.PedigreeCode, &a.Name, &a.Sex, &bd, &a.Breed, &a.Color,
		&a.Status.Life, &a.Status.Production, &a.Status.Health, &a.Status.Reproductive,
		&mom, &dad, &a.LotID, &a.CreatedAt, &a.UpdatedAt, &del,
	); err != nil {
		return herd.Animal{}, err
	}
	a.BirthDate = fromNullTime(bd)
	a.DeletedAt = fromNullTime(del)
	a.MotherID = fromNullInt(mom)
	a.FatherID = fromNullInt(dad)
	return a, nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id int64) (herd.Animal, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`, id)
	a, err := scanAnimal(row)
	if err != nil {
		return herd.Animal{}, notFound(err, "animal %d", id)
	}
	return a, nil
}

func (r *AnimalsRepo) GetForUpdate(ctx context.Context, id int64) (herd.Animal, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`+forUpdate(r.inTx), id)
	a, err := scanAnimal(row)
	if err != nil {
		return herd.Animal{}, notFound(err, "animal %d", id)
	}
	return a, nil
}

// GetChildrenOf incluye borrados: la genealogía histórica debe resolver.
func (r *AnimalsRepo) GetChildrenOf(ctx context.Context, parentID int64) ([]herd.Animal, error) {
	return r.list(ctx, `SELECT `+animalColumns+` FROM animals
		WHERE mother_id = $1 OR father_id = $1
		ORDER BY id ASC`, parentID)
}

func (r *AnimalsRepo) ListByLot(ctx context.Context, lotID int64) ([]herd.Animal, error) {
	return r.list(ctx, `SELECT `+animalColumns+` FROM animals
		WHERE lot_id = $1 AND deleted_at IS NULL AND life_status <> 'deleted'
		ORDER BY id ASC`, lotID)
}

func (r *AnimalsRepo) list(ctx context.Context, query string, args ...any) ([]herd.Animal, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]herd.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) Create(ctx context.Context, a herd.Animal) (herd.Animal, error) {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO animals (
			tag, pedigree_code, name, sex, birth_date, breed, color,
			life_status, production_status, health_status, reproductive_status,
			mother_id, father_id, lot_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id
	`,
		a.Tag, a.PedigreeCode, a.Name, a.Sex, toNullTime(a.BirthDate), a.Breed, a.Color,
		a.Status.Life, a.Status.Production, a.Status.Health, a.Status.Reproductive,
		toNullInt(a.MotherID), toNullInt(a.FatherID), a.LotID, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return herd.Animal{}, mapErr(err)
	}
	return a, nil
}

func (r *AnimalsRepo) Update(ctx context.Context, a herd.Animal) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE animals
		SET
			tag = $2,
			pedigree_code = $3,
			name = $4,
			sex = $5,
			birth_date = $6,
			breed = $7,
			color = $8,
			life_status = $9,
			production_status = $10,
			health_status = $11,
			reproductive_status = $12,
			mother_id = $13,
			father_id = $14,
			lot_id = $15,
			updated_at = $16,
			deleted_at = $17
		WHERE id = $1
	`,
		a.ID, a.Tag, a.PedigreeCode, a.Name, a.Sex, toNullTime(a.BirthDate), a.Breed, a.Color,
		a.Status.Life, a.Status.Production, a.Status.Health, a.Status.Reproductive,
		toNullInt(a.MotherID), toNullInt(a.FatherID), a.LotID, a.UpdatedAt, toNullTime(a.DeletedAt),
	)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return herd.NotFoundf("animal %d", a.ID)
	}
	return nil
}
