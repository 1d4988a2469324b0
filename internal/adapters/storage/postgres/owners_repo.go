package postgres

import (
	"context"
	"database/sql"

	"livestock-ledger/internal/domain/herd"
)

type OwnersRepo struct {
	q querier
}

func (r *OwnersRepo) GetByID(ctx context.Context, id int64) (herd.Owner, error) {
	var (
		o   herd.Owner
		del sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at, deleted_at FROM owners WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.CreatedAt, &del)
	if err != nil {
		return herd.Owner{}, notFound(err, "owner %d", id)
	}
	o.DeletedAt = fromNullTime(del)
	return o, nil
}

func (r *OwnersRepo) Create(ctx context.Context, o herd.Owner) (herd.Owner, error) {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO owners (name, created_at) VALUES ($1,$2) RETURNING id
	`, o.Name, o.CreatedAt).Scan(&o.ID)
	if err != nil {
		return herd.Owner{}, mapErr(err)
	}
	return o, nil
}

type OwnershipRepo struct {
	q querier
}

// ReplaceForAnimal: delete + insert. El todo-o-nada lo da la transacción
// de InTx; fuera de ella cada sentencia es independiente.
func (r *OwnershipRepo) ReplaceForAnimal(ctx context.Context, animalID int64, rows []herd.AnimalOwner) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM animal_owners WHERE animal_id = $1`, animalID); err != nil {
		return mapErr(err)
	}
	for _, row := range rows {
		// decimal.Decimal implementa driver.Valuer
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO animal_owners (animal_id, owner_id, share_percent) VALUES ($1,$2,$3)
		`, animalID, row.OwnerID, row.SharePercent); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (r *OwnershipRepo) GetForAnimal(ctx context.Context, animalID int64) ([]herd.AnimalOwner, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT animal_id, owner_id, share_percent
		FROM animal_owners
		WHERE animal_id = $1
		ORDER BY owner_id ASC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]herd.AnimalOwner, 0)
	for rows.Next() {
		var ao herd.AnimalOwner
		if err := rows.Scan(&ao.AnimalID, &ao.OwnerID, &ao.SharePercent); err != nil {
			return nil, err
		}
		out = append(out, ao)
	}
	return out, rows.Err()
}

type MembersRepo struct {
	q querier
}

func (r *MembersRepo) IsMember(ctx context.Context, userID, farmID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM farm_members m
			JOIN farms f ON f.id = m.farm_id
			WHERE m.user_id = $1 AND m.farm_id = $2 AND f.deleted_at IS NULL
		)
	`, userID, farmID).Scan(&ok)
	return ok, err
}

func (r *MembersRepo) AddMember(ctx context.Context, farmID, userID int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO farm_members (farm_id, user_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, farmID, userID)
	return mapErr(err)
}
