package postgres

import (
	"context"
	"database/sql"
	"errors"

	"livestock-ledger/internal/domain/herd"
)

type MovementsRepo struct {
	q querier
}

func (r *MovementsRepo) Append(ctx context.Context, m herd.Movement) error {
	if m.ID == "" {
		return errors.New("movement id required")
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO movements (
			id, entity_type, entity_id, from_id, to_id,
			moved_at, reason, actor_user_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID, string(m.EntityType), m.EntityID, toNullInt(m.FromID), m.ToID,
		m.MovedAt, m.Reason, m.ActorUserID, m.CreatedAt,
	)
	return mapErr(err)
}

// El orden final lo decide el ledger; acá ya viene por moved_at desc.
func (r *MovementsRepo) QueryByEntity(ctx context.Context, kind herd.EntityKind, entityID int64) ([]herd.Movement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, from_id, to_id, moved_at, reason, actor_user_id, created_at
		FROM movements
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY moved_at DESC, created_at DESC
	`, string(kind), entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]herd.Movement, 0)
	for rows.Next() {
		var (
			m    herd.Movement
			kind string
			from sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &kind, &m.EntityID, &from, &m.ToID, &m.MovedAt, &m.Reason, &m.ActorUserID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.EntityType = herd.EntityKind(kind)
		m.FromID = fromNullInt(from)
		out = append(out, m)
	}
	return out, rows.Err()
}
