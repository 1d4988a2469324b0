package memory

import (
	"context"
	"errors"

	"livestock-ledger/internal/domain/herd"
)

type movementStore struct{ v view }

func (r movementStore) Append(ctx context.Context, m herd.Movement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.ID == "" {
		return errors.New("movement id required")
	}
	var err error
	r.v.write(func(s *state) {
		for _, existing := range s.movements {
			if existing.ID == m.ID {
				err = herd.ErrConflict
				return
			}
		}
		s.movements = append(s.movements, m)
	})
	return err
}

// QueryByEntity devuelve en orden de inserción; el ledger ordena.
func (r movementStore) QueryByEntity(ctx context.Context, kind herd.EntityKind, entityID int64) ([]herd.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]herd.Movement, 0)
	r.v.read(func(s *state) {
		for _, m := range s.movements {
			if m.EntityType == kind && m.EntityID == entityID {
				out = append(out, m)
			}
		}
	})
	return out, nil
}
