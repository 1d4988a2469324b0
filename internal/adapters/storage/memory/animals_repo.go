package memory

import (
	"context"
	"sort"
	"strings"

	"livestock-ledger/internal/domain/herd"
)

type animalStore struct{ v view }

func (r animalStore) GetByID(ctx context.Context, id int64) (herd.Animal, error) {
	if err := ctx.Err(); err != nil {
		return herd.Animal{}, err
	}
	var (
		a  herd.Animal
		ok bool
	)
	r.v.read(func(s *state) { a, ok = s.animals[id] })
	if !ok {
		return herd.Animal{}, herd.NotFoundf("animal %d", id)
	}
	return a, nil
}

// GetForUpdate: dentro de InTx el lock global ya serializa.
func (r animalStore) GetForUpdate(ctx context.Context, id int64) (herd.Animal, error) {
	return r.GetByID(ctx, id)
}

func (r animalStore) GetChildrenOf(ctx context.Context, parentID int64) ([]herd.Animal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]herd.Animal, 0)
	r.v.read(func(s *state) {
		for _, a := range s.animals {
			if (a.MotherID != nil && *a.MotherID == parentID) || (a.FatherID != nil && *a.FatherID == parentID) {
				out = append(out, a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r animalStore) ListByLot(ctx context.Context, lotID int64) ([]herd.Animal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]herd.Animal, 0)
	r.v.read(func(s *state) {
		for _, a := range s.animals {
			if a.LotID == lotID && !a.Deleted() {
				out = append(out, a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r animalStore) Create(ctx context.Context, a herd.Animal) (herd.Animal, error) {
	if err := ctx.Err(); err != nil {
		return herd.Animal{}, err
	}
	var err error
	r.v.write(func(s *state) {
		if pedigreeTaken(s, a.PedigreeCode, 0) {
			err = herd.ErrConflict
			return
		}
		s.seq.animal++
		a.ID = s.seq.animal
		s.animals[a.ID] = a
	})
	if err != nil {
		return herd.Animal{}, err
	}
	return a, nil
}

func (r animalStore) Update(ctx context.Context, a herd.Animal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	r.v.write(func(s *state) {
		if _, ok := s.animals[a.ID]; !ok {
			err = herd.NotFoundf("animal %d", a.ID)
			return
		}
		if pedigreeTaken(s, a.PedigreeCode, a.ID) {
			err = herd.ErrConflict
			return
		}
		s.animals[a.ID] = a
	})
	return err
}

func pedigreeTaken(s *state, code string, except int64) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	for _, other := range s.animals {
		if other.ID != except && strings.EqualFold(other.PedigreeCode, code) {
			return true
		}
	}
	return false
}
