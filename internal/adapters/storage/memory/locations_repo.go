package memory

import (
	"context"
	"sort"

	"livestock-ledger/internal/domain/herd"
)

type lotStore struct{ v view }

func (r lotStore) GetByID(ctx context.Context, id int64) (herd.Lot, error) {
	if err := ctx.Err(); err != nil {
		return herd.Lot{}, err
	}
	var (
		l  herd.Lot
		ok bool
	)
	r.v.read(func(s *state) { l, ok = s.lots[id] })
	if !ok {
		return herd.Lot{}, herd.NotFoundf("lot %d", id)
	}
	return l, nil
}

func (r lotStore) GetForUpdate(ctx context.Context, id int64) (herd.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r lotStore) ListByPaddock(ctx context.Context, paddockID int64) ([]herd.Lot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]herd.Lot, 0)
	r.v.read(func(s *state) {
		for _, l := range s.lots {
			if l.PaddockID == paddockID && l.DeletedAt == nil {
				out = append(out, l)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r lotStore) Create(ctx context.Context, l herd.Lot) (herd.Lot, error) {
	if err := ctx.Err(); err != nil {
		return herd.Lot{}, err
	}
	r.v.write(func(s *state) {
		s.seq.lot++
		l.ID = s.seq.lot
		s.lots[l.ID] = l
	})
	return l, nil
}

func (r lotStore) Update(ctx context.Context, l herd.Lot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	r.v.write(func(s *state) {
		if _, ok := s.lots[l.ID]; !ok {
			err = herd.NotFoundf("lot %d", l.ID)
			return
		}
		s.lots[l.ID] = l
	})
	return err
}

type paddockStore struct{ v view }

func (r paddockStore) GetByID(ctx context.Context, id int64) (herd.Paddock, error) {
	if err := ctx.Err(); err != nil {
		return herd.Paddock{}, err
	}
	var (
		p  herd.Paddock
		ok bool
	)
	r.v.read(func(s *state) { p, ok = s.paddocks[id] })
	if !ok {
		return herd.Paddock{}, herd.NotFoundf("paddock %d", id)
	}
	return p, nil
}

func (r paddockStore) Create(ctx context.Context, p herd.Paddock) (herd.Paddock, error) {
	if err := ctx.Err(); err != nil {
		return herd.Paddock{}, err
	}
	r.v.write(func(s *state) {
		s.seq.paddock++
		p.ID = s.seq.paddock
		s.paddocks[p.ID] = p
	})
	return p, nil
}

type farmStore struct{ v view }

func (r farmStore) GetByID(ctx context.Context, id int64) (herd.Farm, error) {
	if err := ctx.Err(); err != nil {
		return herd.Farm{}, err
	}
	var (
		f  herd.Farm
		ok bool
	)
	r.v.read(func(s *state) { f, ok = s.farms[id] })
	if !ok {
		return herd.Farm{}, herd.NotFoundf("farm %d", id)
	}
	return f, nil
}

func (r farmStore) Create(ctx context.Context, f herd.Farm) (herd.Farm, error) {
	if err := ctx.Err(); err != nil {
		return herd.Farm{}, err
	}
	r.v.write(func(s *state) {
		s.seq.farm++
		f.ID = s.seq.farm
		s.farms[f.ID] = f
	})
	return f, nil
}
