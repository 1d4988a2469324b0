package memory

import (
	"context"

	"livestock-ledger/internal/domain/herd"
)

type ownerStore struct{ v view }

func (r ownerStore) GetByID(ctx context.Context, id int64) (herd.Owner, error) {
	if err := ctx.Err(); err != nil {
		return herd.Owner{}, err
	}
	var (
		o  herd.Owner
		ok bool
	)
	r.v.read(func(s *state) { o, ok = s.owners[id] })
	if !ok {
		return herd.Owner{}, herd.NotFoundf("owner %d", id)
	}
	return o, nil
}

func (r ownerStore) Create(ctx context.Context, o herd.Owner) (herd.Owner, error) {
	if err := ctx.Err(); err != nil {
		return herd.Owner{}, err
	}
	r.v.write(func(s *state) {
		s.seq.owner++
		o.ID = s.seq.owner
		s.owners[o.ID] = o
	})
	return o, nil
}

type ownershipStore struct{ v view }

func (r ownershipStore) ReplaceForAnimal(ctx context.Context, animalID int64, rows []herd.AnimalOwner) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.write(func(s *state) {
		if len(rows) == 0 {
			delete(s.ownership, animalID)
			return
		}
		cp := make([]herd.AnimalOwner, 0, len(rows))
		for _, row := range rows {
			row.AnimalID = animalID
			cp = append(cp, row)
		}
		s.ownership[animalID] = cp
	})
	return nil
}

func (r ownershipStore) GetForAnimal(ctx context.Context, animalID int64) ([]herd.AnimalOwner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []herd.AnimalOwner
	r.v.read(func(s *state) {
		out = append([]herd.AnimalOwner{}, s.ownership[animalID]...)
	})
	return out, nil
}

type memberStore struct{ v view }

func (r memberStore) IsMember(ctx context.Context, userID, farmID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	// granja borrada o inexistente => sin membresía, igual que el JOIN en postgres
	var ok bool
	r.v.read(func(s *state) {
		f, exists := s.farms[farmID]
		if !exists || f.Deleted() {
			return
		}
		_, ok = s.members[farmID][userID]
	})
	return ok, nil
}

func (r memberStore) AddMember(ctx context.Context, farmID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.write(func(s *state) {
		users, ok := s.members[farmID]
		if !ok {
			users = map[int64]struct{}{}
			s.members[farmID] = users
		}
		users[userID] = struct{}{}
	})
	return nil
}
