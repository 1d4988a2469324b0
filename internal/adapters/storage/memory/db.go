package memory

import (
	"context"
	"sync"

	"livestock-ledger/internal/domain/herd"
)

type state struct {
	farms     map[int64]herd.Farm
	paddocks  map[int64]herd.Paddock
	lots      map[int64]herd.Lot
	animals   map[int64]herd.Animal
	owners    map[int64]herd.Owner
	ownership map[int64][]herd.AnimalOwner
	members   map[int64]map[int64]struct{} // farm -> users
	movements []herd.Movement

	seq sequences
}

type sequences struct {
	farm, paddock, lot, animal, owner int64
}

func newState() state {
	return state{
		farms:     map[int64]herd.Farm{},
		paddocks:  map[int64]herd.Paddock{},
		lots:      map[int64]herd.Lot{},
		animals:   map[int64]herd.Animal{},
		owners:    map[int64]herd.Owner{},
		ownership: map[int64][]herd.AnimalOwner{},
		members:   map[int64]map[int64]struct{}{},
	}
}

func (s *state) clone() state {
	cp := newState()
	for k, v := range s.farms {
		cp.farms[k] = v
	}
	for k, v := range s.paddocks {
		v.Boundary = append([]byte(nil), v.Boundary...)
		cp.paddocks[k] = v
	}
	for k, v := range s.lots {
		cp.lots[k] = v
	}
	for k, v := range s.animals {
		cp.animals[k] = v
	}
	for k, v := range s.owners {
		cp.owners[k] = v
	}
	for k, rows := range s.ownership {
		cp.ownership[k] = append([]herd.AnimalOwner(nil), rows...)
	}
	for farm, users := range s.members {
		u := make(map[int64]struct{}, len(users))
		for id := range users {
			u[id] = struct{}{}
		}
		cp.members[farm] = u
	}
	cp.movements = append([]herd.Movement(nil), s.movements...)
	cp.seq = s.seq
	return cp
}

// DB es el backend in-memory. Las transacciones trabajan sobre una copia
// del estado y la publican sólo si fn termina sin error; se serializan
// con el lock de escritura, así que no hay escrituras concurrentes.
type DB struct {
	mu    sync.RWMutex
	state state
}

func New() *DB {
	return &DB{state: newState()}
}

var _ herd.Backend = (*DB)(nil)

func (db *DB) Stores() herd.Stores {
	return storesFor(view{db: db})
}

func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context, tx herd.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	working := db.state.clone()
	if err := fn(ctx, storesFor(view{db: db, tx: &working})); err != nil {
		return err
	}
	// cancelado durante fn: no se publica nada
	if err := ctx.Err(); err != nil {
		return err
	}
	db.state = working
	return nil
}

func storesFor(v view) herd.Stores {
	return herd.Stores{
		Animals:   animalStore{v},
		Lots:      lotStore{v},
		Paddocks:  paddockStore{v},
		Farms:     farmStore{v},
		Owners:    ownerStore{v},
		Movements: movementStore{v},
		Ownership: ownershipStore{v},
		Members:   memberStore{v},
	}
}

// view resuelve sobre qué estado opera un store: el de la transacción
// (ya protegido por InTx) o el compartido, tomando el lock.
type view struct {
	db *DB
	tx *state
}

func (v view) read(fn func(s *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.db.mu.RLock()
	defer v.db.mu.RUnlock()
	fn(&v.db.state)
}

func (v view) write(fn func(s *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	fn(&v.db.state)
}
