package herd

import "context"

// Los stores devuelven ErrNotFound (envuelto o no) cuando la fila no existe.
// GetByID devuelve también filas soft-deleted: el historial debe resolver.

type AnimalStore interface {
	GetByID(ctx context.Context, id int64) (Animal, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (Animal, error)
	GetChildrenOf(ctx context.Context, parentID int64) ([]Animal, error)
	ListByLot(ctx context.Context, lotID int64) ([]Animal, error)
	Create(ctx context.Context, a Animal) (Animal, error)
	Update(ctx context.Context, a Animal) error
}

type LotStore interface {
	GetByID(ctx context.Context, id int64) (Lot, error)
	GetForUpdate(ctx context.Context, id int64) (Lot, error)
	ListByPaddock(ctx context.Context, paddockID int64) ([]Lot, error)
	Create(ctx context.Context, l Lot) (Lot, error)
	Update(ctx context.Context, l Lot) error
}

type PaddockStore interface {
	GetByID(ctx context.Context, id int64) (Paddock, error)
	Create(ctx context.Context, p Paddock) (Paddock, error)
}

type FarmStore interface {
	GetByID(ctx context.Context, id int64) (Farm, error)
	Create(ctx context.Context, f Farm) (Farm, error)
}

type OwnerStore interface {
	GetByID(ctx context.Context, id int64) (Owner, error)
	Create(ctx context.Context, o Owner) (Owner, error)
}

// MovementStore es append-only.
type MovementStore interface {
	Append(ctx context.Context, m Movement) error
	QueryByEntity(ctx context.Context, kind EntityKind, entityID int64) ([]Movement, error)
}

type OwnershipStore interface {
	// ReplaceForAnimal borra todas las filas del animal e inserta rows.
	// Debe llamarse dentro de InTx para ser todo-o-nada.
	ReplaceForAnimal(ctx context.Context, animalID int64, rows []AnimalOwner) error
	GetForAnimal(ctx context.Context, animalID int64) ([]AnimalOwner, error)
}

type MembershipStore interface {
	IsMember(ctx context.Context, userID, farmID int64) (bool, error)
	AddMember(ctx context.Context, farmID, userID int64) error
}

// Stores agrupa los stores ligados a una misma conexión o transacción.
type Stores struct {
	Animals   AnimalStore
	Lots      LotStore
	Paddocks  PaddockStore
	Farms     FarmStore
	Owners    OwnerStore
	Movements MovementStore
	Ownership OwnershipStore
	Members   MembershipStore
}

// Backend es el límite transaccional de cada operación.
// Dentro de fn sólo deben usarse los stores recibidos; si fn devuelve error
// (o ctx se cancela) no se persiste nada.
type Backend interface {
	Stores() Stores
	InTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
