package movements

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/herd"
)

type RecordInput struct {
	EntityType  herd.EntityKind
	EntityID    int64
	FromID      *int64
	ToID        int64
	Reason      string
	ActorUserID int64

	// MovedAt opcional; zero => now.
	MovedAt time.Time
}

// NewRecord valida el input y arma el registro inmutable.
func NewRecord(in RecordInput, now time.Time) (herd.Movement, error) {
	if !in.EntityType.Valid() {
		return herd.Movement{}, herd.Invalid("entity_type", "must be ANIMAL or LOT")
	}
	if in.EntityID <= 0 {
		return herd.Movement{}, herd.Invalid("entity_id", "required")
	}
	if in.ToID <= 0 {
		return herd.Movement{}, herd.Invalid("to_id", "required")
	}
	if in.FromID != nil && *in.FromID <= 0 {
		return herd.Movement{}, herd.Invalid("from_id", "must be positive or null")
	}
	if in.FromID != nil && *in.FromID == in.ToID {
		return herd.Movement{}, herd.Invalid("to_id", "must differ from from_id")
	}
	if in.ActorUserID <= 0 {
		return herd.Movement{}, herd.Invalid("actor_user_id", "required")
	}

	movedAt := in.MovedAt
	if movedAt.IsZero() {
		movedAt = now
	}

	var from *int64
	if in.FromID != nil {
		from = herd.Int64Ptr(*in.FromID)
	}

	return herd.Movement{
		ID:          uuid.NewString(),
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		FromID:      from,
		ToID:        in.ToID,
		MovedAt:     movedAt.UTC(),
		Reason:      strings.TrimSpace(in.Reason),
		ActorUserID: in.ActorUserID,
		CreatedAt:   now.UTC(),
	}, nil
}

// Append valida y agrega al store recibido. Pensado para usarse dentro de
// la misma transacción que actualiza el puntero de ubicación.
func Append(ctx context.Context, store herd.MovementStore, in RecordInput, now time.Time) (herd.Movement, error) {
	m, err := NewRecord(in, now)
	if err != nil {
		return herd.Movement{}, err
	}
	if err := store.Append(ctx, m); err != nil {
		return herd.Movement{}, err
	}
	return m, nil
}

// LocationKind es el tipo de contenedor al que apunta un movimiento.
type LocationKind string

const (
	LocationLot     LocationKind = "LOT"
	LocationPaddock LocationKind = "PADDOCK"
)

// location es lo mínimo que el ledger necesita de un contenedor.
type location struct {
	Name    string
	Deleted bool
}

type locationLookup func(ctx context.Context, s herd.Stores, id int64) (location, error)

type locationGuard func(ctx context.Context, g *access.Guard, s herd.Stores, userID, id int64) error

type locationResolver struct {
	kind    LocationKind
	noun    string
	lookup  locationLookup
	require locationGuard
}

// Resolución polimórfica por tipo de entidad: Animal se mueve entre lotes,
// Lot entre potreros.
var resolvers = map[herd.EntityKind]locationResolver{
	herd.EntityAnimal: {
		kind: LocationLot,
		noun: "lot",
		lookup: func(ctx context.Context, s herd.Stores, id int64) (location, error) {
			l, err := s.Lots.GetByID(ctx, id)
			return location{Name: l.Name, Deleted: l.Deleted()}, err
		},
		require: func(ctx context.Context, g *access.Guard, s herd.Stores, userID, id int64) error {
			return g.RequireLot(ctx, s, userID, id)
		},
	},
	herd.EntityLot: {
		kind: LocationPaddock,
		noun: "paddock",
		lookup: func(ctx context.Context, s herd.Stores, id int64) (location, error) {
			p, err := s.Paddocks.GetByID(ctx, id)
			return location{Name: p.Name, Deleted: p.Deleted()}, err
		},
		require: func(ctx context.Context, g *access.Guard, s herd.Stores, userID, id int64) error {
			return g.RequirePaddock(ctx, s, userID, id)
		},
	},
}

// LocationKindOf devuelve el tipo de contenedor para kind ("" si no aplica).
func LocationKindOf(kind herd.EntityKind) LocationKind {
	return resolvers[kind].kind
}
