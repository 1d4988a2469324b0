package movements

import (
	"context"
	"errors"
	"sort"
	"time"

	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
)

// Entry es un movimiento con nombres desnormalizados al momento de leer.
// FromName/ToName quedan en nil si el contenedor no resuelve.
type Entry struct {
	herd.Movement
	LocationKind LocationKind
	FromName     *string
	ToName       *string
}

type Service struct {
	backend herd.Backend
	guard   *access.Guard
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(backend herd.Backend, guard *access.Guard, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		backend: backend,
		guard:   guard,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// RecordMovement agrega un registro al ledger sin tocar el puntero de
// ubicación de la entidad (eso es responsabilidad del llamador, ver occupancy).
// Se usa para cargar movimientos históricos.
func (s *Service) RecordMovement(ctx context.Context, in RecordInput) (herd.Movement, error) {
	if _, err := NewRecord(in, s.now()); err != nil {
		return herd.Movement{}, err
	}

	var out herd.Movement
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		if err := authorizeEntity(ctx, s.guard, tx, in.ActorUserID, in.EntityType, in.EntityID); err != nil {
			return err
		}
		// origen y destino también tienen que ser de una granja del usuario
		if in.FromID != nil {
			if err := s.authorizeLocation(ctx, tx, in.ActorUserID, in.EntityType, *in.FromID, "from_id", true); err != nil {
				return err
			}
		}
		if err := s.authorizeLocation(ctx, tx, in.ActorUserID, in.EntityType, in.ToID, "to_id", false); err != nil {
			return err
		}
		m, err := Append(ctx, tx.Movements, in, s.now())
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return herd.Movement{}, err
	}

	s.metrics.MovementRecorded(string(out.EntityType))
	return out, nil
}

// GetHistory devuelve el historial de la entidad, más reciente primero.
func (s *Service) GetHistory(ctx context.Context, userID int64, kind herd.EntityKind, entityID int64) ([]Entry, error) {
	if !kind.Valid() {
		return nil, herd.Invalid("entity_type", "must be ANIMAL or LOT")
	}

	st := s.backend.Stores()
	if err := authorizeEntity(ctx, s.guard, st, userID, kind, entityID); err != nil {
		return nil, err
	}

	records, err := st.Movements.QueryByEntity(ctx, kind, entityID)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(records)

	return s.resolveNames(ctx, st, kind, records)
}

// SortNewestFirst ordena por MovedAt desc; empates por CreatedAt desc y luego ID.
func SortNewestFirst(records []herd.Movement) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.MovedAt.Equal(b.MovedAt) {
			return a.MovedAt.After(b.MovedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// resolveNames elige la estrategia una vez por tipo y memoiza por id.
// Los fallos de resolución no abortan la lectura: el nombre queda nil.
func (s *Service) resolveNames(ctx context.Context, st herd.Stores, kind herd.EntityKind, records []herd.Movement) ([]Entry, error) {
	res := resolvers[kind]
	log := logger.FromContext(ctx, s.log)

	cache := map[int64]*string{}
	name := func(id int64) (*string, error) {
		if n, ok := cache[id]; ok {
			return n, nil
		}
		loc, err := res.lookup(ctx, st, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Debug("movement name unresolved", map[string]any{"location": string(res.kind), "id": id, "err": err})
			cache[id] = nil
			return nil, nil
		}
		v := loc.Name
		cache[id] = &v
		return &v, nil
	}

	out := make([]Entry, 0, len(records))
	for _, m := range records {
		e := Entry{Movement: m, LocationKind: res.kind}
		var err error
		if m.FromID != nil {
			if e.FromName, err = name(*m.FromID); err != nil {
				return nil, err
			}
		}
		if e.ToName, err = name(m.ToID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// authorizeLocation exige que el contenedor exista y sea de una granja del
// usuario. Un origen borrado se acepta (dato histórico); un destino no.
func (s *Service) authorizeLocation(ctx context.Context, tx herd.Stores, userID int64, kind herd.EntityKind, id int64, field string, allowDeleted bool) error {
	res := resolvers[kind]
	loc, err := res.lookup(ctx, tx, id)
	if errors.Is(err, herd.ErrNotFound) {
		return herd.Invalid(field, "unknown "+res.noun)
	}
	if err != nil {
		return err
	}
	if loc.Deleted && !allowDeleted {
		return herd.Invalid(field, res.noun+" is deleted")
	}
	return res.require(ctx, s.guard, tx, userID, id)
}

func authorizeEntity(ctx context.Context, guard *access.Guard, st herd.Stores, userID int64, kind herd.EntityKind, id int64) error {
	switch kind {
	case herd.EntityAnimal:
		a, err := st.Animals.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return guard.RequireAnimal(ctx, st, userID, a)
	case herd.EntityLot:
		if _, err := st.Lots.GetByID(ctx, id); err != nil {
			return err
		}
		return guard.RequireLot(ctx, st, userID, id)
	default:
		return herd.Invalid("entity_type", "must be ANIMAL or LOT")
	}
}
