package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/domain/movements"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
)

// Service mantiene el puntero de ubicación actual (Animal.LotID,
// Lot.PaddockID) consistente con el último movimiento del ledger: ambos
// se escriben en la misma transacción.
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

type RelocateInput struct {
	EntityType   herd.EntityKind
	EntityID     int64
	ToLocationID int64
	Reason       string
	ActorUserID  int64
}

// Relocate despacha por tipo de entidad.
func (s *Service) Relocate(ctx context.Context, in RelocateInput) (herd.Movement, error) {
	switch in.EntityType {
	case herd.EntityAnimal:
		return s.RelocateAnimal(ctx, in.ActorUserID, in.EntityID, in.ToLocationID, in.Reason)
	case herd.EntityLot:
		return s.RelocateLot(ctx, in.ActorUserID, in.EntityID, in.ToLocationID, in.Reason)
	default:
		return herd.Movement{}, herd.Invalid("entity_type", "must be ANIMAL or LOT")
	}
}

func (s *Service) RelocateAnimal(ctx context.Context, actor, animalID, toLotID int64, reason string) (herd.Movement, error) {
	var out herd.Movement
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		m, err := s.relocateAnimal(ctx, tx, actor, animalID, toLotID, reason)
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return herd.Movement{}, err
	}
	s.recorded(ctx, out)
	return out, nil
}

// RelocateAnimals mueve varios animales al mismo lote en una sola
// transacción: si uno falla no se mueve ninguno.
func (s *Service) RelocateAnimals(ctx context.Context, actor int64, animalIDs []int64, toLotID int64, reason string) ([]herd.Movement, error) {
	if len(animalIDs) == 0 {
		return nil, herd.Invalid("animal_ids", "required")
	}
	seen := make(map[int64]struct{}, len(animalIDs))
	for _, id := range animalIDs {
		if _, dup := seen[id]; dup {
			return nil, herd.Invalid("animal_ids", fmt.Sprintf("animal %d repeated", id))
		}
		seen[id] = struct{}{}
	}

	out := make([]herd.Movement, 0, len(animalIDs))
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		for _, id := range animalIDs {
			m, err := s.relocateAnimal(ctx, tx, actor, id, toLotID, reason)
			if err != nil {
				return fmt.Errorf("animal %d: %w", id, err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, m := range out {
		s.recorded(ctx, m)
	}
	return out, nil
}

func (s *Service) RelocateLot(ctx context.Context, actor, lotID, toPaddockID int64, reason string) (herd.Movement, error) {
	var out herd.Movement
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		now := s.now()

		l, err := tx.Lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if l.Deleted() {
			return herd.NotFoundf("lot %d", lotID)
		}
		if err := s.guard.RequirePaddock(ctx, tx, actor, l.PaddockID); err != nil {
			return err
		}
		if l.PaddockID == toPaddockID {
			return herd.Invalid("to_paddock_id", "lot is already in that paddock")
		}

		target, err := tx.Paddocks.GetByID(ctx, toPaddockID)
		if err := targetUsable(err, target.Deleted(), "to_paddock_id", "paddock"); err != nil {
			return err
		}
		if err := s.guard.RequireFarm(ctx, tx, actor, target.FarmID); err != nil {
			return err
		}

		from := l.PaddockID
		l.PaddockID = toPaddockID
		l.UpdatedAt = now
		if err := tx.Lots.Update(ctx, l); err != nil {
			return fmt.Errorf("update lot: %w", err)
		}

		m, err := movements.Append(ctx, tx.Movements, movements.RecordInput{
			EntityType:  herd.EntityLot,
			EntityID:    lotID,
			FromID:      &from,
			ToID:        toPaddockID,
			Reason:      reason,
			ActorUserID: actor,
		}, now)
		if err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		out = m
		return nil
	})
	if err != nil {
		return herd.Movement{}, err
	}
	s.recorded(ctx, out)
	return out, nil
}

// relocateAnimal corre dentro de la transacción del llamador. La fila se lee
// con lock, así el fromId del movimiento es la ubicación realmente reemplazada.
func (s *Service) relocateAnimal(ctx context.Context, tx herd.Stores, actor, animalID, toLotID int64, reason string) (herd.Movement, error) {
	now := s.now()

	a, err := tx.Animals.GetForUpdate(ctx, animalID)
	if err != nil {
		return herd.Movement{}, err
	}
	if a.Deleted() {
		return herd.Movement{}, herd.NotFoundf("animal %d", animalID)
	}
	if err := s.guard.RequireAnimal(ctx, tx, actor, a); err != nil {
		return herd.Movement{}, err
	}
	if a.LotID == toLotID {
		return herd.Movement{}, herd.Invalid("to_lot_id", "animal is already in that lot")
	}

	target, err := tx.Lots.GetByID(ctx, toLotID)
	if err := targetUsable(err, target.Deleted(), "to_lot_id", "lot"); err != nil {
		return herd.Movement{}, err
	}
	if err := s.guard.RequireLot(ctx, tx, actor, toLotID); err != nil {
		return herd.Movement{}, err
	}

	from := a.LotID
	a.LotID = toLotID
	a.UpdatedAt = now
	if err := tx.Animals.Update(ctx, a); err != nil {
		return herd.Movement{}, fmt.Errorf("update animal: %w", err)
	}

	m, err := movements.Append(ctx, tx.Movements, movements.RecordInput{
		EntityType:  herd.EntityAnimal,
		EntityID:    animalID,
		FromID:      &from,
		ToID:        toLotID,
		Reason:      reason,
		ActorUserID: actor,
	}, now)
	if err != nil {
		return herd.Movement{}, fmt.Errorf("append movement: %w", err)
	}
	return m, nil
}

// Un destino inexistente o borrado es input inválido, no un 404 del recurso.
func targetUsable(err error, deleted bool, field, what string) error {
	if errors.Is(err, herd.ErrNotFound) {
		return herd.Invalid(field, "unknown "+what)
	}
	if err != nil {
		return err
	}
	if deleted {
		return herd.Invalid(field, what+" is deleted")
	}
	return nil
}

func (s *Service) recorded(ctx context.Context, m herd.Movement) {
	s.metrics.MovementRecorded(string(m.EntityType))
	logger.FromContext(ctx, s.log).Info("entity relocated", map[string]any{
		"entity_type": string(m.EntityType),
		"entity_id":   m.EntityID,
		"from_id":     derefOrNil(m.FromID),
		"to_id":       m.ToID,
		"movement_id": m.ID,
	})
}

func derefOrNil(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// ListAnimalsInLot devuelve los animales no borrados del lote.
func (s *Service) ListAnimalsInLot(ctx context.Context, userID, lotID int64) ([]herd.Animal, error) {
	st := s.backend.Stores()
	if _, err := st.Lots.GetByID(ctx, lotID); err != nil {
		return nil, err
	}
	if err := s.guard.RequireLot(ctx, st, userID, lotID); err != nil {
		return nil, err
	}
	return st.Animals.ListByLot(ctx, lotID)
}

// ListLotsInPaddock devuelve los lotes no borrados del potrero.
func (s *Service) ListLotsInPaddock(ctx context.Context, userID, paddockID int64) ([]herd.Lot, error) {
	st := s.backend.Stores()
	if _, err := st.Paddocks.GetByID(ctx, paddockID); err != nil {
		return nil, err
	}
	if err := s.guard.RequirePaddock(ctx, st, userID, paddockID); err != nil {
		return nil, err
	}
	return st.Lots.ListByPaddock(ctx, paddockID)
}
