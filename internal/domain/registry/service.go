package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/domain/movements"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
)

// Service es el alta/baja/edición de entidades. Las escrituras que tocan
// ubicación (alta de animal o lote) registran el movimiento inicial en la
// misma transacción para que el ledger cubra toda la vida de la entidad.
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

// ---- farms ----

// CreateFarm crea la granja y deja al creador como miembro.
func (s *Service) CreateFarm(ctx context.Context, userID int64, name string) (herd.Farm, error) {
	if userID <= 0 {
		return herd.Farm{}, herd.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return herd.Farm{}, herd.Invalid("name", "required")
	}

	var out herd.Farm
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		now := s.now().UTC()
		f, err := tx.Farms.Create(ctx, herd.Farm{Name: name, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			return fmt.Errorf("create farm: %w", err)
		}
		if err := tx.Members.AddMember(ctx, f.ID, userID); err != nil {
			return fmt.Errorf("add creator: %w", err)
		}
		out = f
		return nil
	})
	return out, err
}

// AddMember sólo puede hacerlo un miembro actual.
func (s *Service) AddMember(ctx context.Context, userID, farmID, memberID int64) error {
	if memberID <= 0 {
		return herd.Invalid("user_id", "required")
	}
	return s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		f, err := tx.Farms.GetByID(ctx, farmID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireFarm(ctx, tx, userID, f.ID); err != nil {
			return err
		}
		if f.Deleted() {
			return herd.NotFoundf("farm %d", farmID)
		}
		return tx.Members.AddMember(ctx, farmID, memberID)
	})
}

// ---- paddocks ----

type PaddockInput struct {
	FarmID   int64
	Name     string
	Boundary json.RawMessage // GeoJSON opcional
}

func (s *Service) CreatePaddock(ctx context.Context, userID int64, in PaddockInput) (herd.Paddock, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return herd.Paddock{}, herd.Invalid("name", "required")
	}
	boundary, area, err := parseBoundary(in.Boundary)
	if err != nil {
		return herd.Paddock{}, err
	}

	var out herd.Paddock
	err = s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		f, err := tx.Farms.GetByID(ctx, in.FarmID)
		if errors.Is(err, herd.ErrNotFound) {
			return herd.Invalid("farm_id", "unknown farm")
		}
		if err != nil {
			return err
		}
		if err := s.guard.RequireFarm(ctx, tx, userID, f.ID); err != nil {
			return err
		}
		if f.Deleted() {
			return herd.Invalid("farm_id", "farm is deleted")
		}

		now := s.now().UTC()
		p, err := tx.Paddocks.Create(ctx, herd.Paddock{
			FarmID:       f.ID,
			Name:         name,
			Boundary:     boundary,
			AreaHectares: area,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create paddock: %w", err)
		}
		out = p
		return nil
	})
	return out, err
}

// ---- lots ----

type LotInput struct {
	PaddockID int64
	Name      string
}

func (s *Service) CreateLot(ctx context.Context, userID int64, in LotInput) (herd.Lot, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return herd.Lot{}, herd.Invalid("name", "required")
	}

	var out herd.Lot
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		p, err := tx.Paddocks.GetByID(ctx, in.PaddockID)
		if errors.Is(err, herd.ErrNotFound) {
			return herd.Invalid("paddock_id", "unknown paddock")
		}
		if err != nil {
			return err
		}
		if err := s.guard.RequireFarm(ctx, tx, userID, p.FarmID); err != nil {
			return err
		}
		if p.Deleted() {
			return herd.Invalid("paddock_id", "paddock is deleted")
		}

		now := s.now()
		l, err := tx.Lots.Create(ctx, herd.Lot{
			PaddockID: p.ID,
			Name:      name,
			Status:    herd.LotStatusActive,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		})
		if err != nil {
			return fmt.Errorf("create lot: %w", err)
		}

		if _, err := movements.Append(ctx, tx.Movements, movements.RecordInput{
			EntityType:  herd.EntityLot,
			EntityID:    l.ID,
			ToID:        p.ID,
			Reason:      herd.ReasonRegistration,
			ActorUserID: userID,
		}, now); err != nil {
			return fmt.Errorf("registration movement: %w", err)
		}
		out = l
		return nil
	})
	if err != nil {
		return herd.Lot{}, err
	}
	s.metrics.MovementRecorded(string(herd.EntityLot))
	return out, nil
}

// DeleteLot hace soft-delete; el lote tiene que estar vacío.
func (s *Service) DeleteLot(ctx context.Context, userID, lotID int64) error {
	return s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		l, err := tx.Lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if err := s.guard.RequirePaddock(ctx, tx, userID, l.PaddockID); err != nil {
			return err
		}
		if l.Deleted() {
			return herd.NotFoundf("lot %d", lotID)
		}

		occupants, err := tx.Animals.ListByLot(ctx, lotID)
		if err != nil {
			return err
		}
		if len(occupants) > 0 {
			return fmt.Errorf("lot %d still has %d animals: %w", lotID, len(occupants), herd.ErrConflict)
		}

		now := s.now().UTC()
		l.Status = herd.LotStatusDeleted
		l.DeletedAt = &now
		l.UpdatedAt = now
		return tx.Lots.Update(ctx, l)
	})
}

// ---- owners ----

func (s *Service) CreateOwner(ctx context.Context, userID int64, name string) (herd.Owner, error) {
	if userID <= 0 {
		return herd.Owner{}, herd.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return herd.Owner{}, herd.Invalid("name", "required")
	}

	var out herd.Owner
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		o, err := tx.Owners.Create(ctx, herd.Owner{Name: name, CreatedAt: s.now().UTC()})
		if err != nil {
			return fmt.Errorf("create owner: %w", err)
		}
		out = o
		return nil
	})
	return out, err
}
