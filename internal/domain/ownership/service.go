package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
)

var hundred = decimal.NewFromInt(100)

// Share es una participación propuesta.
type Share struct {
	OwnerID      int64
	SharePercent decimal.Decimal
}

// Holding es una fila de lectura con el dueño resuelto.
type Holding struct {
	Owner        herd.Owner
	SharePercent decimal.Decimal
}

type Service struct {
	backend herd.Backend
	guard   *access.Guard
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewService(backend herd.Backend, guard *access.Guard, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{backend: backend, guard: guard, log: log, metrics: m}
}

// ReplaceOwners reemplaza el set completo de dueños del animal (todo-o-nada).
// shares vacío deja al animal sin dueños.
func (s *Service) ReplaceOwners(ctx context.Context, userID, animalID int64, shares []Share) error {
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		a, err := tx.Animals.GetForUpdate(ctx, animalID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireAnimal(ctx, tx, userID, a); err != nil {
			return err
		}
		if a.Deleted() {
			return herd.NotFoundf("animal %d", animalID)
		}
		return Replace(ctx, tx, animalID, shares)
	})
	if err != nil {
		return err
	}
	s.metrics.OwnershipReplaced()
	return nil
}

// Replace valida y escribe dentro de una transacción abierta por el llamador
// (alta/edición de animales reusa esto).
func Replace(ctx context.Context, tx herd.Stores, animalID int64, shares []Share) error {
	if err := Validate(ctx, tx.Owners, shares); err != nil {
		return err
	}
	rows := make([]herd.AnimalOwner, 0, len(shares))
	for _, sh := range shares {
		rows = append(rows, herd.AnimalOwner{
			AnimalID:     animalID,
			OwnerID:      sh.OwnerID,
			SharePercent: sh.SharePercent,
		})
	}
	if err := tx.Ownership.ReplaceForAnimal(ctx, animalID, rows); err != nil {
		return fmt.Errorf("replace ownership: %w", err)
	}
	return nil
}

// Validate: cada share en (0,100], dueños existentes y sin repetir, total <= 100.
// Un total menor a 100 se acepta (propiedad cargada parcialmente).
func Validate(ctx context.Context, owners herd.OwnerStore, shares []Share) error {
	total := decimal.Zero
	seen := make(map[int64]struct{}, len(shares))

	for i, sh := range shares {
		field := fmt.Sprintf("owners[%d]", i)
		if sh.OwnerID <= 0 {
			return herd.Invalid(field+".owner_id", "required")
		}
		if _, dup := seen[sh.OwnerID]; dup {
			return herd.Invalid(field+".owner_id", "duplicated owner")
		}
		seen[sh.OwnerID] = struct{}{}

		if !sh.SharePercent.IsPositive() || sh.SharePercent.GreaterThan(hundred) {
			return herd.Invalid(field+".share_percent", "must be greater than 0 and at most 100")
		}
		total = total.Add(sh.SharePercent)

		o, err := owners.GetByID(ctx, sh.OwnerID)
		if errors.Is(err, herd.ErrNotFound) {
			return herd.Invalid(field+".owner_id", "unknown owner")
		}
		if err != nil {
			return err
		}
		if o.DeletedAt != nil {
			return herd.Invalid(field+".owner_id", "owner is deleted")
		}
	}

	if total.GreaterThan(hundred) {
		return herd.Invalid("owners", fmt.Sprintf("shares add up to %s, max 100", total.String()))
	}
	return nil
}

// GetOwners devuelve los dueños del animal. Filas cuyo dueño no resuelve se
// omiten (a diferencia del ledger de movimientos, no hay placeholder).
func (s *Service) GetOwners(ctx context.Context, userID, animalID int64) ([]Holding, error) {
	st := s.backend.Stores()
	a, err := st.Animals.GetByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireAnimal(ctx, st, userID, a); err != nil {
		return nil, err
	}

	rows, err := st.Ownership.GetForAnimal(ctx, animalID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log)
	out := make([]Holding, 0, len(rows))
	for _, row := range rows {
		o, err := st.Owners.GetByID(ctx, row.OwnerID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Debug("ownership row dropped", map[string]any{"animal_id": animalID, "owner_id": row.OwnerID, "err": err})
			continue
		}
		out = append(out, Holding{Owner: o, SharePercent: row.SharePercent})
	}
	return out, nil
}
