package access

import (
	"context"
	"errors"
	"fmt"

	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/platform/logger"
)

// Guard resuelve si un usuario puede actuar sobre recursos de una granja.
// Todas las operaciones de escritura (y la raíz de la genealogía) pasan por acá.
//
// Los métodos reciben los stores explícitamente para poder usarse tanto
// fuera como dentro de una transacción.
type Guard struct {
	log logger.Logger
}

func NewGuard(log logger.Logger) *Guard {
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{log: log}
}

// IsMember es el check base. userID <= 0 nunca es miembro.
func (g *Guard) IsMember(ctx context.Context, s herd.Stores, userID, farmID int64) (bool, error) {
	if userID <= 0 || farmID <= 0 {
		return false, nil
	}
	return s.Members.IsMember(ctx, userID, farmID)
}

func (g *Guard) RequireFarm(ctx context.Context, s herd.Stores, userID, farmID int64) error {
	ok, err := g.IsMember(ctx, s, userID, farmID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		g.log.Debug("access denied", map[string]any{"user_id": userID, "farm_id": farmID})
		return herd.ErrForbidden
	}
	return nil
}

func (g *Guard) RequirePaddock(ctx context.Context, s herd.Stores, userID, paddockID int64) error {
	farmID, err := FarmOfPaddock(ctx, s, paddockID)
	if err != nil {
		return g.unresolved(err)
	}
	return g.RequireFarm(ctx, s, userID, farmID)
}

func (g *Guard) RequireLot(ctx context.Context, s herd.Stores, userID, lotID int64) error {
	farmID, err := FarmOfLot(ctx, s, lotID)
	if err != nil {
		return g.unresolved(err)
	}
	return g.RequireFarm(ctx, s, userID, farmID)
}

// RequireAnimal autoriza contra la granja dueña del potrero del lote actual del animal.
func (g *Guard) RequireAnimal(ctx context.Context, s herd.Stores, userID int64, a herd.Animal) error {
	return g.RequireLot(ctx, s, userID, a.LotID)
}

// Si la cadena de contención no resuelve, no hay granja contra la cual
// probar membresía: se deniega. Otros errores (store caído) se propagan.
func (g *Guard) unresolved(err error) error {
	if errors.Is(err, herd.ErrNotFound) {
		return herd.ErrForbidden
	}
	return err
}

func FarmOfPaddock(ctx context.Context, s herd.Stores, paddockID int64) (int64, error) {
	p, err := s.Paddocks.GetByID(ctx, paddockID)
	if err != nil {
		return 0, err
	}
	return p.FarmID, nil
}

func FarmOfLot(ctx context.Context, s herd.Stores, lotID int64) (int64, error) {
	l, err := s.Lots.GetByID(ctx, lotID)
	if err != nil {
		return 0, err
	}
	return FarmOfPaddock(ctx, s, l.PaddockID)
}
