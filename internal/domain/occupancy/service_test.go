package occupancy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-ledger/internal/adapters/storage/memory"
	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/domain/occupancy"
	"livestock-ledger/internal/platform/metrics"
)

const member int64 = 1

type fixture struct {
	db *memory.DB
	m  *metrics.Metrics

	paddockA, paddockB int64
	lotA, lotB         int64
	foreignLot         int64
	foreignPaddock     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: memory.New(), m: metrics.New()}
	err := f.db.InTx(context.Background(), func(ctx context.Context, tx herd.Stores) error {
		farm, _ := tx.Farms.Create(ctx, herd.Farm{Name: "Propia"})
		other, _ := tx.Farms.Create(ctx, herd.Farm{Name: "Ajena"})
		if err := tx.Members.AddMember(ctx, farm.ID, member); err != nil {
			return err
		}

		pa, _ := tx.Paddocks.Create(ctx, herd.Paddock{FarmID: farm.ID, Name: "Norte"})
		pb, _ := tx.Paddocks.Create(ctx, herd.Paddock{FarmID: farm.ID, Name: "Sur"})
		po, _ := tx.Paddocks.Create(ctx, herd.Paddock{FarmID: other.ID, Name: "Vecino"})
		f.paddockA, f.paddockB, f.foreignPaddock = pa.ID, pb.ID, po.ID

		la, _ := tx.Lots.Create(ctx, herd.Lot{PaddockID: pa.ID, Name: "Cría", Status: herd.LotStatusActive})
		lb, _ := tx.Lots.Create(ctx, herd.Lot{PaddockID: pa.ID, Name: "Destete", Status: herd.LotStatusActive})
		lo, _ := tx.Lots.Create(ctx, herd.Lot{PaddockID: po.ID, Name: "Vecino", Status: herd.LotStatusActive})
		f.lotA, f.lotB, f.foreignLot = la.ID, lb.ID, lo.ID
		return nil
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) animal(t *testing.T, tag string, lotID int64) int64 {
	t.Helper()
	var id int64
	err := f.db.InTx(context.Background(), func(ctx context.Context, tx herd.Stores) error {
		a, err := tx.Animals.Create(ctx, herd.Animal{Tag: tag, PedigreeCode: tag, Sex: herd.SexFemale, LotID: lotID})
		id = a.ID
		return err
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) service(backend herd.Backend) *occupancy.Service {
	return occupancy.NewService(backend, access.NewGuard(nil), nil, f.m)
}

func (f *fixture) history(t *testing.T, kind herd.EntityKind, id int64) []herd.Movement {
	t.Helper()
	out, err := f.db.Stores().Movements.QueryByEntity(context.Background(), kind, id)
	require.NoError(t, err)
	return out
}

// failingBackend delega en el backend real pero el append del ledger falla.
type failingBackend struct {
	herd.Backend
}

type failingMovements struct {
	herd.MovementStore
}

var errLedgerDown = errors.New("ledger down")

func (failingMovements) Append(context.Context, herd.Movement) error { return errLedgerDown }

func (b failingBackend) InTx(ctx context.Context, fn func(ctx context.Context, tx herd.Stores) error) error {
	return b.Backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		tx.Movements = failingMovements{tx.Movements}
		return fn(ctx, tx)
	})
}

func TestRelocateAnimal_UpdatesPointerAndLedger(t *testing.T) {
	f := newFixture(t)
	id := f.animal(t, "A007", f.lotA)
	ctx := context.Background()

	m, err := f.service(f.db).RelocateAnimal(ctx, member, id, f.lotB, "weaning")
	require.NoError(t, err)

	assert.Equal(t, herd.EntityAnimal, m.EntityType)
	assert.Equal(t, id, m.EntityID)
	require.NotNil(t, m.FromID)
	assert.Equal(t, f.lotA, *m.FromID)
	assert.Equal(t, f.lotB, m.ToID)
	assert.Equal(t, "weaning", m.Reason)
	assert.Equal(t, member, m.ActorUserID)

	a, err := f.db.Stores().Animals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.lotB, a.LotID)

	recs := f.history(t, herd.EntityAnimal, id)
	require.Len(t, recs, 1)
	assert.Equal(t, m.ID, recs[0].ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.m.MovementsRecorded.WithLabelValues("ANIMAL")))
}

func TestRelocateLot_UpdatesPointerAndLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.service(f.db).RelocateLot(ctx, member, f.lotA, f.paddockB, "rotation")
	require.NoError(t, err)
	require.NotNil(t, m.FromID)
	assert.Equal(t, f.paddockA, *m.FromID)
	assert.Equal(t, f.paddockB, m.ToID)
	assert.Equal(t, herd.EntityLot, m.EntityType)

	l, err := f.db.Stores().Lots.GetByID(ctx, f.lotA)
	require.NoError(t, err)
	assert.Equal(t, f.paddockB, l.PaddockID)
	assert.Len(t, f.history(t, herd.EntityLot, f.lotA), 1)
}

func TestRelocate_Rejections(t *testing.T) {
	f := newFixture(t)
	id := f.animal(t, "A001", f.lotA)
	svc := f.service(f.db)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"missing animal", func() error {
			_, err := svc.RelocateAnimal(ctx, member, 404, f.lotB, "")
			return err
		}, herd.ErrNotFound},
		{"same lot", func() error {
			_, err := svc.RelocateAnimal(ctx, member, id, f.lotA, "")
			return err
		}, herd.ErrValidation},
		{"unknown lot", func() error {
			_, err := svc.RelocateAnimal(ctx, member, id, 999, "")
			return err
		}, herd.ErrValidation},
		{"non member", func() error {
			_, err := svc.RelocateAnimal(ctx, 55, id, f.lotB, "")
			return err
		}, herd.ErrForbidden},
		{"target in foreign farm", func() error {
			_, err := svc.RelocateAnimal(ctx, member, id, f.foreignLot, "")
			return err
		}, herd.ErrForbidden},
		{"missing lot", func() error {
			_, err := svc.RelocateLot(ctx, member, 404, f.paddockB, "")
			return err
		}, herd.ErrNotFound},
		{"lot same paddock", func() error {
			_, err := svc.RelocateLot(ctx, member, f.lotA, f.paddockA, "")
			return err
		}, herd.ErrValidation},
		{"lot to foreign paddock", func() error {
			_, err := svc.RelocateLot(ctx, member, f.lotA, f.foreignPaddock, "")
			return err
		}, herd.ErrForbidden},
		{"bad kind", func() error {
			_, err := svc.Relocate(ctx, occupancy.RelocateInput{EntityType: "COW", EntityID: id, ToLocationID: f.lotB, ActorUserID: member})
			return err
		}, herd.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}

	// nada se movió ni se registró
	a, err := f.db.Stores().Animals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.lotA, a.LotID)
	assert.Empty(t, f.history(t, herd.EntityAnimal, id))
	assert.Empty(t, f.history(t, herd.EntityAnimal, 404))
	assert.Empty(t, f.history(t, herd.EntityLot, f.lotA))
}

func TestRelocateAnimal_DeletedEntities(t *testing.T) {
	f := newFixture(t)
	gone := f.animal(t, "G001", f.lotA)
	live := f.animal(t, "L001", f.lotA)
	ctx := context.Background()

	err := f.db.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		a, _ := tx.Animals.GetForUpdate(ctx, gone)
		a.Status.Life = herd.LifeDeleted
		if err := tx.Animals.Update(ctx, a); err != nil {
			return err
		}
		l, _ := tx.Lots.GetForUpdate(ctx, f.lotB)
		l.Status = herd.LotStatusDeleted
		return tx.Lots.Update(ctx, l)
	})
	require.NoError(t, err)

	svc := f.service(f.db)
	_, err = svc.RelocateAnimal(ctx, member, gone, f.lotB, "")
	assert.ErrorIs(t, err, herd.ErrNotFound)

	_, err = svc.RelocateAnimal(ctx, member, live, f.lotB, "")
	assert.ErrorIs(t, err, herd.ErrValidation)
}

func TestRelocateAnimal_LedgerFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	id := f.animal(t, "A001", f.lotA)
	ctx := context.Background()

	_, err := f.service(failingBackend{f.db}).RelocateAnimal(ctx, member, id, f.lotB, "weaning")
	require.ErrorIs(t, err, errLedgerDown)

	a, err := f.db.Stores().Animals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.lotA, a.LotID, "pointer must not move without its movement")
	assert.Empty(t, f.history(t, herd.EntityAnimal, id))
	assert.Equal(t, float64(0), testutil.ToFloat64(f.m.MovementsRecorded.WithLabelValues("ANIMAL")))
}

func TestRelocateLot_LedgerFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service(failingBackend{f.db}).RelocateLot(ctx, member, f.lotA, f.paddockB, "")
	require.ErrorIs(t, err, errLedgerDown)

	l, err := f.db.Stores().Lots.GetByID(ctx, f.lotA)
	require.NoError(t, err)
	assert.Equal(t, f.paddockA, l.PaddockID)
}

func TestRelocateAnimals_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	a1 := f.animal(t, "A1", f.lotA)
	a2 := f.animal(t, "A2", f.lotA)
	already := f.animal(t, "A3", f.lotB)
	svc := f.service(f.db)
	ctx := context.Background()

	// el tercero ya está en destino: falla el lote entero
	_, err := svc.RelocateAnimals(ctx, member, []int64{a1, a2, already}, f.lotB, "weaning")
	require.ErrorIs(t, err, herd.ErrValidation)

	for _, id := range []int64{a1, a2} {
		a, err := f.db.Stores().Animals.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, f.lotA, a.LotID)
		assert.Empty(t, f.history(t, herd.EntityAnimal, id))
	}

	_, err = svc.RelocateAnimals(ctx, member, []int64{a1, a1}, f.lotB, "")
	assert.ErrorIs(t, err, herd.ErrValidation)
	_, err = svc.RelocateAnimals(ctx, member, nil, f.lotB, "")
	assert.ErrorIs(t, err, herd.ErrValidation)

	ms, err := svc.RelocateAnimals(ctx, member, []int64{a1, a2}, f.lotB, "weaning")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, a1, ms[0].EntityID)
	assert.Equal(t, a2, ms[1].EntityID)

	in, err := svc.ListAnimalsInLot(ctx, member, f.lotB)
	require.NoError(t, err)
	assert.Len(t, in, 3)
}

func TestListLotsInPaddock(t *testing.T) {
	f := newFixture(t)
	svc := f.service(f.db)
	ctx := context.Background()

	lots, err := svc.ListLotsInPaddock(ctx, member, f.paddockA)
	require.NoError(t, err)
	assert.Len(t, lots, 2)

	_, err = svc.ListLotsInPaddock(ctx, member, f.foreignPaddock)
	assert.ErrorIs(t, err, herd.ErrForbidden)

	_, err = svc.ListLotsInPaddock(ctx, member, 404)
	assert.ErrorIs(t, err, herd.ErrNotFound)
}
