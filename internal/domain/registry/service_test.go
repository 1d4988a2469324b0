package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-ledger/internal/adapters/storage/memory"
	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/genealogy"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/domain/ownership"
	"livestock-ledger/internal/domain/registry"
	"livestock-ledger/internal/platform/metrics"
)

const user int64 = 1

type fixture struct {
	db  *memory.DB
	svc *registry.Service

	farm    herd.Farm
	paddock herd.Paddock
	lot     herd.Lot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	f := &fixture{db: db, svc: registry.NewService(db, access.NewGuard(nil), nil, metrics.New())}
	ctx := context.Background()

	var err error
	f.farm, err = f.svc.CreateFarm(ctx, user, "La Esperanza")
	require.NoError(t, err)
	f.paddock, err = f.svc.CreatePaddock(ctx, user, registry.PaddockInput{FarmID: f.farm.ID, Name: "Norte"})
	require.NoError(t, err)
	f.lot, err = f.svc.CreateLot(ctx, user, registry.LotInput{PaddockID: f.paddock.ID, Name: "Cría"})
	require.NoError(t, err)
	return f
}

func (f *fixture) createAnimal(t *testing.T, in registry.CreateAnimalInput) registry.AnimalResult {
	t.Helper()
	if in.LotID == 0 {
		in.LotID = f.lot.ID
	}
	res, err := f.svc.CreateAnimal(context.Background(), user, in)
	require.NoError(t, err)
	return res
}

func TestCreateFarm_CreatorIsMember(t *testing.T) {
	f := newFixture(t)
	ok, err := f.db.Stores().Members.IsMember(context.Background(), user, f.farm.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.CreateFarm(context.Background(), user, "  ")
	assert.ErrorIs(t, err, herd.ErrValidation)
	_, err = f.svc.CreateFarm(context.Background(), 0, "X")
	assert.ErrorIs(t, err, herd.ErrForbidden)
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.AddMember(ctx, 2, f.farm.ID, 3), herd.ErrForbidden)
	require.NoError(t, f.svc.AddMember(ctx, user, f.farm.ID, 2))
	// idempotente
	require.NoError(t, f.svc.AddMember(ctx, user, f.farm.ID, 2))

	_, err := f.svc.CreateLot(ctx, 2, registry.LotInput{PaddockID: f.paddock.ID, Name: "Nuevo"})
	assert.NoError(t, err)
}

func TestCreatePaddockAndLot_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePaddock(ctx, user, registry.PaddockInput{FarmID: 404, Name: "X"})
	assert.ErrorIs(t, err, herd.ErrValidation)
	_, err = f.svc.CreatePaddock(ctx, 9, registry.PaddockInput{FarmID: f.farm.ID, Name: "X"})
	assert.ErrorIs(t, err, herd.ErrForbidden)
	_, err = f.svc.CreatePaddock(ctx, user, registry.PaddockInput{FarmID: f.farm.ID, Name: "X", Boundary: []byte(`{"type":"Point","coordinates":[0,0]}`)})
	assert.ErrorIs(t, err, herd.ErrValidation)

	p, err := f.svc.CreatePaddock(ctx, user, registry.PaddockInput{
		FarmID:   f.farm.ID,
		Name:     "Con límite",
		Boundary: []byte(`{"type":"Polygon","coordinates":[[[0,0],[0,0.01],[0.01,0.01],[0.01,0],[0,0]]]}`),
	})
	require.NoError(t, err)
	assert.Greater(t, p.AreaHectares, 100.0)
	assert.NotEmpty(t, p.Boundary)

	_, err = f.svc.CreateLot(ctx, user, registry.LotInput{PaddockID: 404, Name: "X"})
	assert.ErrorIs(t, err, herd.ErrValidation)
	_, err = f.svc.CreateLot(ctx, user, registry.LotInput{PaddockID: p.ID})
	assert.ErrorIs(t, err, herd.ErrValidation)
}

func TestCreateLot_RecordsRegistrationMovement(t *testing.T) {
	f := newFixture(t)

	recs, err := f.db.Stores().Movements.QueryByEntity(context.Background(), herd.EntityLot, f.lot.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].FromID)
	assert.Equal(t, f.paddock.ID, recs[0].ToID)
	assert.Equal(t, herd.ReasonRegistration, recs[0].Reason)
	assert.Equal(t, user, recs[0].ActorUserID)
}

func TestCreateAnimal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, err := f.svc.CreateOwner(ctx, user, "Ana")
	require.NoError(t, err)

	mother := f.createAnimal(t, registry.CreateAnimalInput{Tag: "M001", PedigreeCode: "PC-M001", Sex: "female"})
	birth := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	res := f.createAnimal(t, registry.CreateAnimalInput{
		Tag:          "A001",
		PedigreeCode: "PC-A001",
		Sex:          "male",
		BirthDate:    &birth,
		MotherID:     &mother.Animal.ID,
		Status:       registry.StatusInput{Production: "growing"},
		Owners:       []ownership.Share{{OwnerID: owner.ID, SharePercent: decimal.NewFromInt(100)}},
	})

	a := res.Animal
	assert.Equal(t, herd.SexMale, a.Sex)
	assert.Equal(t, herd.LifeActive, a.Status.Life)
	assert.Equal(t, herd.ProductionGrowing, a.Status.Production)
	assert.Equal(t, herd.ReproductiveOpen, a.Status.Reproductive)
	assert.Empty(t, res.Warnings)

	recs, err := f.db.Stores().Movements.QueryByEntity(ctx, herd.EntityAnimal, a.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].FromID)
	assert.Equal(t, f.lot.ID, recs[0].ToID)
	assert.Equal(t, herd.ReasonRegistration, recs[0].Reason)

	rows, err := f.db.Stores().Ownership.GetForAnimal(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, owner.ID, rows[0].OwnerID)
}

func TestCreateAnimal_WarningsDoNotBlock(t *testing.T) {
	f := newFixture(t)
	bull := f.createAnimal(t, registry.CreateAnimalInput{Tag: "B", PedigreeCode: "B", Sex: "male"})

	res := f.createAnimal(t, registry.CreateAnimalInput{
		Tag: "C", PedigreeCode: "C", Sex: "female",
		MotherID: &bull.Animal.ID,
		FatherID: herd.Int64Ptr(999),
	})
	codes := []genealogy.WarningCode{}
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []genealogy.WarningCode{genealogy.WarnMotherNotFemale, genealogy.WarnMissingParent}, codes)
}

func TestCreateAnimal_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	future := time.Now().Add(48 * time.Hour)
	f.createAnimal(t, registry.CreateAnimalInput{Tag: "T", PedigreeCode: "DUP", Sex: "female"})

	tests := []struct {
		name string
		in   registry.CreateAnimalInput
		want error
	}{
		{"no tag", registry.CreateAnimalInput{PedigreeCode: "X", Sex: "female", LotID: f.lot.ID}, herd.ErrValidation},
		{"no pedigree", registry.CreateAnimalInput{Tag: "X", Sex: "female", LotID: f.lot.ID}, herd.ErrValidation},
		{"bad sex", registry.CreateAnimalInput{Tag: "X", PedigreeCode: "X", Sex: "?", LotID: f.lot.ID}, herd.ErrValidation},
		{"future birth", registry.CreateAnimalInput{Tag: "X", PedigreeCode: "X", Sex: "female", BirthDate: &future, LotID: f.lot.ID}, herd.ErrValidation},
		{"no lot", registry.CreateAnimalInput{Tag: "X", PedigreeCode: "X", Sex: "female"}, herd.ErrValidation},
		{"unknown lot", registry.CreateAnimalInput{Tag: "X", PedigreeCode: "X", Sex: "female", LotID: 404}, herd.ErrValidation},
		{"duplicated pedigree", registry.CreateAnimalInput{Tag: "X", PedigreeCode: "dup", Sex: "female", LotID: f.lot.ID}, herd.ErrConflict},
		{"bad owners", registry.CreateAnimalInput{
			Tag: "X", PedigreeCode: "X", Sex: "female", LotID: f.lot.ID,
			Owners: []ownership.Share{{OwnerID: 404, SharePercent: decimal.NewFromInt(10)}},
		}, herd.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateAnimal(ctx, user, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// ningún rechazo dejó animales ni movimientos
	animals, err := f.db.Stores().Animals.ListByLot(ctx, f.lot.ID)
	require.NoError(t, err)
	assert.Len(t, animals, 1)
}

func TestUpdateAnimal_PartialAndNullable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mother := f.createAnimal(t, registry.CreateAnimalInput{Tag: "M", PedigreeCode: "M", Sex: "female"})
	calf := f.createAnimal(t, registry.CreateAnimalInput{
		Tag: "A", PedigreeCode: "A", Sex: "female", Breed: "Angus",
		MotherID: &mother.Animal.ID,
	})

	name := "Lucera"
	res, err := f.svc.UpdateAnimal(ctx, user, calf.Animal.ID, registry.UpdateAnimalInput{
		Name:   &name,
		Status: registry.StatusInput{Health: "sick"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lucera", res.Animal.Name)
	assert.Equal(t, "Angus", res.Animal.Breed)
	assert.Equal(t, herd.HealthSick, res.Animal.Status.Health)
	require.NotNil(t, res.Animal.MotherID, "absent mother_id must not clear it")

	res, err = f.svc.UpdateAnimal(ctx, user, calf.Animal.ID, registry.UpdateAnimalInput{
		MotherID: registry.OptionalID{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Animal.MotherID)

	// el animal no puede volverse su propio ancestro sin advertencia
	res, err = f.svc.UpdateAnimal(ctx, user, mother.Animal.ID, registry.UpdateAnimalInput{
		MotherID: registry.OptionalID{Set: true, Value: &mother.Animal.ID},
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, genealogy.WarnSelfParent, res.Warnings[0].Code)

	male := "male"
	_, err = f.svc.UpdateAnimal(ctx, user, calf.Animal.ID, registry.UpdateAnimalInput{
		Sex:    &male,
		Status: registry.StatusInput{Reproductive: "pregnant"},
	})
	assert.ErrorIs(t, err, herd.ErrValidation)

	_, err = f.svc.UpdateAnimal(ctx, 9, calf.Animal.ID, registry.UpdateAnimalInput{Name: &name})
	assert.ErrorIs(t, err, herd.ErrForbidden)
}

func TestDeleteAnimalAndLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createAnimal(t, registry.CreateAnimalInput{Tag: "A", PedigreeCode: "A", Sex: "female"})

	err := f.svc.DeleteLot(ctx, user, f.lot.ID)
	assert.ErrorIs(t, err, herd.ErrConflict)

	require.NoError(t, f.svc.DeleteAnimal(ctx, user, a.Animal.ID))
	assert.ErrorIs(t, f.svc.DeleteAnimal(ctx, user, a.Animal.ID), herd.ErrNotFound)

	// sigue resolviendo, marcado como borrado
	got, err := f.svc.GetAnimal(ctx, user, a.Animal.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted())

	_, err = f.svc.UpdateAnimal(ctx, user, a.Animal.ID, registry.UpdateAnimalInput{})
	assert.ErrorIs(t, err, herd.ErrNotFound)

	require.NoError(t, f.svc.DeleteLot(ctx, user, f.lot.ID))
	assert.ErrorIs(t, f.svc.DeleteLot(ctx, user, f.lot.ID), herd.ErrNotFound)

	_, err = f.svc.CreateAnimal(ctx, user, registry.CreateAnimalInput{Tag: "B", PedigreeCode: "B", Sex: "female", LotID: f.lot.ID})
	assert.ErrorIs(t, err, herd.ErrValidation)
}
