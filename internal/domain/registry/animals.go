package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"livestock-ledger/internal/domain/genealogy"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/domain/movements"
	"livestock-ledger/internal/domain/ownership"
	"livestock-ledger/internal/platform/logger"
)

type CreateAnimalInput struct {
	Tag          string
	PedigreeCode string
	Name         string
	Sex          string
	BirthDate    *time.Time
	Breed        string
	Color        string
	Status       StatusInput
	MotherID     *int64
	FatherID     *int64
	LotID        int64
	Owners       []ownership.Share
}

// OptionalID distingue "no enviado" de "null" en un PATCH.
type OptionalID struct {
	Set   bool
	Value *int64
}

// OptionalDate idem para birth_date.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// UpdateAnimalInput: nil = no tocar. La ubicación no se edita acá
// (ver occupancy). Owners != nil reemplaza el set completo.
type UpdateAnimalInput struct {
	Tag          *string
	PedigreeCode *string
	Name         *string
	Sex          *string
	BirthDate    OptionalDate
	Breed        *string
	Color        *string
	Status       StatusInput
	MotherID     OptionalID
	FatherID     OptionalID
	Owners       *[]ownership.Share
}

// AnimalResult lleva las advertencias de pedigrí: no bloquean la escritura.
type AnimalResult struct {
	Animal   herd.Animal
	Warnings []genealogy.Warning
}

func (s *Service) CreateAnimal(ctx context.Context, userID int64, in CreateAnimalInput) (AnimalResult, error) {
	a := herd.Animal{
		Tag:          strings.TrimSpace(in.Tag),
		PedigreeCode: strings.TrimSpace(in.PedigreeCode),
		Name:         strings.TrimSpace(in.Name),
		BirthDate:    in.BirthDate,
		Breed:        strings.TrimSpace(in.Breed),
		Color:        strings.TrimSpace(in.Color),
		MotherID:     in.MotherID,
		FatherID:     in.FatherID,
		LotID:        in.LotID,
	}
	if err := s.prepareAnimal(&a, in.Sex, defaultStatus(), in.Status); err != nil {
		return AnimalResult{}, err
	}

	var out AnimalResult
	owned := len(in.Owners) > 0
	err := s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
		if err := s.requireLotTarget(ctx, tx, userID, a.LotID); err != nil {
			return err
		}

		warnings, err := genealogy.CheckParents(ctx, tx.Animals, a)
		if err != nil {
			return fmt.Errorf("pedigree check: %w", err)
		}

		now := s.now()
		a.CreatedAt = now.UTC()
		a.UpdatedAt = now.UTC()
		created, err := tx.Animals.Create(ctx, a)
		if err != nil {
			return err
		}

		if owned {
			if err := ownership.Replace(ctx, tx, created.ID, in.Owners); err != nil {
				return err
			}
		}

		if _, err := movements.Append(ctx, tx.Movements, movements.RecordInput{
			EntityType:  herd.EntityAnimal,
			EntityID:    created.ID,
			ToID:        created.LotID,
			Reason:      herd.ReasonRegistration,
			ActorUserID: userID,
		}, now); err != nil {
			return fmt.Errorf("registration movement: %w", err)
		}

		out = AnimalResult{Animal: created, Warnings: warnings}
		return nil
	})
	if err != nil {
		return AnimalResult{}, err
	}

	s.metrics.MovementRecorded(string(herd.EntityAnimal))
	if owned {
		s.metrics.OwnershipReplaced()
	}
	s.logWarnings(ctx, out)
	return out, nil
}

func (s *Service) GetAnimal(ctx context.Context, userID, animalID int64) (herd.Animal, error) {
	st := s.backend.Stores()
	a, err := st.Animals.GetByID(ctx, animalID)
	if err != nil {
		return herd.Animal{}, err
	}
	if err := s.guard.RequireAnimal(ctx, st, userID, a); err != nil {
		return herd.Animal{}, err
	}
	return a, nil
}

func (s *Service) UpdateAnimal(ctx context.Context, userID, animalID int64, in UpdateAnimalInput) (AnimalResult, error) {
	var out AnimalResult
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

		setString(&a.Tag, in.Tag)
		setString(&a.PedigreeCode, in.PedigreeCode)
		setString(&a.Name, in.Name)
		setString(&a.Breed, in.Breed)
		setString(&a.Color, in.Color)
		if in.BirthDate.Set {
			a.BirthDate = in.BirthDate.Value
		}
		if in.MotherID.Set {
			a.MotherID = in.MotherID.Value
		}
		if in.FatherID.Set {
			a.FatherID = in.FatherID.Value
		}

		sex := string(a.Sex)
		if in.Sex != nil {
			sex = *in.Sex
		}
		if err := s.prepareAnimal(&a, sex, a.Status, in.Status); err != nil {
			return err
		}

		warnings, err := genealogy.CheckParents(ctx, tx.Animals, a)
		if err != nil {
			return fmt.Errorf("pedigree check: %w", err)
		}

		a.UpdatedAt = s.now().UTC()
		if err := tx.Animals.Update(ctx, a); err != nil {
			return err
		}

		if in.Owners != nil {
			if err := ownership.Replace(ctx, tx, a.ID, *in.Owners); err != nil {
				return err
			}
		}

		out = AnimalResult{Animal: a, Warnings: warnings}
		return nil
	})
	if err != nil {
		return AnimalResult{}, err
	}

	if in.Owners != nil {
		s.metrics.OwnershipReplaced()
	}
	s.logWarnings(ctx, out)
	return out, nil
}

// DeleteAnimal es soft-delete: el animal sigue resolviendo en genealogía
// e historial, pero no puede moverse ni ser destino de cambios.
func (s *Service) DeleteAnimal(ctx context.Context, userID, animalID int64) error {
	return s.backend.InTx(ctx, func(ctx context.Context, tx herd.Stores) error {
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

		now := s.now().UTC()
		a.Status.Life = herd.LifeDeleted
		a.DeletedAt = &now
		a.UpdatedAt = now
		return tx.Animals.Update(ctx, a)
	})
}

func (s *Service) prepareAnimal(a *herd.Animal, sex string, base herd.Status, st StatusInput) error {
	if a.Tag == "" {
		return herd.Invalid("tag", "required")
	}
	if a.PedigreeCode == "" {
		return herd.Invalid("pedigree_code", "required")
	}
	parsed, err := parseSex(sex)
	if err != nil {
		return err
	}
	a.Sex = parsed

	status, err := applyStatus(base, st, a.Sex)
	if err != nil {
		return err
	}
	a.Status = status

	if a.BirthDate != nil && a.BirthDate.After(s.now()) {
		return herd.Invalid("birth_date", "cannot be in the future")
	}
	return nil
}

func (s *Service) requireLotTarget(ctx context.Context, tx herd.Stores, userID, lotID int64) error {
	if lotID <= 0 {
		return herd.Invalid("lot_id", "required")
	}
	l, err := tx.Lots.GetByID(ctx, lotID)
	if errors.Is(err, herd.ErrNotFound) {
		return herd.Invalid("lot_id", "unknown lot")
	}
	if err != nil {
		return err
	}
	if err := s.guard.RequireLot(ctx, tx, userID, l.ID); err != nil {
		return err
	}
	if l.Deleted() {
		return herd.Invalid("lot_id", "lot is deleted")
	}
	return nil
}

func (s *Service) logWarnings(ctx context.Context, res AnimalResult) {
	if len(res.Warnings) == 0 {
		return
	}
	codes := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		codes = append(codes, string(w.Code))
	}
	logger.FromContext(ctx, s.log).Warn("pedigree warnings", map[string]any{
		"animal_id": res.Animal.ID,
		"codes":     strings.Join(codes, ","),
	})
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
