package genealogy

import (
	"context"
	"errors"
	"fmt"

	"livestock-ledger/internal/domain/herd"
)

type WarningCode string

const (
	WarnSelfParent       WarningCode = "self_parent"
	WarnSameParent       WarningCode = "same_parent"
	WarnMissingParent    WarningCode = "missing_parent"
	WarnMotherNotFemale  WarningCode = "mother_not_female"
	WarnFatherNotMale    WarningCode = "father_not_male"
	WarnParentYounger    WarningCode = "parent_younger"
	WarnDescendantParent WarningCode = "descendant_as_parent"
)

type Warning struct {
	Code    WarningCode
	Message string
}

// CheckParents valida de forma consultiva los padres propuestos de candidate.
// No rechaza: los datos históricos pueden violar estas reglas y la carga
// debe seguir siendo posible. candidate.ID == 0 es un animal nuevo.
func CheckParents(ctx context.Context, animals herd.AnimalStore, candidate herd.Animal) ([]Warning, error) {
	var out []Warning
	add := func(code WarningCode, format string, args ...any) {
		out = append(out, Warning{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if candidate.MotherID != nil && candidate.FatherID != nil && *candidate.MotherID == *candidate.FatherID {
		add(WarnSameParent, "mother and father are the same animal %d", *candidate.MotherID)
	}

	type parentRef struct {
		role string
		id   *int64
		sex  herd.Sex
		code WarningCode
	}
	refs := []parentRef{
		{role: "mother", id: candidate.MotherID, sex: herd.SexFemale, code: WarnMotherNotFemale},
		{role: "father", id: candidate.FatherID, sex: herd.SexMale, code: WarnFatherNotMale},
	}

	var roots []int64
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if candidate.ID != 0 && *ref.id == candidate.ID {
			add(WarnSelfParent, "animal %d is its own %s", candidate.ID, ref.role)
			continue
		}
		p, err := animals.GetByID(ctx, *ref.id)
		if err != nil {
			if errors.Is(err, herd.ErrNotFound) {
				add(WarnMissingParent, "%s %d does not exist", ref.role, *ref.id)
				continue
			}
			return nil, err
		}
		if p.Sex != ref.sex {
			add(ref.code, "%s %d has sex %q", ref.role, p.ID, p.Sex)
		}
		if p.BirthDate != nil && candidate.BirthDate != nil && p.BirthDate.After(*candidate.BirthDate) {
			add(WarnParentYounger, "%s %d was born after the animal", ref.role, p.ID)
		}
		roots = append(roots, p.ID)
	}

	if candidate.ID != 0 && len(roots) > 0 {
		found, err := reachesAncestor(ctx, animals, roots, candidate.ID)
		if err != nil {
			return nil, err
		}
		if found {
			add(WarnDescendantParent, "animal %d would become its own ancestor", candidate.ID)
		}
	}

	return out, nil
}

// reachesAncestor recorre hacia arriba (BFS) desde start buscando target.
func reachesAncestor(ctx context.Context, animals herd.AnimalStore, start []int64, target int64) (bool, error) {
	visited := map[int64]struct{}{}
	frontier := append([]int64(nil), start...)

	for depth := 0; len(frontier) > 0 && depth <= DefaultMaxDepth; depth++ {
		var next []int64
		for _, id := range frontier {
			if id == target {
				return true, nil
			}
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}

			a, err := animals.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, herd.ErrNotFound) {
					continue
				}
				return false, err
			}
			if a.MotherID != nil {
				next = append(next, *a.MotherID)
			}
			if a.FatherID != nil {
				next = append(next, *a.FatherID)
			}
		}
		frontier = next
	}
	return false, nil
}
