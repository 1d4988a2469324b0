package genealogy

import (
	"context"
	"errors"
	"fmt"

	"livestock-ledger/internal/domain/herd"
)

// traversal construye un árbol a partir de un arena de animales indexado por id.
// Cada animal y cada lista de hijos se consulta al store como máximo una vez;
// el guard de ciclos es por camino (onPath), así que un mismo ancestro
// alcanzable por dos ramas (consanguinidad) no es un ciclo.
type traversal struct {
	animals  herd.AnimalStore
	maxDepth int
	maxNodes int
	nodes    int

	arena    map[int64]herd.Animal
	missing  map[int64]struct{}
	children map[int64][]int64

	path   []int64
	onPath map[int64]struct{}
}

func newTraversal(animals herd.AnimalStore, maxDepth, maxNodes int) *traversal {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &traversal{
		animals:  animals,
		maxDepth: maxDepth,
		maxNodes: maxNodes,
		arena:    map[int64]herd.Animal{},
		missing:  map[int64]struct{}{},
		children: map[int64][]int64{},
		onPath:   map[int64]struct{}{},
	}
}

func (t *traversal) buildRoot(ctx context.Context, root herd.Animal) (*Node, error) {
	t.arena[root.ID] = root
	if err := t.enter(root.ID, 0); err != nil {
		return nil, err
	}
	defer t.leave(root.ID)

	n := newNode(root)
	var err error
	if n.Mother, err = t.ancestor(ctx, root.MotherID, 1); err != nil {
		return nil, err
	}
	if n.Father, err = t.ancestor(ctx, root.FatherID, 1); err != nil {
		return nil, err
	}
	if n.Children, err = t.descendants(ctx, root.ID, 1); err != nil {
		return nil, err
	}
	return n, nil
}

// ancestor arma el sub-árbol de ancestros de id. nil o id colgante => sin nodo.
func (t *traversal) ancestor(ctx context.Context, id *int64, depth int) (*Node, error) {
	if id == nil {
		return nil, nil
	}
	a, ok, err := t.fetch(ctx, *id)
	if err != nil || !ok {
		return nil, err
	}
	if err := t.enter(a.ID, depth); err != nil {
		return nil, err
	}
	defer t.leave(a.ID)

	n := newNode(a)
	if n.Mother, err = t.ancestor(ctx, a.MotherID, depth+1); err != nil {
		return nil, err
	}
	if n.Father, err = t.ancestor(ctx, a.FatherID, depth+1); err != nil {
		return nil, err
	}
	return n, nil
}

// descendants arma los sub-árboles de descendientes de parentID.
func (t *traversal) descendants(ctx context.Context, parentID int64, depth int) ([]*Node, error) {
	ids, err := t.childrenOf(ctx, parentID)
	if err != nil {
		return nil, err
	}

	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		child := t.arena[id]
		if err := t.enter(id, depth); err != nil {
			return nil, err
		}
		n := newNode(child)
		n.Children, err = t.descendants(ctx, id, depth+1)
		t.leave(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (t *traversal) enter(id int64, depth int) error {
	if _, seen := t.onPath[id]; seen {
		path := make([]int64, 0, len(t.path)+1)
		path = append(path, t.path...)
		return &CyclicPedigreeError{Path: append(path, id)}
	}
	if depth > t.maxDepth {
		return fmt.Errorf("%w: limit %d at animal %d", ErrDepthExceeded, t.maxDepth, id)
	}
	if t.nodes >= t.maxNodes {
		return fmt.Errorf("%w: limit %d nodes", ErrTreeTooLarge, t.maxNodes)
	}
	t.nodes++
	t.onPath[id] = struct{}{}
	t.path = append(t.path, id)
	return nil
}

func (t *traversal) leave(id int64) {
	delete(t.onPath, id)
	if n := len(t.path); n > 0 && t.path[n-1] == id {
		t.path = t.path[:n-1]
	}
}

func (t *traversal) fetch(ctx context.Context, id int64) (herd.Animal, bool, error) {
	if a, ok := t.arena[id]; ok {
		return a, true, nil
	}
	if _, ok := t.missing[id]; ok {
		return herd.Animal{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return herd.Animal{}, false, err
	}

	a, err := t.animals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, herd.ErrNotFound) {
			t.missing[id] = struct{}{}
			return herd.Animal{}, false, nil
		}
		return herd.Animal{}, false, err
	}
	t.arena[id] = a
	return a, true, nil
}

func (t *traversal) childrenOf(ctx context.Context, parentID int64) ([]int64, error) {
	if ids, ok := t.children[parentID]; ok {
		return ids, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kids, err := t.animals.GetChildrenOf(ctx, parentID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(kids))
	for _, k := range kids {
		if _, ok := t.arena[k.ID]; !ok {
			t.arena[k.ID] = k
		}
		ids = append(ids, k.ID)
	}
	t.children[parentID] = ids
	return ids, nil
}
