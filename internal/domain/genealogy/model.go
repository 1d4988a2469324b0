package genealogy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"livestock-ledger/internal/domain/herd"
)

// DefaultMaxDepth acota la recursión independientemente del guard de ciclos.
const DefaultMaxDepth = 50

// DefaultMaxNodes acota el tamaño del árbol: con consanguinidad los
// sub-árboles se repiten por cada camino y el árbol crece exponencialmente
// aunque la profundidad sea chica.
const DefaultMaxNodes = 10000

var (
	ErrCyclicPedigree = errors.New("cyclic pedigree")
	ErrDepthExceeded  = errors.New("genealogy depth exceeded")
	ErrTreeTooLarge   = errors.New("genealogy tree too large")
)

// CyclicPedigreeError lleva el camino (ids desde la raíz) que cerró el ciclo.
type CyclicPedigreeError struct {
	Path []int64
}

func (e *CyclicPedigreeError) Error() string {
	parts := make([]string, 0, len(e.Path))
	for _, id := range e.Path {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "cyclic pedigree: " + strings.Join(parts, " -> ")
}

func (e *CyclicPedigreeError) Unwrap() error { return ErrCyclicPedigree }

// Node es un nodo del árbol genealógico. La raíz lleva ancestros y
// descendientes; los nodos ancestros sólo llevan Mother/Father y los
// nodos descendientes sólo Children. Expandir ambas direcciones en cada
// nodo volvería a la raíz por la lista de hijos de cada padre y el guard
// de ciclos por camino lo reportaría como ciclo.
type Node struct {
	ID           int64
	Tag          string
	PedigreeCode string
	Name         string
	Sex          herd.Sex
	BirthDate    *time.Time
	Breed        string
	Deleted      bool

	Mother   *Node
	Father   *Node
	Children []*Node
}

func newNode(a herd.Animal) *Node {
	return &Node{
		ID:           a.ID,
		Tag:          a.Tag,
		PedigreeCode: a.PedigreeCode,
		Name:         a.Name,
		Sex:          a.Sex,
		BirthDate:    a.BirthDate,
		Breed:        a.Breed,
		Deleted:      a.Deleted(),
		Children:     []*Node{},
	}
}
