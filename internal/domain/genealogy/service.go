package genealogy

import (
	"context"
	"errors"

	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
)

type Service struct {
	backend  herd.Backend
	guard    *access.Guard
	log      logger.Logger
	metrics  *metrics.Metrics
	maxDepth int
	maxNodes int
}

func NewService(backend herd.Backend, guard *access.Guard, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		backend:  backend,
		guard:    guard,
		log:      log,
		metrics:  m,
		maxDepth: DefaultMaxDepth,
		maxNodes: DefaultMaxNodes,
	}
}

// SetMaxDepth ajusta el límite de profundidad; n <= 0 restaura el default.
func (s *Service) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	s.maxDepth = n
}

// SetMaxNodes ajusta el tope de nodos por árbol; n <= 0 restaura el default.
func (s *Service) SetMaxNodes(n int) {
	if n <= 0 {
		n = DefaultMaxNodes
	}
	s.maxNodes = n
}

// BuildGenealogy arma el árbol con raíz en animalID.
// La membresía se verifica una sola vez, contra la granja de la raíz;
// ancestros y descendientes no se re-autorizan.
func (s *Service) BuildGenealogy(ctx context.Context, userID, animalID int64) (*Node, error) {
	st := s.backend.Stores()

	root, err := st.Animals.GetByID(ctx, animalID)
	if err != nil {
		s.metrics.GenealogyBuilt("not_found")
		return nil, err
	}
	if err := s.guard.RequireAnimal(ctx, st, userID, root); err != nil {
		s.metrics.GenealogyBuilt("forbidden")
		return nil, err
	}

	node, err := newTraversal(st.Animals, s.maxDepth, s.maxNodes).buildRoot(ctx, root)
	if err != nil {
		log := logger.FromContext(ctx, s.log)
		var cyc *CyclicPedigreeError
		switch {
		case errors.As(err, &cyc):
			s.metrics.GenealogyBuilt("cycle")
			log.Warn("cyclic pedigree detected", map[string]any{"animal_id": animalID, "path": cyc.Path})
		case errors.Is(err, ErrDepthExceeded):
			s.metrics.GenealogyBuilt("depth_exceeded")
			log.Warn("genealogy depth exceeded", map[string]any{"animal_id": animalID, "max_depth": s.maxDepth})
		case errors.Is(err, ErrTreeTooLarge):
			s.metrics.GenealogyBuilt("too_large")
			log.Warn("genealogy tree too large", map[string]any{"animal_id": animalID, "max_nodes": s.maxNodes})
		default:
			s.metrics.GenealogyBuilt("error")
		}
		return nil, err
	}

	s.metrics.GenealogyBuilt("ok")
	return node, nil
}
