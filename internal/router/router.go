package router

import (
	"net/http"

	mem "livestock-ledger/internal/adapters/storage/memory"
	"livestock-ledger/internal/domain/access"
	"livestock-ledger/internal/domain/genealogy"
	"livestock-ledger/internal/domain/herd"
	"livestock-ledger/internal/domain/movements"
	"livestock-ledger/internal/domain/occupancy"
	"livestock-ledger/internal/domain/ownership"
	"livestock-ledger/internal/domain/registry"
	"livestock-ledger/internal/middleware"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
	"livestock-ledger/internal/ports/auth"

	_ "livestock-ledger/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa ese backend (Postgres). Si no, in-memory.
	Backend herd.Backend

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// 0 => genealogy.DefaultMaxDepth / DefaultMaxNodes
	GenealogyMaxDepth int
	GenealogyMaxNodes int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	backend := opts.Backend
	if backend == nil {
		backend = mem.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// claims antes del log para que el request lleve user_id
	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Instrument(m))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	guard := access.NewGuard(log)

	// Services por módulo
	registrySvc := registry.NewService(backend, guard, log, m)
	genealogySvc := genealogy.NewService(backend, guard, log, m)
	genealogySvc.SetMaxDepth(opts.GenealogyMaxDepth)
	genealogySvc.SetMaxNodes(opts.GenealogyMaxNodes)
	movementsSvc := movements.NewService(backend, guard, log, m)
	occupancySvc := occupancy.NewService(backend, guard, log, m)
	ownershipSvc := ownership.NewService(backend, guard, log, m)

	// Rutas por módulo. occupancy primero: /animals/relocate es estático.
	occupancy.RegisterRoutes(r, occupancySvc)
	registry.RegisterRoutes(r, registrySvc)
	genealogy.RegisterRoutes(r, genealogySvc)
	movements.RegisterRoutes(r, movementsSvc)
	ownership.RegisterRoutes(r, ownershipSvc)

	return r
}
