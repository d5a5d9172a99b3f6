package router

import (
	"context"
	"net/http"

	_ "animal-shelter-api/docs"
	"animal-shelter-api/internal/adapters/storage"
	mem "animal-shelter-api/internal/adapters/storage/memory"
	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/placement"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/domain/users"
	"animal-shelter-api/internal/middleware"
	"animal-shelter-api/internal/platform/httpx"
	"animal-shelter-api/internal/platform/paging"
	"animal-shelter-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si no viene, in-memory.
	Store storage.Store

	Logger   *zap.Logger
	Registry *prometheus.Registry
	PageSize int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = paging.DefaultLimit
	}
	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}

	// Services por módulo
	animalsSvc := animals.NewService(store.Animals())
	sheltersSvc := shelters.NewService(store.Shelters())
	adoptersSvc := adopters.NewService(store.Adopters())
	usersSvc := users.NewService(store.Users())
	engine := placement.NewEngine(store,
		placement.WithLogger(log.Named("placement")),
		placement.WithMetrics(placement.NewMetrics(reg)),
	)

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Trace)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))
	r.Use(middleware.NewHTTPMetrics(reg).Handler)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))
	r.Use(middleware.EnsureUser(usersSvc, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	r.Group(func(api chi.Router) {
		api.Use(httpx.RequireJSON)
		api.Use(httpx.AcceptJSON)

		animals.RegisterRoutes(api, animalsSvc, engine, pageSize)
		shelters.RegisterRoutes(api, sheltersSvc, engine, pageSize)
		adopters.RegisterRoutes(api, adoptersSvc, engine, pageSize)
		users.RegisterRoutes(api, usersSvc, ownedShelters(sheltersSvc), ownedAdopters(adoptersSvc), pageSize)
	})

	return r
}

func ownedShelters(svc *shelters.Service) users.OwnedLister {
	return func(ctx context.Context, owner string) ([]users.Owned, error) {
		items, err := svc.AllByOwner(ctx, owner)
		if err != nil {
			return nil, err
		}
		out := make([]users.Owned, 0, len(items))
		for _, sh := range items {
			out = append(out, users.Owned{ID: sh.ID, Name: sh.Name})
		}
		return out, nil
	}
}

func ownedAdopters(svc *adopters.Service) users.OwnedLister {
	return func(ctx context.Context, owner string) ([]users.Owned, error) {
		items, err := svc.AllByOwner(ctx, owner)
		if err != nil {
			return nil, err
		}
		out := make([]users.Owned, 0, len(items))
		for _, a := range items {
			out = append(out, users.Owned{ID: a.ID, Name: a.Name})
		}
		return out, nil
	}
}
