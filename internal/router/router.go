package router

import (
	"database/sql"
	"net/http"
	"os"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redislib "github.com/redis/go-redis/v9"

	_ "pet-tag-registry/docs"

	"pet-tag-registry/internal/adapters/georef"
	mem "pet-tag-registry/internal/adapters/storage/memory"
	pg "pet-tag-registry/internal/adapters/storage/postgres"
	redisstore "pet-tag-registry/internal/adapters/storage/redis"
	"pet-tag-registry/internal/domain/drafts"
	"pet-tag-registry/internal/domain/geo"
	"pet-tag-registry/internal/domain/owners"
	"pet-tag-registry/internal/domain/pets"
	"pet-tag-registry/internal/domain/reports"
	"pet-tag-registry/internal/domain/tags"
	"pet-tag-registry/internal/middleware"
	"pet-tag-registry/internal/platform/logger"
	"pet-tag-registry/internal/platform/metrics"
	"pet-tag-registry/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: si viene, el draft cache usa Redis. Si no, memoria.
	Redis *redislib.Client

	// Opcional: fuente del dataset geográfico. Nil => cliente georef real.
	GeoSource geo.Source

	// Opcional: logger de requests. Nil => sin logging (tests).
	Logger logger.Logger

	QRBaseURL    string
	MaxBatchSize int
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Cada router arma su propio registry: sin default registry no hay
	// colisiones entre instancias (tests incluidos).
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	var (
		petRepo    pets.Repository
		tagRepo    tags.Repository
		ownerRepo  owners.Repository
		reportRepo reports.Repository
		draftRepo  drafts.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		tagRepo = pg.NewTagsRepo(db)
		ownerRepo = pg.NewOwnersRepo(db)
		reportRepo = pg.NewReportsRepo(db)
	} else {
		petRepo = mem.NewPetRepo()
		tagRepo = mem.NewTagRepo()
		ownerRepo = mem.NewOwnerRepo()
		reportRepo = mem.NewReportRepo()
	}

	if opts.Redis != nil {
		draftRepo = redisstore.NewDraftRepo(opts.Redis)
	} else {
		draftRepo = mem.NewDraftRepo()
	}

	// Fuente geográfica: inyectable para tests, georef real por default.
	source := opts.GeoSource
	if source == nil {
		if client, err := georef.NewClient(georef.Config{Metrics: m}); err == nil {
			source = client
		}
	}
	catalog := geo.NewCatalog(source)

	// Services por módulo
	ownersSvc := owners.NewService(ownerRepo)
	petsSvc := pets.NewService(petRepo)
	reportsSvc := reports.NewService(reportRepo)
	tagsSvc := tags.NewService(tagRepo, petsSvc, ownersSvc)
	draftsSvc := drafts.NewService(draftRepo)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, reportsSvc, ownersSvc, m)
	tags.RegisterRoutes(r, tagsSvc, tags.Options{
		QRBaseURL:    opts.QRBaseURL,
		MaxBatchSize: opts.MaxBatchSize,
	}, m)
	geo.RegisterRoutes(r, catalog)
	reports.RegisterRoutes(r, reportsSvc, petsSvc)
	owners.RegisterRoutes(r, ownersSvc)
	drafts.RegisterRoutes(r, draftsSvc)

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	return r
}
