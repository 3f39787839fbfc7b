package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"pet-registry/internal/adapters/auth/jwtauth"
	"pet-registry/internal/adapters/files/memoryfiles"
	mem "pet-registry/internal/adapters/storage/memory"
	pg "pet-registry/internal/adapters/storage/postgres"
	"pet-registry/internal/domain/ownership"
	"pet-registry/internal/domain/pets"
	"pet-registry/internal/domain/users"
	"pet-registry/internal/middleware"
	"pet-registry/internal/migrate"
	"pet-registry/internal/platform/logger"
	"pet-registry/internal/ports/auth"
	"pet-registry/internal/ports/files"

	_ "pet-registry/internal/docs" // registro del swagger spec
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: X-Debug-User-ID)
	TokenIssuer  users.TokenIssuer

	// Si viene DB usa Postgres; si no, repos in-memory (dev/tests).
	DB *sql.DB

	Uploader files.Uploader

	Logger logger.Logger

	// Memory fuerza los adapters in-memory aunque haya DB (tests).
	Memory *MemoryAdapters
}

// MemoryAdapters agrupa los repos in-memory para compartirlos entre el
// router y el sequencer en dev/tests.
type MemoryAdapters struct {
	Users      *mem.UserRepo
	Pets       *mem.PetRepo
	Ownerships *mem.OwnershipRepo
	Migrations *mem.MigrationStore
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		userRepo users.Repository
		petRepo  pets.Repository
		ownRepo  ownership.Repository
		gens     ownership.GenerationSource
	)

	switch {
	case opts.Memory != nil:
		userRepo = opts.Memory.Users
		petRepo = opts.Memory.Pets
		ownRepo = opts.Memory.Ownerships
		gens = opts.Memory.Migrations
	case opts.DB != nil:
		userRepo = pg.NewUsersRepo(opts.DB)
		petRepo = pg.NewPetsRepo(opts.DB)
		ownRepo = pg.NewOwnershipRepo(opts.DB)
		gens = pg.NewMigrationStore(opts.DB)
	default:
		// Dev sin DB: arranca en la última generación, sin datos legacy.
		userRepo = mem.NewUserRepo()
		petRepo = mem.NewPetRepo()
		ownRepo = mem.NewOwnershipRepo()
		gens = mem.NewMigrationStore(migrate.Latest())
	}

	uploader := opts.Uploader
	if uploader == nil {
		uploader = memoryfiles.New()
	}

	issuer := opts.TokenIssuer
	if issuer == nil {
		issuer = jwtauth.New("dev-secret-change-me", 24*time.Hour)
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, issuer)
	petsSvc := pets.NewService(petRepo)
	ownSvc := ownership.NewService(ownRepo, petsSvc, usersSvc, gens)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, middleware.RateLimit(5, 10))
	pets.RegisterRoutes(r, petsSvc, ownSvc, uploader, log)
	ownership.RegisterRoutes(r, ownSvc, log)

	return r
}
