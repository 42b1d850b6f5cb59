package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/parcel-service/internal/api/http"
	"github.com/spec-kit/parcel-service/internal/api/http/handlers"
	"github.com/spec-kit/parcel-service/internal/auth"
	"github.com/spec-kit/parcel-service/internal/config"
	"github.com/spec-kit/parcel-service/internal/directory"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/events"
	"github.com/spec-kit/parcel-service/internal/observability"
	"github.com/spec-kit/parcel-service/internal/persistence"
	"github.com/spec-kit/parcel-service/internal/repository"
	"github.com/spec-kit/parcel-service/internal/service"
	"github.com/spec-kit/parcel-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		orgRepo    repository.OrganizationRepository
		branchRepo repository.BranchRepository
		parcelRepo repository.ParcelRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		orgRepo = repository.NewOrganizationRepository(pool)
		branchRepo = repository.NewBranchRepository(pool)
		parcelRepo = repository.NewParcelRepository(pool)
	} else {
		logger.Warn("no postgres configured; using in-memory demo dataset")
		orgRepo, branchRepo = demoDirectory(cfg.Auth.BcryptCost, logger)
		parcelRepo = repository.NewMemoryParcelRepository()
	}

	var blacklist repository.TokenBlacklist
	if redis != nil && redis.Ping(ctx) == nil {
		blacklist = repository.NewTokenBlacklist(redis.Client)
	} else {
		logger.Warn("redis unreachable; using in-memory token blacklist")
		blacklist = repository.NewMemoryTokenBlacklist()
	}

	officeDir := directory.NewCache()
	if branches, err := branchRepo.List(ctx); err == nil {
		offices := make([]domain.Office, 0, len(branches))
		for _, branch := range branches {
			offices = append(offices, domain.NewOffice(branch.Slug, branch.Title))
		}
		officeDir.Replace(offices)
	} else {
		logger.Warn("could not load office directory", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	parcelService := service.NewParcelService(service.ParcelDependencies{
		ParcelRepo: parcelRepo,
		Directory:  officeDir,
		Dispatcher: dispatcher,
	})

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		OrganizationRepo: orgRepo,
		BranchRepo:       branchRepo,
		Blacklist:        blacklist,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), orgRepo, branchRepo)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, orgRepo, branchRepo),
		Auth:           handlers.NewAuthHandler(authService),
		Parcels:        handlers.NewParcelsHandler(parcelService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// demoDirectory seeds a single-tenant dataset so the service is usable
// without a database.
func demoDirectory(bcryptCost int, logger *zap.Logger) (repository.OrganizationRepository, repository.BranchRepository) {
	orgHash, err := auth.HashPassword(envOr("DEMO_ORG_PASSWORD", "admin123"), bcryptCost)
	if err != nil {
		logger.Fatal("hashing demo org password", zap.Error(err))
	}
	branchHash, err := auth.HashPassword(envOr("DEMO_BRANCH_PASSWORD", "branch123"), bcryptCost)
	if err != nil {
		logger.Fatal("hashing demo branch password", zap.Error(err))
	}

	orgRepo := repository.NewMemoryOrganizationRepository(domain.OrganizationAccount{
		Slug:         "swift-logistics",
		Title:        "Swift Logistics",
		PasswordHash: orgHash,
	})
	branchRepo := repository.NewMemoryBranchRepository([]domain.BranchAccount{
		{Slug: "off_1", Title: "Central Hub NY", PasswordHash: branchHash},
		{Slug: "off_2", Title: "Boston Branch", PasswordHash: branchHash},
		{Slug: "off_3", Title: "Philly Station", PasswordHash: branchHash},
	})
	return orgRepo, branchRepo
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
