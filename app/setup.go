package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/api"
	"github.com/igtharvillage/thar-api/config"
	"github.com/igtharvillage/thar-api/database"
	admin_handlers "github.com/igtharvillage/thar-api/handlers/admin"
	auth_handlers "github.com/igtharvillage/thar-api/handlers/auth"
	content_handlers "github.com/igtharvillage/thar-api/handlers/content"
	media_handlers "github.com/igtharvillage/thar-api/handlers/media"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/repository"
	"github.com/igtharvillage/thar-api/router"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/services/cron"
	"github.com/igtharvillage/thar-api/services/identity"
	"github.com/igtharvillage/thar-api/services/search"
	"github.com/igtharvillage/thar-api/services/spaces"
	"github.com/igtharvillage/thar-api/utils"
	"github.com/igtharvillage/thar-api/utils/cache"
	"github.com/igtharvillage/thar-api/utils/middleware"
	"go.uber.org/zap"
)

const auditRetention = 90 * 24 * time.Hour

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	logger, err := utils.InitLogger(env.LOG_LEVEL, env.LOG_FILE, env.IsProduction())
	if err != nil {
		return err
	}
	defer logger.Sync()

	if env.JWT_SECRET == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(env)
	if err != nil {
		zap.S().Error("[DB] check that Postgres is running and DB_* is set")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		zap.S().Error("[DB] failed to initialize database tables")
		return err
	}
	db := store.GetDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs sign-in throttling and the shared request limiter; without
	// it sign-ins are not throttled and limits are per instance
	var (
		throttle       *identity.Throttle
		limiterStorage fiber.Storage
	)
	if env.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(env.REDIS_URL, "igthar:")
		if err != nil {
			zap.S().Warnf("[IDENTITY] failed to connect to Redis, sign-in throttling disabled: %v", err)
		} else {
			defer redisCache.Close()
			throttle = identity.NewThrottle(redisCache)
			limiterStorage = redisCache.LimiterStorage()
		}
	}

	// Identity and roles
	provider := identity.NewLocalProvider(db, identity.Config{
		JWT: identity.JWTConfig{
			Secret: env.JWT_SECRET,
			Expiry: time.Duration(env.JWT_EXPIRY_HOURS) * time.Hour,
			Issuer: env.JWT_ISSUER,
		},
		BcryptCost: identity.DefaultCost,
		Throttle:   throttle,
	})
	profiles := services.NewProfileStore(db)
	gate := services.NewRoleGate(provider, profiles)

	unsubscribe := gate.OnAuthStateChangedWithRole(func(id *identity.Identity, profile *model.UserProfile, isAdmin bool) {
		if id != nil && isAdmin {
			zap.S().Infof("[GATE] admin %s signed in", id.Email)
		}
	})
	defer unsubscribe()

	// Site settings, reloaded when another instance publishes a change
	settingsStore := services.NewSettingsStore(db, services.DefaultSiteSettings(env), database.NewPGNotifier(db))
	settingsStore.Load(ctx)
	if err := database.ListenForChanges(ctx, store.DataSourceName(), database.SettingsChannel, func(string) {
		settingsStore.Load(ctx)
	}); err != nil {
		zap.S().Warnf("[SETTINGS] change listener unavailable, settings reload on restart only: %v", err)
	}

	// Media store
	var (
		images       content_handlers.ImageCleaner
		mediaHandler *media_handlers.MediaHandler
	)
	if mediaStore, err := newMediaStore(env); err != nil {
		zap.S().Warnf("[MEDIA] object store not configured, uploads disabled: %v", err)
	} else {
		images = mediaStore
		mediaHandler = media_handlers.NewMediaHandler(mediaStore)
	}

	// Content and search
	var indexer search.Indexer = search.NoopIndexer{}
	meili := env.MEILI_HOST != ""
	if meili {
		indexer = search.NewMeiliIndexer(env.MEILI_HOST, env.MEILI_API_KEY)
	}

	kinds := content_handlers.NewKinds(repository.NewStore(db), images, indexer)
	if meili {
		if err := indexer.(*search.MeiliIndexer).InitIndexes(content_handlers.KindNames(kinds)); err != nil {
			zap.S().Warnf("[SEARCH] failed to initialize indexes, falling back to database search: %v", err)
			indexer = search.NoopIndexer{}
			kinds = content_handlers.NewKinds(repository.NewStore(db), images, indexer)
		}
	}
	searchHandler := content_handlers.NewSearchHandler(kinds, indexer)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if env.CRON_ENABLED {
		jobs := []cron.Job{
			cron.PurgeRevokedTokensJob(provider),
			cron.PruneLogsJob(db, auditRetention),
		}
		if indexer.Enabled() {
			jobs = append(jobs, cron.ReindexJob(searchHandler.Reindex))
		}

		cronManager = cron.NewCronManager(db, jobs...)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			zap.S().Warnf("[CRON] failed to start cron jobs: %v", err)
			cronManager = nil
		}
	}
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT))
	app := server.GetEngine()

	router.SetupRoutes(app, router.Dependencies{
		Store:            store,
		AllowedOrigins:   env.ALLOWED_ORIGINS,
		RateLimitStorage: limiterStorage,
		AuthMiddleware:   middleware.NewAuthMiddleware(provider, profiles),
		Audit:            middleware.NewDBAuditSink(db),
		Kinds:            kinds,
		Search:           searchHandler,
		Auth:             auth_handlers.NewAuthHandler(gate, provider, profiles),
		Admin:            admin_handlers.NewAdminHandler(db, settingsStore, profiles, provider),
		Media:            mediaHandler,
		Settings:         settingsStore,
	})

	// Shut down on SIGINT/SIGTERM
	go func() {
		<-ctx.Done()
		zap.S().Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.S().Errorf("graceful shutdown failed: %v", err)
		}
	}()

	return server.Run()
}

func newMediaStore(env *config.EnvironmentVariable) (*services.MediaStore, error) {
	cfg, err := spaces.ConfigFromEnv(env)
	if err != nil {
		return nil, err
	}
	client, err := spaces.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return services.NewMediaStore(client), nil
}
