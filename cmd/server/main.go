package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/erp-audit/api/handler"
	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/internal/config"
	"github.com/fastygo/erp-audit/internal/feed"
	boltstore "github.com/fastygo/erp-audit/internal/infrastructure/bolt"
	"github.com/fastygo/erp-audit/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/erp-audit/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/erp-audit/internal/infrastructure/redis"
	"github.com/fastygo/erp-audit/internal/middleware"
	"github.com/fastygo/erp-audit/internal/router"
	"github.com/fastygo/erp-audit/internal/security"
	"github.com/fastygo/erp-audit/internal/services"
	"github.com/fastygo/erp-audit/internal/services/lifecycle"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	"github.com/fastygo/erp-audit/pkg/logger"
	"github.com/fastygo/erp-audit/repository"
	boltRepo "github.com/fastygo/erp-audit/repository/bolt"
	"github.com/fastygo/erp-audit/repository/memory"
	"github.com/fastygo/erp-audit/repository/postgres"
	redisRepo "github.com/fastygo/erp-audit/repository/redis"
	"github.com/fastygo/erp-audit/repository/sqlite"
	"github.com/fastygo/erp-audit/usecase"
	auditUC "github.com/fastygo/erp-audit/usecase/audit"
	authUC "github.com/fastygo/erp-audit/usecase/auth"
	documentsUC "github.com/fastygo/erp-audit/usecase/documents"
	inventoryUC "github.com/fastygo/erp-audit/usecase/inventory"
	"github.com/fastygo/erp-audit/usecase/reports"
	treasuryUC "github.com/fastygo/erp-audit/usecase/treasury"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	mon := monitor.New(cfg.Monitor.Interval, zapLogger)

	// PostgreSQL
	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err = pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		mon.Add("postgres", monitor.PostgresCheck(pool), true)
	}

	// Redis
	var redisClient *goRedis.Client
	if cfg.NeedsRedis() {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		mon.Add("redis", monitor.RedisCheck(redisClient), true)
	}

	// Event store
	var auditRepo repository.AuditRepository
	switch cfg.Stores.Audit {
	case config.BackendPostgres:
		auditRepo = postgres.NewAuditRepository(pool)
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			zapLogger.Fatal("sqlite open failed", zap.Error(err))
		}
		manager.Register("sqlite", func(ctx context.Context) error {
			return db.Close()
		})
		mon.Add("sqlite", monitor.PingCheck(db), true)
		auditRepo = sqlite.NewAuditRepository(db)
	default:
		auditRepo = memory.NewAuditLog(nil)
	}

	// Entities
	var entities repository.EntityStore
	switch cfg.Stores.Entities {
	case config.BackendBolt:
		boltDB, err := boltstore.Open(cfg.Bolt.Path, boltRepo.Buckets...)
		if err != nil {
			zapLogger.Fatal("failed to open entity store", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return boltDB.Close()
		})
		mon.Add("bolt", monitor.PingCheck(boltDB), true)
		entities = boltRepo.NewEntityStore(boltDB)
	default:
		entities = memory.NewStore()
	}
	if cfg.Stores.SeedDemo {
		if err := memory.Seed(appCtx, entities, time.Now()); err != nil {
			zapLogger.Fatal("seeding demo data failed", zap.Error(err))
		}
	}

	// Users and sessions
	var userRepo repository.UserRepository = memory.NewUserStore()
	if cfg.Stores.Users == config.BackendPostgres {
		userRepo = postgres.NewUserRepository(pool)
	}
	var sessionRepo repository.SessionRepository = memory.NewSessionStore(cfg.JWT.SessionTTL)
	if cfg.Stores.Sessions == config.BackendRedis {
		sessionRepo = redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		zapLogger.Warn("JWT_SECRET not set, using an ephemeral secret")
	}
	tokens, err := security.NewTokens(secret, cfg.JWT.Issuer)
	if err != nil {
		zapLogger.Fatal("token signer setup failed", zap.Error(err))
	}

	// Live feed
	hub := auditUC.NewHub(auditRepo, zapLogger,
		auditUC.WithFeedLimit(cfg.Audit.FeedLimit),
		auditUC.WithStallAfter(cfg.Audit.StallAfter),
	)
	manager.Go("audit_hub", hub.Run)
	mon.Add("audit_feed", func(ctx context.Context) error {
		if status := hub.Status(); status.Stalled {
			return errors.New("audit feed stalled: " + status.LastError)
		}
		return nil
	}, false)

	listeners := []auditUC.ChangeListener{hub}
	if redisClient != nil {
		notifier := redisRepo.NewFeedNotifier(redisClient, cfg.Audit.FeedChannel, zapLogger)
		listeners = append(listeners, auditUC.Publisher(notifier, zapLogger))
		manager.Go("audit_feed_listener", func(ctx context.Context) error {
			return notifier.Listen(ctx, func(eventID string) {
				hub.Changed(ctx, eventID)
			})
		})
	}

	// Requests carry their identity in the context. A process-wide identity
	// source would attribute anonymous work to whoever signed in last.
	auditLogger := auditUC.NewLogger(auditRepo, zapLogger,
		auditUC.WithWriteTimeout(cfg.Audit.WriteTimeout),
		auditUC.WithChangeListeners(listeners...),
	)
	manager.Register("audit_logger", auditLogger.Wait)

	authUseCase := authUC.New(userRepo, sessionRepo, tokens, auditLogger, zapLogger, cfg.JWT.SessionTTL)
	inventoryUseCase := inventoryUC.New(entities, entities, auditLogger, zapLogger)
	documentsUseCase := documentsUC.New(entities, entities, auditLogger, zapLogger)
	treasuryUseCase := treasuryUC.New(entities, auditLogger, zapLogger)

	dispatcher := usecase.NewDispatcher()
	reports.Register(dispatcher, inventoryUseCase, documentsUseCase, treasuryUseCase)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if _, err := authUseCase.EnsureUser(appCtx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name, domain.RoleAdmin); err != nil {
			zapLogger.Fatal("admin user setup failed", zap.Error(err))
		}
	}

	feedSync, err := services.NewFeedSync(hub, mon, zapLogger, services.FeedSyncConfig{
		Interval: cfg.Audit.ResyncInterval,
	})
	if err != nil {
		zapLogger.Fatal("feed sync setup failed", zap.Error(err))
	}

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})
	feedSync.Start()
	manager.Register("feed_sync", func(ctx context.Context) error {
		feedSync.Stop(ctx)
		return nil
	})
	hub.Changed(appCtx, "")

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Audit:     apiHandler.NewAuditHandler(auditLogger, hub, ctxAdapter, zapLogger),
		Inventory: apiHandler.NewInventoryHandler(inventoryUseCase, ctxAdapter, zapLogger),
		Documents: apiHandler.NewDocumentHandler(documentsUseCase, ctxAdapter, zapLogger),
		Treasury:  apiHandler.NewTreasuryHandler(treasuryUseCase, ctxAdapter, zapLogger),
		Reports:   apiHandler.NewReportHandler(dispatcher, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, hub, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if cfg.Feed.Enabled {
		gateway := feed.NewGateway(hub, authUseCase, zapLogger, feed.Options{
			AllowedOrigins: cfg.Feed.AllowedOrigins,
			WriteTimeout:   cfg.Feed.WriteTimeout,
			PingInterval:   cfg.Feed.PingInterval,
		})
		feedServer := &http.Server{
			Addr:              cfg.FeedAddress(),
			Handler:           gateway.Handler(),
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		}
		go func() {
			zapLogger.Info("feed gateway started", zap.String("address", cfg.FeedAddress()))
			if err := feedServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zapLogger.Fatal("feed gateway crashed", zap.Error(err))
			}
		}()
		manager.Register("feed_server", feedServer.Shutdown)
	}

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
