package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadtrail/internal/api"
	"leadtrail/internal/audit"
	"leadtrail/internal/config"
	"leadtrail/internal/metrics"
	"leadtrail/internal/middleware"
	"leadtrail/internal/model"
	"leadtrail/internal/repository"
	"leadtrail/internal/service"
	"leadtrail/pkg/logger"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.Server.Environment)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("application startup failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := initRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	db, err := initDB(cfg.MySQL)
	if err != nil {
		return err
	}

	registry := audit.NewDefaultRegistry(db, metrics.NewPrometheusObserver())
	users := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(users, rdb, cfg.Auth.SigningKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	// Retention needs etcd only when it is switched on.
	if cfg.Retention.ActivityLogDays > 0 {
		etcdCli, err := initEtcd(cfg.Etcd)
		if err != nil {
			return err
		}
		defer etcdCli.Close()

		worker := service.NewRetentionWorker(etcdCli, repository.NewActivityRetention(db), service.RetentionConfig{
			Days:      cfg.Retention.ActivityLogDays,
			Interval:  cfg.Retention.Interval,
			BatchSize: cfg.Retention.BatchSize,
		})
		go func() {
			logger.Info("starting retention worker")
			worker.Run(ctx)
		}()
	}

	limiter := middleware.NewLimiter(rdb, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Sweep(ctx, 10*time.Minute)

	handlers := buildHandlers(db, registry, authSvc)
	handlers.Health = api.NewHealthHandler(map[string]api.Pinger{
		"mysql": func(ctx context.Context) error { return repository.PingContext(ctx, db) },
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	r := api.RegisterRoutes(handlers, api.RouterOptions{
		Tokens:       authSvc,
		DevPass:      cfg.Auth.DevPass && cfg.Server.Environment != "prod",
		WriteLimiter: limiter.Middleware(),
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

func buildHandlers(db *gorm.DB, registry *audit.Registry, authSvc *service.AuthService) api.Handlers {
	leads := service.NewLeadService(entityService[model.Lead](db, registry, "name", "contact_person", "email", "mobile"))
	briefs := service.NewBriefService(entityService[model.Brief](db, registry, "name"))
	planners := service.NewPlannerService(entityService[model.Planner](db, registry, "notes"))
	users := service.NewUserService(entityService[model.User](db, registry, "name", "email"))

	return api.Handlers{
		Auth: api.NewAuthHandler(authSvc),
		Resources: []api.Resource{
			{Path: "leads", Type: "Lead", Handler: api.NewLeadHandler(leads)},
			{Path: "briefs", Type: "Brief", Handler: api.NewBriefHandler(briefs)},
			{Path: "planners", Type: "Planner", Handler: api.NewPlannerHandler(planners)},
			{Path: "users", Type: "User", Handler: api.NewUserHandler(users)},
			catalog[model.Agency](db, registry, "agencies", "Agency", "name"),
			catalog[model.Brand](db, registry, "brands", "Brand", "name"),
			catalog[model.Role](db, registry, "roles", "Role", "name", "display_name"),
			catalog[model.Permission](db, registry, "permissions", "Permission", "name", "display_name"),
			catalog[model.Department](db, registry, "departments", "Department", "name"),
			catalog[model.Designation](db, registry, "designations", "Designation", "name"),
			catalog[model.MissCampaign](db, registry, "miss-campaigns", "MissCampaign", "name"),
			catalog[model.Industry](db, registry, "industries", "Industry", "name"),
			catalog[model.LeadSubSource](db, registry, "lead-sub-sources", "LeadSubSource", "name"),
			catalog[model.Meeting](db, registry, "meetings", "Meeting", "title", "location"),
			catalog[model.Team](db, registry, "teams", "Team", "name"),
		},
		LeadHistory:    api.NewHistoryHandler[model.LeadAssignHistory](repository.NewLeadHistoryRepository(db)),
		BriefHistory:   api.NewHistoryHandler[model.BriefAssignHistory](repository.NewBriefHistoryRepository(db)),
		PlannerHistory: api.NewHistoryHandler[model.PlannerHistory](repository.NewPlannerHistoryRepository(db)),
		Activity:       api.NewHistoryHandler[model.ActivityLog](repository.NewActivityLogRepository(db)),
	}
}

func entityService[T any, P model.Entity[T]](db *gorm.DB, registry *audit.Registry, search ...string) *service.EntityService[T, P] {
	return service.NewEntityService[T, P](db, repository.NewEntityRepository[T, P](db, search...), registry)
}

func catalog[T any, P model.Entity[T]](db *gorm.DB, registry *audit.Registry, path, entityType string, search ...string) api.Resource {
	return api.Resource{
		Path:    path,
		Type:    entityType,
		Handler: api.NewEntityHandler[T, P](entityService[T, P](db, registry, search...)),
	}
}

func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func initEtcd(cfg config.EtcdConfig) (*clientv3.Client, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	return client, nil
}

func initDB(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.NewGormLogger(cfg.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.AutoMigrate(model.Migrations()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}
