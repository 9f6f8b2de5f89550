package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmstore-backend/catalog"
	"farmstore-backend/config"
	"farmstore-backend/database"
	"farmstore-backend/firebase"
	"farmstore-backend/logger"
	"farmstore-backend/middleware"
	"farmstore-backend/render"
	"farmstore-backend/routes"
	"farmstore-backend/session"
	"farmstore-backend/storage"
	"farmstore-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := config.ValidateEnv(log); err != nil {
		log.Fatal("environment validation failed", zap.Error(err))
	}

	dsn := cfg.DatabaseURL
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	db, err := database.Connect(cfg.DBDriver, dsn, cfg.Production())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	backend, err := newBackend(cfg, db, log)
	if err != nil {
		log.Fatal("failed to set up cart storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}
	renderer, err := render.NewRenderer(cat)
	if err != nil {
		log.Fatal("failed to load cart templates", zap.Error(err))
	}

	issuer, err := session.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatal("failed to set up sessions", zap.Error(err))
	}
	registry := session.NewRegistry(backend, renderer, session.Options{
		IdleTTL:  cfg.SessionIdleTTL,
		ToastTTL: cfg.ToastTTL,
		Logger:   log,
	})

	mailer := utils.NewMailer(cfg.SMTP, log)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		log.Warn("no CORS origins configured, defaulting to http://localhost:3000")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.SessionHeader, "X-Cart-Count", "X-Cart-Total"},
		AllowCredentials: true,
	}))

	stopRoutes := routes.SetupRoutes(r, routes.Deps{
		DB:           db,
		Catalog:      cat,
		Registry:     registry,
		Issuer:       issuer,
		Mailer:       mailer,
		Log:          log,
		FrontendURL:  config.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		ShopEmail:    cfg.ShopEmail,
		SecureCookie: cfg.Production(),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	stopRoutes()
	registry.Close()
	mailer.Wait()

	if err := database.Close(db); err != nil {
		log.Error("error closing database connection", zap.Error(err))
	} else {
		log.Info("database connection closed")
	}

	log.Info("server exited gracefully")
}

func newBackend(cfg config.Config, db *gorm.DB, log *zap.Logger) (storage.Backend, error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("cart storage is in memory; carts are lost on restart")
		return storage.NewMemoryBackend(), nil
	case "firebase":
		ctx := context.Background()
		app, err := firebase.Init(ctx, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), log)
		if err != nil {
			return nil, err
		}
		bucket, err := firebase.NewBucketBackend(ctx, app, cfg.FirebaseBucket)
		if err != nil {
			return nil, err
		}
		return bucket, nil
	default:
		return storage.NewDBBackend(db), nil
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
