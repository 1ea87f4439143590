package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vending-machine/internal/api"
	"vending-machine/internal/config"
	"vending-machine/internal/db"
	"vending-machine/internal/logger"
	"vending-machine/internal/metrics"
	"vending-machine/internal/service"
	"vending-machine/pkg"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger := logger.NewLogger(cfg.AppEnv)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(zapLogger)
	appLogger := pkg.NewZapLogger(zapLogger)

	journal, authDB, closeDB, err := setupStorage(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to set up storage", zap.String("driver", cfg.JournalDriver), zap.Error(err))
	}
	defer closeDB()

	machine, err := service.NewMachineService(service.MachineConfig{
		CoinValues:     cfg.CoinValues,
		BanknoteValues: cfg.BanknoteValues,
		InitialMoney:   cfg.InitialMoney,
		Products:       cfg.Products,
		CurrencySymbol: cfg.CurrencySymbol,
	}, journal, metrics.Default(), appLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create machine", zap.Error(err))
	}
	authService := service.NewAuthService(authDB, appLogger, cfg.JWTSecret)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinLogger(zapLogger))

	handlers := &api.Handlers{
		AuthService:    authService,
		MachineService: machine,
		Logger:         appLogger,
		CurrencySymbol: cfg.CurrencySymbol,
	}
	api.RegisterHandlers(router, handlers, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("journal", cfg.JournalDriver),
			zap.String("cash", cfg.InitialMoney.Total().String()+cfg.CurrencySymbol))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to run server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down server", zap.Error(err))
	}
}

// setupStorage picks the sales journal and operator store. The postgres
// driver migrates the schema and seeds the configured operator.
func setupStorage(cfg *config.Config) (db.SalesJournal, db.AuthDB, func(), error) {
	if cfg.JournalDriver != config.JournalPostgres {
		authDB, err := db.NewStaticAuthDB(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.NewMemorySalesJournal(), authDB, func() {}, nil
	}

	dbConn, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() { _ = dbConn.Close() }

	if err := seed(dbConn, cfg); err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	return db.NewSalesJournal(dbConn), db.NewAuthDB(dbConn), closeDB, nil
}

func seed(dbConn *sql.DB, cfg *config.Config) error {
	if err := db.Migrate(dbConn); err != nil {
		return err
	}
	hash, err := argon2id.CreateHash(cfg.AdminPassword, argon2id.DefaultParams)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.UpsertOperator(ctx, dbConn, cfg.AdminUsername, hash)
}
