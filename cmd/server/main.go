package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/service"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/config"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/infrastructure/external"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/infrastructure/persistence/repository"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/infrastructure/persistence/sqlite"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/infrastructure/storage"
	httpiface "github.com/MarcosDelSer/laya-backbone-sub008/internal/interfaces/http"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/report"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/rl24"
	"github.com/MarcosDelSer/laya-backbone-sub008/pkg/database"
	"github.com/MarcosDelSer/laya-backbone-sub008/pkg/utils"
)

func main() {
	// Local overrides for development; missing file is fine
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting RL-24 transmission service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)
	eligibilityRepo := repository.NewEligibilityRepository(db.DB, logger)
	transmissionRepo := repository.NewTransmissionRepository(db.DB, logger)
	slipRepo := repository.NewSlipRepository(db.DB, logger)

	fileStorage := storage.NewLocalFileStorage(cfg.Output.Dir, logger)

	settings := external.NewConfigSettingsProvider(cfg)
	validator := rl24.NewValidator(cfg.Validation.Strict, logger)
	serviceLogger := service.NewZapLogger(logger)

	batchService := service.NewBatchService(
		eligibilityRepo,
		transmissionRepo,
		slipRepo,
		txManager,
		fileStorage,
		settings,
		validator,
		serviceLogger,
	)
	transmissionService := service.NewTransmissionService(transmissionRepo, slipRepo, fileStorage, serviceLogger)
	eligibilityService := service.NewEligibilityService(eligibilityRepo, serviceLogger)
	validationService := service.NewValidationService(validator, serviceLogger)
	paperSummary := report.NewPaperSummary(logger)

	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		batchService,
		transmissionService,
		eligibilityService,
		validationService,
		paperSummary,
		serviceLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}
