package main

import (
	"log"

	"github.com/benbeisheim/ochello-backend/internal/config"
	"github.com/benbeisheim/ochello-backend/internal/controller"
	"github.com/benbeisheim/ochello-backend/internal/middleware"
	"github.com/benbeisheim/ochello-backend/internal/rules"
	"github.com/benbeisheim/ochello-backend/internal/service"
	"github.com/benbeisheim/ochello-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	app := fiber.New(fiber.Config{
		AppName:               "ochello",
		Immutable:             true,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(logger))

	var assets rules.AssetResolver
	if cfg.AssetBase != "" {
		assets = rules.ImageAssets(cfg.AssetBase)
	}

	var archive *storage.Archive
	if cfg.ArchiveDir != "" {
		dir := cfg.ArchiveDir
		if dir == config.ArchiveInMemory {
			dir = ""
		}
		archive, err = storage.Open(dir)
		if err != nil {
			logger.Fatal("failed to open archive", zap.String("dir", cfg.ArchiveDir), zap.Error(err))
		}
		defer archive.Close()
	}

	// Initialize services
	gameManager := service.NewGameManager(service.ManagerConfig{
		EnPassant:           cfg.EnPassant,
		Assets:              assets,
		MatchmakingInterval: cfg.MatchmakingInterval,
		Archive:             archive,
	}, logger)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager)

	// Initialize controllers
	gameController := controller.NewGameController(gameService, logger)
	wsController := controller.NewWebSocketController(gameService, logger)
	controller.RegisterRoutes(app, gameController, wsController, cfg.AllowedOrigins, logger)

	logger.Info("listening",
		zap.String("addr", cfg.Addr),
		zap.String("enPassant", string(cfg.EnPassant)),
		zap.Bool("archive", archive != nil),
	)
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
