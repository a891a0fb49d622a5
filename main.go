package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pamoja-connect/Chama-manager/internal/config"
	"github.com/pamoja-connect/Chama-manager/internal/database"
	"github.com/pamoja-connect/Chama-manager/internal/router"

	"go.uber.org/zap"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(filepath.Dir(cfg.Log.ActivityFile)); err != nil {
		log.Fatalf("create log dir: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	// setup router
	r := router.SetupRouter(cfg, db, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("run server", zap.Error(err))
	}
}

func newLogger(level, mode string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if mode == "debug" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = lvl
	}
	return zcfg.Build()
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
