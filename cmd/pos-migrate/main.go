// Command pos-migrate applies the point-of-sale schema. Safe to run
// repeatedly; every statement is idempotent.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/skniyajali/PoposRoom-sub013/internal/config"
	"github.com/skniyajali/PoposRoom-sub013/internal/db"
)

func main() {
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("schema applied", zap.String("env", cfg.AppEnv))
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
