package main

import (
	"context"
	"flag"
	"log"

	"essay-hub/internal/config"
	"essay-hub/internal/database"
	"essay-hub/internal/logger"

	_ "github.com/godror/godror"
	_ "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "database/migrations", "directory holding *.up.sql files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	applied, err := database.RunMigrations(context.Background(), db, *dir)
	if err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err), zap.String("dir", *dir))
	}
	l.Info("Migrations complete", zap.Strings("applied", applied))
}
