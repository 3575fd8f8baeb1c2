package database

import (
	"fmt"
	"time"

	"essay-hub/internal/config"
	"essay-hub/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	DriverGoOra  = "oracle"
	DriverGodror = "godror"

	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// DriverName maps the configured driver onto a registered database/sql name.
// Anything other than godror uses the pure-Go go-ora driver.
func DriverName(cfg config.DBConfig) string {
	if cfg.Driver == DriverGodror {
		return DriverGodror
	}
	return DriverGoOra
}

// NewSQLXOracleDB opens and pings an Oracle connection pool. Both drivers use
// :N positional binds. The binary must import the driver packages.
func NewSQLXOracleDB(cfg config.DBConfig, dsn string) (*sqlx.DB, error) {
	driver := DriverName(cfg)
	sqlx.BindDriver(driver, sqlx.NAMED)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Oracle database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	logger.Get().Info("Connected to Oracle database",
		zap.String("driver", driver),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port))
	return db, nil
}
