package lib

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/theleywin/Backend-Meme-Nest/src/config"
)

// ConnectDB opens the relational store selected by cfg.DBDriver.
func ConnectDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.DBLogLevel)),
	}

	switch cfg.DBDriver {
	case "postgres":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				config.GetEnv("DB_HOST", "localhost"),
				config.GetEnv("DB_PORT", "5432"),
				config.GetEnv("DB_USER", "postgres"),
				config.GetEnv("DB_PASSWORD", ""),
				config.GetEnv("DB_NAME", "memenest"),
				config.GetEnv("DB_SSLMODE", "disable"),
			)
		}
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Println("Connected to PostgreSQL!")
		return db, nil

	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(cfg.DBPath)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		// SQLite admite un solo escritor; una conexión evita "database is locked"
		sqlDB.SetMaxOpenConns(1)
		log.Printf("Connected to SQLite using %s", cfg.DBPath)
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// SQLiteDSN makes sure foreign keys are enforced, otherwise cascades silently do nothing.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") || strings.Contains(path, "_fk=") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
