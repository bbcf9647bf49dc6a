package config

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/educenter-backend/models"
)

// DSN builds the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "mysql" {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

func (d DatabaseConfig) dialector() gorm.Dialector {
	if d.Driver == "mysql" {
		return mysql.Open(d.DSN())
	}
	return postgres.Open(d.DSN())
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
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

// GormConfig is shared by the server and the tests so duplicate keys
// surface as gorm.ErrDuplicatedKey everywhere.
func GormConfig(level string) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(level)),
		TranslateError: true,
	}
}

// InitDB opens the database, configures pooling and migrates the schema.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(cfg.dialector(), GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Printf("%s connected & migrated successfully", cfg.Driver)

	return db, nil
}
