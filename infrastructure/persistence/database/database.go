package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/config"
)

var db *gorm.DB

func InitDb(cfg *config.Config) error {
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	conn, err := gorm.Open(postgres.Open(cfg.GetPostgresConnectionString()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	sqlDb, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}

	sqlDb.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	sqlDb.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	sqlDb.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

	if err := conn.AutoMigrate(&model.User{}, &model.Message{}, &model.Chat{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db = conn
	return nil
}

func GetDb() *gorm.DB {
	return db
}

func CloseDb() {
	if db == nil {
		return
	}
	if sqlDb, err := db.DB(); err == nil {
		_ = sqlDb.Close()
	}
}
