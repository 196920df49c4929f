package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"forumvote/internal/models"
)

// Open 连接 Postgres 并执行迁移
func Open(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Msg("database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info().Msg("database migration completed")
	return conn, nil
}

// Migrate 建表
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Revision{},
		&models.Tag{},
		&models.Vote{},
		&models.ModeratorAction{},
		&models.KarmaChange{},
		&models.SearchDocument{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
