// Package store is the relational persistence layer: pages, page versions,
// tickets, and runtime settings in Postgres, with pgvector columns for
// embeddings.
package store

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/pkg/models"
)

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and configures the connection pool
func Open(cfg config.DatabaseConfig, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Store{db: db}, nil
}

// Migrate creates the pgvector extension and the application tables
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	if err := s.db.WithContext(ctx).AutoMigrate(
		&models.Page{},
		&models.PageVersion{},
		&models.Ticket{},
		&Setting{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
