// Package storage persists completed draws so they can be audited later.
package storage

import (
	"context"
	"errors"
	"fmt"

	"floorlottery/internal/errorx"
	"floorlottery/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DrawStore is the ledger of completed draws.
type DrawStore interface {
	Save(ctx context.Context, record *models.DrawRecord) error
	Get(ctx context.Context, id string) (*models.DrawRecord, error)
	List(ctx context.Context, limit int) ([]models.DrawRecord, error)
}

type drawStore struct {
	db *gorm.DB
}

// Open opens (and migrates) the sqlite ledger at path.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open draw ledger %s: %w", path, err)
	}
	if err := db.AutoMigrate(&models.DrawRecord{}); err != nil {
		return nil, fmt.Errorf("migrate draw ledger: %w", err)
	}
	return db, nil
}

// NewDrawStore creates a DrawStore backed by db.
func NewDrawStore(db *gorm.DB) DrawStore {
	return &drawStore{db: db}
}

func (s *drawStore) Save(ctx context.Context, record *models.DrawRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *drawStore) Get(ctx context.Context, id string) (*models.DrawRecord, error) {
	var record models.DrawRecord
	err := s.db.WithContext(ctx).Take(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.NotFound("抽奖记录 %s 不存在", id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *drawStore) List(ctx context.Context, limit int) ([]models.DrawRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []models.DrawRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
