package database

import (
	"context"
	"errors"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheRecord is the persistent form of a cache entry.
type CacheRecord struct {
	Key        string    `gorm:"primaryKey;size:256"`
	Payload    []byte    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"index;not null"`
	TTLSeconds int64     `gorm:"not null"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (CacheRecord) TableName() string { return "method_cache_entries" }

// Store is the SQL-backed cache store.
type Store struct {
	db *DB
}

// NewStore opens the configured database and migrates the cache table.
func NewStore(config models.DatabaseConfig) (*Store, error) {
	db, err := New(config)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&CacheRecord{}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Get returns the stored entry, expired or not.
func (s *Store) Get(ctx context.Context, key string) (models.CacheEntry, bool, error) {
	var record CacheRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CacheEntry{}, false, nil
	}
	if err != nil {
		return models.CacheEntry{}, false, err
	}

	return models.CacheEntry{
		Key:        record.Key,
		Payload:    record.Payload,
		CreatedAt:  record.CreatedAt,
		TTLSeconds: record.TTLSeconds,
	}, true, nil
}

// Set upserts the entry.
func (s *Store) Set(ctx context.Context, entry models.CacheEntry) error {
	record := CacheRecord{
		Key:        entry.Key,
		Payload:    entry.Payload,
		CreatedAt:  entry.CreatedAt,
		TTLSeconds: entry.TTLSeconds,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&record).Error
}

// Delete removes a key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&CacheRecord{}, "key = ?", key).Error
}

// DeleteOlderThan removes entries created before the cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	result := s.db.WithContext(ctx).Delete(&CacheRecord{}, "created_at < ?", cutoff)
	return result.RowsAffected, result.Error
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
