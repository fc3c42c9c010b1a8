// Package database keeps durable per-browser key/value storage in sqlite. A
// browser is identified by a partition id; every partition has its own keys.
package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const (
	partitionsTable = "partitions"
	itemsTable      = "storage_items"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create partitions table (one row per browser)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS partitions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create partitions table: %w", err)
	}

	// Create items table (string values keyed per partition)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS storage_items (
		partition_id TEXT NOT NULL,
		item_key TEXT NOT NULL,
		item_value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (partition_id, item_key),
		FOREIGN KEY (partition_id) REFERENCES partitions(id) ON DELETE CASCADE
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create storage_items table: %w", err)
	}

	logrus.WithField("path", path).Info("database initialized")
	return db, nil
}

// StorageService handles database operations for browser storage.
type StorageService struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

func NewStorageService(db *sql.DB) *StorageService {
	return &StorageService{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// GetItem returns the value stored under key in partition.
func (s *StorageService) GetItem(partition, key string) (string, bool, error) {
	query, args, err := s.sb.Select("item_value").
		From(itemsTable).
		Where(squirrel.Eq{"partition_id": partition, "item_key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("failed to build query: %w", err)
	}

	var value string
	err = s.db.QueryRow(query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query item: %w", err)
	}
	return value, true, nil
}

// SetItem saves or updates key in partition, creating the partition on first
// write.
func (s *StorageService) SetItem(partition, key, value string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.sb.Insert(partitionsTable).
		Options("OR IGNORE").
		Columns("id").
		Values(partition).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert partition: %w", err)
	}

	query, args, err = s.sb.Insert(itemsTable).
		Columns("partition_id", "item_key", "item_value", "updated_at").
		Values(partition, key, value, squirrel.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT(partition_id, item_key) DO UPDATE SET item_value = excluded.item_value, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveItem deletes key from partition. Removing a missing key is not an
// error.
func (s *StorageService) RemoveItem(partition, key string) error {
	query, args, err := s.sb.Delete(itemsTable).
		Where(squirrel.Eq{"partition_id": partition, "item_key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Partition returns the storage of a single browser.
func (s *StorageService) Partition(id string) *PartitionStorage {
	return &PartitionStorage{svc: s, id: id}
}

// PartitionStorage is the key/value view of one partition.
type PartitionStorage struct {
	svc *StorageService
	id  string
}

func (p *PartitionStorage) ID() string {
	return p.id
}

func (p *PartitionStorage) GetItem(key string) (string, bool, error) {
	return p.svc.GetItem(p.id, key)
}

func (p *PartitionStorage) SetItem(key, value string) error {
	return p.svc.SetItem(p.id, key, value)
}

func (p *PartitionStorage) RemoveItem(key string) error {
	return p.svc.RemoveItem(p.id, key)
}
