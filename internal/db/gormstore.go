package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const snapshotRowID = 1

// snapshotRow is the single-row table holding the serialized document when
// the store is backed by a SQL database instead of a flat file.
type snapshotRow struct {
	ID        uint      `gorm:"primaryKey;column:snapshot_id"`
	Document  []byte    `gorm:"column:snapshot_document;type:longblob"`
	UpdatedAt time.Time `gorm:"column:snapshot_updated_at;autoUpdateTime"`
}

func (snapshotRow) TableName() string {
	return "store_snapshots"
}

// GormStore persists the document as a single row in a SQL database. The
// row update runs in a transaction, so readers of the table never observe a
// partial document.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an already opened gorm handle and runs migrations.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// OpenMySQLStore connects to MySQL and returns a snapshot store on it.
func OpenMySQLStore(user, password, host, port, dbname string) (*GormStore, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)
	handle, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to mysql: %w", err)
	}
	return NewGormStore(handle)
}

// OpenSQLiteStore opens (or creates) a SQLite database file and returns a
// snapshot store on it.
func OpenSQLiteStore(path string) (*GormStore, error) {
	handle, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return NewGormStore(handle)
}

// Load reads the snapshot row. A missing row yields a fresh document.
func (g *GormStore) Load() (*State, error) {
	var row snapshotRow
	result := g.db.First(&row, snapshotRowID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("load snapshot row: %w", result.Error)
	}

	state := &State{}
	if err := json.Unmarshal(row.Document, state); err != nil {
		return nil, fmt.Errorf("decode snapshot document: %w", err)
	}
	return state, nil
}

// Save serializes the document and upserts the snapshot row.
func (g *GormStore) Save(state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal store document: %w", err)
	}

	row := snapshotRow{ID: snapshotRowID, Document: data}
	return g.db.Transaction(func(tx *gorm.DB) error {
		var existing snapshotRow
		result := tx.First(&existing, snapshotRowID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return tx.Create(&row).Error
			}
			return result.Error
		}
		existing.Document = data
		return tx.Save(&existing).Error
	})
}
