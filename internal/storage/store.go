// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage persists tasks, workflows and projects as JSON blobs in an
// embedded SQLite database. Records are opaque to this layer, the services
// keep the authoritative copies in memory and write through on mutation.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	KeyspaceTasks     = "tasks"
	KeyspaceWorkflows = "workflows"
	KeyspaceProjects  = "projects"
)

// ErrNotFound is returned when a key has no record in its keyspace.
var ErrNotFound = errors.New("record not found")

// Record is one persisted entity, keyed by keyspace and entity id.
type Record struct {
	Keyspace  string    `gorm:"primaryKey;type:text"`
	Key       string    `gorm:"primaryKey;type:text"`
	Value     []byte    `gorm:"type:blob;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Stats summarizes the store contents.
type Stats struct {
	Path          string `json:"path"`
	TaskCount     int64  `json:"task_count"`
	WorkflowCount int64  `json:"workflow_count"`
	ProjectCount  int64  `json:"project_count"`
	SizeOnDisk    int64  `json:"size_on_disk_bytes"`
}

// Store is the durable key value store backing the queue.
type Store struct {
	db       *gorm.DB
	path     string
	inMemory bool
	logger   *slog.Logger
}

// InMemoryDSN opens a private in-memory database, used as the fallback when
// the on-disk path cannot be opened and by tests.
const InMemoryDSN = "file::memory:?cache=shared"

// Open opens the store at path, creating parent directories as needed.
// If the path cannot be opened the store falls back to an in-memory
// database so the service can still come up, with a warning.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "storage")

	db, err := open(path)
	if err != nil {
		log.Warn("falling back to in-memory storage", "path", path, "error", err)
		db, err = open(InMemoryDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open in-memory fallback: %w", err)
		}
		return &Store{db: db, path: InMemoryDSN, inMemory: true, logger: log}, nil
	}
	return &Store{db: db, path: path, logger: log}, nil
}

func open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." && !isDSN(path) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate records table: %w", err)
	}
	return db, nil
}

func isDSN(path string) bool {
	return len(path) > 5 && path[:5] == "file:"
}

// InMemory reports whether the store is running on the volatile fallback.
func (s *Store) InMemory() bool { return s.inMemory }

// Put writes one record.
func (s *Store) Put(keyspace, key string, value []byte) error {
	rec := Record{Keyspace: keyspace, Key: key, Value: value}
	err := s.db.Save(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", keyspace, key, err)
	}
	return nil
}

// Get reads one record, returning ErrNotFound for missing keys.
func (s *Store) Get(keyspace, key string) ([]byte, error) {
	var rec Record
	err := s.db.Where("keyspace = ? AND key = ?", keyspace, key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", keyspace, key, err)
	}
	return rec.Value, nil
}

// Delete removes one record. Deleting a missing key is not an error.
func (s *Store) Delete(keyspace, key string) error {
	err := s.db.Where("keyspace = ? AND key = ?", keyspace, key).Delete(&Record{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", keyspace, key, err)
	}
	return nil
}

// List returns all values in a keyspace.
func (s *Store) List(keyspace string) ([][]byte, error) {
	var recs []Record
	err := s.db.Where("keyspace = ?", keyspace).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", keyspace, err)
	}
	values := make([][]byte, 0, len(recs))
	for _, rec := range recs {
		values = append(values, rec.Value)
	}
	return values, nil
}

// Stats counts the records per keyspace and reports on-disk size.
func (s *Store) Stats() (Stats, error) {
	stats := Stats{Path: s.path}
	counts := map[string]*int64{
		KeyspaceTasks:     &stats.TaskCount,
		KeyspaceWorkflows: &stats.WorkflowCount,
		KeyspaceProjects:  &stats.ProjectCount,
	}
	for keyspace, dst := range counts {
		if err := s.db.Model(&Record{}).Where("keyspace = ?", keyspace).Count(dst).Error; err != nil {
			return stats, fmt.Errorf("failed to count %s: %w", keyspace, err)
		}
	}
	if !s.inMemory {
		if info, err := os.Stat(s.path); err == nil {
			stats.SizeOnDisk = info.Size()
		}
	}
	return stats, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
