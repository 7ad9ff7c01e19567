// Package repository provides data access implementations
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the persistence collaborator: named JSON arrays that are read and
// replaced wholesale. Get returns nil for a collection that was never written.
type Store interface {
	Get(ctx context.Context, name string) (json.RawMessage, error)
	Set(ctx context.Context, name string, data json.RawMessage) error
	// SetMany replaces several collections as one atomic write
	SetMany(ctx context.Context, batch map[string]json.RawMessage) error
	Close() error
}

// Supported SQL drivers
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// SQLStore implements Store on top of a SQL database
type SQLStore struct {
	db     *sql.DB
	driver string
	DBPath string
}

// NewSQLiteStore opens the per-device SQLite store used by the offline backend
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	if dbPath == "" {
		// Set default path if not specified
		dbPath = filepath.Join("data", "plantcare.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return NewSQLStore(DriverSQLite, dbPath)
}

// NewSQLStore opens a store for the given driver and DSN and runs its migrations
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	log.Printf("Opening %s database", driver)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// one writer at a time keeps SQLite transactions from failing with SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, driver: driver}
	if driver == DriverSQLite {
		s.DBPath = dsn
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the stored JSON array for a collection
func (s *SQLStore) Get(ctx context.Context, name string) (json.RawMessage, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM collections WHERE name = ?", name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	return json.RawMessage(data), nil
}

// Set replaces a single collection
func (s *SQLStore) Set(ctx context.Context, name string, data json.RawMessage) error {
	return s.SetMany(ctx, map[string]json.RawMessage{name: data})
}

// SetMany replaces every collection in batch inside one transaction
func (s *SQLStore) SetMany(ctx context.Context, batch map[string]json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.upsertSQL())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for name, data := range batch {
		if _, err := stmt.ExecContext(ctx, name, string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write collection %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) upsertSQL() string {
	if s.driver == DriverMySQL {
		return `
		INSERT INTO collections(name, data) VALUES(?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data)`
	}
	return `
		INSERT INTO collections(name, data, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
		data = excluded.data,
		updated_at = excluded.updated_at`
}

// Migration is a named schema change applied once
type Migration struct {
	Name string
	SQL  string
}

func (s *SQLStore) migrations() []Migration {
	if s.driver == DriverMySQL {
		return []Migration{
			{
				Name: "001_create_collections_table",
				SQL: `
				CREATE TABLE IF NOT EXISTS collections (
					name VARCHAR(64) PRIMARY KEY,
					data LONGTEXT NOT NULL,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
				)`,
			},
		}
	}
	return []Migration{
		{
			Name: "001_create_collections_table",
			SQL: `
			CREATE TABLE IF NOT EXISTS collections (
				name TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	}
}

func (s *SQLStore) migrate() error {
	createSQL := `
	CREATE TABLE IF NOT EXISTS migrations (
		name VARCHAR(255) NOT NULL PRIMARY KEY,
		executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range s.migrations() {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.Name).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		log.Printf("Running migration: %s", m.Name)
		if _, err := s.db.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.Name, err)
		}
		if _, err := s.db.Exec("INSERT INTO migrations (name) VALUES (?)", m.Name); err != nil {
			return err
		}
	}
	return nil
}
