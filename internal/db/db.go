package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mutecomm/go-sqlcipher/v4"
	_ "modernc.org/sqlite"
)

const (
	encryptedDriver = "sqlite3" // go-sqlcipher
	plainDriver     = "sqlite"  // modernc.org/sqlite
)

// DB wraps the SQLite connection pool
type DB struct {
	*sql.DB
}

// Open opens the SQLite job store. A non-empty password selects the
// SQLCipher driver and encrypts the file; an empty one opens a plain
// database with the pure-Go driver.
func Open(dbPath, password string) (*DB, error) {
	// Create parent directories if they don't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	driver, connStr := plainDriver, dbPath
	if password != "" {
		driver = encryptedDriver
		connStr = fmt.Sprintf("%s?_key=%s", dbPath, password)
	}

	sqlDB, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas are per connection, and a single connection also serialises
	// timer transactions inside this process.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	// Ping to verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
