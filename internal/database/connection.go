package database

import (
	"database/sql"
	"fmt"
	"time"

	"reviewpilot-core/internal/config"
	"reviewpilot-core/internal/database/ddl"

	"github.com/cenkalti/backoff/v4"
	"github.com/russross/meddler"
	"github.com/sirupsen/logrus"

	// PostgreSQL driver
	_ "github.com/lib/pq"
	// Sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps the database connection and provides methods for database operations
type DB struct {
	conn   *sql.DB
	driver string
}

// NewConnection opens the database, waits for it to accept connections and migrates it
func NewConnection(cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// every connection to an in-memory sqlite database is a separate database
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(cfg.MaxConns)
		conn.SetMaxIdleConns(cfg.MinConns)
		conn.SetConnMaxLifetime(time.Hour)
	}

	if err := pingDatabase(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	setupMeddler(cfg.Driver)

	if err := ddl.Migrate(cfg.Driver, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &DB{conn: conn, driver: cfg.Driver}, nil
}

// NewTest creates an in-memory sqlite database for tests
func NewTest() (*DB, error) {
	return NewConnection(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    ":memory:",
	})
}

// pingDatabase retries with exponential backoff so the service can start
// before the database container is ready
func pingDatabase(conn *sql.DB) error {
	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = 30 * time.Second

	return backoff.RetryNotify(conn.Ping, strategy, func(err error, next time.Duration) {
		logrus.Infof("database ping failed, retry in %s: %v", next, err)
	})
}

// helper function to setup the meddler default driver
// based on the selected driver name.
func setupMeddler(driver string) {
	switch driver {
	case "sqlite":
		meddler.Default = meddler.SQLite
	case "postgres":
		meddler.Default = meddler.PostgreSQL
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetConnection returns the underlying database connection
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}

// Driver returns the driver name used to pick dialect specific queries
func (db *DB) Driver() string {
	return db.driver
}

// Ping tests the database connection
func (db *DB) Ping() error {
	return db.conn.Ping()
}
