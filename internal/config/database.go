package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	if cfg.Database.Driver == DriverSQLite {
		// a single connection keeps in-memory databases alive and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Create tables if they don't exist
	if err := CreateTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// CreateTables creates the registry tables. The DDL is kept to the subset
// understood by both PostgreSQL and SQLite.
func CreateTables(db *sqlx.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			full_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE,
			phone VARCHAR(20),
			user_type VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			id VARCHAR(36) PRIMARY KEY,
			city VARCHAR(50) NOT NULL,
			city_search VARCHAR(100) NOT NULL DEFAULT '',
			district VARCHAR(50) NOT NULL,
			neighborhood VARCHAR(50) NOT NULL,
			street VARCHAR(50) NOT NULL,
			site_name VARCHAR(100),
			building_number VARCHAR(10) NOT NULL,
			apartment_number VARCHAR(10) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS properties (
			id VARCHAR(36) PRIMARY KEY,
			address_id VARCHAR(36) REFERENCES addresses(id) ON DELETE SET NULL,
			description TEXT NOT NULL DEFAULT '',
			square_meters DECIMAL(10,2) NOT NULL,
			room_count INTEGER NOT NULL,
			heating_type VARCHAR(50) NOT NULL DEFAULT '',
			heating_search VARCHAR(100) NOT NULL DEFAULT '',
			current_owner_id VARCHAR(36) REFERENCES users(id) ON DELETE SET NULL,
			address_code VARCHAR(20) UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS property_owners (
			id VARCHAR(36) PRIMARY KEY,
			property_id VARCHAR(36) NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			owner_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			ownership_start_date DATE NOT NULL,
			ownership_end_date DATE,
			UNIQUE (property_id, owner_id, ownership_start_date)
		)`,
		`CREATE TABLE IF NOT EXISTS property_transactions (
			id VARCHAR(36) PRIMARY KEY,
			property_id VARCHAR(36) NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			transaction_type VARCHAR(20) NOT NULL,
			price DECIMAL(15,2) NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS property_sales (
			property_id VARCHAR(36) PRIMARY KEY REFERENCES properties(id) ON DELETE CASCADE,
			buyer_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			sale_price DECIMAL(15,2) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS property_rentals (
			id VARCHAR(36) PRIMARY KEY,
			property_id VARCHAR(36) NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			tenant_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rent_price DECIMAL(10,2) NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (property_id, tenant_id, start_date)
		)`,
	}

	for _, ddl := range tables {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_properties_current_owner ON properties(current_owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_property_owners_owner ON property_owners(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_property_rentals_tenant ON property_rentals(tenant_id)",
		"CREATE INDEX IF NOT EXISTS idx_property_sales_buyer ON property_sales(buyer_id)",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			logrus.Warnf("Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
