package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rongwang/estate-registry/internal/models"
)

var (
	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference is returned when an insert points at a missing parent row
	ErrReference = errors.New("referenced record does not exist")
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// Property operations
	CreatePropertyWithAddress(ctx context.Context, property *models.Property, address *models.Address) error
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	GetPropertyByAddressCode(ctx context.Context, code string) (*models.Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []string) ([]models.Property, error)
	FilterProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error)
	ListPropertiesByCurrentOwner(ctx context.Context, userID string) ([]models.Property, error)
	ListPropertiesByTenant(ctx context.Context, userID string) ([]models.Property, error)
	ListPropertiesByBuyer(ctx context.Context, userID string) ([]models.Property, error)

	// Ownership operations
	CreateOwnership(ctx context.Context, ownership *models.Ownership) error
	GetOwnershipsByProperty(ctx context.Context, propertyID string) ([]models.Ownership, error)
	GetOwnershipsByProperties(ctx context.Context, propertyIDs []string) ([]models.Ownership, error)
	GetOwnershipsByOwner(ctx context.Context, ownerID string) ([]models.Ownership, error)
	TransferOwnership(ctx context.Context, propertyID, newOwnerID string, date time.Time) (*models.Ownership, error)

	// Sale operations
	CreateSale(ctx context.Context, sale *models.Sale) error
	GetSaleByProperty(ctx context.Context, propertyID string) (*models.Sale, error)
	GetSalesByProperties(ctx context.Context, propertyIDs []string) ([]models.Sale, error)
	ListSales(ctx context.Context) ([]models.Sale, error)

	// Rental operations
	CreateRental(ctx context.Context, rental *models.Rental) error
	GetRentalsByProperty(ctx context.Context, propertyID string) ([]models.Rental, error)
	GetRentalsByTenant(ctx context.Context, tenantID string) ([]models.Rental, error)
	ListRentals(ctx context.Context) ([]models.Rental, error)

	// Generic transaction log
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	// Aggregates
	GetStats(ctx context.Context) (*models.Stats, error)
}

// SQLRepository implements the Repository interface on top of sqlx.
// Queries are written with '?' placeholders and rebound for the connected driver,
// so the same code serves PostgreSQL and SQLite.
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates a new repository over an open connection
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *SQLRepository) GetDB() *sqlx.DB {
	return r.db
}

// selectIn runs a query containing a single "IN (?)" clause over ids
func (r *SQLRepository) selectIn(ctx context.Context, dest interface{}, query string, ids []string) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...)
}

// classify maps driver constraint errors onto the repository sentinels
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s", ErrReference, pqErr.Constraint)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", ErrDuplicate, liteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", ErrReference, liteErr.Error())
		}
	}

	return err
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
