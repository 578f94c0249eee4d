package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rongwang/estate-registry/internal/models"
)

const saleSelect = `SELECT s.property_id, s.buyer_id, s.sale_price, s.created_at,
		u.full_name AS buyer_name, p.address_code
	FROM property_sales s
	JOIN users u ON u.id = s.buyer_id
	JOIN properties p ON p.id = s.property_id`

const rentalSelect = `SELECT r.id, r.property_id, r.tenant_id, r.rent_price, r.start_date, r.end_date, r.created_at,
		u.full_name AS tenant_name, p.address_code
	FROM property_rentals r
	JOIN users u ON u.id = r.tenant_id
	JOIN properties p ON p.id = r.property_id`

const transactionSelect = `SELECT t.id, t.property_id, t.user_id, t.transaction_type, t.price,
		t.start_date, t.end_date, t.created_at, u.full_name AS user_name, p.address_code
	FROM property_transactions t
	JOIN users u ON u.id = t.user_id
	JOIN properties p ON p.id = t.property_id`

// Sale repository methods
func (r *SQLRepository) CreateSale(ctx context.Context, sale *models.Sale) error {
	query := `INSERT INTO property_sales (property_id, buyer_id, sale_price, created_at) VALUES (?, ?, ?, ?)`

	sale.CreatedAt = nowUTC()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		sale.PropertyID, sale.BuyerID, sale.SalePrice, sale.CreatedAt)

	return classify(err)
}

func (r *SQLRepository) GetSaleByProperty(ctx context.Context, propertyID string) (*models.Sale, error) {
	query := saleSelect + ` WHERE s.property_id = ?`

	var sale models.Sale
	err := r.db.GetContext(ctx, &sale, r.db.Rebind(query), propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No sale recorded
		}
		return nil, err
	}

	return &sale, nil
}

func (r *SQLRepository) GetSalesByProperties(ctx context.Context, propertyIDs []string) ([]models.Sale, error) {
	sales := []models.Sale{}
	if len(propertyIDs) == 0 {
		return sales, nil
	}

	if err := r.selectIn(ctx, &sales, saleSelect+` WHERE s.property_id IN (?)`, propertyIDs); err != nil {
		return nil, err
	}

	return sales, nil
}

func (r *SQLRepository) ListSales(ctx context.Context) ([]models.Sale, error) {
	sales := []models.Sale{}
	if err := r.db.SelectContext(ctx, &sales, saleSelect+` ORDER BY s.created_at, s.property_id`); err != nil {
		return nil, err
	}

	return sales, nil
}

// Rental repository methods
func (r *SQLRepository) CreateRental(ctx context.Context, rental *models.Rental) error {
	query := `
		INSERT INTO property_rentals (id, property_id, tenant_id, rent_price, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if rental.ID == "" {
		rental.ID = uuid.New().String()
	}
	rental.CreatedAt = nowUTC()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		rental.ID, rental.PropertyID, rental.TenantID, rental.RentPrice,
		rental.StartDate, rental.EndDate, rental.CreatedAt)

	return classify(err)
}

func (r *SQLRepository) GetRentalsByProperty(ctx context.Context, propertyID string) ([]models.Rental, error) {
	return r.listRentals(ctx, rentalSelect+` WHERE r.property_id = ? ORDER BY r.start_date, r.id`, propertyID)
}

func (r *SQLRepository) GetRentalsByTenant(ctx context.Context, tenantID string) ([]models.Rental, error) {
	return r.listRentals(ctx, rentalSelect+` WHERE r.tenant_id = ? ORDER BY r.start_date, r.id`, tenantID)
}

func (r *SQLRepository) ListRentals(ctx context.Context) ([]models.Rental, error) {
	return r.listRentals(ctx, rentalSelect+` ORDER BY r.start_date, r.id`)
}

func (r *SQLRepository) listRentals(ctx context.Context, query string, args ...interface{}) ([]models.Rental, error) {
	rentals := []models.Rental{}
	if err := r.db.SelectContext(ctx, &rentals, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return rentals, nil
}

// Generic transaction log methods
func (r *SQLRepository) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO property_transactions (id, property_id, user_id, transaction_type, price, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	transaction.CreatedAt = nowUTC()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		transaction.ID, transaction.PropertyID, transaction.UserID, transaction.TransactionType,
		transaction.Price, transaction.StartDate, transaction.EndDate, transaction.CreatedAt)

	return classify(err)
}

func (r *SQLRepository) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	query := transactionSelect + ` ORDER BY t.start_date, t.id`
	if err := r.db.SelectContext(ctx, &transactions, query); err != nil {
		return nil, err
	}

	return transactions, nil
}

// GetStats computes the registry-wide counts and means in a single round trip.
// AVG over an empty table is NULL, which scans into an invalid NullDecimal.
func (r *SQLRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM properties) AS total_properties,
			(SELECT COUNT(*) FROM property_sales) AS total_sales,
			(SELECT COUNT(*) FROM property_rentals) AS total_rentals,
			(SELECT AVG(sale_price) FROM property_sales) AS avg_sale_price,
			(SELECT AVG(rent_price) FROM property_rentals) AS avg_rent_price
	`

	var stats models.Stats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}

	return &stats, nil
}
