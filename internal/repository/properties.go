package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rongwang/estate-registry/internal/models"
)

const propertyColumns = `p.id, p.address_id, p.description, p.square_meters, p.room_count,
	p.heating_type, p.current_owner_id, p.address_code, p.created_at`

// CreatePropertyWithAddress inserts the address and the property referencing it
// in one transaction. The address is rolled back if the property insert fails.
func (r *SQLRepository) CreatePropertyWithAddress(
	ctx context.Context,
	property *models.Property,
	address *models.Address,
) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO addresses (id, city, city_search, district, neighborhood, street, site_name,
			building_number, apartment_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		address.ID, address.City, foldSearch(address.City), address.District, address.Neighborhood, address.Street,
		address.SiteName, address.BuildingNumber, address.ApartmentNumber)
	if err != nil {
		return classify(err)
	}

	if property.ID == "" {
		property.ID = uuid.New().String()
	}
	property.AddressID = &address.ID
	property.CreatedAt = nowUTC()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO properties (id, address_id, description, square_meters, room_count,
			heating_type, heating_search, current_owner_id, address_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		property.ID, property.AddressID, property.Description, property.SquareMeters, property.RoomCount,
		property.HeatingType, foldSearch(property.HeatingType), property.CurrentOwnerID, property.AddressCode, property.CreatedAt)
	if err != nil {
		return classify(err)
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	property.Address = address
	return nil
}

func (r *SQLRepository) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	return r.getProperty(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id = ?`, id)
}

func (r *SQLRepository) GetPropertyByAddressCode(ctx context.Context, code string) (*models.Property, error) {
	return r.getProperty(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.address_code = ?`, code)
}

func (r *SQLRepository) getProperty(ctx context.Context, query string, arg interface{}) (*models.Property, error) {
	var property models.Property
	err := r.db.GetContext(ctx, &property, r.db.Rebind(query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Property not found
		}
		return nil, err
	}

	properties := []models.Property{property}
	if err := r.attachAddresses(ctx, properties); err != nil {
		return nil, err
	}

	return &properties[0], nil
}

func (r *SQLRepository) GetPropertiesByIDs(ctx context.Context, ids []string) ([]models.Property, error) {
	properties := []models.Property{}
	if len(ids) == 0 {
		return properties, nil
	}

	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id IN (?) ORDER BY p.created_at, p.id`
	if err := r.selectIn(ctx, &properties, query, ids); err != nil {
		return nil, err
	}

	return properties, r.attachAddresses(ctx, properties)
}

func (r *SQLRepository) ListPropertiesByCurrentOwner(ctx context.Context, userID string) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p
		WHERE p.current_owner_id = ?
		ORDER BY p.created_at, p.id`
	return r.listProperties(ctx, query, userID)
}

func (r *SQLRepository) ListPropertiesByTenant(ctx context.Context, userID string) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p
		WHERE p.id IN (SELECT property_id FROM property_rentals WHERE tenant_id = ?)
		ORDER BY p.created_at, p.id`
	return r.listProperties(ctx, query, userID)
}

func (r *SQLRepository) ListPropertiesByBuyer(ctx context.Context, userID string) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p
		WHERE p.id IN (SELECT property_id FROM property_sales WHERE buyer_id = ?)
		ORDER BY p.created_at, p.id`
	return r.listProperties(ctx, query, userID)
}

func (r *SQLRepository) listProperties(ctx context.Context, query string, args ...interface{}) ([]models.Property, error) {
	properties := []models.Property{}
	if err := r.db.SelectContext(ctx, &properties, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return properties, r.attachAddresses(ctx, properties)
}

// attachAddresses loads the addresses of the given properties in one query
func (r *SQLRepository) attachAddresses(ctx context.Context, properties []models.Property) error {
	var ids []string
	for _, p := range properties {
		if p.AddressID != nil {
			ids = append(ids, *p.AddressID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var addresses []models.Address
	query := `SELECT id, city, district, neighborhood, street, site_name, building_number, apartment_number
		FROM addresses WHERE id IN (?)`
	if err := r.selectIn(ctx, &addresses, query, ids); err != nil {
		return err
	}

	byID := make(map[string]*models.Address, len(addresses))
	for i := range addresses {
		byID[addresses[i].ID] = &addresses[i]
	}
	for i := range properties {
		if properties[i].AddressID != nil {
			properties[i].Address = byID[*properties[i].AddressID]
		}
	}

	return nil
}
