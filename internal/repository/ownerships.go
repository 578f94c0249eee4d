package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rongwang/estate-registry/internal/models"
)

const ownershipSelect = `SELECT o.id, o.property_id, o.owner_id, o.ownership_start_date, o.ownership_end_date,
		u.full_name AS owner_name
	FROM property_owners o
	JOIN users u ON u.id = o.owner_id`

// Ownership repository methods
func (r *SQLRepository) CreateOwnership(ctx context.Context, ownership *models.Ownership) error {
	query := `
		INSERT INTO property_owners (id, property_id, owner_id, ownership_start_date, ownership_end_date)
		VALUES (?, ?, ?, ?, ?)
	`

	if ownership.ID == "" {
		ownership.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		ownership.ID, ownership.PropertyID, ownership.OwnerID, ownership.StartDate, ownership.EndDate)

	return classify(err)
}

func (r *SQLRepository) GetOwnershipsByProperty(ctx context.Context, propertyID string) ([]models.Ownership, error) {
	query := ownershipSelect + ` WHERE o.property_id = ? ORDER BY o.ownership_start_date, o.id`

	ownerships := []models.Ownership{}
	if err := r.db.SelectContext(ctx, &ownerships, r.db.Rebind(query), propertyID); err != nil {
		return nil, err
	}

	return ownerships, nil
}

func (r *SQLRepository) GetOwnershipsByProperties(ctx context.Context, propertyIDs []string) ([]models.Ownership, error) {
	ownerships := []models.Ownership{}
	if len(propertyIDs) == 0 {
		return ownerships, nil
	}

	query := ownershipSelect + ` WHERE o.property_id IN (?) ORDER BY o.property_id, o.ownership_start_date, o.id`
	if err := r.selectIn(ctx, &ownerships, query, propertyIDs); err != nil {
		return nil, err
	}

	return ownerships, nil
}

func (r *SQLRepository) GetOwnershipsByOwner(ctx context.Context, ownerID string) ([]models.Ownership, error) {
	query := ownershipSelect + ` WHERE o.owner_id = ? ORDER BY o.ownership_start_date, o.id`

	ownerships := []models.Ownership{}
	if err := r.db.SelectContext(ctx, &ownerships, r.db.Rebind(query), ownerID); err != nil {
		return nil, err
	}

	return ownerships, nil
}

// TransferOwnership closes every open interval of the property at date, opens a
// new interval for newOwnerID and moves the current owner pointer, atomically.
func (r *SQLRepository) TransferOwnership(
	ctx context.Context,
	propertyID string,
	newOwnerID string,
	date time.Time,
) (*models.Ownership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE property_owners SET ownership_end_date = ?
		WHERE property_id = ? AND ownership_end_date IS NULL
	`), date, propertyID)
	if err != nil {
		return nil, err
	}

	ownership := &models.Ownership{
		ID:         uuid.New().String(),
		PropertyID: propertyID,
		OwnerID:    newOwnerID,
		StartDate:  date,
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO property_owners (id, property_id, owner_id, ownership_start_date, ownership_end_date)
		VALUES (?, ?, ?, ?, NULL)
	`), ownership.ID, ownership.PropertyID, ownership.OwnerID, ownership.StartDate)
	if err != nil {
		return nil, classify(err)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE properties SET current_owner_id = ? WHERE id = ?`),
		newOwnerID, propertyID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return ownership, nil
}
