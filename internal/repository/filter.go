package repository

import (
	"context"
	"strings"

	"github.com/rongwang/estate-registry/internal/models"
)

// Transaction type values accepted by the property filter
const (
	FilterSale = "sale"
	FilterRent = "rent"
)

// FilterProperties returns the properties matching every provided criterion.
// Price bounds only apply together with a transaction type; without one they
// are ignored.
func (r *SQLRepository) FilterProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	where, args := buildPropertyFilter(filter)

	query := `SELECT ` + propertyColumns + ` FROM properties p
		LEFT JOIN addresses a ON a.id = p.address_id`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY p.created_at, p.id`

	return r.listProperties(ctx, query, args...)
}

// buildPropertyFilter translates the criteria into an AND-ed WHERE clause
// using '?' placeholders
func buildPropertyFilter(f models.PropertyFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	if f.City != "" {
		conds = append(conds, `a.city_search LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.City))
	}
	if f.MinArea != nil {
		conds = append(conds, `p.square_meters >= ?`)
		args = append(args, *f.MinArea)
	}
	if f.MaxArea != nil {
		conds = append(conds, `p.square_meters <= ?`)
		args = append(args, *f.MaxArea)
	}
	if f.RoomCount != nil {
		conds = append(conds, `p.room_count = ?`)
		args = append(args, *f.RoomCount)
	}
	if f.HeatingType != "" {
		conds = append(conds, `p.heating_search LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.HeatingType))
	}

	var priceTable, priceColumn string
	switch f.TransactionType {
	case FilterSale:
		priceTable, priceColumn = "property_sales", "sale_price"
	case FilterRent:
		priceTable, priceColumn = "property_rentals", "rent_price"
	}
	if priceTable != "" {
		sub := `p.id IN (SELECT property_id FROM ` + priceTable + ` WHERE 1=1`
		if f.MinPrice != nil {
			sub += ` AND ` + priceColumn + ` >= ?`
			args = append(args, *f.MinPrice)
		}
		if f.MaxPrice != nil {
			sub += ` AND ` + priceColumn + ` <= ?`
			args = append(args, *f.MaxPrice)
		}
		conds = append(conds, sub+`)`)
	}

	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern over the folded search columns.
// Wildcards typed by the user match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(foldSearch(s)) + "%"
}
