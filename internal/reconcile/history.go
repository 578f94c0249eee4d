package reconcile

import (
	"github.com/rongwang/estate-registry/internal/models"
)

// UserRecords is the raw material for one user's history
type UserRecords struct {
	UserID string

	// Intervals are the user's own ownership intervals, ordered by start date.
	Intervals []models.Ownership
	// OwnedProperties are the properties whose current owner pointer is the user.
	OwnedProperties []models.Property
	// PropertyIntervals holds every interval, of any owner, on the properties
	// referenced by Intervals. Used to find handover predecessors.
	PropertyIntervals []models.Ownership
	// Sales are the sale records of the properties referenced by Intervals.
	Sales []models.Sale
	// Properties resolves property ids referenced by Intervals.
	Properties []models.Property
	// Rentals are the rentals where the user is the tenant.
	Rentals []models.Rental
}

// UserHistory reconciles the user's current ownerships, purchases, past sales
// and rentals.
//
// Sales are singular per property, so when a property changed hands more than
// once every interval on it resolves against the one recorded sale.
func UserHistory(rec UserRecords) models.UserHistory {
	properties := make(map[string]models.Property, len(rec.Properties)+len(rec.OwnedProperties))
	for _, p := range rec.Properties {
		properties[p.ID] = p
	}
	for _, p := range rec.OwnedProperties {
		properties[p.ID] = p
	}
	lookup := func(id string) models.Property {
		if p, ok := properties[id]; ok {
			return p
		}
		return models.Property{ID: id}
	}

	sales := make(map[string]models.Sale, len(rec.Sales))
	for _, s := range rec.Sales {
		sales[s.PropertyID] = s
	}

	byProperty := make(map[string][]models.Ownership)
	for _, o := range rec.PropertyIntervals {
		byProperty[o.PropertyID] = append(byProperty[o.PropertyID], o)
	}

	rentals := rec.Rentals
	if rentals == nil {
		rentals = []models.Rental{}
	}

	return models.UserHistory{
		CurrentOwnerships: currentOwnerships(rec, lookup),
		Purchases:         purchases(rec, lookup, sales, byProperty),
		PastSales:         pastSales(rec, lookup, sales),
		Rentals:           rentals,
	}
}

// currentOwnerships merges the user's open intervals with placeholders for
// properties that point at the user but carry no interval of theirs at all.
// A property appears at most once.
func currentOwnerships(rec UserRecords, lookup func(string) models.Property) []models.CurrentOwnership {
	out := []models.CurrentOwnership{}
	seen := make(map[string]bool)
	hasInterval := make(map[string]bool)

	for _, o := range rec.Intervals {
		hasInterval[o.PropertyID] = true
		if !o.Open() || seen[o.PropertyID] {
			continue
		}
		seen[o.PropertyID] = true

		id, start := o.ID, o.StartDate
		out = append(out, models.CurrentOwnership{
			Property:    lookup(o.PropertyID),
			OwnershipID: &id,
			StartDate:   &start,
			Tracked:     true,
		})
	}

	for _, p := range rec.OwnedProperties {
		if hasInterval[p.ID] || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, models.CurrentOwnership{Property: p})
	}

	return out
}

// purchases emits one entry per interval of the user whose property sale names
// the user as buyer. The seller is the owner of the handover predecessor.
func purchases(
	rec UserRecords,
	lookup func(string) models.Property,
	sales map[string]models.Sale,
	byProperty map[string][]models.Ownership,
) []models.Purchase {
	out := []models.Purchase{}

	for _, o := range rec.Intervals {
		sale, ok := sales[o.PropertyID]
		if !ok || sale.BuyerID != rec.UserID {
			continue
		}

		seller := handoverSeller(o, byProperty[o.PropertyID], rec.UserID)
		out = append(out, models.Purchase{
			Property:  lookup(o.PropertyID),
			SalePrice: sale.SalePrice,
			SaleDate:  o.StartDate,
			Seller:    seller,
			Ambiguous: seller == nil,
		})
	}

	return out
}

// handoverSeller finds the owner whose interval on the same property ended on
// the day this interval started. It returns nil unless exactly one other owner
// qualifies.
func handoverSeller(interval models.Ownership, candidates []models.Ownership, buyerID string) *models.PersonRef {
	var seller *models.PersonRef
	for _, c := range candidates {
		if c.ID == interval.ID || c.EndDate == nil || c.OwnerID == buyerID {
			continue
		}
		if !SameDay(*c.EndDate, interval.StartDate) {
			continue
		}
		if seller != nil && seller.ID != c.OwnerID {
			return nil
		}
		seller = &models.PersonRef{ID: c.OwnerID, FullName: c.OwnerName}
	}
	return seller
}

// pastSales emits one entry per closed interval of the user whose property sale
// names somebody else as buyer.
func pastSales(rec UserRecords, lookup func(string) models.Property, sales map[string]models.Sale) []models.PastSale {
	out := []models.PastSale{}

	for _, o := range rec.Intervals {
		if o.Open() {
			continue
		}
		sale, ok := sales[o.PropertyID]
		if !ok || sale.BuyerID == rec.UserID {
			continue
		}

		out = append(out, models.PastSale{
			Property:  lookup(o.PropertyID),
			SalePrice: sale.SalePrice,
			SaleDate:  *o.EndDate,
			Buyer:     models.PersonRef{ID: sale.BuyerID, FullName: sale.BuyerName},
		})
	}

	return out
}

// Ambiguous counts purchases whose seller could not be resolved
func Ambiguous(h models.UserHistory) int {
	n := 0
	for _, p := range h.Purchases {
		if p.Ambiguous {
			n++
		}
	}
	return n
}
