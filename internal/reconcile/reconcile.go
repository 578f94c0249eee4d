// Package reconcile derives ownership and rental histories from records that the
// store does not keep in sync with each other: ownership intervals, the single
// sale per property, rentals and the denormalized current owner pointer.
//
// Everything here is a pure function over already-fetched rows. Anything that
// cannot be resolved uniquely is emitted as absent rather than failing.
package reconcile

import (
	"time"

	"github.com/rongwang/estate-registry/internal/models"
)

// RentalTimeline pairs every rental with the number of days since the previous
// rental ended. rentals must already be ordered by start date ascending.
func RentalTimeline(rentals []models.Rental) []models.RentalGap {
	timeline := make([]models.RentalGap, 0, len(rentals))

	var previousEnd *time.Time
	for i, rental := range rentals {
		entry := models.RentalGap{Rental: rental}
		if i > 0 && previousEnd != nil {
			gap := DaysBetween(*previousEnd, rental.StartDate)
			entry.GapDays = &gap
		}
		timeline = append(timeline, entry)
		previousEnd = rental.EndDate
	}

	return timeline
}

// DaysBetween returns the number of calendar days from a to b. Clock time and
// zone offsets are ignored; the result is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar date
func SameDay(a, b time.Time) bool {
	return civil(a).Equal(civil(b))
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
