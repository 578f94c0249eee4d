package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rongwang/estate-registry/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func rental(id, start string, end *time.Time) models.Rental {
	return models.Rental{ID: id, PropertyID: "x", TenantID: "t", StartDate: day(start), EndDate: end}
}

func TestRentalTimeline(t *testing.T) {
	t.Run("first rental has no gap", func(t *testing.T) {
		timeline := RentalTimeline([]models.Rental{rental("r1", "2023-01-01", dayPtr("2023-06-30"))})

		require.Len(t, timeline, 1)
		assert.Nil(t, timeline[0].GapDays)
	})

	t.Run("gap is measured from previous end", func(t *testing.T) {
		timeline := RentalTimeline([]models.Rental{
			rental("r1", "2023-01-01", dayPtr("2023-06-30")),
			rental("r2", "2023-07-15", dayPtr("2023-12-31")),
			rental("r3", "2024-01-01", nil),
		})

		require.Len(t, timeline, 3)
		assert.Nil(t, timeline[0].GapDays)
		require.NotNil(t, timeline[1].GapDays)
		assert.Equal(t, 15, *timeline[1].GapDays)
		require.NotNil(t, timeline[2].GapDays)
		assert.Equal(t, 1, *timeline[2].GapDays)
	})

	t.Run("ongoing previous rental yields no gap", func(t *testing.T) {
		timeline := RentalTimeline([]models.Rental{
			rental("r1", "2023-01-01", nil),
			rental("r2", "2023-03-01", dayPtr("2023-04-01")),
			rental("r3", "2023-04-11", nil),
		})

		assert.Nil(t, timeline[1].GapDays)
		require.NotNil(t, timeline[2].GapDays)
		assert.Equal(t, 10, *timeline[2].GapDays)
	})

	t.Run("overlap yields a negative gap", func(t *testing.T) {
		timeline := RentalTimeline([]models.Rental{
			rental("r1", "2023-01-01", dayPtr("2023-02-10")),
			rental("r2", "2023-02-01", nil),
		})

		require.NotNil(t, timeline[1].GapDays)
		assert.Equal(t, -9, *timeline[1].GapDays)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, RentalTimeline(nil))
	})
}

func TestDaysBetweenIgnoresClockAndZone(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	a := time.Date(2023, 1, 1, 23, 30, 0, 0, time.UTC)
	b := time.Date(2023, 1, 3, 0, 15, 0, 0, istanbul)

	assert.Equal(t, 2, DaysBetween(a, b))
	assert.True(t, SameDay(day("2022-06-01"), time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)))
}

// handoverFixture is the two-owner scenario: A owned X until B bought it.
func handoverFixture() (models.Property, models.Ownership, models.Ownership, models.Sale) {
	x := models.Property{ID: "x", AddressCode: "X-1"}
	a := models.Ownership{ID: "oa", PropertyID: "x", OwnerID: "a", OwnerName: "Ayşe",
		StartDate: day("2020-01-01"), EndDate: dayPtr("2022-06-01")}
	b := models.Ownership{ID: "ob", PropertyID: "x", OwnerID: "b", OwnerName: "Burak",
		StartDate: day("2022-06-01")}
	sale := models.Sale{PropertyID: "x", BuyerID: "b", BuyerName: "Burak", SalePrice: decimal.NewFromInt(500000)}
	return x, a, b, sale
}

func TestUserHistoryHandover(t *testing.T) {
	x, a, b, sale := handoverFixture()
	all := []models.Ownership{a, b}

	t.Run("buyer sees purchase with seller", func(t *testing.T) {
		h := UserHistory(UserRecords{
			UserID:            "b",
			Intervals:         []models.Ownership{b},
			PropertyIntervals: all,
			Sales:             []models.Sale{sale},
			Properties:        []models.Property{x},
		})

		require.Len(t, h.Purchases, 1)
		p := h.Purchases[0]
		assert.Equal(t, "x", p.Property.ID)
		assert.True(t, p.SalePrice.Equal(decimal.NewFromInt(500000)))
		assert.Equal(t, day("2022-06-01"), p.SaleDate)
		require.NotNil(t, p.Seller)
		assert.Equal(t, "a", p.Seller.ID)
		assert.Equal(t, "Ayşe", p.Seller.FullName)
		assert.False(t, p.Ambiguous)
		assert.Empty(t, h.PastSales)

		require.Len(t, h.CurrentOwnerships, 1)
		assert.True(t, h.CurrentOwnerships[0].Tracked)
		assert.Equal(t, "x", h.CurrentOwnerships[0].Property.ID)
	})

	t.Run("seller sees past sale with buyer", func(t *testing.T) {
		h := UserHistory(UserRecords{
			UserID:            "a",
			Intervals:         []models.Ownership{a},
			PropertyIntervals: all,
			Sales:             []models.Sale{sale},
			Properties:        []models.Property{x},
		})

		require.Len(t, h.PastSales, 1)
		s := h.PastSales[0]
		assert.Equal(t, "x", s.Property.ID)
		assert.True(t, s.SalePrice.Equal(decimal.NewFromInt(500000)))
		assert.Equal(t, day("2022-06-01"), s.SaleDate)
		assert.Equal(t, models.PersonRef{ID: "b", FullName: "Burak"}, s.Buyer)
		assert.Empty(t, h.Purchases)
		assert.Empty(t, h.CurrentOwnerships)
	})
}

func TestUserHistoryPastSaleNeverOwnPurchase(t *testing.T) {
	x, _, b, sale := handoverFixture()
	// b later stopped owning x, but the only sale names b as buyer
	b.EndDate = dayPtr("2024-01-01")

	h := UserHistory(UserRecords{
		UserID:            "b",
		Intervals:         []models.Ownership{b},
		PropertyIntervals: []models.Ownership{b},
		Sales:             []models.Sale{sale},
		Properties:        []models.Property{x},
	})

	assert.Empty(t, h.PastSales)
	require.Len(t, h.Purchases, 1)
}

func TestUserHistoryUnresolvedSeller(t *testing.T) {
	x, _, b, sale := handoverFixture()

	t.Run("missing predecessor", func(t *testing.T) {
		h := UserHistory(UserRecords{
			UserID:            "b",
			Intervals:         []models.Ownership{b},
			PropertyIntervals: []models.Ownership{b},
			Sales:             []models.Sale{sale},
			Properties:        []models.Property{x},
		})

		require.Len(t, h.Purchases, 1)
		assert.Nil(t, h.Purchases[0].Seller)
		assert.True(t, h.Purchases[0].Ambiguous)
		assert.Equal(t, 1, Ambiguous(h))
	})

	t.Run("two different predecessors", func(t *testing.T) {
		a1 := models.Ownership{ID: "o1", PropertyID: "x", OwnerID: "a1", StartDate: day("2019-01-01"), EndDate: dayPtr("2022-06-01")}
		a2 := models.Ownership{ID: "o2", PropertyID: "x", OwnerID: "a2", StartDate: day("2020-01-01"), EndDate: dayPtr("2022-06-01")}

		h := UserHistory(UserRecords{
			UserID:            "b",
			Intervals:         []models.Ownership{b},
			PropertyIntervals: []models.Ownership{a1, a2, b},
			Sales:             []models.Sale{sale},
			Properties:        []models.Property{x},
		})

		require.Len(t, h.Purchases, 1)
		assert.Nil(t, h.Purchases[0].Seller)
		assert.True(t, h.Purchases[0].Ambiguous)
	})

	t.Run("same predecessor recorded twice resolves", func(t *testing.T) {
		a1 := models.Ownership{ID: "o1", PropertyID: "x", OwnerID: "a", OwnerName: "Ayşe", StartDate: day("2019-01-01"), EndDate: dayPtr("2022-06-01")}
		a2 := models.Ownership{ID: "o2", PropertyID: "x", OwnerID: "a", OwnerName: "Ayşe", StartDate: day("2020-01-01"), EndDate: dayPtr("2022-06-01")}

		h := UserHistory(UserRecords{
			UserID:            "b",
			Intervals:         []models.Ownership{b},
			PropertyIntervals: []models.Ownership{a1, a2, b},
			Sales:             []models.Sale{sale},
			Properties:        []models.Property{x},
		})

		require.NotNil(t, h.Purchases[0].Seller)
		assert.Equal(t, "a", h.Purchases[0].Seller.ID)
	})
}

func TestUserHistoryIntervalWithoutSaleIsNotAPurchase(t *testing.T) {
	inherited := models.Ownership{ID: "o", PropertyID: "y", OwnerID: "c", StartDate: day("2021-03-01")}

	h := UserHistory(UserRecords{
		UserID:            "c",
		Intervals:         []models.Ownership{inherited},
		PropertyIntervals: []models.Ownership{inherited},
		Properties:        []models.Property{{ID: "y"}},
	})

	assert.Empty(t, h.Purchases)
	assert.Empty(t, h.PastSales)
	require.Len(t, h.CurrentOwnerships, 1)
}

func TestCurrentOwnershipsDeduplicate(t *testing.T) {
	x := models.Property{ID: "x"}
	y := models.Property{ID: "y"}
	z := models.Property{ID: "z"}
	open := models.Ownership{ID: "o1", PropertyID: "x", OwnerID: "u", StartDate: day("2021-01-01")}
	duplicateOpen := models.Ownership{ID: "o2", PropertyID: "x", OwnerID: "u", StartDate: day("2022-01-01")}
	closed := models.Ownership{ID: "o3", PropertyID: "z", OwnerID: "u", StartDate: day("2018-01-01"), EndDate: dayPtr("2019-01-01")}

	h := UserHistory(UserRecords{
		UserID:          "u",
		Intervals:       []models.Ownership{open, duplicateOpen, closed},
		OwnedProperties: []models.Property{x, y, z},
		Properties:      []models.Property{x, z},
	})

	require.Len(t, h.CurrentOwnerships, 2)

	tracked := h.CurrentOwnerships[0]
	assert.Equal(t, "x", tracked.Property.ID)
	assert.True(t, tracked.Tracked)
	require.NotNil(t, tracked.OwnershipID)
	assert.Equal(t, "o1", *tracked.OwnershipID)

	placeholder := h.CurrentOwnerships[1]
	assert.Equal(t, "y", placeholder.Property.ID)
	assert.False(t, placeholder.Tracked)
	assert.Nil(t, placeholder.StartDate)
	assert.Nil(t, placeholder.EndDate)
	assert.Nil(t, placeholder.OwnershipID)

	ids := map[string]int{}
	for _, c := range h.CurrentOwnerships {
		ids[c.Property.ID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "property %s listed more than once", id)
	}
}

func TestUserHistoryRentalsPassThrough(t *testing.T) {
	rentals := []models.Rental{rental("r1", "2023-01-01", nil)}

	h := UserHistory(UserRecords{UserID: "t", Rentals: rentals})
	assert.Equal(t, rentals, h.Rentals)

	empty := UserHistory(UserRecords{UserID: "t"})
	assert.NotNil(t, empty.Rentals)
	assert.Empty(t, empty.Rentals)
}
