package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PersonRef is the minimal identity of a counterparty in a derived history
type PersonRef struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// RentalGap is one entry of a property's rental timeline. GapDays is nil for the
// first rental and whenever the previous rental has no end date.
type RentalGap struct {
	Rental  Rental `json:"rental"`
	GapDays *int   `json:"gapDays"`
}

// CurrentOwnership is either a tracked open interval or a placeholder synthesized
// from the denormalized current owner pointer (Tracked=false, no dates).
type CurrentOwnership struct {
	Property    Property   `json:"property"`
	OwnershipID *string    `json:"ownershipId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Tracked     bool       `json:"tracked"`
}

// Purchase is a sale in which the user was the buyer
type Purchase struct {
	Property  Property        `json:"property"`
	SalePrice decimal.Decimal `json:"salePrice"`
	SaleDate  time.Time       `json:"saleDate"`
	Seller    *PersonRef      `json:"seller"`
	Ambiguous bool            `json:"ambiguous,omitempty"`
}

// PastSale is a sale in which the user handed the property over to someone else
type PastSale struct {
	Property  Property        `json:"property"`
	SalePrice decimal.Decimal `json:"salePrice"`
	SaleDate  time.Time       `json:"saleDate"`
	Buyer     PersonRef       `json:"buyer"`
}

// UserHistory is the reconciled view of one user's holdings and transactions
type UserHistory struct {
	CurrentOwnerships []CurrentOwnership `json:"currentOwnerships"`
	Purchases         []Purchase         `json:"purchases"`
	PastSales         []PastSale         `json:"pastSales"`
	Rentals           []Rental           `json:"rentals"`
}
