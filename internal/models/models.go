package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserType is the role tag of a person in the registry
type UserType string

const (
	UserTypeTenant UserType = "tenant"
	UserTypeOwner  UserType = "owner"
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
)

// Valid reports whether t is one of the known roles
func (t UserType) Valid() bool {
	switch t {
	case UserTypeTenant, UserTypeOwner, UserTypeBuyer, UserTypeSeller:
		return true
	}
	return false
}

// TransactionType tags a generic transaction record
type TransactionType string

const (
	TransactionTypeSale   TransactionType = "sale"
	TransactionTypeRental TransactionType = "rental"
)

// User represents a person known to the registry (owner, tenant, buyer or seller)
type User struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"fullName"`
	Email     *string   `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone"`
	UserType  UserType  `db:"user_type" json:"userType"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Address is the physical location of exactly one property
type Address struct {
	ID              string  `db:"id" json:"id"`
	City            string  `db:"city" json:"city"`
	District        string  `db:"district" json:"district"`
	Neighborhood    string  `db:"neighborhood" json:"neighborhood"`
	Street          string  `db:"street" json:"street"`
	SiteName        *string `db:"site_name" json:"siteName,omitempty"`
	BuildingNumber  string  `db:"building_number" json:"buildingNumber"`
	ApartmentNumber string  `db:"apartment_number" json:"apartmentNumber"`
}

// Property is a physical unit tracked by the registry.
// CurrentOwnerID is a denormalized pointer and may lag the ownership intervals.
type Property struct {
	ID             string          `db:"id" json:"id"`
	AddressID      *string         `db:"address_id" json:"addressId"`
	Description    string          `db:"description" json:"description"`
	SquareMeters   decimal.Decimal `db:"square_meters" json:"squareMeters"`
	RoomCount      int             `db:"room_count" json:"roomCount"`
	HeatingType    string          `db:"heating_type" json:"heatingType"`
	CurrentOwnerID *string         `db:"current_owner_id" json:"currentOwnerId"`
	AddressCode    string          `db:"address_code" json:"addressCode"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`

	Address *Address `db:"-" json:"address,omitempty"`
}

// Ownership asserts that a user owned a property between two dates.
// A nil EndDate marks the interval as open (current).
type Ownership struct {
	ID         string     `db:"id" json:"id"`
	PropertyID string     `db:"property_id" json:"propertyId"`
	OwnerID    string     `db:"owner_id" json:"ownerId"`
	StartDate  time.Time  `db:"ownership_start_date" json:"startDate"`
	EndDate    *time.Time `db:"ownership_end_date" json:"endDate"`

	OwnerName string `db:"owner_name" json:"ownerName,omitempty"`
}

// Open reports whether the interval is still in effect
func (o Ownership) Open() bool {
	return o.EndDate == nil
}

// Transaction is the generic sale/rental log entry. It is not kept in sync with
// Sale and Rental records.
type Transaction struct {
	ID              string          `db:"id" json:"id"`
	PropertyID      string          `db:"property_id" json:"propertyId"`
	UserID          string          `db:"user_id" json:"userId"`
	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`
	Price           decimal.Decimal `db:"price" json:"price"`
	StartDate       time.Time       `db:"start_date" json:"startDate"`
	EndDate         *time.Time      `db:"end_date" json:"endDate"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`

	UserName    string `db:"user_name" json:"userName,omitempty"`
	AddressCode string `db:"address_code" json:"addressCode,omitempty"`
}

// Sale records the (single, most recent) sale of a property
type Sale struct {
	PropertyID string          `db:"property_id" json:"propertyId"`
	BuyerID    string          `db:"buyer_id" json:"buyerId"`
	SalePrice  decimal.Decimal `db:"sale_price" json:"salePrice"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`

	BuyerName   string `db:"buyer_name" json:"buyerName,omitempty"`
	AddressCode string `db:"address_code" json:"addressCode,omitempty"`
}

// Rental pairs a property with a tenant for a period
type Rental struct {
	ID         string          `db:"id" json:"id"`
	PropertyID string          `db:"property_id" json:"propertyId"`
	TenantID   string          `db:"tenant_id" json:"tenantId"`
	RentPrice  decimal.Decimal `db:"rent_price" json:"rentPrice"`
	StartDate  time.Time       `db:"start_date" json:"startDate"`
	EndDate    *time.Time      `db:"end_date" json:"endDate"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`

	TenantName  string `db:"tenant_name" json:"tenantName,omitempty"`
	AddressCode string `db:"address_code" json:"addressCode,omitempty"`
}

// PropertyFilter is the optional criteria bag for property listings.
// Nil fields are not applied.
type PropertyFilter struct {
	City            string
	MinArea         *decimal.Decimal
	MaxArea         *decimal.Decimal
	RoomCount       *int
	HeatingType     string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	TransactionType string // "", "sale" or "rent"
}

// Stats holds the registry-wide aggregates. A mean over zero rows is invalid.
type Stats struct {
	TotalProperties int64               `db:"total_properties"`
	TotalSales      int64               `db:"total_sales"`
	TotalRentals    int64               `db:"total_rentals"`
	AvgSalePrice    decimal.NullDecimal `db:"avg_sale_price"`
	AvgRentPrice    decimal.NullDecimal `db:"avg_rent_price"`
}
