package models

import (
	"github.com/shopspring/decimal"
)

// Request models
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	FullName string  `json:"fullName" binding:"required,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	UserType string  `json:"userType" binding:"required,oneof=tenant owner buyer seller"`
}

type CreatePropertyRequest struct {
	Description    string           `json:"description"`
	SquareMeters   *decimal.Decimal `json:"squareMeters" binding:"required"`
	RoomCount      *int             `json:"roomCount" binding:"required,gte=0"`
	HeatingType    string           `json:"heatingType" binding:"max=50"`
	CurrentOwnerID *string          `json:"currentOwnerId"`
	AddressCode    string           `json:"addressCode" binding:"required,max=20"`

	City            string  `json:"city" binding:"required,max=50"`
	District        string  `json:"district" binding:"required,max=50"`
	Neighborhood    string  `json:"neighborhood" binding:"required,max=50"`
	Street          string  `json:"street" binding:"required,max=50"`
	SiteName        *string `json:"siteName"`
	BuildingNumber  string  `json:"buildingNumber" binding:"required,max=10"`
	ApartmentNumber string  `json:"apartmentNumber" binding:"required,max=10"`
}

type CreateSaleRequest struct {
	PropertyID string           `json:"propertyId" binding:"required"`
	BuyerID    string           `json:"buyerId" binding:"required"`
	SalePrice  *decimal.Decimal `json:"salePrice" binding:"required"`
}

type CreateRentalRequest struct {
	PropertyID string           `json:"propertyId" binding:"required"`
	TenantID   string           `json:"tenantId" binding:"required"`
	RentPrice  *decimal.Decimal `json:"rentPrice" binding:"required"`
	StartDate  string           `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate    *string          `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

type CreateOwnershipRequest struct {
	PropertyID string  `json:"propertyId" binding:"required"`
	OwnerID    string  `json:"ownerId" binding:"required"`
	StartDate  string  `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate    *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

type TransferOwnershipRequest struct {
	NewOwnerID string `json:"newOwnerId" binding:"required"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
}

type CreateTransactionRequest struct {
	PropertyID      string           `json:"propertyId" binding:"required"`
	UserID          string           `json:"userId" binding:"required"`
	TransactionType string           `json:"transactionType" binding:"required,oneof=sale rental"`
	Price           *decimal.Decimal `json:"price" binding:"required"`
	StartDate       string           `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate         *string          `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

// PropertyFilterQuery is bound from the property list query string
type PropertyFilterQuery struct {
	City            string   `form:"city" json:"city,omitempty" binding:"max=50"`
	MinArea         *float64 `form:"min_m2" json:"minM2,omitempty"`
	MaxArea         *float64 `form:"max_m2" json:"maxM2,omitempty"`
	MinPrice        *float64 `form:"min_price" json:"minPrice,omitempty"`
	MaxPrice        *float64 `form:"max_price" json:"maxPrice,omitempty"`
	RoomCount       *int     `form:"room_count" json:"roomCount,omitempty"`
	HeatingType     string   `form:"heating_type" json:"heatingType,omitempty" binding:"max=50"`
	TransactionType string   `form:"transaction_type" json:"transactionType,omitempty" binding:"omitempty,oneof=sale rent"`
}

// ToFilter converts the bound query into repository criteria
func (q PropertyFilterQuery) ToFilter() PropertyFilter {
	return PropertyFilter{
		City:            q.City,
		MinArea:         decimalPtr(q.MinArea),
		MaxArea:         decimalPtr(q.MaxArea),
		RoomCount:       q.RoomCount,
		HeatingType:     q.HeatingType,
		MinPrice:        decimalPtr(q.MinPrice),
		MaxPrice:        decimalPtr(q.MaxPrice),
		TransactionType: q.TransactionType,
	}
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type UserResponse struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

type UserListResponse struct {
	Status string `json:"status"`
	Users  []User `json:"users"`
}

type PropertyResponse struct {
	Status   string   `json:"status"`
	Property Property `json:"property"`
}

type PropertyListResponse struct {
	Status     string               `json:"status"`
	Properties []Property           `json:"properties"`
	Filter     *PropertyFilterQuery `json:"filter,omitempty"`
	FilterType string               `json:"filterType,omitempty"`
	User       *User                `json:"user,omitempty"`
}

type PropertyDetailResponse struct {
	Status        string      `json:"status"`
	Property      Property    `json:"property"`
	Ownerships    []Ownership `json:"ownerships"`
	RentalHistory []RentalGap `json:"rentalHistory"`
}

type UserDetailResponse struct {
	Status string `json:"status"`
	User   User   `json:"user"`
	UserHistory
}

type SaleResponse struct {
	Status string `json:"status"`
	Sale   Sale   `json:"sale"`
}

type RentalResponse struct {
	Status string `json:"status"`
	Rental Rental `json:"rental"`
}

type OwnershipResponse struct {
	Status    string    `json:"status"`
	Ownership Ownership `json:"ownership"`
}

type TransactionResponse struct {
	Status      string      `json:"status"`
	Transaction Transaction `json:"transaction"`
}

type StatsResponse struct {
	Status          string           `json:"status"`
	TotalProperties int64            `json:"totalProperties"`
	TotalSales      int64            `json:"totalSales"`
	TotalRentals    int64            `json:"totalRentals"`
	AvgSalePrice    *decimal.Decimal `json:"avgSalePrice"`
	AvgRentPrice    *decimal.Decimal `json:"avgRentPrice"`
}

type TransactionHistoryResponse struct {
	Status  string   `json:"status"`
	Sales   []Sale   `json:"sales"`
	Rentals []Rental `json:"rentals"`
}

type TransactionListResponse struct {
	Status       string        `json:"status"`
	Transactions []Transaction `json:"transactions"`
}

type ErrorResponse struct {
	Status  string            `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
