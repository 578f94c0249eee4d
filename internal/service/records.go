package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rongwang/estate-registry/internal/models"
	"github.com/rongwang/estate-registry/internal/repository"
	"github.com/sirupsen/logrus"
)

// Ownership operations
func (s *DefaultService) CreateOwnership(
	ctx context.Context,
	req models.CreateOwnershipRequest,
) (resp *models.OwnershipResponse, err error) {
	defer func() { s.track("ownership", err) }()

	start, end, err := parseDates("startDate", req.StartDate, "endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireProperty(ctx, "propertyId", req.PropertyID); err != nil {
		return nil, err
	}
	owner, err := s.requireUser(ctx, "ownerId", req.OwnerID)
	if err != nil {
		return nil, err
	}

	ownership := &models.Ownership{
		PropertyID: req.PropertyID,
		OwnerID:    req.OwnerID,
		StartDate:  start,
		EndDate:    end,
		OwnerName:  owner.FullName,
	}

	if err := s.repo.CreateOwnership(ctx, ownership); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("startDate", "an ownership for this property, owner and start date already exists")
		}
		return nil, fmt.Errorf("error creating ownership: %w", err)
	}

	return &models.OwnershipResponse{Status: "success", Ownership: *ownership}, nil
}

// TransferOwnership hands the property over to a new owner on the given date,
// closing the open intervals and moving the current owner pointer in one step.
func (s *DefaultService) TransferOwnership(
	ctx context.Context,
	propertyID string,
	req models.TransferOwnershipRequest,
) (resp *models.OwnershipResponse, err error) {
	defer func() { s.track("transfer", err) }()

	property, err := s.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("error getting property: %w", err)
	}
	if property == nil {
		return nil, &NotFoundError{Entity: "property", ID: propertyID}
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, invalid("date", "must be a date in YYYY-MM-DD format")
	}
	owner, err := s.requireUser(ctx, "newOwnerId", req.NewOwnerID)
	if err != nil {
		return nil, err
	}

	ownerships, err := s.repo.GetOwnershipsByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("error getting ownerships: %w", err)
	}
	for _, o := range ownerships {
		if !o.Open() {
			continue
		}
		if o.OwnerID == req.NewOwnerID {
			return nil, invalid("newOwnerId", "user is already the current owner")
		}
		if date.Before(o.StartDate) {
			return nil, invalid("date", "must not precede the start of the current ownership")
		}
	}

	ownership, err := s.repo.TransferOwnership(ctx, propertyID, req.NewOwnerID, date)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("date", "an ownership for this owner and date already exists")
		}
		return nil, fmt.Errorf("error transferring ownership: %w", err)
	}
	ownership.OwnerName = owner.FullName

	s.logger.WithFields(logrus.Fields{
		"property": propertyID,
		"owner":    req.NewOwnerID,
		"date":     req.Date,
	}).Info("ownership transferred")

	return &models.OwnershipResponse{Status: "success", Ownership: *ownership}, nil
}

// Sale operations
func (s *DefaultService) CreateSale(ctx context.Context, req models.CreateSaleRequest) (resp *models.SaleResponse, err error) {
	defer func() { s.track("sale", err) }()

	if req.SalePrice == nil || !req.SalePrice.IsPositive() {
		return nil, invalid("salePrice", "must be a positive number")
	}
	if err := checkDecimal("salePrice", *req.SalePrice, salePriceDigits); err != nil {
		return nil, err
	}
	property, err := s.requireProperty(ctx, "propertyId", req.PropertyID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.requireUser(ctx, "buyerId", req.BuyerID)
	if err != nil {
		return nil, err
	}

	// Check if a sale was already recorded
	existing, err := s.repo.GetSaleByProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("error checking sale existence: %w", err)
	}
	if existing != nil {
		return nil, invalid("propertyId", "a sale is already recorded for this property")
	}

	sale := &models.Sale{
		PropertyID:  req.PropertyID,
		BuyerID:     req.BuyerID,
		SalePrice:   *req.SalePrice,
		BuyerName:   buyer.FullName,
		AddressCode: property.AddressCode,
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("propertyId", "a sale is already recorded for this property")
		}
		return nil, fmt.Errorf("error creating sale: %w", err)
	}

	return &models.SaleResponse{Status: "success", Sale: *sale}, nil
}

// Rental operations
func (s *DefaultService) CreateRental(ctx context.Context, req models.CreateRentalRequest) (resp *models.RentalResponse, err error) {
	defer func() { s.track("rental", err) }()

	if req.RentPrice == nil || !req.RentPrice.IsPositive() {
		return nil, invalid("rentPrice", "must be a positive number")
	}
	if err := checkDecimal("rentPrice", *req.RentPrice, rentPriceDigits); err != nil {
		return nil, err
	}
	start, end, err := parseDates("startDate", req.StartDate, "endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	property, err := s.requireProperty(ctx, "propertyId", req.PropertyID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.requireUser(ctx, "tenantId", req.TenantID)
	if err != nil {
		return nil, err
	}

	rental := &models.Rental{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		RentPrice:   *req.RentPrice,
		StartDate:   start,
		EndDate:     end,
		TenantName:  tenant.FullName,
		AddressCode: property.AddressCode,
	}

	if err := s.repo.CreateRental(ctx, rental); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("startDate", "a rental for this property, tenant and start date already exists")
		}
		return nil, fmt.Errorf("error creating rental: %w", err)
	}

	return &models.RentalResponse{Status: "success", Rental: *rental}, nil
}

// Generic transaction log
func (s *DefaultService) CreateTransaction(
	ctx context.Context,
	req models.CreateTransactionRequest,
) (resp *models.TransactionResponse, err error) {
	defer func() { s.track("transaction", err) }()

	txType := models.TransactionType(req.TransactionType)
	if txType != models.TransactionTypeSale && txType != models.TransactionTypeRental {
		return nil, invalid("transactionType", "must be one of sale, rental")
	}
	if req.Price == nil || !req.Price.IsPositive() {
		return nil, invalid("price", "must be a positive number")
	}
	if err := checkDecimal("price", *req.Price, salePriceDigits); err != nil {
		return nil, err
	}
	start, end, err := parseDates("startDate", req.StartDate, "endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	property, err := s.requireProperty(ctx, "propertyId", req.PropertyID)
	if err != nil {
		return nil, err
	}
	user, err := s.requireUser(ctx, "userId", req.UserID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		PropertyID:      req.PropertyID,
		UserID:          req.UserID,
		TransactionType: txType,
		Price:           *req.Price,
		StartDate:       start,
		EndDate:         end,
		UserName:        user.FullName,
		AddressCode:     property.AddressCode,
	}

	if err := s.repo.CreateTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}

	return &models.TransactionResponse{Status: "success", Transaction: *transaction}, nil
}
