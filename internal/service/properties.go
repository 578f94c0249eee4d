package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rongwang/estate-registry/internal/models"
	"github.com/rongwang/estate-registry/internal/reconcile"
	"github.com/rongwang/estate-registry/internal/repository"
)

// CreateProperty stores the address and the property together. Either both rows
// are written or neither is.
func (s *DefaultService) CreateProperty(
	ctx context.Context,
	req models.CreatePropertyRequest,
) (resp *models.PropertyResponse, err error) {
	defer func() { s.track("property", err) }()

	if req.SquareMeters == nil {
		return nil, invalid("squareMeters", "is required")
	}
	if !req.SquareMeters.IsPositive() {
		return nil, invalid("squareMeters", "must be a positive number")
	}
	if err := checkDecimal("squareMeters", *req.SquareMeters, areaDigits); err != nil {
		return nil, err
	}
	if req.RoomCount == nil {
		return nil, invalid("roomCount", "is required")
	}
	if *req.RoomCount < 0 {
		return nil, invalid("roomCount", "must not be negative")
	}
	if req.AddressCode == "" {
		return nil, invalid("addressCode", "is required")
	}

	if req.CurrentOwnerID != nil && *req.CurrentOwnerID != "" {
		if _, err := s.requireUser(ctx, "currentOwnerId", *req.CurrentOwnerID); err != nil {
			return nil, err
		}
	} else {
		req.CurrentOwnerID = nil
	}

	existing, err := s.repo.GetPropertyByAddressCode(ctx, req.AddressCode)
	if err != nil {
		return nil, fmt.Errorf("error checking address code: %w", err)
	}
	if existing != nil {
		return nil, invalid("addressCode", "address code is already in use")
	}

	address := &models.Address{
		City:            req.City,
		District:        req.District,
		Neighborhood:    req.Neighborhood,
		Street:          req.Street,
		SiteName:        req.SiteName,
		BuildingNumber:  req.BuildingNumber,
		ApartmentNumber: req.ApartmentNumber,
	}
	property := &models.Property{
		Description:    req.Description,
		SquareMeters:   *req.SquareMeters,
		RoomCount:      *req.RoomCount,
		HeatingType:    req.HeatingType,
		CurrentOwnerID: req.CurrentOwnerID,
		AddressCode:    req.AddressCode,
	}

	if err := s.repo.CreatePropertyWithAddress(ctx, property, address); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("addressCode", "address code is already in use")
		}
		return nil, fmt.Errorf("error creating property: %w", err)
	}

	return &models.PropertyResponse{Status: "success", Property: *property}, nil
}

func (s *DefaultService) ListProperties(
	ctx context.Context,
	query models.PropertyFilterQuery,
) (*models.PropertyListResponse, error) {
	properties, err := s.repo.FilterProperties(ctx, query.ToFilter())
	if err != nil {
		return nil, fmt.Errorf("error filtering properties: %w", err)
	}

	return &models.PropertyListResponse{
		Status:     "success",
		Properties: properties,
		Filter:     &query,
		FilterType: "filtered results",
	}, nil
}

// GetPropertyDetail returns the property with its ownership intervals and its
// rental timeline
func (s *DefaultService) GetPropertyDetail(ctx context.Context, propertyID string) (*models.PropertyDetailResponse, error) {
	defer s.metrics.ObservePropertyDetail(time.Now())

	property, err := s.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("error getting property: %w", err)
	}
	if property == nil {
		return nil, &NotFoundError{Entity: "property", ID: propertyID}
	}

	ownerships, err := s.repo.GetOwnershipsByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("error getting ownerships: %w", err)
	}

	rentals, err := s.repo.GetRentalsByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("error getting rentals: %w", err)
	}

	return &models.PropertyDetailResponse{
		Status:        "success",
		Property:      *property,
		Ownerships:    ownerships,
		RentalHistory: reconcile.RentalTimeline(rentals),
	}, nil
}

func (s *DefaultService) ListPropertiesByOwner(ctx context.Context, userID string) (*models.PropertyListResponse, error) {
	return s.listForUser(ctx, userID, "owned properties", s.repo.ListPropertiesByCurrentOwner)
}

func (s *DefaultService) ListPropertiesByTenant(ctx context.Context, userID string) (*models.PropertyListResponse, error) {
	return s.listForUser(ctx, userID, "rented properties", s.repo.ListPropertiesByTenant)
}

func (s *DefaultService) ListPropertiesByBuyer(ctx context.Context, userID string) (*models.PropertyListResponse, error) {
	return s.listForUser(ctx, userID, "purchased properties", s.repo.ListPropertiesByBuyer)
}

func (s *DefaultService) listForUser(
	ctx context.Context,
	userID string,
	label string,
	list func(context.Context, string) ([]models.Property, error),
) (*models.PropertyListResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: userID}
	}

	properties, err := list(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", label, err)
	}

	return &models.PropertyListResponse{
		Status:     "success",
		Properties: properties,
		FilterType: fmt.Sprintf("%s → %s", user.FullName, label),
		User:       user,
	}, nil
}
