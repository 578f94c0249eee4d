package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rongwang/estate-registry/internal/models"
	"github.com/rongwang/estate-registry/internal/reconcile"
)

// GetUserDetail reconciles the user's ownership intervals, the sale records and
// the current owner pointers into one history
func (s *DefaultService) GetUserDetail(ctx context.Context, userID string) (*models.UserDetailResponse, error) {
	defer s.metrics.ObserveUserHistory(time.Now())

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: userID}
	}

	intervals, err := s.repo.GetOwnershipsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting ownerships: %w", err)
	}

	owned, err := s.repo.ListPropertiesByCurrentOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting owned properties: %w", err)
	}

	propertyIDs := make([]string, 0, len(intervals))
	seen := make(map[string]bool, len(intervals))
	for _, o := range intervals {
		if !seen[o.PropertyID] {
			seen[o.PropertyID] = true
			propertyIDs = append(propertyIDs, o.PropertyID)
		}
	}

	properties, err := s.repo.GetPropertiesByIDs(ctx, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("error getting properties: %w", err)
	}

	propertyIntervals, err := s.repo.GetOwnershipsByProperties(ctx, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("error getting property ownerships: %w", err)
	}

	sales, err := s.repo.GetSalesByProperties(ctx, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("error getting sales: %w", err)
	}

	rentals, err := s.repo.GetRentalsByTenant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting rentals: %w", err)
	}

	history := reconcile.UserHistory(reconcile.UserRecords{
		UserID:            userID,
		Intervals:         intervals,
		OwnedProperties:   owned,
		PropertyIntervals: propertyIntervals,
		Sales:             sales,
		Properties:        properties,
		Rentals:           rentals,
	})

	if n := reconcile.Ambiguous(history); n > 0 {
		s.metrics.AddAmbiguous(n)
		s.logger.WithFields(logrus.Fields{
			"user":       userID,
			"unresolved": n,
		}).Debug("purchase seller could not be resolved")
	}

	return &models.UserDetailResponse{
		Status:      "success",
		User:        *user,
		UserHistory: history,
	}, nil
}

// GetStats returns counts and mean prices. Means over zero rows stay nil.
func (s *DefaultService) GetStats(ctx context.Context) (*models.StatsResponse, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error computing stats: %w", err)
	}

	return &models.StatsResponse{
		Status:          "success",
		TotalProperties: stats.TotalProperties,
		TotalSales:      stats.TotalSales,
		TotalRentals:    stats.TotalRentals,
		AvgSalePrice:    mean(stats.AvgSalePrice),
		AvgRentPrice:    mean(stats.AvgRentPrice),
	}, nil
}

func mean(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	rounded := d.Decimal.Round(2)
	return &rounded
}

// GetTransactionHistory lists every sale and every rental
func (s *DefaultService) GetTransactionHistory(ctx context.Context) (*models.TransactionHistoryResponse, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing sales: %w", err)
	}

	rentals, err := s.repo.ListRentals(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing rentals: %w", err)
	}

	return &models.TransactionHistoryResponse{
		Status:  "success",
		Sales:   sales,
		Rentals: rentals,
	}, nil
}

func (s *DefaultService) ListTransactions(ctx context.Context) (*models.TransactionListResponse, error) {
	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	return &models.TransactionListResponse{Status: "success", Transactions: transactions}, nil
}
