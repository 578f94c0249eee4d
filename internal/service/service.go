package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/estate-registry/internal/config"
	"github.com/rongwang/estate-registry/internal/metrics"
	"github.com/rongwang/estate-registry/internal/models"
	"github.com/rongwang/estate-registry/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"

// Column sizes of the stored decimals: DECIMAL(10,2) and DECIMAL(15,2)
const (
	decimalPlaces   = 2
	areaDigits      = 10
	rentPriceDigits = 10
	salePriceDigits = 15
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	// Users
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.UserResponse, error)
	ListUsers(ctx context.Context) (*models.UserListResponse, error)
	GetUserDetail(ctx context.Context, userID string) (*models.UserDetailResponse, error)

	// Properties
	CreateProperty(ctx context.Context, req models.CreatePropertyRequest) (*models.PropertyResponse, error)
	ListProperties(ctx context.Context, query models.PropertyFilterQuery) (*models.PropertyListResponse, error)
	GetPropertyDetail(ctx context.Context, propertyID string) (*models.PropertyDetailResponse, error)
	ListPropertiesByOwner(ctx context.Context, userID string) (*models.PropertyListResponse, error)
	ListPropertiesByTenant(ctx context.Context, userID string) (*models.PropertyListResponse, error)
	ListPropertiesByBuyer(ctx context.Context, userID string) (*models.PropertyListResponse, error)

	// Ownership
	CreateOwnership(ctx context.Context, req models.CreateOwnershipRequest) (*models.OwnershipResponse, error)
	TransferOwnership(ctx context.Context, propertyID string, req models.TransferOwnershipRequest) (*models.OwnershipResponse, error)

	// Sales, rentals and the generic transaction log
	CreateSale(ctx context.Context, req models.CreateSaleRequest) (*models.SaleResponse, error)
	CreateRental(ctx context.Context, req models.CreateRentalRequest) (*models.RentalResponse, error)
	CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.TransactionResponse, error)
	GetTransactionHistory(ctx context.Context) (*models.TransactionHistoryResponse, error)
	ListTransactions(ctx context.Context) (*models.TransactionListResponse, error)

	// Aggregates
	GetStats(ctx context.Context) (*models.StatsResponse, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	adminUsername string
	adminHash     []byte
	logger        *logrus.Logger
	metrics       *metrics.Metrics
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(
	repo repository.Repository,
	auth config.AuthConfig,
	logger *logrus.Logger,
	m *metrics.Metrics,
) Service {
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(auth.JWTSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
		adminUsername: auth.AdminUsername,
		adminHash:     []byte(auth.AdminPasswordHash),
		logger:        logger,
		metrics:       m,
	}
}

// Authentication methods
func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if len(s.adminHash) == 0 {
		return nil, &AuthError{Message: "admin login is not configured"}
	}

	if req.Username != s.adminUsername {
		return nil, &AuthError{Message: "invalid username or password"}
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(req.Password)); err != nil {
		return nil, &AuthError{Message: "invalid username or password"}
	}

	// Generate JWT token
	token, err := s.generateJWT(req.Username)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// User operations
func (s *DefaultService) CreateUser(ctx context.Context, req models.CreateUserRequest) (resp *models.UserResponse, err error) {
	defer func() { s.track("user", err) }()

	userType := models.UserType(req.UserType)
	if !userType.Valid() {
		return nil, invalid("userType", "must be one of tenant, owner, buyer, seller")
	}

	if req.Email != nil {
		existing, err := s.repo.GetUserByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("error checking user existence: %w", err)
		}
		if existing != nil {
			return nil, invalid("email", "a user with this email already exists")
		}
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		UserType: userType,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("email", "a user with this email already exists")
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &models.UserResponse{Status: "success", User: *user}, nil
}

func (s *DefaultService) ListUsers(ctx context.Context) (*models.UserListResponse, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	return &models.UserListResponse{Status: "success", Users: users}, nil
}

// Helper methods
func (s *DefaultService) generateJWT(subject string) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": subject, // subject
		"exp": expirationTime.Unix(),
		"iat": time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// track counts the outcome of a write of the given kind
func (s *DefaultService) track(kind string, err error) {
	var vErr *ValidationError
	switch {
	case err == nil:
		s.metrics.IncrementCreated(kind)
	case errors.As(err, &vErr):
		s.metrics.IncrementValidationFailure(kind)
		s.logger.WithField("kind", kind).Debug(vErr.Error())
	}
}

// requireUser loads a user referenced from a request field
func (s *DefaultService) requireUser(ctx context.Context, field, id string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, invalid(field, "user not found")
	}
	return user, nil
}

// requireProperty loads a property referenced from a request field
func (s *DefaultService) requireProperty(ctx context.Context, field, id string) (*models.Property, error) {
	property, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting property: %w", err)
	}
	if property == nil {
		return nil, invalid(field, "property not found")
	}
	return property, nil
}

// parseDates parses a required start and optional end date and checks their order
func parseDates(startField, start, endField string, end *string) (time.Time, *time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, nil, invalid(startField, "must be a date in YYYY-MM-DD format")
	}

	if end == nil || *end == "" {
		return startDate, nil, nil
	}

	endDate, err := time.Parse(dateLayout, *end)
	if err != nil {
		return time.Time{}, nil, invalid(endField, "must be a date in YYYY-MM-DD format")
	}
	if endDate.Before(startDate) {
		return time.Time{}, nil, invalid(endField, "must not precede the start date")
	}

	return startDate, &endDate, nil
}

// checkDecimal rejects values that do not fit a DECIMAL(maxDigits,2) column
func checkDecimal(field string, d decimal.Decimal, maxDigits int32) error {
	if !d.Truncate(decimalPlaces).Equal(d) {
		return invalid(field, fmt.Sprintf("must have at most %d decimal places", decimalPlaces))
	}
	intDigits := maxDigits - decimalPlaces
	if d.Abs().Cmp(decimal.New(1, intDigits)) >= 0 {
		return invalid(field, fmt.Sprintf("must have at most %d digits before the decimal point", intDigits))
	}
	return nil
}
