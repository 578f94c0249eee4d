package api_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/estate-registry/internal/api/testutils"
	"github.com/rongwang/estate-registry/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	buyerID := createUser(t, testCtx, "Can Ozturk", "buyer")
	otherBuyer := createUser(t, testCtx, "Selin Aydin", "buyer")
	propertyID := createProperty(t, testCtx, propertyBody("S-1", "Antalya", 3, 130))

	// Test case 1: Successful sale
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/properties/sales",
		gin.H{"propertyId": propertyID, "buyerId": buyerID, "salePrice": "650000.50"},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.SaleResponse
	testutils.DecodeJSON(t, w, &response)
	assert.Equal(t, buyerID, response.Sale.BuyerID)
	assert.Equal(t, "Can Ozturk", response.Sale.BuyerName)
	assert.True(t, decimal.RequireFromString("650000.50").Equal(response.Sale.SalePrice))

	// Test case 2: A property keeps a single sale
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/properties/sales",
		gin.H{"propertyId": propertyID, "buyerId": otherBuyer, "salePrice": 700000},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResponse models.ErrorResponse
	testutils.DecodeJSON(t, w, &errResponse)
	assert.Contains(t, errResponse.Fields, "propertyId")

	// Test case 3: Invalid input
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/sales", gin.H{
		"propertyId": propertyID, "buyerId": buyerID, "salePrice": -1,
	}))
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/sales", gin.H{
		"propertyId": "missing", "buyerId": buyerID, "salePrice": 1000,
	}))
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/sales", gin.H{
		"propertyId": propertyID, "buyerId": buyerID,
	}))

	// The stored sale is unchanged
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/transactions", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history models.TransactionHistoryResponse
	testutils.DecodeJSON(t, w, &history)
	require.Len(t, history.Sales, 1)
	assert.Equal(t, buyerID, history.Sales[0].BuyerID)
	assert.Equal(t, "S-1", history.Sales[0].AddressCode)
	assert.Empty(t, history.Rentals)
}

func TestCreateRental(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	tenantID := createUser(t, testCtx, "Elif Sahin", "tenant")
	propertyID := createProperty(t, testCtx, propertyBody("T-1", "Eskisehir", 2, 70))

	rental := gin.H{
		"propertyId": propertyID,
		"tenantId":   tenantID,
		"rentPrice":  3500,
		"startDate":  "2023-03-01",
		"endDate":    "2024-02-29",
	}

	// Test case 1: Successful rental
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/properties/rentals",
		rental,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.RentalResponse
	testutils.DecodeJSON(t, w, &response)
	assert.NotEmpty(t, response.Rental.ID)
	require.NotNil(t, response.Rental.EndDate)
	assert.Equal(t, "2024-02-29", response.Rental.EndDate.Format("2006-01-02"))

	// Test case 2: Same property, tenant and start date
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/properties/rentals",
		rental,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResponse models.ErrorResponse
	testutils.DecodeJSON(t, w, &errResponse)
	assert.Equal(t, "VALIDATION_ERROR", errResponse.Code)
	assert.Contains(t, errResponse.Fields, "startDate")

	// Test case 3: End before start
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/rentals", gin.H{
		"propertyId": propertyID, "tenantId": tenantID, "rentPrice": 3500,
		"startDate": "2025-01-10", "endDate": "2025-01-01",
	}))

	// Test case 4: Malformed date
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/rentals", gin.H{
		"propertyId": propertyID, "tenantId": tenantID, "rentPrice": 3500, "startDate": "01/03/2025",
	}))

	// Test case 5: Unknown tenant
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/rentals", gin.H{
		"propertyId": propertyID, "tenantId": "missing", "rentPrice": 3500, "startDate": "2025-01-01",
	}))

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/properties/"+propertyID, nil, nil)
	var detail models.PropertyDetailResponse
	testutils.DecodeJSON(t, w, &detail)
	assert.Len(t, detail.RentalHistory, 1)
}

func TestConcurrentDuplicateRentals(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	tenantID := createUser(t, testCtx, "Elif Sahin", "tenant")
	propertyID := createProperty(t, testCtx, propertyBody("C-1", "Konya", 2, 65))

	const numGoroutines = 8

	codes := make(chan int, numGoroutines)
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- post(testCtx, "/api/properties/rentals", gin.H{
				"propertyId": propertyID, "tenantId": tenantID, "rentPrice": 2500, "startDate": "2024-05-01",
			})
		}()
	}
	wg.Wait()
	close(codes)

	created, rejected := 0, 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
			rejected++
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, numGoroutines-1, rejected)
}

func TestCreateOwnership(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	ownerID := createUser(t, testCtx, "Ayse Yilmaz", "owner")
	propertyID := createProperty(t, testCtx, propertyBody("O-1", "Trabzon", 3, 95))

	interval := gin.H{
		"propertyId": propertyID, "ownerId": ownerID,
		"startDate": "2018-04-01", "endDate": "2020-04-01",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/ownerships",
		interval,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.OwnershipResponse
	testutils.DecodeJSON(t, w, &response)
	assert.Equal(t, "Ayse Yilmaz", response.Ownership.OwnerName)
	assert.False(t, response.Ownership.Open())

	// Duplicate interval
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/ownerships", interval))

	// End before start
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/ownerships", gin.H{
		"propertyId": propertyID, "ownerId": ownerID,
		"startDate": "2021-01-01", "endDate": "2020-12-31",
	}))
}

func TestTransferOwnership(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	sellerID := createUser(t, testCtx, "Ayse Yilmaz", "seller")
	buyerID := createUser(t, testCtx, "Can Ozturk", "buyer")

	body := propertyBody("X-1", "Istanbul", 3, 120)
	body["currentOwnerId"] = sellerID
	propertyID := createProperty(t, testCtx, body)

	mustPost(t, testCtx, "/api/ownerships", gin.H{
		"propertyId": propertyID, "ownerId": sellerID, "startDate": "2015-09-01",
	})

	// Test case 1: Date before the current interval started
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/"+propertyID+"/transfer", gin.H{
		"newOwnerId": buyerID, "date": "2014-01-01",
	}))

	// Test case 2: Successful transfer
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/properties/"+propertyID+"/transfer",
		gin.H{"newOwnerId": buyerID, "date": "2022-06-01"},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.OwnershipResponse
	testutils.DecodeJSON(t, w, &response)
	assert.Equal(t, buyerID, response.Ownership.OwnerID)
	assert.True(t, response.Ownership.Open())

	// Test case 3: Already the owner
	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/properties/"+propertyID+"/transfer", gin.H{
		"newOwnerId": buyerID, "date": "2023-01-01",
	}))

	// Test case 4: Unknown property
	assert.Equal(t, http.StatusNotFound, post(testCtx, "/api/properties/missing/transfer", gin.H{
		"newOwnerId": buyerID, "date": "2023-01-01",
	}))

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/properties/"+propertyID, nil, nil)
	var detail models.PropertyDetailResponse
	testutils.DecodeJSON(t, w, &detail)

	require.NotNil(t, detail.Property.CurrentOwnerID)
	assert.Equal(t, buyerID, *detail.Property.CurrentOwnerID)
	require.Len(t, detail.Ownerships, 2)
	assert.Equal(t, sellerID, detail.Ownerships[0].OwnerID)
	require.NotNil(t, detail.Ownerships[0].EndDate)
	assert.Equal(t, "2022-06-01", detail.Ownerships[0].EndDate.Format("2006-01-02"))
	assert.Equal(t, buyerID, detail.Ownerships[1].OwnerID)
	assert.Nil(t, detail.Ownerships[1].EndDate)
}

func TestGenericTransactions(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	userID := createUser(t, testCtx, "Deniz Arslan", "tenant")
	propertyID := createProperty(t, testCtx, propertyBody("G-1", "Mersin", 2, 60))

	mustPost(t, testCtx, "/api/transactions", gin.H{
		"propertyId": propertyID, "userId": userID, "transactionType": "rental",
		"price": 2000, "startDate": "2024-01-01", "endDate": "2024-12-31",
	})

	assert.Equal(t, http.StatusBadRequest, post(testCtx, "/api/transactions", gin.H{
		"propertyId": propertyID, "userId": userID, "transactionType": "lease",
		"price": 2000, "startDate": "2024-01-01",
	}))

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/transactions/generic", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response models.TransactionListResponse
	testutils.DecodeJSON(t, w, &response)
	require.Len(t, response.Transactions, 1)
	assert.Equal(t, models.TransactionTypeRental, response.Transactions[0].TransactionType)
	assert.Equal(t, "Deniz Arslan", response.Transactions[0].UserName)

	// The generic log does not feed the rental records
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/transactions", nil, nil)
	var history models.TransactionHistoryResponse
	testutils.DecodeJSON(t, w, &history)
	assert.Empty(t, history.Rentals)
}
