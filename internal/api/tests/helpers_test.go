package api_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/estate-registry/internal/api/testutils"
	"github.com/rongwang/estate-registry/internal/models"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, testCtx *testutils.TestContext, name, userType string) string {
	t.Helper()

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/users",
		gin.H{"fullName": name, "userType": userType},
		testutils.AuthHeaders(testCtx.AdminJWT),
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.UserResponse
	testutils.DecodeJSON(t, w, &response)
	return response.User.ID
}

// propertyBody returns a valid create property request; callers override fields
func propertyBody(code, city string, rooms int, squareMeters float64) gin.H {
	return gin.H{
		"description":     "Flat " + code,
		"squareMeters":    squareMeters,
		"roomCount":       rooms,
		"heatingType":     "Natural Gas",
		"addressCode":     code,
		"city":            city,
		"district":        "Central",
		"neighborhood":    "Old Town",
		"street":          "Main Street",
		"buildingNumber":  "12",
		"apartmentNumber": "3",
	}
}

func createProperty(t *testing.T, testCtx *testutils.TestContext, body gin.H) string {
	t.Helper()

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/properties",
		body,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.PropertyResponse
	testutils.DecodeJSON(t, w, &response)
	return response.Property.ID
}

// post sends an authenticated write request
func post(testCtx *testutils.TestContext, path string, body interface{}) int {
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		path,
		body,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)
	return w.Code
}

func mustPost(t *testing.T, testCtx *testutils.TestContext, path string, body interface{}) {
	t.Helper()

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		path,
		body,
		testutils.AuthHeaders(testCtx.AdminJWT),
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func listProperties(t *testing.T, testCtx *testutils.TestContext, query string) []models.Property {
	t.Helper()

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/properties"+query, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response models.PropertyListResponse
	testutils.DecodeJSON(t, w, &response)
	return response.Properties
}

func addressCodes(properties []models.Property) []string {
	codes := make([]string, 0, len(properties))
	for _, p := range properties {
		codes = append(codes, p.AddressCode)
	}
	return codes
}
