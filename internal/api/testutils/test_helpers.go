package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/estate-registry/internal/api"
	"github.com/rongwang/estate-registry/internal/config"
	"github.com/rongwang/estate-registry/internal/metrics"
	"github.com/rongwang/estate-registry/internal/repository"
	"github.com/rongwang/estate-registry/internal/service"
	"github.com/rongwang/estate-registry/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminUsername = "admin"
	AdminPassword = "testpassword"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository repository.Repository
	Service    service.Service
	Metrics    *metrics.Metrics
	JWTSecret  []byte
	DB         *sqlx.DB
	AdminJWT   string
}

// SetupTestContext wires the full stack over a private in-memory SQLite database
func SetupTestContext(t *testing.T) *TestContext {
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	require.NoError(t, err, "Failed to hash admin password")

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.New().String()),
		},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key",
			AdminUsername:     AdminUsername,
			AdminPasswordHash: string(hash),
		},
	}

	db, err := config.SetupDatabase(cfg)
	require.NoError(t, err, "Failed to set up test database")

	logger := utils.NewDiscardLogger()
	m := metrics.New()
	repo := repository.NewSQLRepository(db)
	svc := service.NewDefaultService(repo, cfg.Auth, logger, m)
	handler := api.NewHandler(svc, m, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.JWTSecret(cfg.Auth.JWTSecret))
	handler.SetupRoutes(router)

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		Metrics:    m,
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		DB:         db,
		AdminJWT:   SignToken(t, cfg.Auth.JWTSecret, AdminUsername, 24*time.Hour),
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		t.DB.Close()
	}
}

// SignToken issues an HS256 token for subject valid for ttl. A negative ttl
// yields an expired token.
func SignToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	require.NoError(t, err, "Failed to generate JWT token")

	return tokenString
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// DecodeJSON unmarshals a response body into v
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
