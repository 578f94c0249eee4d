package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/estate-registry/internal/metrics"
	"github.com/rongwang/estate-registry/internal/models"
	"github.com/rongwang/estate-registry/internal/service"
	"github.com/sirupsen/logrus"
)

// Handler handles API requests
type Handler struct {
	service service.Service
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, m *metrics.Metrics, logger *logrus.Logger) *Handler {
	useJSONFieldNames()

	return &Handler{
		service: svc,
		metrics: m,
		logger:  logger,
	}
}

// SetupRoutes sets up the API routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}

	api.GET("/properties", h.ListProperties)
	api.GET("/properties/:id", h.GetPropertyDetail)
	api.GET("/properties/owner/:userId", h.ListPropertiesByOwner)
	api.GET("/properties/tenant/:userId", h.ListPropertiesByTenant)
	api.GET("/properties/buyer/:userId", h.ListPropertiesByBuyer)
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUserDetail)
	api.GET("/stats", h.GetStats)
	api.GET("/transactions", h.GetTransactionHistory)
	api.GET("/transactions/generic", h.ListTransactions)

	// Protected routes
	protected := api.Group("")
	protected.Use(AuthMiddleware())
	{
		protected.POST("/properties", h.CreateProperty)
		protected.POST("/properties/sales", h.CreateSale)
		protected.POST("/properties/rentals", h.CreateRental)
		protected.POST("/properties/:id/transfer", h.TransferOwnership)
		protected.POST("/users", h.CreateUser)
		protected.POST("/ownerships", h.CreateOwnership)
		protected.POST("/transactions", h.CreateTransaction)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Auth handlers
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// User handlers
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListUsers(c *gin.Context) {
	resp, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetUserDetail(c *gin.Context) {
	resp, err := h.service.GetUserDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Property handlers
func (h *Handler) CreateProperty(c *gin.Context) {
	var req models.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.CreateProperty(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListProperties(c *gin.Context) {
	var query models.PropertyFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.ListProperties(c.Request.Context(), query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetPropertyDetail(c *gin.Context) {
	resp, err := h.service.GetPropertyDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListPropertiesByOwner(c *gin.Context) {
	resp, err := h.service.ListPropertiesByOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListPropertiesByTenant(c *gin.Context) {
	resp, err := h.service.ListPropertiesByTenant(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListPropertiesByBuyer(c *gin.Context) {
	resp, err := h.service.ListPropertiesByBuyer(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Ownership handlers
func (h *Handler) CreateOwnership(c *gin.Context) {
	var req models.CreateOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.CreateOwnership(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) TransferOwnership(c *gin.Context) {
	var req models.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.TransferOwnership(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Sale and rental handlers
func (h *Handler) CreateSale(c *gin.Context) {
	var req models.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) CreateRental(c *gin.Context) {
	var req models.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.CreateRental(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resp, err := h.service.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetTransactionHistory(c *gin.Context) {
	resp, err := h.service.GetTransactionHistory(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	resp, err := h.service.ListTransactions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Stats handler
func (h *Handler) GetStats(c *gin.Context) {
	resp, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
