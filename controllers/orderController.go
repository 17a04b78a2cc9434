package controllers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/Njoroge/sokoni-api/models"
	"github.com/Njoroge/sokoni-api/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type OrderController struct {
	db       *gorm.DB
	orders   *services.OrderService
	payments *services.PaymentService
	otp      *services.OTPService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService, payments *services.PaymentService, otp *services.OTPService) *OrderController {
	return &OrderController{db: db, orders: orders, payments: payments, otp: otp}
}

func respondWithServiceError(ctx *gin.Context, err error) {
	status, message := services.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("internal service error")
	}
	sendErrorResponse(ctx, status, message)
}

// GenerateOTP issues a fresh checkout code to the user's email. The response
// is the same whether or not anything was actually sent.
func (c *OrderController) GenerateOTP(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	if err := c.otp.Issue(user.ID); err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "A confirmation code has been sent to your email."})
}

// CreateOrder is the cash-on-delivery checkout. It requires a valid OTP,
// which is only consumed once the order is durably created.
func (c *OrderController) CreateOrder(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var orderData struct {
		ShippingAddress string `json:"shippingAddress" binding:"required"`
		PaymentMethod   string `json:"paymentMethod" binding:"required"`
		OTP             string `json:"otp" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&orderData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	if orderData.PaymentMethod != models.PaymentMethodCOD {
		sendErrorResponse(ctx, http.StatusBadRequest, "Unsupported payment method; use the payment session endpoint for online payment")
		return
	}

	if err := c.otp.Verify(user.ID, orderData.OTP); err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	order, err := c.orders.PlaceOrder(user.ID, orderData.ShippingAddress, orderData.PaymentMethod, nil)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	if err := c.otp.Clear(user.ID); err != nil {
		log.Error().Err(err).Uint("userId", user.ID).Msg("failed to clear consumed OTP")
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"order": order})
}

// CreatePaymentSession returns the provider redirect URL for the current
// cart. The order itself is only created when the webhook confirms payment.
func (c *OrderController) CreatePaymentSession(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var sessionData struct {
		PaymentMethod string `json:"paymentMethod" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&sessionData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := c.payments.CreateSession(user.ID, sessionData.PaymentMethod)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"url":           session.URL,
		"paymentMethod": session.Method,
	})
}

// HandleWebhook receives payment confirmations. Signature verification needs
// the raw body, so nothing here binds JSON before the check.
func (c *OrderController) HandleWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "bad request"})
		return
	}

	signature := ctx.GetHeader("X-Lipia-Signature")
	if err := c.payments.HandleWebhook(payload, signature); err != nil {
		status, message := services.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("webhook processing failed")
		}
		ctx.JSON(status, gin.H{"message": message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

func (c *OrderController) GetMyOrders(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var orders []models.Order
	result := c.db.Preload("OrderItems").
		Where("user_id = ?", user.ID).
		Order("created_at " + sortOrder).
		Find(&orders)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to fetch orders")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders.")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func (c *OrderController) GetMyOrder(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	result := c.db.Preload("OrderItems").
		Where("id = ? AND user_id = ?", orderId, user.ID).
		First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Error().Err(result.Error).Msg("failed to fetch order")
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order.")
		}
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

// GetOrders is the staff listing with pagination and status filter.
func (c *OrderController) GetOrders(ctx *gin.Context) {
	var orders []models.Order

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := c.db.Preload("OrderItems")
	countQuery := c.db.Model(&models.Order{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	result := query.Order("created_at " + sortOrder).Limit(limit).Offset(offset).Find(&orders)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", result.Error)
		return
	}

	var count int64
	countQuery.Count(&count)

	previousPage := page - 1
	nextPage := page + 1
	totalPages := math.Ceil(float64(count) / float64(limit))

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":        count,
			"currentPage":  page,
			"limit":        limit,
			"hasPrevPage":  previousPage > 0,
			"hasNextPage":  int(totalPages) > page,
			"previousPage": previousPage,
			"nextPage":     nextPage,
		},
	})
}

func (c *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	var orderStatusData struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&orderStatusData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	result := c.db.Model(&models.Order{}).Where("id = ?", orderId).Update("status", orderStatusData.Status)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("order status update error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order status")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully."})
}

func (c *OrderController) GetUndeliveredOrders(ctx *gin.Context) {
	var count int64
	result := c.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCompleted).
		Count(&count)
	if result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to count undelivered orders")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"undeliveredOrderCount": count})
}
