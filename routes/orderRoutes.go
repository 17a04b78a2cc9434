package routes

import (
	"github.com/Njoroge/sokoni-api/controllers"
	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, orders *controllers.OrderController, shipping *controllers.ShippingController, authmw *middlewares.Auth) {
	// The webhook is public; its authenticity comes from the provider
	// signature, not a session.
	server.POST("/orders/webhook", orders.HandleWebhook)

	orderGroup := server.Group("/orders", authmw.RequireAuth())
	{
		orderGroup.POST("/generate-otp", orders.GenerateOTP)
		orderGroup.POST("", orders.CreateOrder)
		orderGroup.POST("/create-payment-session", orders.CreatePaymentSession)
		orderGroup.GET("", orders.GetMyOrders)
		orderGroup.GET("/:orderId", orders.GetMyOrder)
	}

	server.GET("/shipping/estimate", shipping.EstimateShipping)
}
