package routes

import (
	"github.com/Njoroge/sokoni-api/controllers"
	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/gin-gonic/gin"
)

func AdminRoutes(server *gin.Engine, orders *controllers.OrderController, tickets *controllers.TicketController, admin *controllers.AdminController, authmw *middlewares.Auth) {
	staff := server.Group("/admin", authmw.RequireAuth(), authmw.RequireStaff())
	{
		staff.GET("/orders", orders.GetOrders)
		staff.PATCH("/orders/:orderId/status", orders.UpdateOrderStatus)
		staff.GET("/orders/undelivered-count", orders.GetUndeliveredOrders)

		staff.GET("/tickets", tickets.GetAllTickets)
		staff.PATCH("/tickets/:ticketId", tickets.UpdateTicketStatus)
	}

	adminOnly := server.Group("/admin/users", authmw.RequireAuth(), authmw.RequireAdmin())
	{
		adminOnly.GET("", admin.GetUsers)
		adminOnly.PATCH("/:userId/role", admin.UpdateUserRole)
		adminOnly.DELETE("/:userId", admin.DeleteUser)
	}
}
