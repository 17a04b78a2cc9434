package routes

import (
	"github.com/Njoroge/sokoni-api/controllers"
	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/gin-gonic/gin"
)

func TicketRoutes(server *gin.Engine, tickets *controllers.TicketController, notifications *controllers.NotificationController, authmw *middlewares.Auth) {
	ticketGroup := server.Group("/tickets", authmw.RequireAuth())
	{
		ticketGroup.GET("", tickets.GetMyTickets)
		ticketGroup.POST("", tickets.CreateTicket)
		ticketGroup.POST("/:ticketId/replies", tickets.ReplyToTicket)
	}

	notificationGroup := server.Group("/notifications", authmw.RequireAuth())
	{
		notificationGroup.GET("", notifications.GetNotifications)
		notificationGroup.PATCH("/:id/read", notifications.MarkRead)
		notificationGroup.GET("/unread-count", notifications.GetUnreadCount)
	}
}
