package routes

import (
	"github.com/Njoroge/sokoni-api/controllers"
	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, ctrl *controllers.AuthController, authmw *middlewares.Auth) {
	auth := server.Group("/auth")
	{
		auth.POST("/signup", ctrl.Signup)
		auth.POST("/login", ctrl.Login)
		auth.POST("/social", ctrl.SocialLogin)
		auth.POST("/verify-email/:activationToken", ctrl.ActivateAccount)
		auth.POST("/forgot-password", ctrl.SendPasswordResetLink)
		auth.POST("/reset-password/:resetToken", ctrl.ResetPassword)

		auth.GET("/profile", authmw.RequireAuth(), ctrl.GetProfile)
		auth.PUT("/profile", authmw.RequireAuth(), ctrl.UpdateProfile)
		auth.PUT("/password", authmw.RequireAuth(), ctrl.ChangePassword)
	}
}
