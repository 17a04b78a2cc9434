package middlewares

import (
	"net/http"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/gin-gonic/gin"
)

// RequireStaff allows staff and admin roles. Chain after RequireAuth.
func (a *Auth) RequireStaff() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}
		if !user.IsStaff() {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Staff access required"})
			return
		}
		ctx.Next()
	}
}

// RequireAdmin allows only the admin role. Chain after RequireAuth.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}
		if user.Role != models.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		ctx.Next()
	}
}
