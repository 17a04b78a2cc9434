package middlewares

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Auth struct {
	db     *gorm.DB
	secret string
}

func NewAuth(db *gorm.DB, secret string) *Auth {
	return &Auth{db: db, secret: secret}
}

func (a *Auth) parseToken(ctx *gin.Context) (jwt.MapClaims, *models.User, error) {
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, nil, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil, fmt.Errorf("invalid claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, nil, fmt.Errorf("invalid claims")
	}

	var user models.User
	if err := a.db.First(&user, uint(userID)).Error; err != nil {
		return nil, nil, fmt.Errorf("user no longer exists")
	}

	// Tokens minted before the last password change are stale.
	if user.PasswordChangedAt != nil {
		if iat, ok := claims["iat"].(float64); ok && time.Unix(int64(iat), 0).Before(*user.PasswordChangedAt) {
			return nil, nil, fmt.Errorf("token issued before password change")
		}
	}

	return claims, &user, nil
}

// RequireAuth rejects the request unless a valid token identifies a user.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, user, err := a.parseToken(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		ctx.Set("user", claims)
		ctx.Set("currentUser", user)
		ctx.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and proceeds
// as guest otherwise.
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, user, err := a.parseToken(ctx); err == nil {
			ctx.Set("user", claims)
			ctx.Set("currentUser", user)
		}
		ctx.Next()
	}
}

// CurrentUser returns the authenticated user set by RequireAuth.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get("currentUser")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
