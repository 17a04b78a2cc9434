package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to Sokoni API. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account
- POST "/auth/social" - Sign in with a social provider
- POST "/auth/verify-email/:activationToken" - Activate user account
- POST "/auth/forgot-password" - Request password reset
- POST "/auth/reset-password/:resetToken" - Reset user password
- GET/PUT "/auth/profile" - View or update profile
- PUT "/auth/password" - Change password

CATALOG
- GET "/products" - List products (search, category, brand, featured, price filters)
- GET "/products/{id}" - Get product by ID
- POST/PUT/DELETE "/products" - Manage products (staff)
- POST "/products/{id}/images" - Upload product images (staff)
- GET "/categories" - List categories

CART & WISHLIST
- GET/POST/PUT "/cart" - View, add to, or sync cart
- PATCH/DELETE "/cart/{productId}" - Update or remove a cart line
- POST "/cart/{productId}/move-to-wishlist" - Save for later
- GET/POST "/wishlist" - View or add to wishlist
- POST "/wishlist/{productId}/move-to-cart" - Move back to cart

ORDERS
- POST "/orders/generate-otp" - Request a checkout confirmation code
- POST "/orders" - Place a cash-on-delivery order
- POST "/orders/create-payment-session" - Start an online payment
- GET "/orders" - List your orders
- GET "/shipping/estimate" - Estimate shipping fee

SUPPORT
- GET/POST "/tickets" - View or open support tickets
- POST "/tickets/{ticketId}/replies" - Reply to a ticket
- GET "/notifications" - List notifications`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
