package routes

import (
	"github.com/Njoroge/sokoni-api/controllers"
	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine, cart *controllers.CartController, wishlist *controllers.WishlistController, authmw *middlewares.Auth) {
	cartGroup := server.Group("/cart", authmw.RequireAuth())
	{
		cartGroup.GET("", cart.GetCart)
		cartGroup.POST("", cart.AddToCart)
		cartGroup.PUT("", cart.SyncCart)
		cartGroup.PATCH("/:productId", cart.UpdateQuantity)
		cartGroup.DELETE("/:productId", cart.RemoveFromCart)
		cartGroup.POST("/:productId/move-to-wishlist", cart.MoveToWishlist)
	}

	wishlistGroup := server.Group("/wishlist", authmw.RequireAuth())
	{
		wishlistGroup.GET("", wishlist.GetWishlist)
		wishlistGroup.POST("", wishlist.AddToWishlist)
		wishlistGroup.DELETE("/:productId", wishlist.RemoveFromWishlist)
		wishlistGroup.POST("/:productId/move-to-cart", wishlist.MoveToCart)
	}
}
