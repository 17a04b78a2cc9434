package routes

import (
	"github.com/Njoroge/sokoni-api/controllers"
	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine, products *controllers.ProductController, categories *controllers.CategoryController, authmw *middlewares.Auth) {
	server.GET("/products", authmw.OptionalAuth(), products.GetProducts)
	server.GET("/products/:id", authmw.OptionalAuth(), products.GetProduct)
	server.POST("/products", authmw.RequireAuth(), authmw.RequireStaff(), products.CreateProduct)
	server.PUT("/products/:id", authmw.RequireAuth(), authmw.RequireStaff(), products.UpdateProduct)
	server.DELETE("/products/:id", authmw.RequireAuth(), authmw.RequireStaff(), products.DeleteProduct)
	server.POST("/products/:id/images", authmw.RequireAuth(), authmw.RequireStaff(), products.UploadProductImages)

	server.GET("/categories", categories.GetCategories)
	server.POST("/categories", authmw.RequireAuth(), authmw.RequireStaff(), categories.CreateCategory)
	server.PUT("/categories/:id", authmw.RequireAuth(), authmw.RequireStaff(), categories.UpdateCategory)
	server.DELETE("/categories/:id", authmw.RequireAuth(), authmw.RequireStaff(), categories.DeleteCategory)
}
