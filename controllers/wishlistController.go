package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/Njoroge/sokoni-api/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type WishlistController struct {
	db *gorm.DB
}

func NewWishlistController(db *gorm.DB) *WishlistController {
	return &WishlistController{db: db}
}

func (c *WishlistController) GetWishlist(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var entries []models.WishlistItem
	if result := c.db.Preload("Product").Where("user_id = ?", user.ID).Find(&entries); result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to fetch wishlist")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch wishlist")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"wishlist": entries})
}

func (c *WishlistController) AddToWishlist(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var input struct {
		ProductID uint `json:"productId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	var product models.Product
	if err := c.db.First(&product, input.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Error().Err(err).Msg("failed to fetch product")
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch product")
		}
		return
	}

	entry := models.WishlistItem{UserID: user.ID, ProductID: input.ProductID}
	if err := c.db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			sendErrorResponse(ctx, http.StatusConflict, "Product already on wishlist")
			return
		}
		log.Error().Err(err).Msg("wishlist create error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add to wishlist")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": product.Name + " added to wishlist",
		"id":      entry.ID,
	})
}

func (c *WishlistController) RemoveFromWishlist(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	productId, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	result := c.db.Where("user_id = ? AND product_id = ?", user.ID, productId).Delete(&models.WishlistItem{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("wishlist delete error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to remove wishlist entry")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Wishlist entry not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Wishlist entry removed"})
}

// MoveToCart puts a saved product back into the cart with quantity 1,
// merging if the product is already there.
func (c *WishlistController) MoveToCart(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	productId, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	err = c.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND product_id = ?", user.ID, productId).Delete(&models.WishlistItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var existing models.CartItem
		err := tx.Where("user_id = ? AND product_id = ?", user.ID, productId).First(&existing).Error
		if err == nil {
			existing.Quantity++
			return tx.Save(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := models.CartItem{UserID: user.ID, ProductID: uint(productId), Quantity: 1}
		return tx.Create(&item).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Wishlist entry not found")
			return
		}
		log.Error().Err(err).Msg("move to cart error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to move item to cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Item moved to cart"})
}
