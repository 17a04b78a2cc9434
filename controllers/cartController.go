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

type CartController struct {
	db *gorm.DB
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{db: db}
}

func (c *CartController) GetCart(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var items []models.CartItem
	result := c.db.Preload("Product").Where("user_id = ?", user.ID).Find(&items)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to fetch cart")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": items})
}

// AddToCart creates the cart line or merges quantity into an existing one.
func (c *CartController) AddToCart(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var input struct {
		ProductID uint `json:"productId" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
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

	var existing models.CartItem
	err := c.db.Where("user_id = ? AND product_id = ?", user.ID, input.ProductID).First(&existing).Error

	if err == nil {
		existing.Quantity += input.Quantity
		if err := c.db.Save(&existing).Error; err != nil {
			log.Error().Err(err).Msg("cart item update error")
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity.")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": "Cart item quantity updated",
			"id":      existing.ID,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Msg("cart lookup error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	cartItem := models.CartItem{
		UserID:    user.ID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	if err := c.db.Create(&cartItem).Error; err != nil {
		log.Error().Err(err).Msg("cart item create error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create cart item")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": product.Name + " added to cart",
		"id":      cartItem.ID,
	})
}

// SyncCart replaces the entire cart with the submitted lines, typically after
// a guest cart is merged on login.
func (c *CartController) SyncCart(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var input struct {
		Items []struct {
			ProductID uint `json:"productId" binding:"required"`
			Quantity  int  `json:"quantity" binding:"required,min=1"`
		} `json:"items" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	seen := make(map[uint]struct{}, len(input.Items))
	productIDs := make([]uint, 0, len(input.Items))
	for _, line := range input.Items {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		productIDs = append(productIDs, line.ProductID)
	}

	if len(productIDs) > 0 {
		var found int64
		if err := c.db.Model(&models.Product{}).Where("id IN ?", productIDs).Count(&found).Error; err != nil {
			log.Error().Err(err).Msg("cart sync product lookup error")
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to sync cart")
			return
		}
		if int(found) != len(productIDs) {
			sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
			return
		}
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for _, line := range input.Items {
			item := models.CartItem{UserID: user.ID, ProductID: line.ProductID, Quantity: line.Quantity}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("cart sync error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to sync cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart synced"})
}

func (c *CartController) UpdateQuantity(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	productId, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	result := c.db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", user.ID, productId).
		Update("quantity", input.Quantity)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("cart quantity update error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Cart item not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item quantity updated"})
}

func (c *CartController) RemoveFromCart(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	productId, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	result := c.db.Where("user_id = ? AND product_id = ?", user.ID, productId).Delete(&models.CartItem{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("cart item delete error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to remove cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Cart item not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item removed"})
}

// MoveToWishlist removes the cart line and saves the product for later.
// Moving an item already on the wishlist just drops the cart line.
func (c *CartController) MoveToWishlist(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	productId, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	err = c.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND product_id = ?", user.ID, productId).Delete(&models.CartItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		entry := models.WishlistItem{UserID: user.ID, ProductID: uint(productId)}
		if err := tx.Create(&entry).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Cart item not found")
			return
		}
		log.Error().Err(err).Msg("move to wishlist error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to move item to wishlist")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Item moved to wishlist"})
}
