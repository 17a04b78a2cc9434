package models

import "gorm.io/gorm"

// One row per (user, product); adding an existing product merges quantities.
type CartItem struct {
	gorm.Model
	UserID    uint    `json:"userId" gorm:"uniqueIndex:idx_cart_user_product"`
	ProductID uint    `json:"productId" gorm:"uniqueIndex:idx_cart_user_product"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product" gorm:"constraint:OnDelete:CASCADE"`
}

type WishlistItem struct {
	gorm.Model
	UserID    uint    `json:"userId" gorm:"uniqueIndex:idx_wishlist_user_product"`
	ProductID uint    `json:"productId" gorm:"uniqueIndex:idx_wishlist_user_product"`
	Product   Product `json:"product" gorm:"constraint:OnDelete:CASCADE"`
}
