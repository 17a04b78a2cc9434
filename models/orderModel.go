package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"

	PaymentMethodCOD  = "cod"
	PaymentMethodCard = "card"
)

type Order struct {
	gorm.Model
	UserID          uint            `json:"userId"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"size:32"`
	PaymentDetails  datatypes.JSON  `json:"paymentDetails,omitempty"`
	Status          string          `json:"status" gorm:"size:32"`
	OrderItems      []OrderItem     `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Name and Price are snapshots taken at checkout; later product edits must
// not change what the customer was charged.
type OrderItem struct {
	gorm.Model
	OrderID   uint            `json:"orderId"`
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Quantity  int             `json:"quantity"`
}

// One row per provider transaction reference. The unique index is what makes
// webhook replays safe: a second insert for the same reference fails and the
// event is acknowledged without creating another order.
type PaymentTransaction struct {
	gorm.Model
	ProviderRef string          `json:"providerRef" gorm:"uniqueIndex;size:191"`
	UserID      uint            `json:"userId"`
	OrderID     *uint           `json:"orderId"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Status      string          `json:"status" gorm:"size:32"`
}
