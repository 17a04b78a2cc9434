package services

import (
	"fmt"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/Njoroge/sokoni-api/utils"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mailer is what the services need from the mail layer; utils.Mailer
// satisfies it and tests substitute a fake.
type Mailer interface {
	Send(to string, subject string, data utils.EmailData, templateName string) error
}

type OrderService struct {
	db     *gorm.DB
	mailer Mailer
	lock   func(tx *gorm.DB) *gorm.DB
}

type OrderOption func(*OrderService)

// WithoutRowLocks skips the FOR UPDATE clause on stock reads, for databases
// that have no row-level locks and serialize writers themselves.
func WithoutRowLocks() OrderOption {
	return func(s *OrderService) {
		s.lock = func(tx *gorm.DB) *gorm.DB { return tx }
	}
}

// NewOrderService defaults to locking product rows with FOR UPDATE so
// concurrent checkouts against the same product serialize their stock checks.
func NewOrderService(db *gorm.DB, mailer Mailer, opts ...OrderOption) *OrderService {
	s := &OrderService{db: db, mailer: mailer}
	s.lock = func(tx *gorm.DB) *gorm.DB {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder converts the user's cart into a durable order: stock is checked
// and decremented under row locks, prices are frozen, the cart is cleared and
// a notification is written, all in one transaction. The confirmation email
// goes out after commit and is best-effort.
func (s *OrderService) PlaceOrder(userID uint, shippingAddress, paymentMethod string, paymentDetails datatypes.JSON) (*models.Order, error) {
	// Precondition check before any transaction is opened.
	var count int64
	if err := s.db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCartEmpty
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.placeOrder(tx, userID, shippingAddress, paymentMethod, paymentDetails)
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.sendConfirmation(order)
	return order, nil
}

// placeOrder runs the checkout inside the caller's transaction. The payment
// webhook path uses this directly so the idempotency record and the order
// commit or roll back together.
func (s *OrderService) placeOrder(tx *gorm.DB, userID uint, shippingAddress, paymentMethod string, paymentDetails datatypes.JSON) (*models.Order, error) {
	var items []models.CartItem
	if err := tx.Where("user_id = ?", userID).Order("product_id").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	// Locked in product-id order so two overlapping checkouts cannot
	// deadlock each other.
	var products []models.Product
	if err := s.lock(tx).Where("id IN ?", productIDs).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, &StockError{ProductID: item.ProductID, ProductName: fmt.Sprintf("product %d", item.ProductID), Available: 0}
		}
		if product.Stock <= 0 || product.Stock < item.Quantity {
			return nil, &StockError{ProductID: product.ID, ProductName: product.Name, Available: product.Stock}
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}

	order := models.Order{
		UserID:          userID,
		Total:           total,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		PaymentDetails:  paymentDetails,
		Status:          models.OrderStatusPending,
		OrderItems:      orderItems,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	for _, item := range order.OrderItems {
		result := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if result.Error != nil {
			return nil, result.Error
		}
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}

	notification := models.Notification{
		UserID:  userID,
		Message: fmt.Sprintf("Your order #%d has been placed.", order.ID),
		Link:    fmt.Sprintf("/orders/%d", order.ID),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return nil, err
	}

	return &order, nil
}

// sendConfirmation emails the order confirmation. Failures are logged and
// swallowed; the order is already committed.
func (s *OrderService) sendConfirmation(order *models.Order) {
	var user models.User
	if err := s.db.First(&user, order.UserID).Error; err != nil {
		log.Error().Err(err).Uint("orderId", order.ID).Msg("confirmation email skipped: user lookup failed")
		return
	}

	data := utils.EmailData{
		Name:    user.FirstName,
		Message: fmt.Sprintf("Thank you for your order! Order #%d totalling %s is being processed.", order.ID, order.Total.StringFixed(2)),
	}
	if err := s.mailer.Send(user.Email, "Order Confirmation", data, "order_confirmation.html"); err != nil {
		log.Error().Err(err).Uint("orderId", order.ID).Msg("failed to send order confirmation email")
		return
	}
	log.Info().Uint("orderId", order.ID).Str("email", user.Email).Msg("order confirmation email sent")
}
