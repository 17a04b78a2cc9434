package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/Njoroge/sokoni-api/utils"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentEmail struct {
	To       string
	Subject  string
	Data     utils.EmailData
	Template string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (m *fakeMailer) Send(to string, subject string, data utils.EmailData, templateName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Data: data, Template: templateName})
	return nil
}

func (m *fakeMailer) last() (sentEmail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentEmail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A pool of in-memory sqlite connections would each see its own
	// database; keep everything on one connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		FirstName:        "Wanjiku",
		LastName:         "Kamau",
		Email:            "wanjiku@example.com",
		Role:             models.RoleCustomer,
		AccountActivated: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return &p
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID uint, qty int) {
	t.Helper()
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed cart item: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}

func TestPlaceOrderFreezesTotalsAndClearsCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	productA := seedProduct(t, db, "Phone Case", "10.00", 5)
	productB := seedProduct(t, db, "Charger", "5.00", 3)
	addToCart(t, db, user.ID, productA.ID, 2)
	addToCart(t, db, user.ID, productB.ID, 1)

	svc := NewOrderService(db, &fakeMailer{}, WithoutRowLocks())
	order, err := svc.PlaceOrder(user.ID, "Moi Avenue, Nairobi", models.PaymentMethodCOD, nil)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if !order.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("expected total 25.00, got %s", order.Total)
	}
	if len(order.OrderItems) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.OrderItems))
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("expected status Pending, got %s", order.Status)
	}

	// Prices must be frozen at purchase time.
	for _, item := range order.OrderItems {
		if item.ProductID == productA.ID && !item.Price.Equal(decimal.RequireFromString("10.00")) {
			t.Errorf("product A frozen price wrong: %s", item.Price)
		}
	}

	if got := countRows(t, db, &models.CartItem{}, "user_id = ?", user.ID); got != 0 {
		t.Errorf("expected empty cart, found %d items", got)
	}

	var a, b models.Product
	db.First(&a, productA.ID)
	db.First(&b, productB.ID)
	if a.Stock != 3 {
		t.Errorf("expected stock(A) = 3, got %d", a.Stock)
	}
	if b.Stock != 2 {
		t.Errorf("expected stock(B) = 2, got %d", b.Stock)
	}

	if got := countRows(t, db, &models.Notification{}, "user_id = ?", user.ID); got != 1 {
		t.Errorf("expected 1 notification, got %d", got)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)

	svc := NewOrderService(db, &fakeMailer{}, WithoutRowLocks())
	if _, err := svc.PlaceOrder(user.ID, "Moi Avenue, Nairobi", models.PaymentMethodCOD, nil); err != ErrCartEmpty {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	productA := seedProduct(t, db, "Phone Case", "10.00", 5)
	productB := seedProduct(t, db, "Charger", "5.00", 1)
	addToCart(t, db, user.ID, productA.ID, 2)
	addToCart(t, db, user.ID, productB.ID, 4) // only 1 in stock

	svc := NewOrderService(db, &fakeMailer{}, WithoutRowLocks())
	_, err := svc.PlaceOrder(user.ID, "Moi Avenue, Nairobi", models.PaymentMethodCOD, nil)
	if err == nil {
		t.Fatal("expected stock conflict, got nil")
	}

	stockErr, ok := err.(*StockError)
	if !ok {
		t.Fatalf("expected *StockError, got %T: %v", err, err)
	}
	if stockErr.ProductName != "Charger" {
		t.Errorf("conflict should name the offending product, got %q", stockErr.ProductName)
	}
	if stockErr.Available != 1 {
		t.Errorf("conflict should report available quantity 1, got %d", stockErr.Available)
	}

	// Full rollback: no order, no items, stock and cart untouched.
	if got := countRows(t, db, &models.Order{}, "user_id = ?", user.ID); got != 0 {
		t.Errorf("expected 0 orders, got %d", got)
	}
	if got := countRows(t, db, &models.OrderItem{}, "1 = 1"); got != 0 {
		t.Errorf("expected 0 order items, got %d", got)
	}
	if got := countRows(t, db, &models.CartItem{}, "user_id = ?", user.ID); got != 2 {
		t.Errorf("cart should be untouched, got %d items", got)
	}
	var a models.Product
	db.First(&a, productA.ID)
	if a.Stock != 5 {
		t.Errorf("stock(A) should be untouched, got %d", a.Stock)
	}
}

func TestStockReadsLockRowsByDefault(t *testing.T) {
	db := setupTestDB(t)

	var products []models.Product

	svc := NewOrderService(db, &fakeMailer{})
	dry := db.Session(&gorm.Session{DryRun: true})
	stmt := svc.lock(dry).Where("id IN ?", []uint{1, 2}).Order("id").Find(&products).Statement
	if !strings.Contains(stmt.SQL.String(), "FOR UPDATE") {
		t.Errorf("default stock read should lock rows, got %q", stmt.SQL.String())
	}

	unlocked := NewOrderService(db, &fakeMailer{}, WithoutRowLocks())
	dry = db.Session(&gorm.Session{DryRun: true})
	stmt = unlocked.lock(dry).Where("id IN ?", []uint{1, 2}).Order("id").Find(&products).Statement
	if strings.Contains(stmt.SQL.String(), "FOR UPDATE") {
		t.Errorf("WithoutRowLocks should skip the locking clause, got %q", stmt.SQL.String())
	}
}

func TestPlaceOrderSecondCheckoutSeesDecrementedStock(t *testing.T) {
	db := setupTestDB(t)
	productA := seedProduct(t, db, "Limited Sneaker", "120.00", 1)

	first := seedUser(t, db)
	second := models.User{FirstName: "Otieno", Email: "otieno@example.com", Role: models.RoleCustomer, AccountActivated: true}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("failed to seed second user: %v", err)
	}

	addToCart(t, db, first.ID, productA.ID, 1)
	addToCart(t, db, second.ID, productA.ID, 1)

	svc := NewOrderService(db, &fakeMailer{}, WithoutRowLocks())
	if _, err := svc.PlaceOrder(first.ID, "Moi Avenue, Nairobi", models.PaymentMethodCOD, nil); err != nil {
		t.Fatalf("first checkout should succeed: %v", err)
	}

	_, err := svc.PlaceOrder(second.ID, "Kenyatta Avenue, Nairobi", models.PaymentMethodCOD, nil)
	if _, ok := err.(*StockError); !ok {
		t.Fatalf("second checkout should hit a stock conflict, got %v", err)
	}

	var a models.Product
	db.First(&a, productA.ID)
	if a.Stock != 0 {
		t.Errorf("stock must never go negative, got %d", a.Stock)
	}
	if got := countRows(t, db, &models.Order{}, "1 = 1"); got != 1 {
		t.Errorf("exactly one order should exist, got %d", got)
	}
}
