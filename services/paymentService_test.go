package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test"

func newPaymentService(db *gorm.DB, baseURL string) *PaymentService {
	orders := NewOrderService(db, &fakeMailer{}, WithoutRowLocks())
	return NewPaymentService(db, orders, resty.New(), PaymentConfig{
		BaseURL:       baseURL,
		APIKey:        "sk_test",
		CallbackURL:   "https://shop.example.com/payment/callback",
		WebhookSecret: testWebhookSecret,
	})
}

func sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func completedWebhook(userID uint, ref string) []byte {
	return []byte(fmt.Sprintf(`{
		"event": "payment.completed",
		"data": {
			"transaction_reference": %q,
			"merchant_reference": "user-%d-3f1c9a2e",
			"amount": "25.00",
			"payment_method": "card",
			"shipping_address": "Moi Avenue, Nairobi"
		}
	}`, ref, userID))
}

func TestCreateSessionReturnsRedirectURL(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Phone Case", "10.00", 5)
	addToCart(t, db, user.ID, product.ID, 2)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"redirect_url": "https://checkout.example.com/s/abc123"}`)
	}))
	defer provider.Close()

	svc := newPaymentService(db, provider.URL)
	session, err := svc.CreateSession(user.ID, "card")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.URL != "https://checkout.example.com/s/abc123" {
		t.Errorf("unexpected redirect url %q", session.URL)
	}
	if session.Method != "card" {
		t.Errorf("unexpected method %q", session.Method)
	}

	// Creating a session must not touch stock, cart, or orders.
	var p models.Product
	db.First(&p, product.ID)
	if p.Stock != 5 {
		t.Errorf("stock should be untouched, got %d", p.Stock)
	}
	if got := countRows(t, db, &models.CartItem{}, "user_id = ?", user.ID); got != 1 {
		t.Errorf("cart should be untouched, got %d items", got)
	}
	if got := countRows(t, db, &models.Order{}, "1 = 1"); got != 0 {
		t.Errorf("no order should exist yet, got %d", got)
	}
}

func TestCreateSessionEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)

	svc := newPaymentService(db, "http://localhost:0")
	if _, err := svc.CreateSession(user.ID, "card"); err != ErrCartEmpty {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestHandleWebhookCreatesOrder(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Phone Case", "10.00", 5)
	addToCart(t, db, user.ID, product.ID, 2)

	svc := newPaymentService(db, "http://localhost:0")
	payload := completedWebhook(user.ID, "txn_001")

	if err := svc.HandleWebhook(payload, sign(payload)); err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}

	var order models.Order
	if err := db.Preload("OrderItems").Where("user_id = ?", user.ID).First(&order).Error; err != nil {
		t.Fatalf("expected an order to exist: %v", err)
	}
	if order.PaymentMethod != "card" {
		t.Errorf("expected payment method card, got %q", order.PaymentMethod)
	}
	if order.ShippingAddress != "Moi Avenue, Nairobi" {
		t.Errorf("shipping address not carried over: %q", order.ShippingAddress)
	}
	if len(order.PaymentDetails) == 0 {
		t.Error("payment details blob should record the transaction reference")
	}

	var ptx models.PaymentTransaction
	if err := db.Where("provider_ref = ?", "txn_001").First(&ptx).Error; err != nil {
		t.Fatalf("expected a payment transaction row: %v", err)
	}
	if ptx.OrderID == nil || *ptx.OrderID != order.ID {
		t.Error("payment transaction should reference the created order")
	}

	if got := countRows(t, db, &models.CartItem{}, "user_id = ?", user.ID); got != 0 {
		t.Errorf("cart should be cleared, got %d items", got)
	}
}

func TestHandleWebhookUnparseableAmountRecordsZero(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Phone Case", "10.00", 5)
	addToCart(t, db, user.ID, product.ID, 2)

	svc := newPaymentService(db, "http://localhost:0")
	payload := []byte(fmt.Sprintf(`{
		"event": "payment.completed",
		"data": {
			"transaction_reference": "txn_bad_amount",
			"merchant_reference": "user-%d-3f1c9a2e",
			"amount": "not-a-number",
			"payment_method": "card",
			"shipping_address": "Moi Avenue, Nairobi"
		}
	}`, user.ID))

	if err := svc.HandleWebhook(payload, sign(payload)); err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}

	// The order still goes through; the transaction row records zero so the
	// mismatch shows up in reconciliation.
	if got := countRows(t, db, &models.Order{}, "user_id = ?", user.ID); got != 1 {
		t.Fatalf("expected 1 order, got %d", got)
	}
	var ptx models.PaymentTransaction
	if err := db.Where("provider_ref = ?", "txn_bad_amount").First(&ptx).Error; err != nil {
		t.Fatalf("expected a payment transaction row: %v", err)
	}
	if !ptx.Amount.IsZero() {
		t.Errorf("unparseable amount should be recorded as zero, got %s", ptx.Amount)
	}
}

func TestHandleWebhookReplayIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Phone Case", "10.00", 5)
	addToCart(t, db, user.ID, product.ID, 2)

	svc := newPaymentService(db, "http://localhost:0")
	payload := completedWebhook(user.ID, "txn_replay")

	if err := svc.HandleWebhook(payload, sign(payload)); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := svc.HandleWebhook(payload, sign(payload)); err != nil {
		t.Fatalf("replay should be acknowledged, got %v", err)
	}

	if got := countRows(t, db, &models.Order{}, "user_id = ?", user.ID); got != 1 {
		t.Errorf("replay must not create a second order, got %d", got)
	}
	var p models.Product
	db.First(&p, product.ID)
	if p.Stock != 3 {
		t.Errorf("stock should be decremented exactly once, got %d", p.Stock)
	}
}

func TestHandleWebhookBadSignature(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Phone Case", "10.00", 5)
	addToCart(t, db, user.ID, product.ID, 2)

	svc := newPaymentService(db, "http://localhost:0")
	payload := completedWebhook(user.ID, "txn_bad_sig")

	if err := svc.HandleWebhook(payload, "deadbeef"); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if err := svc.HandleWebhook(payload, ""); err != ErrBadSignature {
		t.Fatalf("missing signature should fail, got %v", err)
	}

	if got := countRows(t, db, &models.Order{}, "1 = 1"); got != 0 {
		t.Errorf("rejected webhook must not create orders, got %d", got)
	}
}

func TestHandleWebhookUnrecognizedPayload(t *testing.T) {
	db := setupTestDB(t)
	svc := newPaymentService(db, "http://localhost:0")

	payload := []byte(`{"something": "else"}`)
	if err := svc.HandleWebhook(payload, sign(payload)); err != ErrUnrecognizedWebhook {
		t.Fatalf("expected ErrUnrecognizedWebhook, got %v", err)
	}

	payload = []byte(`not json at all`)
	if err := svc.HandleWebhook(payload, sign(payload)); err != ErrUnrecognizedWebhook {
		t.Fatalf("expected ErrUnrecognizedWebhook for non-JSON, got %v", err)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Phone Case", "10.00", 5)
	addToCart(t, db, user.ID, product.ID, 2)

	svc := newPaymentService(db, "http://localhost:0")
	payload := []byte(fmt.Sprintf(`{
		"event": "payment.failed",
		"data": {
			"transaction_reference": "txn_failed",
			"merchant_reference": "user-%d-3f1c9a2e"
		}
	}`, user.ID))

	if err := svc.HandleWebhook(payload, sign(payload)); err != nil {
		t.Fatalf("non-completed events should be acknowledged, got %v", err)
	}
	if got := countRows(t, db, &models.Order{}, "1 = 1"); got != 0 {
		t.Errorf("failed payment must not create an order, got %d", got)
	}
}
