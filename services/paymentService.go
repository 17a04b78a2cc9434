package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentConfig struct {
	BaseURL       string
	APIKey        string
	CallbackURL   string
	WebhookSecret string
}

type PaymentService struct {
	db     *gorm.DB
	orders *OrderService
	client *resty.Client
	cfg    PaymentConfig
}

func NewPaymentService(db *gorm.DB, orders *OrderService, client *resty.Client, cfg PaymentConfig) *PaymentService {
	return &PaymentService{db: db, orders: orders, client: client, cfg: cfg}
}

type PaymentSession struct {
	URL    string `json:"url"`
	Method string `json:"paymentMethod"`
}

type sessionLineItem struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// webhookEvent is the payload shape the provider signs and posts back.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		TransactionReference string `json:"transaction_reference"`
		MerchantReference    string `json:"merchant_reference"`
		Amount               string `json:"amount"`
		PaymentMethod        string `json:"payment_method"`
		ShippingAddress      string `json:"shipping_address"`
	} `json:"data"`
}

// CreateSession builds a hosted-checkout session for the user's current cart.
// No order is created and no stock is touched; that happens when the
// provider's webhook confirms payment.
func (s *PaymentService) CreateSession(userID uint, method string) (*PaymentSession, error) {
	var items []models.CartItem
	if err := s.db.Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	total := decimal.Zero
	lineItems := make([]sessionLineItem, 0, len(items))
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lineItems = append(lineItems, sessionLineItem{
			Name:      item.Product.Name,
			UnitPrice: item.Product.Price.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}

	// The merchant reference carries the user id so the webhook can be
	// correlated back to the cart owner.
	merchantRef := fmt.Sprintf("user-%d-%s", userID, uuid.NewString())

	sessionBody := map[string]any{
		"merchant_reference": merchantRef,
		"amount":             total.StringFixed(2),
		"currency":           "KES",
		"payment_method":     method,
		"line_items":         lineItems,
		"callback_url":       s.cfg.CallbackURL,
	}

	resp, err := s.client.R().
		SetHeader("Authorization", "Bearer "+s.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(sessionBody).
		Post(s.cfg.BaseURL + "/v1/checkout/sessions")
	if err != nil {
		return nil, &Error{Status: http.StatusServiceUnavailable, Message: "payment provider unavailable"}
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		log.Error().Int("status", resp.StatusCode()).Bytes("body", resp.Body()).Msg("payment session request rejected")
		return nil, &Error{Status: http.StatusServiceUnavailable, Message: "payment provider unavailable"}
	}

	var sessionResp struct {
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.Unmarshal(resp.Body(), &sessionResp); err != nil || sessionResp.RedirectURL == "" {
		return nil, &Error{Status: http.StatusServiceUnavailable, Message: "invalid response from payment provider"}
	}

	return &PaymentSession{URL: sessionResp.RedirectURL, Method: method}, nil
}

// HandleWebhook verifies the provider signature over the raw body, then
// reconciles a completed payment into an order. Replays of the same
// transaction reference are acknowledged without creating a second order.
func (s *PaymentService) HandleWebhook(payload []byte, signatureHeader string) error {
	if !s.verifySignature(payload, signatureHeader) {
		return ErrBadSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return ErrUnrecognizedWebhook
	}
	if event.Event == "" || event.Data.TransactionReference == "" || event.Data.MerchantReference == "" {
		return ErrUnrecognizedWebhook
	}

	if event.Event != "payment.completed" {
		log.Info().Str("event", event.Event).Msg("ignoring payment webhook event")
		return nil
	}

	userID, err := userIDFromMerchantRef(event.Data.MerchantReference)
	if err != nil {
		return ErrUnrecognizedWebhook
	}

	amount, err := decimal.NewFromString(event.Data.Amount)
	if err != nil {
		log.Warn().
			Str("ref", event.Data.TransactionReference).
			Str("amount", event.Data.Amount).
			Msg("webhook amount not parseable, recording zero")
		amount = decimal.Zero
	}

	paymentDetails, _ := json.Marshal(map[string]string{
		"provider":       "lipia",
		"transactionRef": event.Data.TransactionReference,
		"amount":         event.Data.Amount,
	})

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ptx := models.PaymentTransaction{
			ProviderRef: event.Data.TransactionReference,
			UserID:      userID,
			Amount:      amount,
			Status:      "completed",
		}
		if err := tx.Create(&ptx).Error; err != nil {
			return err
		}

		method := event.Data.PaymentMethod
		if method == "" {
			method = models.PaymentMethodCard
		}
		created, err := s.orders.placeOrder(tx, userID, event.Data.ShippingAddress, method, datatypes.JSON(paymentDetails))
		if err != nil {
			return err
		}

		if err := tx.Model(&ptx).Update("order_id", created.ID).Error; err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			log.Info().Str("ref", event.Data.TransactionReference).Msg("webhook replay for already-fulfilled payment, ignoring")
			return nil
		}
		return err
	}

	go s.orders.sendConfirmation(order)
	return nil
}

func (s *PaymentService) verifySignature(payload []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(payload)
	given, err := hex.DecodeString(strings.TrimSpace(signatureHeader))
	if err != nil {
		return false
	}
	return hmac.Equal(given, mac.Sum(nil))
}

func userIDFromMerchantRef(ref string) (uint, error) {
	parts := strings.SplitN(ref, "-", 3)
	if len(parts) < 3 || parts[0] != "user" {
		return 0, fmt.Errorf("malformed merchant reference %q", ref)
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed merchant reference %q", ref)
	}
	return uint(id), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Drivers without error translation surface the raw constraint message.
	return strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
