package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an operational error carrying the HTTP status and a client-safe
// message. Anything else that escapes a service is treated as internal and
// its message is never sent to clients.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrCartEmpty = &Error{Status: http.StatusBadRequest, Message: "cart is empty"}

	// One message for wrong code and expired code alike.
	ErrInvalidOTP = &Error{Status: http.StatusBadRequest, Message: "invalid or expired OTP"}

	ErrBadSignature        = &Error{Status: http.StatusBadRequest, Message: "bad request"}
	ErrUnrecognizedWebhook = &Error{Status: http.StatusBadRequest, Message: "unrecognized webhook source"}
)

// StockError names the offending product and what is left, unlike the
// deliberately generic OTP error.
type StockError struct {
	ProductID   uint
	ProductName string
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.ProductName, e.Available)
}

// HTTPStatus maps a service error to the status and message the API boundary
// should respond with.
func HTTPStatus(err error) (int, string) {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Status, opErr.Message
	}
	var stockErr *StockError
	if errors.As(err, &stockErr) {
		return http.StatusConflict, stockErr.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}
