package services

import (
	"fmt"
	"net/http"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Checkout and reconciliation error taxonomy. Every validation error is
// produced before any mutation; anything after the transaction begins rolls
// the whole commit back.
func ErrEmptyCart() *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Cart is empty"}
}

func ErrInsufficientStockFor(productName string) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("Insufficient stock for product: %s", productName),
	}
}

func ErrVoucherInvalid() *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: "Voucher not found or inactive"}
}

func ErrVoucherExpired() *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Voucher has expired"}
}

func ErrVoucherExhausted() *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Voucher is out of stock"}
}

func ErrVoucherMinimumNotMet(minTransaction float64) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("Minimum transaction of %.2f required", minTransaction),
	}
}

func ErrNotFound(what string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func ErrForbidden() *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: "Access denied"}
}

func ErrCheckoutFailed() *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Error during checkout process"}
}

func ErrInternal(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}
