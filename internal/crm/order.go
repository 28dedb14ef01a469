package crm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OrderStatus enumerates fulfilment stages.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus enumerates settlement states.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// UnknownLeadName is the display name substituted when an order references a
// lead that no longer exists.
const UnknownLeadName = "Unknown"

var (
	// ErrInvalidOrderStatus indicates a fulfilment status outside the closed set.
	ErrInvalidOrderStatus = errors.New("crm: invalid order status")
	// ErrInvalidPaymentStatus indicates a settlement status outside the closed set.
	ErrInvalidPaymentStatus = errors.New("crm: invalid payment status")
	// ErrInvalidLineItem indicates a line item violating quantity or price bounds.
	ErrInvalidLineItem = errors.New("crm: invalid line item")
)

// ParseOrderStatus validates raw input against the closed status set.
func ParseOrderStatus(rawInput string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(rawInput))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusConfirmed:
		return OrderStatusConfirmed, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, rawInput)
	}
}

// ParsePaymentStatus validates raw input against the closed status set.
func ParsePaymentStatus(rawInput string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(rawInput))) {
	case PaymentStatusUnpaid:
		return PaymentStatusUnpaid, nil
	case PaymentStatusPartial:
		return PaymentStatusPartial, nil
	case PaymentStatusPaid:
		return PaymentStatusPaid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, rawInput)
	}
}

// LineItem is a single ordered product position.
type LineItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
}

// Validate enforces quantity >= 1 and a non-negative unit price.
func (i LineItem) Validate() error {
	if i.Quantity < 1 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidLineItem, i.Quantity)
	}
	if i.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price %v", ErrInvalidLineItem, i.UnitPrice)
	}
	return nil
}

// Subtotal returns quantity times unit price.
func (i LineItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// LineItemsTotal sums subtotals across items. Order.TotalAmount is always
// derived through this function and never mutated independently.
func LineItemsTotal(items []LineItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// Order models a purchase placed against exactly one lead. LeadName is a
// read-time denormalization, never persisted.
type Order struct {
	ID            string
	UserID        string
	LeadID        string
	LeadName      string
	Items         []LineItem
	TotalAmount   float64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder carries caller-supplied fields for an order insert. Empty statuses
// default to pending/unpaid.
type NewOrder struct {
	LeadID        string
	Items         []LineItem
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

// OrderPatch describes a partial update. Patching Items recomputes the total.
type OrderPatch struct {
	LeadID        *string
	Items         *[]LineItem
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
}
