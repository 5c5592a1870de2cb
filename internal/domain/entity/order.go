package entity

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CountsTowardRevenue is false for orders whose money went back to the customer.
func (s OrderStatus) CountsTowardRevenue() bool {
	return s != OrderStatusCancelled && s != OrderStatusReturned
}

// CanTransition reports whether an order may move from one status to another.
// Every valid status may follow every other one; tighten the rules here.
func CanTransition(from, to OrderStatus) bool {
	return from.Valid() && to.Valid()
}

type OrderItem struct {
	ProductID string  `json:"product_id" firestore:"productId"`
	Name      string  `json:"name" firestore:"name"`
	Price     float64 `json:"price" firestore:"price"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
}

type Order struct {
	ID              string      `json:"id" firestore:"id"`
	OrderID         string      `json:"order_id" firestore:"orderId"`
	CustomerName    string      `json:"customer_name" firestore:"customerName"`
	CustomerEmail   string      `json:"customer_email" firestore:"customerEmail"`
	ShippingAddress string      `json:"shipping_address" firestore:"shippingAddress"`
	Items           []OrderItem `json:"items" firestore:"items"`
	Subtotal        float64     `json:"subtotal" firestore:"subtotal"`
	Shipping        float64     `json:"shipping" firestore:"shipping"`
	VAT             float64     `json:"vat" firestore:"vat"`
	TotalAmount     float64     `json:"total_amount" firestore:"totalAmount"`
	Status          OrderStatus `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
