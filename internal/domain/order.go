package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

type Order struct {
	ID                   int64           `json:"id"`
	OrderNumber          string          `json:"orderNumber"`
	Status               OrderStatus     `json:"status"`
	OrderDate            time.Time       `json:"orderDate"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	TotalItems           int             `json:"totalItems"`
	OrderItems           []OrderItem     `json:"orderItems"`
	ShippingAddressLine1 string          `json:"shippingAddressLine1"`
	ShippingAddressLine2 string          `json:"shippingAddressLine2,omitempty"`
	ShippingCity         string          `json:"shippingCity"`
	ShippingState        string          `json:"shippingState"`
	ShippingPostalCode   string          `json:"shippingPostalCode"`
	ShippingCountry      string          `json:"shippingCountry"`
	PaymentMethod        string          `json:"paymentMethod,omitempty"`
	PaymentStatus        string          `json:"paymentStatus,omitempty"`
	TrackingNumber       string          `json:"trackingNumber,omitempty"`
	Notes                string          `json:"notes,omitempty"`
}

type OrderItem struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  string          `json:"productSku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	SubTotal    decimal.Decimal `json:"subTotal"`
}

type ShippingAddress struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}
