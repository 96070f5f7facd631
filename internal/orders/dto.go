package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
)

// LineInput is an order line as submitted. Price is optional when a
// variant is given; the variant's current price is captured instead.
type LineInput struct {
	Product  uuid.UUID        `json:"product" validate:"required"`
	Variant  *uuid.UUID       `json:"variant,omitempty"`
	Quantity int              `json:"quantity" validate:"required,min=1"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type ChargeInput struct {
	PackagingCharge decimal.Decimal `json:"packagingCharge" validate:"gte=0"`
	ShippingCharge  decimal.Decimal `json:"shippingCharge" validate:"gte=0"`
}

// CreateOrderRequest is the admin form: every field may be set.
type CreateOrderRequest struct {
	Customer           uuid.UUID        `json:"customer" validate:"required"`
	BillingAddress     uuid.UUID        `json:"billingAddress" validate:"required"`
	ShippingAddress    uuid.UUID        `json:"shippingAddress" validate:"required"`
	Products           []LineInput      `json:"products" validate:"required,min=1,dive"`
	ShippingMethod     string           `json:"shippingMethod,omitempty" validate:"omitempty,oneof=Standard Express"`
	OrderStatus        string           `json:"orderStatus,omitempty" validate:"omitempty,oneof=Pending Confirmed Shipped Delivered Cancelled"`
	PaymentStatus      string           `json:"paymentStatus,omitempty" validate:"omitempty,oneof=Pending Confirmed Failed"`
	CancellationReason string           `json:"cancellationReason,omitempty"`
	AdditionalCharges  []ChargeInput    `json:"additionalCharges,omitempty" validate:"omitempty,dive"`
	Discount           *decimal.Decimal `json:"discount,omitempty"`
	OrderNote          string           `json:"orderNote,omitempty"`
	PaymentTotal       *decimal.Decimal `json:"paymentTotal,omitempty"`
}

// CustomerOrderRequest is what a customer may submit for themselves.
// Statuses, charges and discount take their defaults.
type CustomerOrderRequest struct {
	BillingAddress  uuid.UUID        `json:"billingAddress" validate:"required"`
	ShippingAddress uuid.UUID        `json:"shippingAddress" validate:"required"`
	Products        []LineInput      `json:"products" validate:"required,min=1,dive"`
	ShippingMethod  string           `json:"shippingMethod,omitempty" validate:"omitempty,oneof=Standard Express"`
	PaymentTotal    *decimal.Decimal `json:"paymentTotal,omitempty"`
}

// AsCreate expands the customer form with the customer-facing defaults.
func (r CustomerOrderRequest) AsCreate(customerID uuid.UUID) CreateOrderRequest {
	return CreateOrderRequest{
		Customer:        customerID,
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
		Products:        r.Products,
		ShippingMethod:  r.ShippingMethod,
		PaymentTotal:    r.PaymentTotal,
	}
}

// UpdateOrderRequest patches order content. Absent fields are untouched.
type UpdateOrderRequest struct {
	BillingAddress    *uuid.UUID       `json:"billingAddress,omitempty"`
	ShippingAddress   *uuid.UUID       `json:"shippingAddress,omitempty"`
	Products          []LineInput      `json:"products,omitempty" validate:"omitnil,min=1,dive"`
	ShippingMethod    *string          `json:"shippingMethod,omitempty" validate:"omitempty,oneof=Standard Express"`
	AdditionalCharges []ChargeInput    `json:"additionalCharges,omitempty" validate:"omitempty,dive"`
	Discount          *decimal.Decimal `json:"discount,omitempty"`
	OrderNote         *string          `json:"orderNote,omitempty"`
	PaymentTotal      *decimal.Decimal `json:"paymentTotal,omitempty"`
}

func (r UpdateOrderRequest) empty() bool {
	return r.BillingAddress == nil && r.ShippingAddress == nil && r.Products == nil &&
		r.ShippingMethod == nil && r.AdditionalCharges == nil && r.Discount == nil &&
		r.OrderNote == nil && r.PaymentTotal == nil
}

// StatusChangeRequest carries any subset of the status fields.
type StatusChangeRequest struct {
	OrderStatus        *string `json:"orderStatus,omitempty"`
	PaymentStatus      *string `json:"paymentStatus,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type BulkDeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

type StatusCount struct {
	Status enums.OrderStatus `json:"_id"`
	Count  int64             `json:"count"`
}

// Summary reports order counts per status and revenue over all orders,
// whatever their payment status.
type Summary struct {
	TotalOrders    int64         `json:"totalOrders"`
	OrdersByStatus []StatusCount `json:"ordersByStatus"`
	TotalRevenue   float64       `json:"totalRevenue"`
}

type InvoiceLine struct {
	Name     string          `json:"name"`
	Weight   string          `json:"weight,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// Invoice is the printable view of one order.
type Invoice struct {
	InvoiceNo         string                       `json:"invoiceNo"`
	InvoiceDate       string                       `json:"invoiceDate"`
	Customer          string                       `json:"customer"`
	BillingAddress    resolver.Ref[models.Address] `json:"billingAddress"`
	ShippingAddress   resolver.Ref[models.Address] `json:"shippingAddress"`
	Products          []InvoiceLine                `json:"products"`
	AdditionalCharges []ChargeInput                `json:"additionalCharges"`
	Subtotal          decimal.Decimal              `json:"subtotal"`
	Discount          decimal.Decimal              `json:"discount"`
	GrandTotal        decimal.Decimal              `json:"grandTotal"`
	Total             decimal.Decimal              `json:"total"`
	PaymentStatus     enums.PaymentStatus          `json:"paymentStatus"`
}
