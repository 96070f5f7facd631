package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mknind/backoffice/pkg/enums"
)

// InvoiceDateLayout is the on-record format of InvoiceDetail.InvoiceDate.
const InvoiceDateLayout = "2006-01-02"

// InvoiceDetail entries are append-only; the first one is canonical.
type InvoiceDetail struct {
	InvoiceNo   string `json:"invoiceNo"`
	InvoiceDate string `json:"invoiceDate"`
}

// OrderLine freezes the unit price at order time.
type OrderLine struct {
	ProductID uuid.UUID       `json:"product"`
	VariantID *uuid.UUID      `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type AdditionalCharge struct {
	PackagingCharge decimal.Decimal `json:"packagingCharge"`
	ShippingCharge  decimal.Decimal `json:"shippingCharge"`
}

type Order struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceDetails     []InvoiceDetail      `gorm:"column:invoice_details;type:jsonb;serializer:json;not null"`
	InvoiceNo          string               `gorm:"column:invoice_no;not null;uniqueIndex:ux_orders_invoice_no"`
	CustomerID         uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	BillingAddressID   uuid.UUID            `gorm:"column:billing_address_id;type:uuid;not null"`
	ShippingAddressID  uuid.UUID            `gorm:"column:shipping_address_id;type:uuid;not null"`
	Lines              []OrderLine          `gorm:"column:lines;type:jsonb;serializer:json;not null"`
	ShippingMethod     enums.ShippingMethod `gorm:"column:shipping_method;not null;default:'Standard'"`
	OrderStatus        enums.OrderStatus    `gorm:"column:order_status;not null;default:'Pending';index"`
	PaymentStatus      enums.PaymentStatus  `gorm:"column:payment_status;not null;default:'Pending'"`
	CancellationReason string               `gorm:"column:cancellation_reason;not null;default:''"`
	AdditionalCharges  []AdditionalCharge   `gorm:"column:additional_charges;type:jsonb;serializer:json;not null"`
	Discount           decimal.Decimal      `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	OrderNote          string               `gorm:"column:order_note;not null;default:''"`
	PaymentTotal       decimal.Decimal      `gorm:"column:payment_total;type:numeric(12,2);not null;default:0"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if len(o.InvoiceDetails) > 0 {
		o.InvoiceNo = o.InvoiceDetails[0].InvoiceNo
	}
	if o.AdditionalCharges == nil {
		o.AdditionalCharges = []AdditionalCharge{}
	}
	if o.Lines == nil {
		o.Lines = []OrderLine{}
	}
	return nil
}

// CanonicalInvoice returns the first invoice entry, if any.
func (o *Order) CanonicalInvoice() (InvoiceDetail, bool) {
	if o == nil || len(o.InvoiceDetails) == 0 {
		return InvoiceDetail{}, false
	}
	return o.InvoiceDetails[0], true
}
