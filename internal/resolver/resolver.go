// Package resolver turns stored orders and carts, whose references point
// into other documents' embedded lists, into read models. Resolution is
// pure: a reference that cannot be followed becomes an inline marker and
// never fails the read.
package resolver

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
	"github.com/mknind/backoffice/pkg/metrics"
)

const (
	MsgCustomerNotFound        = "Customer not found"
	MsgBillingAddressNotFound  = "Billing address not found"
	MsgShippingAddressNotFound = "Shipping address not found"
	MsgProductNotFound         = "Product not found"
	MsgVariantNotFound         = "Variant not found"
	MsgNoVariantSpecified      = "No variant specified"
)

// ProductSummary is the product projection shown next to order and cart lines.
type ProductSummary struct {
	ID           uuid.UUID `json:"id"`
	ProductName  string    `json:"productName"`
	Images       []string  `json:"images"`
	Status       bool      `json:"status"`
	HideFromShop bool      `json:"hideFromShop"`
}

func summarize(p models.Product) ProductSummary {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductSummary{
		ID:           p.ID,
		ProductName:  p.ProductName,
		Images:       images,
		Status:       p.Status,
		HideFromShop: p.HideFromShop,
	}
}

type ResolvedLine struct {
	Product  Ref[ProductSummary] `json:"product"`
	Variant  Ref[models.Variant] `json:"variant"`
	Quantity int                 `json:"quantity"`
	Price    decimal.Decimal     `json:"price"`
}

type ResolvedOrder struct {
	ID                 uuid.UUID                 `json:"id"`
	InvoiceDetails     []models.InvoiceDetail    `json:"invoiceDetails"`
	Customer           Ref[models.Customer]      `json:"customer"`
	BillingAddress     Ref[models.Address]       `json:"billingAddress"`
	ShippingAddress    Ref[models.Address]       `json:"shippingAddress"`
	Products           []ResolvedLine            `json:"products"`
	ShippingMethod     enums.ShippingMethod      `json:"shippingMethod"`
	OrderStatus        enums.OrderStatus         `json:"orderStatus"`
	PaymentStatus      enums.PaymentStatus       `json:"paymentStatus"`
	CancellationReason string                    `json:"cancellationReason"`
	AdditionalCharges  []models.AdditionalCharge `json:"additionalCharges"`
	Discount           decimal.Decimal           `json:"discount"`
	OrderNote          string                    `json:"orderNote"`
	PaymentTotal       decimal.Decimal           `json:"paymentTotal"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
}

// DanglingRefs counts the references of o that resolved to a marker.
func (o ResolvedOrder) DanglingRefs() int {
	n := 0
	for _, marked := range []bool{o.Customer.Marker != "", o.BillingAddress.Marker != "", o.ShippingAddress.Marker != ""} {
		if marked {
			n++
		}
	}
	for _, line := range o.Products {
		if line.Product.Marker != "" {
			n++
		}
		if line.Variant.Marker != "" {
			n++
		}
	}
	return n
}

// ResolvedCartItem carries the live catalog state of a cart line.
type ResolvedCartItem struct {
	Product  Ref[ProductSummary] `json:"product"`
	Variant  Ref[models.Variant] `json:"variant"`
	Quantity int                 `json:"quantity"`
}

// Resolver applies the marker policy and reports dangling references.
// The zero value is usable and records nothing.
type Resolver struct {
	Metrics *metrics.OrderMetrics
}

func New(m *metrics.OrderMetrics) *Resolver {
	return &Resolver{Metrics: m}
}

// ResolveOrder joins order with its customer (nil when missing) and the
// products it references. It is total: every input yields a value.
func (r *Resolver) ResolveOrder(order models.Order, customer *models.Customer, products map[uuid.UUID]models.Product) ResolvedOrder {
	out := ResolvedOrder{
		ID:                 order.ID,
		InvoiceDetails:     nonNil(order.InvoiceDetails),
		ShippingMethod:     order.ShippingMethod,
		OrderStatus:        order.OrderStatus,
		PaymentStatus:      order.PaymentStatus,
		CancellationReason: order.CancellationReason,
		AdditionalCharges:  nonNil(order.AdditionalCharges),
		Discount:           order.Discount,
		OrderNote:          order.OrderNote,
		PaymentTotal:       order.PaymentTotal,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}

	if customer == nil {
		r.dangling(metrics.RefCustomer)
		out.Customer = Dangling[models.Customer](MsgCustomerNotFound)
		out.BillingAddress = Dangling[models.Address](MsgBillingAddressNotFound)
		out.ShippingAddress = Dangling[models.Address](MsgShippingAddressNotFound)
	} else {
		out.Customer = Found(*customer)
		out.BillingAddress = r.address(customer, order.BillingAddressID, MsgBillingAddressNotFound, metrics.RefBillingAddress)
		out.ShippingAddress = r.address(customer, order.ShippingAddressID, MsgShippingAddressNotFound, metrics.RefShippingAddress)
	}

	out.Products = make([]ResolvedLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		product, variant := r.line(line.ProductID, line.VariantID, products)
		out.Products = append(out.Products, ResolvedLine{
			Product:  product,
			Variant:  variant,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}
	return out
}

// ResolveCartItems resolves cart lines against the live catalog.
func (r *Resolver) ResolveCartItems(items []models.CartItem, products map[uuid.UUID]models.Product) []ResolvedCartItem {
	out := make([]ResolvedCartItem, 0, len(items))
	for _, item := range items {
		product, variant := r.line(item.ProductID, item.VariantID, products)
		out = append(out, ResolvedCartItem{Product: product, Variant: variant, Quantity: item.Quantity})
	}
	return out
}

// ResolveWishlist resolves wishlist product ids in order.
func (r *Resolver) ResolveWishlist(ids []uuid.UUID, products map[uuid.UUID]models.Product) []Ref[ProductSummary] {
	out := make([]Ref[ProductSummary], 0, len(ids))
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			r.dangling(metrics.RefProduct)
			out = append(out, Dangling[ProductSummary](MsgProductNotFound))
			continue
		}
		out = append(out, Found(summarize(p)))
	}
	return out
}

func (r *Resolver) address(customer *models.Customer, id uuid.UUID, marker, kind string) Ref[models.Address] {
	addr, ok := customer.FindAddress(id)
	if !ok {
		r.dangling(kind)
		return Dangling[models.Address](marker)
	}
	return Found(addr)
}

func (r *Resolver) line(productID uuid.UUID, variantID *uuid.UUID, products map[uuid.UUID]models.Product) (Ref[ProductSummary], Ref[models.Variant]) {
	p, ok := products[productID]
	if !ok {
		r.dangling(metrics.RefProduct)
		return Dangling[ProductSummary](MsgProductNotFound), Ref[models.Variant]{}
	}
	product := Found(summarize(p))

	if variantID == nil {
		if len(p.Variants) > 0 {
			r.dangling(metrics.RefVariantMissing)
			return product, Dangling[models.Variant](MsgNoVariantSpecified)
		}
		return product, Ref[models.Variant]{}
	}
	v, ok := p.FindVariant(*variantID)
	if !ok {
		r.dangling(metrics.RefVariant)
		return product, Dangling[models.Variant](MsgVariantNotFound)
	}
	return product, Found(v)
}

func (r *Resolver) dangling(kind string) {
	if r == nil {
		return
	}
	r.Metrics.DanglingReference(kind)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
