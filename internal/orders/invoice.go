package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mknind/backoffice/internal/resolver"
)

const notAvailable = "N/A"

// BuildInvoice renders a resolved order. Dangling references print their
// marker text in place of the name.
func BuildInvoice(order resolver.ResolvedOrder) Invoice {
	inv := Invoice{
		InvoiceNo:         notAvailable,
		InvoiceDate:       notAvailable,
		BillingAddress:    order.BillingAddress,
		ShippingAddress:   order.ShippingAddress,
		Products:          make([]InvoiceLine, 0, len(order.Products)),
		AdditionalCharges: make([]ChargeInput, 0, len(order.AdditionalCharges)),
		Discount:          order.Discount,
		Total:             order.PaymentTotal,
		PaymentStatus:     order.PaymentStatus,
	}
	if len(order.InvoiceDetails) > 0 {
		inv.InvoiceNo = order.InvoiceDetails[0].InvoiceNo
		inv.InvoiceDate = order.InvoiceDetails[0].InvoiceDate
	}

	if order.Customer.OK() {
		c := order.Customer.Value
		inv.Customer = strings.TrimSpace(c.FirstName + " " + c.LastName)
	} else {
		inv.Customer = order.Customer.Marker
	}

	subtotal := decimal.Zero
	for _, line := range order.Products {
		total := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(total)
		item := InvoiceLine{Price: line.Price, Quantity: line.Quantity, Total: total}
		if line.Product.OK() {
			item.Name = line.Product.Value.ProductName
		} else {
			item.Name = line.Product.Marker
		}
		if line.Variant.OK() {
			item.Weight = line.Variant.Value.Weight
		}
		inv.Products = append(inv.Products, item)
	}

	charges := decimal.Zero
	for _, c := range order.AdditionalCharges {
		inv.AdditionalCharges = append(inv.AdditionalCharges, ChargeInput{PackagingCharge: c.PackagingCharge, ShippingCharge: c.ShippingCharge})
		charges = charges.Add(c.PackagingCharge).Add(c.ShippingCharge)
	}
	inv.Subtotal = subtotal
	inv.GrandTotal = subtotal.Add(charges).Sub(order.Discount)
	return inv
}
