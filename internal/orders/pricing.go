package orders

import (
	"github.com/shopspring/decimal"

	"github.com/mknind/backoffice/pkg/db/models"
)

// Subtotal sums price*quantity over lines.
func Subtotal(lines []models.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func chargesTotal(charges []models.AdditionalCharge) decimal.Decimal {
	total := decimal.Zero
	for _, c := range charges {
		total = total.Add(c.PackagingCharge).Add(c.ShippingCharge)
	}
	return total
}

// GrandTotal is subtotal plus every charge minus the discount.
func GrandTotal(order *models.Order) decimal.Decimal {
	return Subtotal(order.Lines).Add(chargesTotal(order.AdditionalCharges)).Sub(order.Discount)
}

func defaultCharges() []models.AdditionalCharge {
	return []models.AdditionalCharge{{PackagingCharge: decimal.Zero, ShippingCharge: decimal.Zero}}
}

func toCharges(in []ChargeInput) []models.AdditionalCharge {
	out := make([]models.AdditionalCharge, 0, len(in))
	for _, c := range in {
		out = append(out, models.AdditionalCharge{PackagingCharge: c.PackagingCharge, ShippingCharge: c.ShippingCharge})
	}
	return out
}
