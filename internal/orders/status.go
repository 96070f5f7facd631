package orders

import (
	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
)

// Regression names a status field that moved out of a terminal value.
type Regression struct {
	Field string
	From  string
	To    string
}

// ApplyStatusChange validates req against order and mutates it in place.
// No transition table is enforced; leaving a terminal value is allowed and
// reported back so the caller can flag it.
func ApplyStatusChange(order *models.Order, req StatusChangeRequest) ([]Regression, error) {
	if req.OrderStatus == nil && req.PaymentStatus == nil && req.CancellationReason == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no status fields provided to update")
	}

	nextOrder := order.OrderStatus
	if req.OrderStatus != nil {
		parsed, err := enums.ParseOrderStatus(*req.OrderStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid orderStatus").
				WithDetails(map[string]any{"orderStatus": *req.OrderStatus})
		}
		nextOrder = parsed
	}
	nextPayment := order.PaymentStatus
	if req.PaymentStatus != nil {
		parsed, err := enums.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentStatus").
				WithDetails(map[string]any{"paymentStatus": *req.PaymentStatus})
		}
		nextPayment = parsed
	}
	if req.CancellationReason != nil && *req.CancellationReason != "" && nextOrder != enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellationReason is only allowed for cancelled orders").
			WithDetails(map[string]any{"orderStatus": nextOrder})
	}

	var regressions []Regression
	if nextOrder != order.OrderStatus && order.OrderStatus.IsTerminal() {
		regressions = append(regressions, Regression{Field: "orderStatus", From: order.OrderStatus.String(), To: nextOrder.String()})
	}
	if nextPayment != order.PaymentStatus && order.PaymentStatus.IsTerminal() {
		regressions = append(regressions, Regression{Field: "paymentStatus", From: order.PaymentStatus.String(), To: nextPayment.String()})
	}

	order.OrderStatus = nextOrder
	order.PaymentStatus = nextPayment
	switch {
	case nextOrder != enums.OrderStatusCancelled:
		order.CancellationReason = ""
	case req.CancellationReason != nil:
		order.CancellationReason = *req.CancellationReason
	}
	return regressions, nil
}
