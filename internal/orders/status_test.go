package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
)

func strPtr(s string) *string { return &s }

func pendingOrder() *models.Order {
	return &models.Order{OrderStatus: enums.OrderStatusPending, PaymentStatus: enums.PaymentStatusPending}
}

func TestApplyStatusChangeRequiresAField(t *testing.T) {
	_, err := ApplyStatusChange(pendingOrder(), StatusChangeRequest{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestApplyStatusChangeRejectsUnknownValues(t *testing.T) {
	_, err := ApplyStatusChange(pendingOrder(), StatusChangeRequest{OrderStatus: strPtr("Lost")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ApplyStatusChange(pendingOrder(), StatusChangeRequest{PaymentStatus: strPtr("Refunded")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestApplyStatusChangeCancellationReason(t *testing.T) {
	order := pendingOrder()
	_, err := ApplyStatusChange(order, StatusChangeRequest{CancellationReason: strPtr("too slow")})
	require.Error(t, err, "reason without cancelling")
	assert.Equal(t, enums.OrderStatusPending, order.OrderStatus, "order untouched on error")

	_, err = ApplyStatusChange(order, StatusChangeRequest{OrderStatus: strPtr("Cancelled"), CancellationReason: strPtr("too slow")})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, order.OrderStatus)
	assert.Equal(t, "too slow", order.CancellationReason)

	// Payment-only changes keep the reason while still cancelled.
	_, err = ApplyStatusChange(order, StatusChangeRequest{PaymentStatus: strPtr("Failed")})
	require.NoError(t, err)
	assert.Equal(t, "too slow", order.CancellationReason)

	regressions, err := ApplyStatusChange(order, StatusChangeRequest{OrderStatus: strPtr("Pending")})
	require.NoError(t, err)
	assert.Empty(t, order.CancellationReason, "reason cleared when leaving Cancelled")
	require.Len(t, regressions, 1)
	assert.Equal(t, Regression{Field: "orderStatus", From: "Cancelled", To: "Pending"}, regressions[0])
}

func TestApplyStatusChangeAllowsAnyTransition(t *testing.T) {
	order := &models.Order{OrderStatus: enums.OrderStatusDelivered, PaymentStatus: enums.PaymentStatusConfirmed}
	regressions, err := ApplyStatusChange(order, StatusChangeRequest{
		OrderStatus:   strPtr("Shipped"),
		PaymentStatus: strPtr("Pending"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, order.OrderStatus)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Len(t, regressions, 2)

	regressions, err = ApplyStatusChange(order, StatusChangeRequest{OrderStatus: strPtr("Delivered")})
	require.NoError(t, err)
	assert.Empty(t, regressions)
}
