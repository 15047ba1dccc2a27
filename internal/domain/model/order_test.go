package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}

	// 許可されるのは前進1段とPENDINGからのキャンセルだけ
	allowed := map[OrderStatus]OrderStatus{
		OrderStatusPending:    OrderStatusProcessing,
		OrderStatusProcessing: OrderStatusShipped,
		OrderStatusShipped:    OrderStatusDelivered,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from] == to
			if to == OrderStatusCancelled {
				want = from == OrderStatusPending
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusProcessing.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestOrderStatusIsValid(t *testing.T) {
	assert.True(t, OrderStatusPending.IsValid())
	assert.False(t, OrderStatus("PAID").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, PaymentMethodCashOnDelivery.IsValid())
	assert.True(t, PaymentMethodCreditCard.IsValid())
	assert.False(t, PaymentMethod("CHECK").IsValid())
}
