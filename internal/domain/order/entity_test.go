// internal/domain/order/entity_test.go
package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "ORD-20260820-00042", GenerateOrderNumber(now, 42))
	assert.Equal(t, "ORD-20260820-00001", GenerateOrderNumber(now, 100001))
}

func TestCanBeCancelled(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusProcessing, false},
		{StatusShipped, false},
		{StatusDelivered, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := Order{Status: tt.status}
			assert.Equal(t, tt.want, o.CanBeCancelled())
		})
	}
}

func TestTransitionRecordsHistory(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	o := Order{Status: StatusPending}

	o.Transition(StatusConfirmed, "payment received", now)

	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, now, o.UpdatedAt)
	if assert.Len(t, o.StatusHistory, 1) {
		assert.Equal(t, StatusConfirmed, o.StatusHistory[0].Status)
		assert.Equal(t, "payment received", o.StatusHistory[0].Comment)
	}
}

func TestOrderTotals(t *testing.T) {
	o := Order{
		Total: 12550,
		Items: []Item{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
	}

	assert.Equal(t, 5, o.TotalQuantity())
	assert.Equal(t, 125.50, o.GetFormattedTotal())
}
