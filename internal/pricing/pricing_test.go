package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyvanfa/tableside/internal/model"
)

func lines(totals ...int64) []model.PricedLine {
	out := make([]model.PricedLine, 0, len(totals))
	for _, t := range totals {
		out = append(out, model.PricedLine{Quantity: 1, UnitPriceCents: t, LineTotalCents: t})
	}
	return out
}

func TestComputePercentageOfferCapped(t *testing.T) {
	// Subtotal 500.00, handling 10% -> 50.00, delivery 30.00, 20%
	// offer capped at 80.00 with a 100.00 minimum: discount is the
	// cap, total is 500.00.
	settings := model.RestaurantSettings{HandlingRate: 0.10}
	offer := &model.Offer{
		Type:             model.OfferPercentage,
		Percent:          20,
		MaxDiscountCents: 8000,
		MinOrderCents:    10000,
	}
	require.True(t, OfferApplies(offer, 50000))

	q := Compute(lines(50000), settings, offer, 3000)
	assert.Equal(t, int64(50000), q.SubtotalCents)
	assert.Equal(t, int64(5000), q.HandlingCents)
	assert.Equal(t, int64(3000), q.DeliveryFeeCents)
	assert.Equal(t, int64(8000), q.DiscountCents)
	assert.Equal(t, int64(50000), q.TotalCents)
}

func TestComputeDeterministic(t *testing.T) {
	settings := model.RestaurantSettings{HandlingRate: 0.07}
	offer := &model.Offer{Type: model.OfferPercentage, Percent: 12.5}
	first := Compute(lines(1999, 350, 12345), settings, offer, 499)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Compute(lines(1999, 350, 12345), settings, offer, 499))
	}
}

func TestComputeFreeDelivery(t *testing.T) {
	settings := model.RestaurantSettings{HandlingRate: 0.10}
	offer := &model.Offer{Type: model.OfferFreeDelivery}
	q := Compute(lines(20000), settings, offer, 2500)
	// The fee is credited back in full: total equals subtotal+handling.
	assert.Equal(t, int64(2500), q.DiscountCents)
	assert.Equal(t, int64(22000), q.TotalCents)
}

func TestComputeFlatClampedToSubtotalPlusHandling(t *testing.T) {
	settings := model.RestaurantSettings{HandlingRate: 0.10}
	offer := &model.Offer{Type: model.OfferFlat, AmountCents: 99999}
	q := Compute(lines(1000), settings, offer, 500)
	assert.Equal(t, int64(1100), q.DiscountCents, "discount never exceeds subtotal+handling")
	assert.Equal(t, int64(500), q.TotalCents)
	assert.GreaterOrEqual(t, q.TotalCents, int64(0))
}

func TestDiscountBounds(t *testing.T) {
	settings := model.RestaurantSettings{HandlingRate: 0.10}
	offers := []*model.Offer{
		nil,
		{Type: model.OfferPercentage, Percent: 100},
		{Type: model.OfferPercentage, Percent: 250},
		{Type: model.OfferFlat, AmountCents: 1},
		{Type: model.OfferFlat, AmountCents: 1 << 40},
		{Type: model.OfferFlat, AmountCents: -50},
		{Type: model.OfferFreeDelivery},
	}
	for _, offer := range offers {
		for _, sub := range []int64{0, 1, 99, 12345, 5000000} {
			q := Compute(lines(sub), settings, offer, 700)
			assert.GreaterOrEqual(t, q.DiscountCents, int64(0))
			if offer == nil || offer.Type != model.OfferFreeDelivery {
				assert.LessOrEqual(t, q.DiscountCents, q.SubtotalCents+q.HandlingCents)
			}
			assert.GreaterOrEqual(t, q.TotalCents, int64(0))
		}
	}
}

func TestHandlingRoundsHalfUp(t *testing.T) {
	// 105 cents at 10% is 10.5 cents, which rounds up to 11.
	q := Compute(lines(105), model.RestaurantSettings{HandlingRate: 0.10}, nil, 0)
	assert.Equal(t, int64(11), q.HandlingCents)
}

func TestOfferApplies(t *testing.T) {
	offer := &model.Offer{MinOrderCents: 10000}
	assert.False(t, OfferApplies(offer, 9999))
	assert.True(t, OfferApplies(offer, 10000))
	assert.False(t, OfferApplies(nil, 10000))
}

func TestBookingQuote(t *testing.T) {
	q := BookingQuote(model.RestaurantSettings{BookingDepositCents: 1500}, 4)
	assert.Equal(t, int64(6000), q.SubtotalCents)
	assert.Equal(t, int64(6000), q.TotalCents)
	assert.Zero(t, q.DiscountCents)
}
