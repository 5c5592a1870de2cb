package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRules() PricingRules {
	return PricingRules{ShippingFlat: 5.99, FreeShippingThreshold: 50, VATRate: 0.2}
}

func TestQuoteChargesShippingBelowThreshold(t *testing.T) {
	q := NewPricingService(testRules()).Quote([]LineItem{{UnitPrice: 12.5, Quantity: 2}})

	assert.Equal(t, 25.0, q.Subtotal)
	assert.Equal(t, 5.99, q.Shipping)
	assert.Equal(t, 5.0, q.VAT)
	assert.Equal(t, 35.99, q.Total)
}

func TestQuoteWaivesShippingAtThreshold(t *testing.T) {
	q := NewPricingService(testRules()).Quote([]LineItem{{UnitPrice: 25, Quantity: 2}})

	assert.Equal(t, 50.0, q.Subtotal)
	assert.Equal(t, 0.0, q.Shipping)
	assert.Equal(t, 10.0, q.VAT)
	assert.Equal(t, 60.0, q.Total)
}

func TestQuoteRoundsToCents(t *testing.T) {
	q := NewPricingService(testRules()).Quote([]LineItem{
		{UnitPrice: 1299.99, Quantity: 1},
		{UnitPrice: 34.99, Quantity: 3},
	})

	assert.Equal(t, 1404.96, q.Subtotal)
	assert.Equal(t, 0.0, q.Shipping)
	assert.Equal(t, 280.99, q.VAT)
	assert.Equal(t, 1685.95, q.Total)
}

func TestQuoteEmptyCart(t *testing.T) {
	q := NewPricingService(testRules()).Quote(nil)

	assert.Equal(t, Quote{}, q)
}
