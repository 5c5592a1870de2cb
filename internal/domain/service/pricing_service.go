package service

import (
	"github.com/shopspring/decimal"
)

// PricingRules are the checkout constants, all in store currency.
type PricingRules struct {
	ShippingFlat          float64
	FreeShippingThreshold float64
	VATRate               float64
}

// LineItem is one priced cart line.
type LineItem struct {
	UnitPrice float64
	Quantity  int
}

// Quote is the priced cart, rounded to cents.
type Quote struct {
	Subtotal float64
	Shipping float64
	VAT      float64
	Total    float64
}

type PricingService struct {
	rules PricingRules
}

func NewPricingService(rules PricingRules) *PricingService {
	return &PricingService{rules: rules}
}

// Quote prices the lines. Shipping is waived once the subtotal reaches the
// free-shipping threshold; VAT is charged on the subtotal only.
func (s *PricingService) Quote(lines []LineItem) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.NewFromFloat(s.rules.ShippingFlat)
	if len(lines) == 0 || subtotal.GreaterThanOrEqual(decimal.NewFromFloat(s.rules.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}

	vat := subtotal.Mul(decimal.NewFromFloat(s.rules.VATRate)).Round(2)
	total := subtotal.Add(shipping).Add(vat).Round(2)

	return Quote{
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.Round(2).InexactFloat64(),
		VAT:      vat.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
